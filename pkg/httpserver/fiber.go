package httpserver

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"city-weather/pkg/apperr"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type Option func(*fiber.Config)

// WithTimeouts sets the connection timeouts. Zero values keep fiber's defaults.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(cfg *fiber.Config) {
		cfg.ReadTimeout = read
		cfg.WriteTimeout = write
		cfg.IdleTimeout = idle
	}
}

// InitFiberServer builds the app with recovery, CORS and the management
// probes. ready backs /manage/ready; nil means always ready.
func InitFiberServer(appName string, ready func(*fiber.Ctx) bool, opts ...Option) *fiber.App {
	cfg := fiber.Config{
		AppName:      appName,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := fiber.New(cfg)

	s.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	s.Use(cors.New())

	hc := healthcheck.Config{
		LivenessEndpoint:  "/manage/health",
		ReadinessEndpoint: "/manage/ready",
	}
	if ready != nil {
		hc.ReadinessProbe = ready
	}
	s.Use(healthcheck.New(hc))

	return s
}

// ErrorHandler renders apperr kinds and fiber errors as {"detail": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Detail: fe.Message})
	}

	kind := apperr.KindOf(err)
	return c.Status(apperr.HTTPStatus(kind)).JSON(ErrorResponse{Detail: apperr.Message(err)})
}
