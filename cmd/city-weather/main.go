package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"city-weather/config"
	v1 "city-weather/internal/controllers/http/v1"
	"city-weather/internal/metrics"
	"city-weather/internal/repositories"
	"city-weather/internal/services/weather"
	"city-weather/internal/storage/cache"
	"city-weather/internal/storage/events"
	"city-weather/internal/storage/snapshots"
	"city-weather/internal/writeback"
	"city-weather/pkg/httpserver"
	"city-weather/pkg/logger"
	"city-weather/pkg/observe"
)

type eventLog interface {
	weather.EventLog
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// @title City Weather API
// @version 1.0.0
// @description Current weather by city name, served from cache and object storage with OpenWeatherMap as the source.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Weather
// @tag.description Current weather lookups
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Println("cannot read .env file:", err)
	}

	cnf, err := config.NewConfig()
	if err != nil {
		fmt.Println("cannot load config:", err)
		os.Exit(1)
	}

	hook, err := observe.NewSentryHook(cnf.App.Env, cnf.App.Name, cnf.Sentry.DSN, cnf.Sentry.Debug)
	if err != nil {
		fmt.Println("cannot init sentry:", err)
		os.Exit(1)
	}

	l := logger.NewZapLoggerWithOptions(logger.Options{
		AppName: cnf.App.Name,
		AppEnv:  cnf.App.Env,
		Level:   cnf.Log.Level,
	}, os.Stdout, hook)

	if cnf.IsProduction() && cnf.Sentry.DSN == "" {
		l.Warning("sentry dsn is empty, errors are only logged locally")
	}

	m := metrics.New()

	backend, err := initCacheBackend(ctx, cnf)
	if err != nil {
		l.Fatal("cannot connect to the cache", map[string]any{"err": err, "driver": cnf.Cache.Driver})
		os.Exit(1)
	}
	lookupCache := cache.NewLookupCache(backend, l)

	objects, err := snapshots.NewMinioClient(snapshots.MinioOptions{
		Endpoint:  cnf.Storage.Endpoint,
		AccessKey: cnf.Storage.AccessKey,
		SecretKey: cnf.Storage.SecretKey,
		Region:    cnf.Storage.Region,
		UseSSL:    cnf.Storage.UseSSL,
	})
	if err != nil {
		l.Fatal("cannot create the object storage client", map[string]any{"err": err})
		os.Exit(1)
	}
	store := snapshots.NewStore(objects, cnf.Storage.Bucket, cnf.Storage.Region, l)
	if err := store.EnsureBucket(ctx); err != nil {
		l.Warning("snapshot bucket is not ready, it will be created on first write", map[string]any{"err": err, "bucket": cnf.Storage.Bucket})
	}

	eventsLog, err := initEventLog(ctx, cnf, l)
	if err != nil {
		l.Fatal("cannot open the event log", map[string]any{"err": err, "driver": cnf.Events.Driver})
		os.Exit(1)
	}
	if err := eventsLog.EnsureSchema(ctx); err != nil {
		l.Warning("event table is not ready, it will be created on first write", map[string]any{"err": err})
	}

	provider, err := repositories.InitWeatherProvider(
		cnf.Weather,
		l,
		&http.Client{Timeout: time.Duration(cnf.Weather.Timeout) * time.Second},
	)
	if err != nil {
		l.Fatal("cannot init the weather provider", map[string]any{"err": err})
		os.Exit(1)
	}

	pool := writeback.New(cnf.Writeback.Workers, cnf.Writeback.QueueSize, l, m)
	pool.Start()
	go func() {
		for f := range pool.Failures() {
			l.Error(f.Err, map[string]any{"task": f.Name, "task_id": f.TaskID, "panicked": f.Panicked})
		}
	}()

	service := weather.NewWeatherService(weather.Options{
		Cache:         lookupCache,
		Store:         store,
		Events:        eventsLog,
		Provider:      provider,
		Writeback:     pool,
		WeatherRefTTL: time.Duration(cnf.Cache.WeatherRefTTL) * time.Second,
		Logger:        l,
		Metrics:       m,
	})

	app := httpserver.InitFiberServer(
		cnf.App.Name,
		readinessProbe(lookupCache, store, eventsLog),
		httpserver.WithTimeouts(
			time.Duration(cnf.Server.ReadTimeout)*time.Second,
			time.Duration(cnf.Server.WriteTimeout)*time.Second,
			time.Duration(cnf.Server.IdleTimeout)*time.Second,
		),
	)

	v1.NewRouter(
		app,
		service,
		m,
		l,
	)

	addr := cnf.Server.Host + ":" + cnf.Server.Port
	go func() {
		if err := app.Listen(addr); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
			cancel()
		}
	}()

	l.Info("application started successfully", map[string]any{
		"version":  cnf.App.Version,
		"env":      cnf.App.Env,
		"addr":     addr,
		"cache":    cnf.Cache.Driver,
		"events":   cnf.Events.Driver,
		"provider": provider.Name(),
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		_ = app.ShutdownWithContext(shutdownCtx)

		drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Duration(cnf.Writeback.ShutdownTimeout)*time.Second)
		defer drainCancel()
		if err := pool.Stop(drainCtx); err != nil {
			l.Warning("write-back queue not drained", map[string]any{"err": err})
		}

		_ = lookupCache.Close()
		_ = eventsLog.Close()
		hook.Flush(5 * time.Second)
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}

func initCacheBackend(ctx context.Context, cnf *config.Config) (cache.Backend, error) {
	switch cnf.Cache.Driver {
	case "memory":
		return cache.NewMemoryBackend(), nil
	case "redis":
		return cache.NewRedisBackend(ctx, cache.RedisOptions{
			Addr:     cnf.Redis.Addr,
			Password: cnf.Redis.Password,
			DB:       cnf.Redis.DB,
			PoolSize: cnf.Redis.PoolSize,
		})
	default:
		return nil, errors.Errorf("unknown cache driver %q", cnf.Cache.Driver)
	}
}

func initEventLog(ctx context.Context, cnf *config.Config, l *logger.Logger) (eventLog, error) {
	switch cnf.Events.Driver {
	case "postgres":
		return events.NewPostgresLog(ctx, cnf.Events.DSN, cnf.Events.Table, l)
	case "sqlite":
		return events.OpenSQLiteLog(cnf.Events.SqlitePath, cnf.Events.Table, l)
	default:
		return nil, errors.Errorf("unknown events driver %q", cnf.Events.Driver)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// readinessProbe reports ready only while every backing store answers.
func readinessProbe(deps ...pinger) func(*fiber.Ctx) bool {
	return func(c *fiber.Ctx) bool {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				return false
			}
		}
		return true
	}
}
