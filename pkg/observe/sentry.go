package observe

import (
	"encoding/json"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

const (
	_sentryMaxErrorDepth        int           = 9
	_sentryFlushTimeout         time.Duration = 5 * time.Second
	_sentryServerRequestTimeout time.Duration = 5 * time.Second
	_zapTimeLayout                            = "2006-01-02T15:04:05.000Z07:00"
)

// SentryHook is an io.Writer for the zap logger. Error and fatal lines are
// forwarded to Sentry, everything else is dropped.
type SentryHook struct {
	appEnv  string
	appName string
	hub     *sentry.Hub
}

type zapLine struct {
	Level      string `json:"level"`
	AppName    string `json:"app_name"`
	AppEnv     string `json:"app_env"`
	CallerFile string `json:"caller_file"`
	CallerLine int    `json:"caller_line"`
	CallerFunc string `json:"caller_func"`
	Stack      string `json:"stack"`
	Message    string `json:"msg"`
	Error      string `json:"error"`
	Timestamp  string `json:"timestamp"`
}

// NewSentryHook builds a hook with its own client and hub. An empty DSN gives
// a hook that accepts writes and sends nothing.
func NewSentryHook(appEnv, appName, dsn string, isDebug bool) (*SentryHook, error) {
	h := &SentryHook{appEnv: appEnv, appName: appName}
	if dsn == "" {
		return h, nil
	}

	transport := sentry.NewHTTPTransport()
	transport.Timeout = _sentryServerRequestTimeout
	client, err := sentry.NewClient(sentry.ClientOptions{
		AttachStacktrace: true,
		Debug:            isDebug,
		Dsn:              dsn,
		Environment:      appEnv,
		MaxErrorDepth:    _sentryMaxErrorDepth,
		ServerName:       appName,
		Transport:        transport,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init sentry client")
	}
	h.hub = sentry.NewHub(client, sentry.NewScope())

	return h, nil
}

func (*SentryHook) mapLevel(zl zapcore.Level) sentry.Level {
	switch zl {
	case zapcore.DebugLevel, zapcore.InvalidLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.FatalLevel, zapcore.PanicLevel:
		return sentry.LevelFatal
	}
	return sentry.LevelDebug
}

// Write never fails so a broken reporter cannot break logging.
func (h *SentryHook) Write(p []byte) (n int, err error) {
	if h.hub == nil {
		return len(p), nil
	}

	event, ok := h.eventFromLine(p)
	if ok {
		h.hub.CaptureEvent(event)
	}
	return len(p), nil
}

func (h *SentryHook) eventFromLine(p []byte) (*sentry.Event, bool) {
	t := zapLine{}
	if err := json.Unmarshal(p, &t); err != nil {
		log.Println(errors.Wrap(err, "[SentryHook] decode log line").Error())
		return nil, false
	}

	level, err := zapcore.ParseLevel(t.Level)
	if err != nil || t.Message == "" {
		return nil, false
	}
	switch level {
	case zapcore.ErrorLevel, zapcore.FatalLevel, zapcore.PanicLevel:
	default:
		return nil, false
	}

	timestamp, err := time.Parse(_zapTimeLayout, t.Timestamp)
	if err != nil {
		timestamp = time.Now().UTC()
	}

	event := sentry.NewEvent()
	event.Environment = h.appEnv
	event.Level = h.mapLevel(level)
	event.Timestamp = timestamp
	event.Message = t.Message
	event.Extra["AppName"] = h.appName
	event.Extra["Error"] = t.Error
	event.Extra["CallerFile"] = t.CallerFile
	event.Extra["CallerLine"] = t.CallerLine
	event.Extra["CallerFunc"] = t.CallerFunc
	event.Extra["Stack"] = t.Stack
	event.Exception = append(event.Exception, sentry.Exception{
		Type:  t.Message,
		Value: t.Error,
	})

	return event, true
}

// Flush waits for queued events, bounded by timeout (5s when zero).
func (h *SentryHook) Flush(timeout time.Duration) bool {
	if h.hub == nil {
		return true
	}
	if timeout == 0 {
		timeout = _sentryFlushTimeout
	}
	return h.hub.Flush(timeout)
}
