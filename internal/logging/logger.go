package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type requestIDKey struct{}

// Init initializes the global logger
func Init(serviceName string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var output io.Writer = os.Stdout
	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	Logger = zerolog.New(output).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	log.Logger = Logger
}

// WithRequestID stores a request id in ctx for later log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithContext returns a logger carrying the request id from ctx, if any.
func WithContext(ctx context.Context) *zerolog.Logger {
	logger := Logger.With().Logger()
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}
	return &logger
}

func Info(ctx context.Context) *zerolog.Event  { return WithContext(ctx).Info() }
func Warn(ctx context.Context) *zerolog.Event  { return WithContext(ctx).Warn() }
func Error(ctx context.Context) *zerolog.Event { return WithContext(ctx).Error() }
func Debug(ctx context.Context) *zerolog.Event { return WithContext(ctx).Debug() }

// SetLevel sets the global log level
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
