package resources

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const RequestIDHeader = "X-Request-ID"

// ConfigureLogger installs the process logger and returns ctx carrying it.
func ConfigureLogger(ctx context.Context, cfg *Config) context.Context {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var writer io.Writer = os.Stdout
	if cfg.Env == "local" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(writer).With().
		Timestamp().
		Str("service", cfg.Name).
		Str("version", cfg.Version).
		Str("env", cfg.Env).
		Logger()
	zerolog.DefaultContextLogger = &log.Logger

	return log.Logger.WithContext(ctx)
}

// RequestLogger gives every request its own child logger tagged with a
// request id, reusing a well-formed inbound X-Request-ID.
func RequestLogger() gin.HandlerFunc {
	return func(gctx *gin.Context) {
		start := time.Now()

		requestID := gctx.GetHeader(RequestIDHeader)
		if uuid.Validate(requestID) != nil {
			requestID = uuid.NewString()
		}
		gctx.Header(RequestIDHeader, requestID)

		logger := log.Ctx(gctx.Request.Context()).With().
			Str("request_id", requestID).
			Str("method", gctx.Request.Method).
			Str("path", gctx.Request.URL.Path).
			Logger()
		gctx.Request = gctx.Request.WithContext(logger.WithContext(gctx.Request.Context()))

		gctx.Next()

		logger.Info().
			Int("status", gctx.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	}
}
