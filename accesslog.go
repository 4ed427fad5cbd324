package phttp

import (
	"time"

	"go.uber.org/zap"
)

// AccessLogConfig is the recognized configuration surface of the access-log
// middleware.
type AccessLogConfig struct {
	LogRequests  bool
	LogResponses bool
	LogHeaders   bool
	LogBody      bool

	// ErrorStatus classifies response statuses that should log at error
	// level instead of info. Nil logs every response at info level.
	ErrorStatus func(status int) bool
}

// AccessLog returns the logging middleware at [PriorityAccessLog]. It records
// the start time, invokes the continuation, and logs method, path, resulting
// status (or error) and elapsed duration. The response passes through
// untouched.
func AccessLog(logs *zap.Logger, cfg AccessLogConfig) Middleware {
	return NewMiddlewareWithPriority("logger", PriorityAccessLog,
		func(ctx *Context, next Next) (*Response, error) {
			start := time.Now()

			fields := []zap.Field{
				zap.String("method", string(ctx.Request.Method())),
				zap.String("path", ctx.Request.Path()),
				zap.String("trace_id", ctx.Request.TraceID()),
			}
			if cfg.LogHeaders {
				fields = append(fields, zap.Any("headers", ctx.Request.Headers()))
			}
			if cfg.LogBody {
				fields = append(fields, zap.ByteString("body", ctx.Request.Body()))
			}

			if cfg.LogRequests {
				logs.Info("request started", fields...)
			}

			resp, err := next.Handle(ctx)

			if cfg.LogResponses {
				elapsed := time.Since(start)

				switch {
				case err != nil:
					logs.Error("request failed",
						append(fields, zap.Error(err), zap.Duration("elapsed", elapsed))...)
				case cfg.ErrorStatus != nil && cfg.ErrorStatus(resp.Status()):
					logs.Error("request completed",
						append(fields, zap.Int("status", resp.Status()), zap.Duration("elapsed", elapsed))...)
				default:
					logs.Info("request completed",
						append(fields, zap.Int("status", resp.Status()), zap.Duration("elapsed", elapsed))...)
				}
			}

			return resp, err
		})
}
