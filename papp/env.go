package papp

import (
	"time"

	intervalexpr "github.com/MawKKe/integer-interval-expressions-go"
	"github.com/advdv/phttp"
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must
// implement. Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	logLevel() zapcore.Level
	accessLog() (phttp.AccessLogConfig, error)
	corsEnabled() bool
	cors() phttp.CORSConfig
	authEnabled() bool
	auth() phttp.AuthConfig
	rateLimitEnabled() bool
	rateLimit() phttp.RateLimitConfig
	metricsEnabled() bool
	tracingExporter() string
}

// BaseEnvironment contains the recognized environment variables. Embed this
// in your custom environment struct.
type BaseEnvironment struct {
	Port        int           `env:"PHTTP_PORT,required"`
	ServiceName string        `env:"PHTTP_SERVICE_NAME" envDefault:"phttp"`
	LogLevel    zapcore.Level `env:"PHTTP_LOG_LEVEL" envDefault:"info"`

	LogRequests  bool `env:"PHTTP_LOG_REQUESTS" envDefault:"false"`
	LogResponses bool `env:"PHTTP_LOG_RESPONSES" envDefault:"true"`
	LogHeaders   bool `env:"PHTTP_LOG_HEADERS" envDefault:"false"`
	LogBody      bool `env:"PHTTP_LOG_BODY" envDefault:"false"`

	// LogErrorStatuses is an integer interval expression (e.g. "500-599" or
	// "429,500-") selecting the response statuses logged at error level.
	LogErrorStatuses string `env:"PHTTP_LOG_ERROR_STATUSES" envDefault:"500-599"`

	CORSEnabled        bool   `env:"PHTTP_CORS_ENABLED" envDefault:"true"`
	CORSAllowedOrigins string `env:"PHTTP_CORS_ALLOWED_ORIGINS" envDefault:"*"`
	CORSAllowedMethods string `env:"PHTTP_CORS_ALLOWED_METHODS"`
	CORSAllowedHeaders string `env:"PHTTP_CORS_ALLOWED_HEADERS"`
	CORSMaxAge         int    `env:"PHTTP_CORS_MAX_AGE" envDefault:"86400"`

	AuthEnabled    bool     `env:"PHTTP_AUTH_ENABLED" envDefault:"false"`
	AuthSecret     string   `env:"PHTTP_AUTH_SECRET"`
	AuthSkipPaths  []string `env:"PHTTP_AUTH_SKIP_PATHS" envDefault:"/health,/login"`
	AuthHeaderName string   `env:"PHTTP_AUTH_HEADER_NAME" envDefault:"Authorization"`

	RateLimitEnabled       bool `env:"PHTTP_RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitMaxRequests   int  `env:"PHTTP_RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitWindowSeconds int  `env:"PHTTP_RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitByUser        bool `env:"PHTTP_RATE_LIMIT_BY_USER" envDefault:"false"`

	MetricsEnabled  bool   `env:"PHTTP_METRICS_ENABLED" envDefault:"true"`
	TracingExporter string `env:"PHTTP_TRACING_EXPORTER" envDefault:"stdout"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) accessLog() (phttp.AccessLogConfig, error) {
	if err := ValidateErrorStatuses(e.LogErrorStatuses, DefaultRequiredErrorStatuses...); err != nil {
		return phttp.AccessLogConfig{}, err
	}

	// Validated above, cannot fail here.
	expr, _ := intervalexpr.ParseExpression(e.LogErrorStatuses)

	return phttp.AccessLogConfig{
		LogRequests:  e.LogRequests,
		LogResponses: e.LogResponses,
		LogHeaders:   e.LogHeaders,
		LogBody:      e.LogBody,
		ErrorStatus:  expr.Matches,
	}, nil
}

func (e BaseEnvironment) corsEnabled() bool {
	return e.CORSEnabled
}

func (e BaseEnvironment) cors() phttp.CORSConfig {
	return phttp.CORSConfig{
		AllowedOrigins: e.CORSAllowedOrigins,
		AllowedMethods: e.CORSAllowedMethods,
		AllowedHeaders: e.CORSAllowedHeaders,
		MaxAge:         e.CORSMaxAge,
	}
}

func (e BaseEnvironment) authEnabled() bool {
	return e.AuthEnabled
}

func (e BaseEnvironment) auth() phttp.AuthConfig {
	return phttp.AuthConfig{
		Secret:     e.AuthSecret,
		SkipPaths:  e.AuthSkipPaths,
		HeaderName: e.AuthHeaderName,
	}
}

func (e BaseEnvironment) rateLimitEnabled() bool {
	return e.RateLimitEnabled
}

func (e BaseEnvironment) rateLimit() phttp.RateLimitConfig {
	return phttp.RateLimitConfig{
		MaxRequests: e.RateLimitMaxRequests,
		Window:      time.Duration(e.RateLimitWindowSeconds) * time.Second,
		LimitByUser: e.RateLimitByUser,
	}
}

func (e BaseEnvironment) metricsEnabled() bool {
	return e.MetricsEnabled
}

func (e BaseEnvironment) tracingExporter() string {
	return e.TracingExporter
}

var _ Environment = BaseEnvironment{}

// DefaultRequiredErrorStatuses lists the statuses every deployment must
// classify at error level. The transport bridge answers 500 for any chain
// error, so at minimum those responses must not be logged as routine.
var DefaultRequiredErrorStatuses = []int{500}

// ValidateErrorStatuses checks that expr is a parseable integer interval
// expression covering every required status code.
func ValidateErrorStatuses(expr string, required ...int) error {
	parsed, err := intervalexpr.ParseExpression(expr)
	if err != nil {
		return errors.Wrapf(err, "failed to parse error status expression %q", expr)
	}

	var missing []int
	for _, code := range required {
		if !parsed.Matches(code) {
			missing = append(missing, code)
		}
	}

	if len(missing) > 0 {
		return errors.Newf("error status expression %q missing: %v, recommended value: %q",
			expr, missing, "500-599")
	}

	return nil
}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
