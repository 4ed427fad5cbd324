package papp

import (
	"net/http"

	"github.com/advdv/phttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Priorities of the app-layer middleware. They run before everything the
// core ships so every traversal is measured and traced.
const (
	PriorityMetrics = 1
	PriorityTracing = 2
)

// HealthPath is where the default readiness route is registered.
const HealthPath = "/health"

// PipelineParams holds the dependencies for assembling the middleware chain.
type PipelineParams struct {
	fx.In

	Env        Environment
	Logs       *zap.Logger
	Router     *phttp.Router
	Metrics    *Metrics
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
	Cfg        ServerConfig
}

// NewPipeline assembles the middleware chain from the environment: metrics
// and tracing first, then access logging, then the enabled built-ins, then
// the router as terminal stage. It also registers the readiness route unless
// the application already claimed the path.
func NewPipeline(params PipelineParams) (*phttp.Pipeline, error) {
	logCfg, err := params.Env.accessLog()
	if err != nil {
		return nil, err
	}

	pipe := phttp.NewPipeline()

	if params.Env.metricsEnabled() {
		pipe.Use(params.Metrics.Middleware())
	}

	pipe.Use(Tracing(params.TracerProv, params.Propagator, HealthPath))
	pipe.Use(phttp.AccessLog(params.Logs.Named("access"), logCfg))

	if params.Env.corsEnabled() {
		pipe.Use(phttp.CORS(params.Env.cors()))
	}
	if params.Env.rateLimitEnabled() {
		pipe.Use(phttp.RateLimit(params.Env.rateLimit()))
	}
	if params.Env.authEnabled() {
		pipe.Use(phttp.Auth(params.Env.auth()))
	}

	if !params.Router.Has(phttp.MethodGet, HealthPath) {
		health := params.Cfg.HealthHandler
		if health == nil {
			health = defaultHealthHandler
		}

		if err := params.Router.RegisterFunc(phttp.MethodGet, HealthPath, health); err != nil {
			return nil, err
		}
	}

	pipe.UseRouter(params.Router)

	return pipe, nil
}

func defaultHealthHandler(*phttp.Request) (*phttp.Response, error) {
	return phttp.TextResponse(http.StatusOK, "ok"), nil
}
