package papp

import (
	"context"

	"github.com/advdv/phttp"
	"go.uber.org/fx"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom readiness handler. If not set, a default
// handler returning 200 is used.
func WithHealthHandler(h phttp.HandlerFunc) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx
// options. At minimum, it should accept *phttp.Router for route
// registration; *phttp.Reverser and *phttp.ForeignRegistry are provided as
// well. Routing runs before the server starts accepting traffic, which is
// what the pipeline's registration/run phase split requires.
//
// Example:
//
//	papp.NewApp[Env](func(r *phttp.Router, h *Handlers) error {
//	    return r.RegisterFunc(phttp.MethodGet, "/items", h.ListItems)
//	},
//	    papp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// FxOptions returns the complete set of fx options making up the app's
// dependency graph. Test helpers build the identical graph on fxtest.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 16+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(phttp.NewRouter),
		fx.Provide(phttp.NewReverser),
		fx.Provide(phttp.NewForeignRegistry),
		fx.Provide(NewLogger),
		fx.Provide(NewMetrics),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewPipeline),
		fx.Provide(NewServer),
		fx.Invoke(routing),
		fx.Invoke(startServerHook),
	}...)

	return append(baseOpts, cfg.FxOptions...)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(ctx, a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}

// Err reports whether the dependency graph could be constructed.
func (a *App) Err() error {
	return a.app.Err()
}
