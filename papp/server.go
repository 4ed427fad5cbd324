package papp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/advdv/phttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	// HealthHandler serves the readiness route. Defaults to a plain 200.
	HealthHandler phttp.HandlerFunc
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env     Environment
	Pipe    *phttp.Pipeline
	Logs    *zap.Logger
	Metrics *Metrics
}

// NewServer creates an HTTP server serving the pipeline, with the metrics
// endpoint mounted beside it when enabled.
func NewServer(params ServerParams) *http.Server {
	mux := http.NewServeMux()
	if params.Env.metricsEnabled() {
		mux.Handle("GET /metrics", params.Metrics.Handler())
	}
	mux.Handle("/", phttp.Serve(params.Pipe, newZapServeLogger(params.Logs)))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting server", zap.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}
