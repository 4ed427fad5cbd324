// Package papptest provides test helpers for papp applications.
//
// It constructs the identical DI graph as [papp.NewApp] but uses
// [fxtest.App] which fails the test immediately on DI errors.
//
// Example:
//
//	papptest.SetBaseEnv(t, 18081)
//	app := papptest.New[TestEnv](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package papptest

import (
	"strconv"
	"testing"

	"github.com/advdv/phttp/papp"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing papp applications.
type App struct {
	*fxtest.App
}

// New creates a test app with the same DI graph as [papp.NewApp].
func New[E papp.Environment](t testing.TB, routing any, opts ...papp.Option) *App {
	return &App{App: fxtest.New(t, papp.FxOptions[E](routing, opts...)...)}
}

// Env provides a chainable builder for overriding [papp.BaseEnvironment] env
// vars via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [papp.BaseEnvironment] env vars to sensible test
// defaults. Port is required because each test must use a unique port to
// avoid collisions.
//
// Defaults:
//   - PHTTP_SERVICE_NAME: "test"
//   - PHTTP_LOG_LEVEL: "error"
//   - PHTTP_TRACING_EXPORTER: "none"
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("PHTTP_PORT", strconv.Itoa(port))
	t.Setenv("PHTTP_SERVICE_NAME", "test")
	t.Setenv("PHTTP_LOG_LEVEL", "error")
	t.Setenv("PHTTP_TRACING_EXPORTER", "none")
	return &Env{t: t}
}

// ServiceName overrides PHTTP_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("PHTTP_SERVICE_NAME", name)
	return e
}

// Auth enables bearer authentication with the given secret.
func (e *Env) Auth(secret string) *Env {
	e.t.Helper()
	e.t.Setenv("PHTTP_AUTH_ENABLED", "true")
	e.t.Setenv("PHTTP_AUTH_SECRET", secret)
	return e
}

// RateLimit enables rate limiting with the given budget.
func (e *Env) RateLimit(maxRequests, windowSeconds int) *Env {
	e.t.Helper()
	e.t.Setenv("PHTTP_RATE_LIMIT_ENABLED", "true")
	e.t.Setenv("PHTTP_RATE_LIMIT_MAX_REQUESTS", strconv.Itoa(maxRequests))
	e.t.Setenv("PHTTP_RATE_LIMIT_WINDOW_SECONDS", strconv.Itoa(windowSeconds))
	return e
}

// Metrics overrides PHTTP_METRICS_ENABLED.
func (e *Env) Metrics(enabled bool) *Env {
	e.t.Helper()
	e.t.Setenv("PHTTP_METRICS_ENABLED", strconv.FormatBool(enabled))
	return e
}
