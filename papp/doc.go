// Package papp provides a batteries-included application layer around the
// phttp core: configuration from the environment, zap logging, prometheus
// metrics, OpenTelemetry tracing and an fx-managed http.Server lifecycle.
//
// A minimal application declares its environment and a routing function:
//
//	type Env struct{ papp.BaseEnvironment }
//
//	papp.NewApp[Env](func(r *phttp.Router) error {
//	    return r.RegisterFunc(phttp.MethodGet, "/items", listItems)
//	}).Run()
package papp
