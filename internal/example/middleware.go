// Package example implements example middleware in an outside package.
package example

import (
	"fmt"
	"time"

	"github.com/advdv/phttp"
)

// SharedKeyRequestID is where the middleware publishes its identifier for
// later stages and handlers.
const SharedKeyRequestID = "example.request_id"

// RequestID provides an example for middleware that tags each request with an
// identifier and stamps it on whatever response comes back down the chain.
func RequestID(gen func() string) phttp.Middleware {
	return phttp.NewMiddleware("request_id", func(ctx *phttp.Context, next phttp.Next) (*phttp.Response, error) {
		id := gen()
		ctx.Set(SharedKeyRequestID, id)

		resp, err := next.Handle(ctx)
		if err != nil {
			return nil, err
		}

		resp.SetHeader("X-Request-Id", id)

		return resp, nil
	})
}

// Timing provides an example for middleware that observes how long the rest
// of the chain took, without altering the outcome.
func Timing(observe func(method phttp.Method, path string, took time.Duration)) phttp.Middleware {
	return phttp.NewMiddleware("timing", func(ctx *phttp.Context, next phttp.Next) (*phttp.Response, error) {
		start := time.Now()

		resp, err := next.Handle(ctx)
		observe(ctx.Request.Method(), ctx.Request.Path(), time.Since(start))

		return resp, err
	})
}

// Teapot provides an example for middleware that short-circuits: requests for
// coffee never reach the router.
func Teapot() phttp.Middleware {
	return phttp.NewMiddleware("teapot", func(ctx *phttp.Context, _ phttp.Next) (*phttp.Response, error) {
		if ctx.Request.Path() != "/coffee" {
			return nil, nil
		}

		return phttp.TextResponse(418, fmt.Sprintf("no coffee at %s", ctx.Request.Path())), nil
	})
}
