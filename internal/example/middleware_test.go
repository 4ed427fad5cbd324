package example_test

import (
	"testing"
	"time"

	"github.com/advdv/phttp"
	"github.com/advdv/phttp/internal/example"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	router := phttp.NewRouter()
	require.NoError(t, router.RegisterFunc(phttp.MethodGet, "/",
		func(*phttp.Request) (*phttp.Response, error) {
			return phttp.TextResponse(200, "ok"), nil
		}))

	pipe := phttp.NewPipeline()
	pipe.Use(example.RequestID(func() string { return "req-1" }))
	pipe.UseRouter(router)

	ctx := phttp.NewContext(phttp.NewRequest(phttp.MethodGet, "/"))
	resp, err := pipe.Execute(ctx)
	require.NoError(t, err)

	id, _ := resp.Header("X-Request-Id")
	require.Equal(t, "req-1", id)

	shared, _ := ctx.Get(example.SharedKeyRequestID)
	require.Equal(t, "req-1", shared)
}

func TestTimingAndTeapot(t *testing.T) {
	observed := time.Duration(-1)

	pipe := phttp.NewPipeline()
	pipe.Use(example.Timing(func(_ phttp.Method, _ string, took time.Duration) {
		observed = took
	}))
	pipe.Use(example.Teapot())

	resp, err := pipe.Execute(phttp.NewContext(phttp.NewRequest(phttp.MethodGet, "/coffee")))
	require.NoError(t, err)
	require.Equal(t, 418, resp.Status())
	require.GreaterOrEqual(t, observed, time.Duration(0))

	resp, err = pipe.Execute(phttp.NewContext(phttp.NewRequest(phttp.MethodGet, "/tea")))
	require.NoError(t, err)
	require.Equal(t, 200, resp.Status())
}
