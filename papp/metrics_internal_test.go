package papp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/phttp"
	"github.com/stretchr/testify/require"
)

func metricsPipeline(t *testing.T, m *Metrics) *phttp.Pipeline {
	t.Helper()

	router := phttp.NewRouter()
	require.NoError(t, router.RegisterFunc(phttp.MethodGet, "/ok",
		func(*phttp.Request) (*phttp.Response, error) {
			return phttp.TextResponse(200, "ok"), nil
		}))
	require.NoError(t, router.RegisterFunc(phttp.MethodGet, "/denied",
		func(*phttp.Request) (*phttp.Response, error) {
			return phttp.NewResponse(http.StatusTooManyRequests), nil
		}))

	pipe := phttp.NewPipeline()
	pipe.Use(m.Middleware())
	pipe.UseRouter(router)

	return pipe
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	return rec.Body.String()
}

func TestMetricsCountsRequests(t *testing.T) {
	m := NewMetrics()
	pipe := metricsPipeline(t, m)

	for i := 0; i < 3; i++ {
		_, err := pipe.Execute(phttp.NewContext(phttp.NewRequest(phttp.MethodGet, "/ok")))
		require.NoError(t, err)
	}

	body := scrape(t, m)
	require.Contains(t, body, `http_requests_total{method="GET",status="200"} 3`)
	require.Contains(t, body, "http_request_duration_seconds")
}

func TestMetricsCountsErrorsUnderBridgeStatus(t *testing.T) {
	m := NewMetrics()

	pipe := phttp.NewPipeline()
	pipe.Use(m.Middleware())
	pipe.Use(phttp.NewMiddleware("boom", func(*phttp.Context, phttp.Next) (*phttp.Response, error) {
		return nil, phttp.Errorf(phttp.KindRouteNotFound, "nope")
	}))

	_, err := pipe.Execute(phttp.NewContext(phttp.NewRequest(phttp.MethodGet, "/x")))
	require.Error(t, err)

	require.Contains(t, scrape(t, m), `http_requests_total{method="GET",status="404"} 1`)
}

func TestMetricsCountsRateLimitDenials(t *testing.T) {
	m := NewMetrics()
	pipe := metricsPipeline(t, m)

	_, err := pipe.Execute(phttp.NewContext(phttp.NewRequest(phttp.MethodGet, "/denied")))
	require.NoError(t, err)

	require.Contains(t, scrape(t, m), "http_requests_rate_limited_total 1")
}
