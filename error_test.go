package phttp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/phttp"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	err1 := phttp.NewError(phttp.KindInvalidToken, errors.New("foo"))
	require.Equal(t, phttp.KindInvalidToken, err1.Kind())
	require.Equal(t, phttp.KindInvalidToken, phttp.KindOf(err1))
	require.Equal(t, "InvalidToken: foo", err1.Error())

	require.Equal(t, phttp.KindUnknown, phttp.KindOf(errors.New("bar")))
	require.Equal(t, "Unknown: rab", phttp.NewError(phttp.Kind(900), errors.New("rab")).Error())
}

func TestErrorKindOfWrapped(t *testing.T) {
	inner := phttp.Errorf(phttp.KindRouteNotFound, "no route for %s", "GET:/nope")
	wrapped := errors.Wrap(inner, "while dispatching")

	require.Equal(t, phttp.KindRouteNotFound, phttp.KindOf(wrapped))
}

func TestErrorHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusNotFound, phttp.KindRouteNotFound.HTTPStatus())
	require.Equal(t, http.StatusMethodNotAllowed, phttp.KindMethodNotAllowed.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, phttp.KindInvalidToken.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, phttp.KindMarshalFailed.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, phttp.KindUnknown.HTTPStatus())
}

func TestLastError(t *testing.T) {
	phttp.ClearLastError()
	require.NoError(t, phttp.LastError())

	pipe := phttp.NewPipeline()
	pipe.Use(phttp.NewMiddleware("boom", func(*phttp.Context, phttp.Next) (*phttp.Response, error) {
		return nil, phttp.Errorf(phttp.KindInternal, "boom")
	}))

	srv := phttp.Serve(pipe, phttp.NewTestLogger(t))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil)
	srv.ServeHTTP(rec, req)

	require.Equal(t, phttp.KindInternal, phttp.KindOf(phttp.LastError()))

	phttp.ClearLastError()
	require.NoError(t, phttp.LastError())
}
