package phttp_test

import (
	"net/http"
	"testing"

	"github.com/advdv/phttp"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func authPipeline(cfg phttp.AuthConfig) *phttp.Pipeline {
	router := phttp.NewRouter()
	_ = router.RegisterFunc(phttp.MethodGet, "/secure", func(req *phttp.Request) (*phttp.Response, error) {
		return phttp.TextResponse(200, "secret"), nil
	})
	_ = router.RegisterFunc(phttp.MethodGet, "/health", echoHandler("healthy"))

	pipe := phttp.NewPipeline()
	pipe.Use(phttp.Auth(cfg))
	pipe.UseRouter(router)

	return pipe
}

func TestAuthMissingToken(t *testing.T) {
	pipe := authPipeline(phttp.AuthConfig{})

	resp, err := pipe.Execute(phttp.NewContext(phttp.NewRequest(phttp.MethodGet, "/secure")))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.Status())
	require.Equal(t, "missing authorization token", gjson.GetBytes(resp.Body(), "error").String())
}

func TestAuthInvalidToken(t *testing.T) {
	pipe := authPipeline(phttp.AuthConfig{})

	req := phttp.NewRequest(phttp.MethodGet, "/secure")
	req.SetHeader("Authorization", "Bearer short")

	resp, err := pipe.Execute(phttp.NewContext(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.Status())
	require.Equal(t, "invalid authorization token", gjson.GetBytes(resp.Body(), "error").String())
}

func TestAuthValidToken(t *testing.T) {
	router := phttp.NewRouter()
	require.NoError(t, router.RegisterFunc(phttp.MethodGet, "/secure", echoHandler("secret")))

	var seenAuth, seenToken string

	pipe := phttp.NewPipeline()
	pipe.Use(phttp.Auth(phttp.AuthConfig{}))
	pipe.Use(phttp.NewMiddleware("observe", func(ctx *phttp.Context, _ phttp.Next) (*phttp.Response, error) {
		seenAuth, _ = ctx.Get(phttp.SharedKeyAuthenticated)
		seenToken, _ = ctx.Get(phttp.SharedKeyToken)

		return nil, nil
	}))
	pipe.UseRouter(router)

	req := phttp.NewRequest(phttp.MethodGet, "/secure")
	req.SetHeader("Authorization", "Bearer long-enough-token")

	resp, err := pipe.Execute(phttp.NewContext(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status())
	require.Equal(t, "true", seenAuth)
	require.Equal(t, "long-enough-token", seenToken)
}

func TestAuthSkipPaths(t *testing.T) {
	pipe := authPipeline(phttp.AuthConfig{})

	resp, err := pipe.Execute(phttp.NewContext(phttp.NewRequest(phttp.MethodGet, "/health")))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status())
	require.Equal(t, "healthy", string(resp.Body()))
}

func TestAuthCustomValidator(t *testing.T) {
	pipe := authPipeline(phttp.AuthConfig{
		Secret: "s3cret",
		Validator: func(token, secret string) error {
			if token != secret {
				return errors.New("mismatch")
			}

			return nil
		},
	})

	req := phttp.NewRequest(phttp.MethodGet, "/secure")
	req.SetHeader("Authorization", "Bearer s3cret")

	resp, err := pipe.Execute(phttp.NewContext(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status())

	req = phttp.NewRequest(phttp.MethodGet, "/secure")
	req.SetHeader("Authorization", "Bearer wrong")

	resp, err = pipe.Execute(phttp.NewContext(req))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.Status())
}

func TestLengthValidator(t *testing.T) {
	validate := phttp.LengthValidator(10)
	require.Error(t, validate("", ""))
	require.Error(t, validate("tencharss!", ""))
	require.NoError(t, validate("elevenchars", ""))
}
