package phttp

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Shared-data keys the auth middleware stores on success. Any later stage may
// read (or clobber) them.
const (
	SharedKeyAuthenticated = "authenticated"
	SharedKeyToken         = "token"
)

// TokenValidator is the pluggable validation strategy of the auth middleware.
// A nil return means the token is valid; the error is diagnostic only and
// never reaches the client verbatim.
type TokenValidator func(token, secret string) error

// LengthValidator accepts any non-empty token longer than min bytes. This is
// a placeholder policy, not real JWT verification; production deployments
// plug in their own [TokenValidator].
func LengthValidator(min int) TokenValidator {
	return func(token, _ string) error {
		if len(token) <= min {
			return errors.Newf("token shorter than %d bytes", min+1)
		}

		return nil
	}
}

// AuthConfig is the recognized configuration surface of the auth middleware.
type AuthConfig struct {
	// Secret is handed to the validator; the middleware itself does not
	// interpret it.
	Secret string

	// SkipPaths lists path prefixes that bypass authentication. Defaults
	// to /health and /login.
	SkipPaths []string

	// HeaderName carries the bearer token. Defaults to Authorization.
	HeaderName string

	// Validator decides token validity. Defaults to LengthValidator(10).
	Validator TokenValidator
}

// Auth returns the bearer-token middleware at [PriorityAuth]. Requests whose
// path matches a skip prefix pass straight through. Otherwise a missing or
// invalid token short-circuits with a 401 JSON response; a valid one stores
// the authenticated flag and the token in shared context data before
// continuing.
func Auth(cfg AuthConfig) Middleware {
	if cfg.SkipPaths == nil {
		cfg.SkipPaths = []string{"/health", "/login"}
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = "Authorization"
	}
	if cfg.Validator == nil {
		cfg.Validator = LengthValidator(10)
	}

	return NewMiddlewareWithPriority("auth", PriorityAuth,
		func(ctx *Context, next Next) (*Response, error) {
			path := ctx.Request.Path()
			for _, skip := range cfg.SkipPaths {
				if strings.HasPrefix(path, skip) {
					return next.Handle(ctx)
				}
			}

			token, ok := extractToken(ctx.Request, cfg.HeaderName)
			if !ok {
				return jsonError(http.StatusUnauthorized, "missing authorization token"), nil
			}

			if err := cfg.Validator(token, cfg.Secret); err != nil {
				return jsonError(http.StatusUnauthorized, "invalid authorization token"), nil
			}

			ctx.Set(SharedKeyAuthenticated, "true")
			ctx.Set(SharedKeyToken, token)

			return next.Handle(ctx)
		})
}

// extractToken reads the configured header, stripping a "Bearer " prefix if
// present.
func extractToken(req *Request, header string) (string, bool) {
	value, ok := req.Header(header)
	if !ok || value == "" {
		return "", false
	}

	return strings.TrimPrefix(value, "Bearer "), true
}
