package phttp

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig is the recognized configuration surface of the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins is a comma-separated allow-list. A single "*" allows
	// any origin; otherwise request origins must match an entry exactly.
	AllowedOrigins string

	AllowedMethods   string
	AllowedHeaders   string
	MaxAge           int
	AllowCredentials bool
	ExposeHeaders    string
}

// CORS returns the CORS middleware at [PriorityCORS].
//
// OPTIONS requests from an allowed origin short-circuit with 204 and the full
// preflight header set. Other methods proceed through the chain and get
// Access-Control-Allow-Origin stamped onto whatever response emerges. An
// origin that fails the allow-list check short-circuits with 403 instead.
func CORS(cfg CORSConfig) Middleware {
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "*"
	}
	if cfg.AllowedMethods == "" {
		cfg.AllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	if cfg.AllowedHeaders == "" {
		cfg.AllowedHeaders = "Content-Type, Authorization"
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 86400
	}

	return NewMiddlewareWithPriority("cors", PriorityCORS,
		func(ctx *Context, next Next) (*Response, error) {
			origin, _ := ctx.Request.Header("Origin")

			value, allowed := resolveOrigin(cfg.AllowedOrigins, origin)
			if !allowed {
				return jsonError(http.StatusForbidden, "origin not allowed"), nil
			}

			if ctx.Request.Method() == MethodOptions {
				resp := NewResponse(http.StatusNoContent)
				resp.SetHeader("Access-Control-Allow-Origin", value)
				resp.SetHeader("Access-Control-Allow-Methods", cfg.AllowedMethods)
				resp.SetHeader("Access-Control-Allow-Headers", cfg.AllowedHeaders)
				resp.SetHeader("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				stampOptional(resp, cfg)

				return resp, nil
			}

			resp, err := next.Handle(ctx)
			if err != nil {
				return nil, err
			}

			resp.SetHeader("Access-Control-Allow-Origin", value)
			stampOptional(resp, cfg)

			return resp, nil
		})
}

func stampOptional(resp *Response, cfg CORSConfig) {
	if cfg.AllowCredentials {
		resp.SetHeader("Access-Control-Allow-Credentials", "true")
	}
	if cfg.ExposeHeaders != "" {
		resp.SetHeader("Access-Control-Expose-Headers", cfg.ExposeHeaders)
	}
}

// resolveOrigin decides whether origin passes the allow-list and which value
// to stamp. A request without an Origin header passes with the configured
// list verbatim.
func resolveOrigin(allowList, origin string) (string, bool) {
	if allowList == "*" {
		return "*", true
	}

	if origin == "" {
		return allowList, true
	}

	for _, entry := range strings.Split(allowList, ",") {
		if strings.TrimSpace(entry) == origin {
			return origin, true
		}
	}

	return "", false
}
