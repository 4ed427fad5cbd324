package phttp

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Serve adapts a configured pipeline to a standard library http.Handler. The
// surrounding server owns the wire-level concerns (parsing, keep-alive, TLS);
// this bridge only translates between the two request models and guarantees
// that every pipeline error surfaces as a well-formed HTTP response instead
// of crashing the serving goroutine.
func Serve(p *Pipeline, logs Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := FromHTTP(r)
		if err != nil {
			recordLastError(err)
			writeErrorStatus(w, KindOf(err))

			return
		}

		resp, err := p.Execute(NewContext(req))
		if err != nil {
			recordLastError(err)

			kind := KindOf(err)
			if kind.HTTPStatus() >= http.StatusInternalServerError {
				logs.LogUnhandledServeError(err)
			}

			writeErrorStatus(w, kind)

			return
		}

		for key, value := range resp.Headers() {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.Status())

		if _, err := w.Write(resp.Body()); err != nil {
			logs.LogResponseWriteError(err)
		}
	})
}

// FromHTTP translates a standard library request into the pipeline's request
// model. Duplicate query keys and header names are last-write-wins; an
// unrecognized method fails with KindMethodNotAllowed.
func FromHTTP(r *http.Request) (*Request, error) {
	method, err := ParseMethod(r.Method)
	if err != nil {
		return nil, err
	}

	req := NewRequest(method, r.URL.Path)
	req.SetRemoteAddr(r.RemoteAddr)

	for key, vals := range r.URL.Query() {
		req.SetQueryParam(key, vals[len(vals)-1])
	}

	for key, vals := range r.Header {
		req.SetHeader(key, vals[len(vals)-1])
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, NewError(KindInternal, errors.Wrap(err, "read request body"))
	}

	req.SetBody(body)

	return req, nil
}

// writeErrorStatus renders the transport-boundary fallback bodies. Anything
// outside the two routing kinds is a 500-class condition by policy.
func writeErrorStatus(w http.ResponseWriter, kind Kind) {
	switch kind {
	case KindRouteNotFound:
		http.Error(w, "Route not found", http.StatusNotFound)
	case KindMethodNotAllowed:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
