package phttp

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Method enumerates the HTTP verbs the pipeline accepts.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// ParseMethod parses a method string case-insensitively. Unrecognized verbs
// return a KindMethodNotAllowed error so the transport bridge can answer 405.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(s)); m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions:
		return m, nil
	default:
		return "", Errorf(KindMethodNotAllowed, "unknown HTTP method: %s", s)
	}
}

func (m Method) String() string { return string(m) }

// Request is the value describing one inbound HTTP request. It is owned by a
// single pipeline execution; handlers receive a mutable view for the duration
// of their call only.
type Request struct {
	method      Method
	path        string
	remoteAddr  string
	queryParams map[string]string
	headers     map[string]string
	pathParams  map[string]string
	userData    map[string]string
	body        []byte
	startTime   time.Time
	traceID     string
}

// NewRequest constructs a request with a fresh trace identifier and creation
// timestamp.
func NewRequest(method Method, path string) *Request {
	return &Request{
		method:      method,
		path:        path,
		queryParams: make(map[string]string),
		headers:     make(map[string]string),
		userData:    make(map[string]string),
		startTime:   time.Now(),
		traceID:     uuid.NewString(),
	}
}

func (r *Request) Method() Method       { return r.method }
func (r *Request) Path() string         { return r.path }
func (r *Request) Body() []byte         { return r.body }
func (r *Request) StartTime() time.Time { return r.startTime }
func (r *Request) TraceID() string      { return r.traceID }
func (r *Request) RemoteAddr() string   { return r.remoteAddr }

func (r *Request) SetBody(body []byte)       { r.body = body }
func (r *Request) SetRemoteAddr(addr string) { r.remoteAddr = addr }

// SetHeader stores a header as provided: no case normalization, duplicate
// keys are last-write-wins.
func (r *Request) SetHeader(key, value string) { r.headers[key] = value }

// Header returns the header value for key and whether it was present.
func (r *Request) Header(key string) (string, bool) {
	v, ok := r.headers[key]
	return v, ok
}

// Headers exposes the underlying header map for iteration.
func (r *Request) Headers() map[string]string { return r.headers }

// SetQueryParam stores a query parameter, last-write-wins on duplicates.
func (r *Request) SetQueryParam(key, value string) { r.queryParams[key] = value }

func (r *Request) QueryParam(key string) (string, bool) {
	v, ok := r.queryParams[key]
	return v, ok
}

// SetUserData stores a free-form value for handler-to-handler signaling.
func (r *Request) SetUserData(key, value string) { r.userData[key] = value }

func (r *Request) UserData(key string) (string, bool) {
	v, ok := r.userData[key]
	return v, ok
}

// Param returns a path parameter bound by the router during dispatch, e.g.
// "id" for a route registered as "/users/:id".
func (r *Request) Param(name string) (string, bool) {
	v, ok := r.pathParams[name]
	return v, ok
}

func (r *Request) setPathParams(params map[string]string) { r.pathParams = params }

// BodyString returns the body as text, failing with KindInvalidInput when the
// body is not valid UTF-8. Cross-boundary handlers require valid text, so the
// conversion is strict rather than lossy.
func (r *Request) BodyString() (string, error) {
	if !utf8.Valid(r.body) {
		return "", Errorf(KindInvalidInput, "invalid UTF-8 in request body")
	}

	return string(r.body), nil
}
