package phttp

import (
	"net/http"
	"strconv"
	"unicode/utf8"
)

// Response is the value a handler or short-circuiting middleware produces.
// Once returned it is treated as immutable by earlier stages, except for
// header additions via [Response.SetHeader].
type Response struct {
	status  int
	headers map[string]string
	body    []byte
}

// NewResponse constructs an empty response with the given status code.
func NewResponse(status int) *Response {
	return &Response{
		status:  status,
		headers: make(map[string]string),
	}
}

func (r *Response) Status() int { return r.status }

// ReasonPhrase returns the canonical reason phrase for the response status,
// or "Unknown" for codes outside the standard registry.
func (r *Response) ReasonPhrase() string {
	if s := http.StatusText(r.status); s != "" {
		return s
	}
	return "Unknown"
}

func (r *Response) Body() []byte { return r.body }

// SetHeader stores a header, last-write-wins on duplicate keys.
func (r *Response) SetHeader(key, value string) { r.headers[key] = value }

func (r *Response) Header(key string) (string, bool) {
	v, ok := r.headers[key]
	return v, ok
}

// Headers exposes the underlying header map for iteration.
func (r *Response) Headers() map[string]string { return r.headers }

// BodyString returns the body as text, failing with KindInvalidInput when it
// is not valid UTF-8.
func (r *Response) BodyString() (string, error) {
	if !utf8.Valid(r.body) {
		return "", Errorf(KindInvalidInput, "invalid UTF-8 in response body")
	}

	return string(r.body), nil
}

// ResponseBuilder provides fluent construction of responses.
type ResponseBuilder struct {
	resp *Response
}

// NewResponseBuilder starts building a response with the given status.
func NewResponseBuilder(status int) *ResponseBuilder {
	return &ResponseBuilder{resp: NewResponse(status)}
}

// Body sets a raw byte body.
func (b *ResponseBuilder) Body(body []byte) *ResponseBuilder {
	b.resp.body = body
	return b
}

// Text sets a plain-text body.
func (b *ResponseBuilder) Text(text string) *ResponseBuilder {
	b.resp.body = []byte(text)
	return b
}

// JSON sets a JSON body and the matching Content-Type header.
func (b *ResponseBuilder) JSON(doc string) *ResponseBuilder {
	b.resp.body = []byte(doc)
	b.resp.SetHeader("Content-Type", "application/json")
	return b
}

// HTML sets an HTML body and the matching Content-Type header.
func (b *ResponseBuilder) HTML(doc string) *ResponseBuilder {
	b.resp.body = []byte(doc)
	b.resp.SetHeader("Content-Type", "text/html")
	return b
}

// Header adds a response header.
func (b *ResponseBuilder) Header(key, value string) *ResponseBuilder {
	b.resp.SetHeader(key, value)
	return b
}

// Build returns the constructed response.
func (b *ResponseBuilder) Build() *Response {
	return b.resp
}

// TextResponse is shorthand for a plain-text response.
func TextResponse(status int, text string) *Response {
	return NewResponseBuilder(status).Text(text).Build()
}

// JSONResponse is shorthand for a JSON response with Content-Type set.
func JSONResponse(status int, doc string) *Response {
	return NewResponseBuilder(status).JSON(doc).Build()
}

// jsonError renders the uniform error body used by the built-in middleware.
func jsonError(status int, msg string) *Response {
	return JSONResponse(status, `{"error": `+strconv.Quote(msg)+`}`)
}
