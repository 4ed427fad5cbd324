package phttp

import (
	"net/http"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"
	"unsafe"
)

// ForeignFunc is the stable calling convention for route handlers implemented
// outside the Go runtime: three NUL-terminated UTF-8 strings in, one
// NUL-terminated string out. A nil return means "no response".
//
// The argument buffers are owned by the adapter and valid only for the
// duration of the call; the foreign side must not retain them. The result
// buffer becomes owned by the adapter the moment the call returns.
type ForeignFunc func(method, path, body *byte) *byte

// ForeignHandler adapts a [ForeignFunc] to the ordinary [Handler] contract.
type ForeignHandler struct {
	Func ForeignFunc

	// Release frees a result buffer produced by Func. When set, it is
	// invoked exactly once for every non-nil result, on every exit path:
	// successful conversion and decode failure alike. Leave nil for
	// foreign sides whose results need no explicit free.
	Release func(*byte)
}

// Handle implements [Handler]. It marshals method, path and body into the
// foreign calling convention, invokes the handler, and converts the result.
// Invalid UTF-8 or interior NUL bytes on either side are marshalling errors,
// never a panic; a nil result is a KindHandlerNotFound failure.
func (h ForeignHandler) Handle(req *Request) (*Response, error) {
	if h.Func == nil {
		return nil, Errorf(KindNullPointer, "foreign handler for %s %s is nil", req.Method(), req.Path())
	}

	body, err := req.BodyString()
	if err != nil {
		return nil, NewError(KindMarshalFailed, err)
	}

	methodBuf, err := cString(string(req.Method()))
	if err != nil {
		return nil, err
	}
	pathBuf, err := cString(req.Path())
	if err != nil {
		return nil, err
	}
	bodyBuf, err := cString(body)
	if err != nil {
		return nil, err
	}

	result := h.Func(&methodBuf[0], &pathBuf[0], &bodyBuf[0])

	// The argument buffers must stay live until the call has returned.
	runtime.KeepAlive(methodBuf)
	runtime.KeepAlive(pathBuf)
	runtime.KeepAlive(bodyBuf)

	if result == nil {
		return nil, Errorf(KindHandlerNotFound, "foreign handler for %s %s returned no response", req.Method(), req.Path())
	}

	// From here the result is ours: copy it out, then release, whatever
	// the decode outcome.
	text := goBytes(result)
	if h.Release != nil {
		h.Release(result)
	}

	if !utf8.Valid(text) {
		return nil, Errorf(KindMarshalFailed, "invalid UTF-8 in foreign handler response")
	}

	return TextResponse(http.StatusOK, string(text)), nil
}

// cString copies s into a fresh NUL-terminated buffer, rejecting interior NUL
// bytes and invalid UTF-8 so the foreign side always receives valid
// terminated text.
func cString(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, Errorf(KindMarshalFailed, "invalid UTF-8 crossing boundary")
	}
	if strings.IndexByte(s, 0) >= 0 {
		return nil, Errorf(KindMarshalFailed, "interior NUL byte crossing boundary")
	}

	buf := make([]byte, len(s)+1)
	copy(buf, s)

	return buf, nil
}

// goBytes copies the NUL-terminated buffer at p into adapter-owned memory.
func goBytes(p *byte) []byte {
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}

	out := make([]byte, n)
	copy(out, unsafe.Slice(p, n))

	return out
}

// ForeignRegistry maps route keys to foreign handlers. It is populated at
// server start and torn down at shutdown; lookups during dispatch are
// concurrent, so the map is guarded.
type ForeignRegistry struct {
	mu       sync.RWMutex
	handlers map[string]ForeignHandler
}

// NewForeignRegistry inits an empty registry.
func NewForeignRegistry() *ForeignRegistry {
	return &ForeignRegistry{handlers: make(map[string]ForeignHandler)}
}

// Register stores a foreign handler under the route key, replacing any
// previous registration.
func (r *ForeignRegistry) Register(method Method, path string, h ForeignHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[RouteInfo{Method: method, Pattern: path}.Key()] = h
}

// Lookup returns the handler registered under the route key.
func (r *ForeignRegistry) Lookup(method Method, path string) (ForeignHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[RouteInfo{Method: method, Pattern: path}.Key()]

	return h, ok
}

// Remove deletes a registration.
func (r *ForeignRegistry) Remove(method Method, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handlers, RouteInfo{Method: method, Pattern: path}.Key())
}

// Len returns the number of registered foreign handlers.
func (r *ForeignRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}

// Clear tears the registry down.
func (r *ForeignRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = make(map[string]ForeignHandler)
}

// Bind registers a route on the router whose logic is resolved through the
// registry at dispatch time, so removing the registration later turns calls
// into KindHandlerNotFound failures instead of dangling references.
func (r *ForeignRegistry) Bind(router *Router, method Method, path string, h ForeignHandler) error {
	r.Register(method, path, h)

	return r.BindExisting(router, method, path)
}

// BindExisting registers a router route for a key already in the registry.
// The lookup uses the registered pattern, not the concrete request path, so
// parameterized routes resolve to the same registration.
func (r *ForeignRegistry) BindExisting(router *Router, method Method, path string) error {
	return router.RegisterFunc(method, path, func(req *Request) (*Response, error) {
		h, ok := r.Lookup(method, path)
		if !ok {
			return nil, Errorf(KindHandlerNotFound, "no foreign handler for %s %s", method, path)
		}

		return h.Handle(req)
	})
}
