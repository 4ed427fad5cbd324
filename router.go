package phttp

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Handler is the contract for route logic: a request in, a response or an
// error out. Native handlers and cross-boundary handlers both satisfy it.
type Handler interface {
	Handle(req *Request) (*Response, error)
}

// HandlerFunc allows casting a function to an implementation of [Handler].
type HandlerFunc func(*Request) (*Response, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc) Handle(req *Request) (*Response, error) {
	return f(req)
}

// RouteInfo identifies a registered route.
type RouteInfo struct {
	Method  Method
	Pattern string
}

// Key returns the canonical "METHOD:PATH" route key.
func (ri RouteInfo) Key() string {
	return string(ri.Method) + ":" + ri.Pattern
}

// ErrDuplicateRoute is returned when registering a route key that already
// exists in the router.
var ErrDuplicateRoute = errors.New("route already exists")

// Router dispatches (method, path) pairs to handlers. Patterns are matched
// exactly, segment for segment; a segment starting with ':' binds the
// corresponding literal path segment as a parameter. There is no wildcard or
// greedy matching and no trailing-slash normalization.
//
// All registration and administration methods mutate the route table and must
// complete before the router serves traffic; they are not safe to call
// concurrently with [Router.Dispatch].
type Router struct {
	routes map[string]Handler
	info   []RouteInfo
}

// NewRouter inits an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]Handler)}
}

// Register adds a handler under the exact (method, pattern) key, failing with
// [ErrDuplicateRoute] if the key is already taken.
func (r *Router) Register(method Method, pattern string, handler Handler) error {
	info := RouteInfo{Method: method, Pattern: pattern}
	if _, exists := r.routes[info.Key()]; exists {
		return errors.Wrapf(ErrDuplicateRoute, "%s", info.Key())
	}

	r.routes[info.Key()] = handler
	r.info = append(r.info, info)

	return nil
}

// RegisterFunc is shorthand for Register with a plain function.
func (r *Router) RegisterFunc(method Method, pattern string, handler HandlerFunc) error {
	return r.Register(method, pattern, handler)
}

// Dispatch resolves the request to a handler and invokes it. The handler's
// own error propagates unchanged; only an unresolvable route yields a
// KindRouteNotFound error. A parameterized match binds its path parameters
// onto the request before the handler runs.
func (r *Router) Dispatch(req *Request) (*Response, error) {
	key := string(req.Method()) + ":" + req.Path()
	if handler, ok := r.routes[key]; ok {
		return handler.Handle(req)
	}

	for _, info := range r.info {
		if info.Method != req.Method() || !strings.Contains(info.Pattern, ":") {
			continue
		}

		if params, ok := MatchPattern(info.Pattern, req.Path()); ok {
			req.setPathParams(params)
			return r.routes[info.Key()].Handle(req)
		}
	}

	return nil, Errorf(KindRouteNotFound, "no route for %s", key)
}

// MatchPattern matches path against a ':param' pattern. The segment counts
// must be equal; ':' segments bind, all others must match literally.
func MatchPattern(pattern, path string) (map[string]string, bool) {
	patternSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")

	if len(patternSegs) != len(pathSegs) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range patternSegs {
		switch {
		case strings.HasPrefix(seg, ":"):
			params[seg[1:]] = pathSegs[i]
		case seg != pathSegs[i]:
			return nil, false
		}
	}

	return params, true
}

// Remove deletes a registered route, failing with a KindRouteNotFound error
// when the key does not exist. Administrative; not safe during dispatch.
func (r *Router) Remove(method Method, pattern string) error {
	info := RouteInfo{Method: method, Pattern: pattern}
	if _, ok := r.routes[info.Key()]; !ok {
		return Errorf(KindRouteNotFound, "no route for %s", info.Key())
	}

	delete(r.routes, info.Key())
	r.info = deleteRouteInfo(r.info, info.Key())

	return nil
}

func deleteRouteInfo(infos []RouteInfo, key string) []RouteInfo {
	kept := infos[:0]
	for _, info := range infos {
		if info.Key() != key {
			kept = append(kept, info)
		}
	}

	return kept
}

// Has reports whether the exact (method, pattern) key is registered.
func (r *Router) Has(method Method, pattern string) bool {
	_, ok := r.routes[RouteInfo{Method: method, Pattern: pattern}.Key()]
	return ok
}

// Len returns the number of registered routes.
func (r *Router) Len() int { return len(r.routes) }

// Clear removes all routes. Administrative; not safe during dispatch.
func (r *Router) Clear() {
	r.routes = make(map[string]Handler)
	r.info = nil
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, len(r.info))
	copy(out, r.info)

	return out
}

// SupportedMethods returns, in verb declaration order, the methods that have
// a route registered for the exact pattern.
func (r *Router) SupportedMethods(pattern string) []Method {
	all := []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions}

	var supported []Method
	for _, m := range all {
		if r.Has(m, pattern) {
			supported = append(supported, m)
		}
	}

	return supported
}
