package phttp

import (
	"net/http"
	"sort"
	"sync/atomic"

	"github.com/samber/lo"
)

// Default priorities of the built-in middleware. Lower runs earlier; the
// router stage runs last.
const (
	PriorityAccessLog = 5
	PriorityCORS      = 10
	PriorityRateLimit = 15
	PriorityAuth      = 20

	// PriorityRateLimitByUser places a user-keyed limiter after auth, which
	// must have stored the token in shared data before the key is derived.
	PriorityRateLimitByUser = 25

	PriorityDefault = 100
	PriorityRouter  = 1 << 20
)

// Middleware is one stage of the pipeline. Process receives the mutable
// per-request context and a continuation representing the remainder of the
// chain, and produces one of three outcomes:
//
//   - (nil, nil): Continue. The runner executes the remainder of the chain
//     itself; use this when the stage has nothing further to add. Do not
//     return (nil, nil) after invoking next, or the remainder runs twice —
//     return next's outcome instead.
//   - (resp, nil): short-circuit with resp, skipping every later stage
//     including the router. A stage that called next first may transform the
//     inner outcome this way, e.g. to add a response header.
//   - (nil, err): abort the chain; the error propagates to the caller of
//     Execute without any further stage running.
type Middleware interface {
	// Name identifies the middleware in diagnostics. Uniqueness is
	// conventional, not enforced.
	Name() string

	// Priority orders the chain, lower first. Equal priorities keep
	// registration order.
	Priority() int

	Process(ctx *Context, next Next) (*Response, error)
}

// ProcessFunc is the signature of a middleware processing function.
type ProcessFunc func(ctx *Context, next Next) (*Response, error)

type funcMiddleware struct {
	name     string
	priority int
	process  ProcessFunc
}

// NewMiddleware wraps a plain function as a [Middleware] with the default
// priority.
func NewMiddleware(name string, process ProcessFunc) Middleware {
	return funcMiddleware{name: name, priority: PriorityDefault, process: process}
}

// NewMiddlewareWithPriority wraps a plain function as a [Middleware] with an
// explicit priority.
func NewMiddlewareWithPriority(name string, priority int, process ProcessFunc) Middleware {
	return funcMiddleware{name: name, priority: priority, process: process}
}

func (m funcMiddleware) Name() string  { return m.name }
func (m funcMiddleware) Priority() int { return m.priority }

func (m funcMiddleware) Process(ctx *Context, next Next) (*Response, error) {
	return m.process(ctx, next)
}

// Next is the continuation handed to each stage: a cursor into the sorted
// chain rather than a per-call closure, so invoking the remainder is a plain
// in-stack call with no allocation.
type Next struct {
	p     *Pipeline
	index int
}

// Handle executes the remainder of the chain and returns its outcome.
func (n Next) Handle(ctx *Context) (*Response, error) {
	return n.p.runFrom(n.index, ctx)
}

// Pipeline is the ordered middleware chain executed once per request. Stages
// are registered before traffic is accepted and the chain is immutable
// afterward: adding a stage after the first Execute panics, mirroring the
// registration/run phase split the concurrency model requires. Concurrent
// Execute calls are safe because each owns its own [Context].
type Pipeline struct {
	stages  []Middleware
	started atomic.Bool
}

// NewPipeline inits an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Use registers middleware, keeping the chain sorted ascending by priority.
// The sort is stable: equal priorities preserve registration order.
func (p *Pipeline) Use(mw ...Middleware) {
	p.ensureNotStarted()

	p.stages = append(p.stages, mw...)
	sort.SliceStable(p.stages, func(i, j int) bool {
		return p.stages[i].Priority() < p.stages[j].Priority()
	})
}

// UseRouter registers the router dispatch as the terminal stage. It is an
// ordinary middleware entry at [PriorityRouter], so response-producing stages
// that never call their continuation keep it from ever being reached.
func (p *Pipeline) UseRouter(r *Router) {
	p.Use(NewMiddlewareWithPriority("router", PriorityRouter,
		func(ctx *Context, _ Next) (*Response, error) {
			return r.Dispatch(ctx.Request)
		}))
}

func (p *Pipeline) ensureNotStarted() {
	if p.started.Load() {
		panic("phttp: cannot add middleware after pipeline execution has started")
	}
}

// Execute runs the chain for one request context. Executing an empty
// pipeline is an internal error; a chain that every stage defers through
// without producing anything yields a plain 200.
func (p *Pipeline) Execute(ctx *Context) (*Response, error) {
	p.started.Store(true)

	if len(p.stages) == 0 {
		return nil, Errorf(KindInternal, "no middleware or handler registered")
	}

	return p.runFrom(0, ctx)
}

func (p *Pipeline) runFrom(index int, ctx *Context) (*Response, error) {
	for i := index; i < len(p.stages); i++ {
		resp, err := p.stages[i].Process(ctx, Next{p: p, index: i + 1})
		if err != nil {
			return nil, err
		}

		if resp != nil {
			return resp, nil
		}
	}

	return TextResponse(http.StatusOK, "OK"), nil
}

// Len returns the number of registered stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	return lo.Map(p.stages, func(m Middleware, _ int) string { return m.Name() })
}
