// Package phttp provides a priority-ordered middleware pipeline between
// inbound HTTP requests and route handlers, including handlers implemented
// outside the Go runtime.
//
// # Overview
//
// phttp deliberately leaves the wire to the standard library: sockets,
// keep-alive and TLS belong to http.Server, and [Serve] bridges the two
// worlds. What the package owns is everything between parsed request and
// serialized response:
//
//   - deterministic composition of independent middleware units into one
//     execution chain, ordered by priority with registration order breaking
//     ties
//   - continuation-passing execution with short-circuit and error semantics
//   - a per-request shared data bag that stages use to signal each other
//   - exact and ':param' route dispatch
//   - an ownership-safe adapter for handlers reached through a foreign
//     calling convention
//
// A minimal example:
//
//	router := phttp.NewRouter()
//	router.RegisterFunc(phttp.MethodGet, "/users/:id", func(req *phttp.Request) (*phttp.Response, error) {
//	    id, _ := req.Param("id")
//	    return phttp.JSONResponse(200, `{"id": "`+id+`"}`), nil
//	})
//
//	pipe := phttp.NewPipeline()
//	pipe.Use(phttp.AccessLog(logger, phttp.AccessLogConfig{LogResponses: true}))
//	pipe.Use(phttp.CORS(phttp.CORSConfig{AllowedOrigins: "*"}))
//	pipe.UseRouter(router)
//
//	http.ListenAndServe(":8080", phttp.Serve(pipe, phttp.NewStdLogger(log.Default())))
//
// # Execution model
//
// A request is parsed into a [Request], wrapped into a [Context], and walked
// through the sorted chain. Each stage receives the context and a [Next]
// cursor representing the remainder of the chain. The stage either defers
// entirely (Continue), produces a [Response] that skips every later stage
// including the router, or fails with an error that aborts the chain. The
// router itself is an ordinary terminal stage registered by
// [Pipeline.UseRouter], so a stage that never invokes its continuation keeps
// any handler from running.
//
// The chain is assembled during a registration phase and sealed by the first
// Execute; registering afterwards panics. This is what makes concurrent
// request processing safe without locks on the hot path: the only mutable
// state a traversal touches is its own [Context].
//
// # Built-in middleware
//
// [CORS], [AccessLog], [Auth] and [RateLimit] cover the usual front-line
// concerns. Each is constructed from a small config struct and placed at a
// conventional priority (access log earliest, then CORS, rate limiting,
// auth, router last). All user-facing rejections are produced as responses
// (403, 401, 429); errors are reserved for faults the caller cannot turn
// into anything better than a 500.
//
// # Cross-boundary handlers
//
// [ForeignHandler] invokes route logic through a fixed calling convention:
// NUL-terminated UTF-8 strings for method, path and body, one string or nil
// back. The adapter owns every buffer it allocates for the call, copies the
// result out, and releases the foreign buffer on every exit path. See
// [ForeignRegistry] for binding such handlers to routes.
//
// # Diagnostics
//
// Errors that reach the top of a chain are recorded in a process-wide
// last-error slot readable via [LastError]. Concurrent requests overwrite
// each other there, so treat it strictly as a debugging aid; the per-call
// error return is the authoritative channel.
package phttp
