package papp

import (
	"context"
	"time"

	"github.com/advdv/phttp"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

const tracingInitTimeout = 5 * time.Second

// NewTracerProvider creates and configures the OpenTelemetry TracerProvider.
// Supported exporters via PHTTP_TRACING_EXPORTER: "stdout" (default), "none".
// Shutdown is handled automatically via fx.Lifecycle.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tracingInitTimeout)
	defer cancel()

	switch env.tracingExporter() {
	case "none":
		return noop.NewTracerProvider(), nil
	case "stdout", "":
	default:
		return nil, errors.Newf("unsupported PHTTP_TRACING_EXPORTER: %q (supported: stdout, none)",
			env.tracingExporter())
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(env.serviceName())),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

// NewPropagator creates the W3C TraceContext + Baggage composite propagator.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// Tracing returns middleware that opens a span per chain traversal, joined
// to any remote trace context found in the request headers. Requests to
// excludePaths are not traced; health probes make noisy orphan traces.
func Tracing(tp trace.TracerProvider, prop propagation.TextMapPropagator, excludePaths ...string) phttp.Middleware {
	excludeSet := make(map[string]struct{}, len(excludePaths))
	for _, p := range excludePaths {
		excludeSet[p] = struct{}{}
	}

	tracer := tp.Tracer("github.com/advdv/phttp/papp")

	return phttp.NewMiddlewareWithPriority("tracing", PriorityTracing,
		func(ctx *phttp.Context, next phttp.Next) (*phttp.Response, error) {
			if _, excluded := excludeSet[ctx.Request.Path()]; excluded {
				return next.Handle(ctx)
			}

			parent := prop.Extract(context.Background(),
				propagation.MapCarrier(ctx.Request.Headers()))

			_, span := tracer.Start(parent,
				string(ctx.Request.Method())+" "+ctx.Request.Path(),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", string(ctx.Request.Method())),
					attribute.String("url.path", ctx.Request.Path()),
					attribute.String("phttp.trace_id", ctx.Request.TraceID()),
				))
			defer span.End()

			resp, err := next.Handle(ctx)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())

				return nil, err
			}

			span.SetAttributes(attribute.Int("http.response.status_code", resp.Status()))

			return resp, nil
		})
}
