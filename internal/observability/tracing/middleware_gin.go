package tracing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/tourbill/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const unmatchedRoute = "unmatched"

// GinMiddleware opens one server span per request, named after the matched
// route so /visits/:id requests share a span name.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName + "/http")
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := strings.ToUpper(c.Request.Method)

		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, spanName(method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(requestAttributes(c, method, route)...),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)

		lastErr := c.Errors.Last()
		switch {
		case status >= http.StatusInternalServerError:
			if lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		case status >= http.StatusBadRequest:
			// Client mistakes are not span failures; keep the reason as an event.
			reason := http.StatusText(status)
			if lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					reason = safeErr.Error()
				}
			}
			span.AddEvent("request.rejected", trace.WithAttributes(SafeAttributes(
				attribute.String("reason", reason),
			)...))
		}
	}
}

func spanName(method, route string) string {
	return "HTTP " + method + " " + route
}

// requestAttributes describes the caller and, for /<resource>/:id routes,
// the resource being touched.
func requestAttributes(c *gin.Context, method, route string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
	}

	client := obscontext.ClientFromContext(c.Request.Context())
	if client == "" {
		client = c.ClientIP()
	}
	if client != "" {
		attrs = append(attrs, attribute.String("client", client))
	}

	if requestID := obscontext.RequestIDFromContext(c.Request.Context()); requestID != "" {
		attrs = append(attrs, attribute.String("request_id", requestID))
	}

	if resource := routeResource(route); resource != "" {
		attrs = append(attrs, attribute.String("tourbill.resource", resource))
		if id := strings.TrimSpace(c.Param("id")); id != "" {
			attrs = append(attrs, attribute.String("tourbill.resource_id", id))
		}
	}
	return SafeAttributes(attrs...)
}

// routeResource returns the first path segment of a matched route.
func routeResource(route string) string {
	if route == unmatchedRoute {
		return ""
	}
	trimmed := strings.Trim(route, "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
