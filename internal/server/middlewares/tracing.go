package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/vzahanych/aqhi-canada/internal/server/utils"
	"github.com/vzahanych/aqhi-canada/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TelemetryMiddleware opens a server span per request and stores its context
// so handlers and the feed fetcher continue the same trace.
func TelemetryMiddleware(logger *zap.Logger, tele *telemetry.Telemetry) gin.HandlerFunc {
	propagator := otel.GetTextMapPropagator()
	tracer := tele.GetTracer()

	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := routeName(c)
		spanName := c.Request.Method + " " + route

		attrs := []attribute.KeyValue{
			attribute.String("request.id", utils.GetRequestIDFromGinContext(c)),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.target", c.Request.URL.RequestURI()),
			attribute.String("user_agent", c.Request.UserAgent()),
		}
		if province := c.Param("province"); province != "" {
			attrs = append(attrs, attribute.String("aqhi.province", province))
		}
		if region := c.Param("region"); region != "" {
			attrs = append(attrs, attribute.String("aqhi.region", region))
		}
		if lang := c.Query("lang"); lang != "" {
			attrs = append(attrs, attribute.String("aqhi.language", lang))
		}

		ctx, span := tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		c.Set(utils.SpanContextKey, ctx)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int("http.response_size", c.Writer.Size()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, c.Errors.String())
		}

		if tele.IsEnabled() {
			logger.Debug("Request traced",
				zap.String("span_name", spanName),
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.Int("status_code", status))
		}
	}
}
