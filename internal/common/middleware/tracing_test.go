package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevProvider, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevProp)
	})
	return recorder
}

func TestTracing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := setupRecorder(t)

	var traceID string
	r := gin.New()
	r.Use(Tracing(&TracingConfig{ServiceName: "test", SkipPaths: []string{"/health"}}))
	r.GET("/api/v1/portal/bookings/:reference", func(c *gin.Context) {
		traceID = GetTraceID(c)
		c.Status(http.StatusOK)
	})
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("记录路由 span", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/portal/bookings/INF-2024-0013", nil))

		require.Len(t, recorder.Ended(), 1)
		span := recorder.Ended()[0]
		assert.Equal(t, "GET /api/v1/portal/bookings/:reference", span.Name())
		assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
		assert.NotEmpty(t, w.Header().Get("traceparent"))
	})

	t.Run("5xx 标记错误", func(t *testing.T) {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
		spans := recorder.Ended()
		assert.Equal(t, codes.Error, spans[len(spans)-1].Status().Code)
	})

	t.Run("跳过健康检查", func(t *testing.T) {
		before := len(recorder.Ended())
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Len(t, recorder.Ended(), before)
	})
}
