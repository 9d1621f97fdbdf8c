package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/housing-valuator/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/echo", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_ZeroLimitDisables(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("a"))
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	r := newRouter(RateLimit(NewRateLimiter(1, time.Minute)))

	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
	w := do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestEndpointRateLimiter_OnlyLimitsRegisteredRoute(t *testing.T) {
	erl := NewEndpointRateLimiter()
	erl.AddEndpoint("/echo", 1, time.Minute)
	r := newRouter(erl.Middleware())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
	}
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodPost, "/echo", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, httptest.NewRequest(http.MethodPost, "/echo", nil)).Code)
}

func TestTraceID_GeneratesAndPropagates(t *testing.T) {
	var fromCtx string
	r := gin.New()
	r.Use(TraceID())
	r.GET("/ping", func(c *gin.Context) {
		fromCtx = logger.TraceIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(TraceIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceIDHeader, "abc-123")
	w = do(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(TraceIDHeader))
	assert.Equal(t, "abc-123", fromCtx)
}

func TestRequestSizeLimit(t *testing.T) {
	r := newRouter(RequestSizeLimit(8))

	w := do(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("much too long a body")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	w := do(newRouter(SecurityHeaders()), httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCORS_PreflightAndOrigins(t *testing.T) {
	r := newRouter(CORS(CORSConfig{AllowOrigins: []string{"https://dash.example.com"}}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := do(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = do(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_Wildcard(t *testing.T) {
	r := newRouter(CORS(DefaultCORSConfig()))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	w := do(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type observed struct {
	method, route, status string
}

type fakeObserver struct{ calls []observed }

func (f *fakeObserver) ObserveHTTP(method, route, status string, _ time.Duration) {
	f.calls = append(f.calls, observed{method, route, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	obs := &fakeObserver{}
	r := newRouter(Metrics(obs))

	do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	do(r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []observed{
		{"GET", "/ping", "200"},
		{"GET", "unmatched", "404"},
	}, obs.calls)
}

func TestRequestLogger_RejectedRequestCarriesTrace(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Setup("info", "production")
	t.Cleanup(func() { logger.SetOutput(&bytes.Buffer{}) })

	r := gin.New()
	r.Use(TraceID(), RequestLogger())
	r.GET("/bad/:id", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	req := httptest.NewRequest(http.MethodGet, "/bad/7", nil)
	req.Header.Set(TraceIDHeader, "trace-42")
	do(r, req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "trace-42", entry["trace_id"])
	assert.Equal(t, "/bad/:id", entry["route"])
	assert.Equal(t, 400.0, entry["status"])
}

func TestRequestLogger_SuccessIsDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Setup("info", "production")
	t.Cleanup(func() { logger.SetOutput(&bytes.Buffer{}) })

	do(newRouter(RequestLogger()), httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Empty(t, buf.String())
}
