package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Conceptual-Machines/magda-harmony/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, mw ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cloudwatch, err := metrics.NewClient(context.Background(), "test", false)
	require.NoError(t, err)

	router := gin.New()
	router.Use(RecoverWithSentry(), RequestTracking(cloudwatch))
	router.Use(mw...)
	router.GET("/ok", func(c *gin.Context) {
		id, _ := CallerID(c)
		c.JSON(http.StatusOK, gin.H{"caller": id})
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestTrackingSetsRequestID(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestRequestTrackingReusesValidRequestID(t *testing.T) {
	router := newTestRouter(t)
	id := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", id)
	w := serve(router, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = serve(router, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get("X-Request-ID"))
}

func TestRecoverWithSentry(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestGatewayAuth(t *testing.T) {
	router := newTestRouter(t, GatewayAuth())

	w := serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-User-ID", "42")
	w = serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"caller":"42"}`, w.Body.String())
}

func TestNoAuth(t *testing.T) {
	router := newTestRouter(t, NoAuth())

	w := serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"caller":"anonymous"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, CORS())
	router.OPTIONS("/ok", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "https://example.com")
	w := serve(router, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(t, RateLimit(1, 2))

	for i := 0; i < 2; i++ {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	w = serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	router := newTestRouter(t, RateLimit(0, 0))

	for i := 0; i < 50; i++ {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestClientLimitersDropIdleClients(t *testing.T) {
	limiters := newClientLimiters(1, 1)
	start := time.Now()

	limiters.get("a", start)
	limiters.get("b", start.Add(limiterIdleTimeout))
	assert.Len(t, limiters.clients, 2)

	limiters.get("b", start.Add(2*limiterIdleTimeout+time.Second))
	assert.Len(t, limiters.clients, 1)
	assert.Contains(t, limiters.clients, "b")
}
