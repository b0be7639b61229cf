package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestBearerCredential(t *testing.T) {
	tests := []struct {
		name   string
		header string
		target string
		want   string
	}{
		{"bearer header", "Bearer abc", "/x", "abc"},
		{"lowercase scheme", "bearer abc", "/x", "abc"},
		{"raw header", "abc", "/x", "abc"},
		{"auth query", "", "/x?auth=q1", "q1"},
		{"link token is not a credential", "", "/x?token=t1", ""},
		{"header wins", "Bearer h", "/x?auth=q", "h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, BearerCredential(c))
		})
	}
}

func TestUserAuthToken(t *testing.T) {
	tokens := app.NewTokenManager(app.TokenConfig{SecretKey: "mw-secret", Expiry: time.Hour})
	r := gin.New()
	r.GET("/me", UserAuthTokenWithConfig(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": app.GetUID(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer forged")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := tokens.Generate(7, "seven", "")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":7}`, w.Body.String())
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.GET("/d", NoStore(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/d", nil))

	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
		Key:          "/api",
		FillInterval: time.Hour,
		Capacity:     1,
		Quantum:      1,
	})
	r := gin.New()
	r.Use(RateLimiter(l))
	r.GET("/api/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	var seen string
	r.Use(TraceMiddlewareWithConfig(true, ""))
	r.GET("/t", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(DefaultTraceIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(DefaultTraceIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	assert.NotEmpty(t, w.Header().Get(DefaultTraceIDHeader))
	assert.Equal(t, w.Header().Get(DefaultTraceIDHeader), seen)
}

func TestRecoveryAndNoFound(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.NoRoute(NoFound())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
