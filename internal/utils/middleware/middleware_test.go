package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arix/server/internal/adapter/outbound/memory"
	"github.com/arix/server/internal/domain/identity"
	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/utils/logger"
	"github.com/arix/server/internal/utils/metrics"
	"github.com/arix/server/internal/utils/requestctx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	t.Run("generates new request ID when not provided", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		headerID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, headerID)
		assert.Equal(t, headerID, w.Body.String())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "existing-request-id-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "existing-request-id-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "existing-request-id-123", w.Body.String())
	})

	t.Run("replaces malformed request IDs", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, requestctx.RequestID(c.Request.Context()))
		})

		for _, bad := range []string{"has space", "new\nline", strings.Repeat("a", 129)} {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(RequestIDHeader, bad)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			assert.NotEqual(t, bad, got)
			assert.Equal(t, got, w.Body.String())
		}
	})
}

func TestLogging(t *testing.T) {
	newRouter := func(buf *bytes.Buffer, level string, status int) *gin.Engine {
		log := logger.New(&logger.Config{Level: level, Format: "json", Output: buf})
		router := gin.New()
		router.Use(RequestID())
		router.Use(Logging(log))
		router.GET("/test", func(c *gin.Context) {
			logger.FromContext(c.Request.Context(), nil).Info("inside handler")
			c.String(status, "body")
		})
		return router
	}

	t.Run("logs successful requests with request id", func(t *testing.T) {
		buf := &bytes.Buffer{}
		router := newRouter(buf, "info", http.StatusOK)

		req := httptest.NewRequest("GET", "/test?foo=bar", nil)
		req.Header.Set(RequestIDHeader, "rid-1")
		req.Header.Set("User-Agent", "TestAgent/1.0")
		router.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		assert.Contains(t, out, "HTTP Request")
		assert.Contains(t, out, `"status":200`)
		assert.Contains(t, out, `"path":"/test"`)
		assert.Contains(t, out, "foo=bar")
		assert.Contains(t, out, "TestAgent/1.0")
		// The handler's own log line carries the request id too.
		assert.Contains(t, out, `"msg":"inside handler","request_id":"rid-1"`)
	})

	t.Run("logs 4xx requests as warnings", func(t *testing.T) {
		buf := &bytes.Buffer{}
		router := newRouter(buf, "warn", http.StatusNotFound)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		assert.Contains(t, buf.String(), `"level":"warn"`)
		assert.Contains(t, buf.String(), `"status":404`)
	})

	t.Run("logs 5xx requests as errors", func(t *testing.T) {
		buf := &bytes.Buffer{}
		router := newRouter(buf, "error", http.StatusInternalServerError)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.Contains(t, buf.String(), `"status":500`)
	})
}

func TestRecovery(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "error", Format: "json", Output: buf})

	router := gin.New()
	router.Use(Recovery(log))
	router.GET("/panic", func(c *gin.Context) {
		panic("secret detail")
	})

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "secret detail")

	assert.Contains(t, buf.String(), "Panic recovered")
	assert.Contains(t, buf.String(), "secret detail")
}

func TestAuth(t *testing.T) {
	newRouter := func(resolver *MockResolver) *gin.Engine {
		router := gin.New()
		router.Use(Auth(resolver, nil))
		router.GET("/me", func(c *gin.Context) {
			id := GetIdentity(c)
			c.JSON(http.StatusOK, gin.H{"user": id.UserID, "plan": id.Plan, "uid": GetUserID(c)})
		})
		return router
	}

	t.Run("missing token", func(t *testing.T) {
		resolver := new(MockResolver)
		w := httptest.NewRecorder()
		newRouter(resolver).ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, false, decode(t, w)["success"])
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("non-bearer scheme", func(t *testing.T) {
		resolver := new(MockResolver)
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(AuthorizationHeader, "Basic abc")
		w := httptest.NewRecorder()
		newRouter(resolver).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "bad").Return(nil, identity.ErrUnauthenticated)
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(AuthorizationHeader, "Bearer bad")
		w := httptest.NewRecorder()
		newRouter(resolver).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("identity provider down fails closed", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "tok").
			Return(nil, errors.Join(identity.ErrIdentityUnavailable, errors.New("dial tcp")))
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(AuthorizationHeader, "Bearer tok")
		w := httptest.NewRecorder()
		newRouter(resolver).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["retryable"])
		assert.NotContains(t, w.Body.String(), "dial tcp")
	})

	t.Run("valid token", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "good").
			Return(&model.Identity{UserID: "user_1", Plan: model.PlanPremium}, nil)
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(AuthorizationHeader, "Bearer good")
		w := httptest.NewRecorder()
		newRouter(resolver).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "user_1", body["user"])
		assert.Equal(t, "user_1", body["uid"])
		assert.Equal(t, "premium", body["plan"])
	})
}

func TestRateLimitByUser(t *testing.T) {
	limiter := memory.NewRateLimiter()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(UserIDKey, c.GetHeader("X-User"))
		c.Next()
	})
	router.Use(RateLimitByUser(limiter, 2, time.Minute))
	router.POST("/api/ai/generate-article", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/ai/generate-article", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("a").Code)
	assert.Equal(t, http.StatusOK, call("a").Code)
	w := call("a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get(RetryAfter))
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["retryable"])

	// Limits are per user.
	assert.Equal(t, http.StatusOK, call("b").Code)
}

func TestRateLimit_NilLimiterPasses(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitByUser(nil, 1, time.Minute))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS("https://app.example.com"))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/x", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSOptions(t *testing.T) {
	cfg := CORSOptions()

	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.Contains(t, cfg.ExposeHeaders, RetryAfter)
	assert.True(t, cfg.AllowCredentials)
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/api/user/usage", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/user/usage", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nowhere", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/user/usage", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}
