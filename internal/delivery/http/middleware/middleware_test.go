package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"techgallery-backend/internal/domain"
	"techgallery-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(string(domain.KeyRequestID)))
	})

	t.Run("Should keep a valid incoming id", func(t *testing.T) {
		const id = "6f1a3c1e-2b7d-4c1a-9f4e-0d8b2a7c5e31"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", id)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, id, w.Body.String())
		assert.Equal(t, id, w.Header().Get("X-Request-ID"))
	})

	t.Run("Should replace a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "<script>")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.NotEqual(t, "<script>", w.Body.String())
		assert.Len(t, w.Body.String(), 36)
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) { _ = c.Error(apperror.Conflict("taken")) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("secret detail")) })
	r.GET("/written", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
		c.Writer.WriteHeaderNow()
		_ = c.Error(apperror.BadRequest("late"))
	})

	cases := map[string]int{
		"/conflict": http.StatusConflict,
		"/boom":     http.StatusInternalServerError,
		"/written":  http.StatusAccepted,
	}
	for path, code := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, w.Code, path)
		assert.NotContains(t, w.Body.String(), "secret detail")
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://gallery.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://gallery.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://gallery.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMemoryWindow(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(RateLimitConfig{
		Limit:     1,
		Window:    50 * time.Millisecond,
		KeyPrefix: "rl:test:",
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit())
	assert.Equal(t, http.StatusTooManyRequests, hit())
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit())
}

func TestMemoryLimiterSweep(t *testing.T) {
	m := &memoryLimiter{}
	cfg := RateLimitConfig{Limit: 5, Window: time.Minute}
	start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	m.hit("ip:10.0.0.1", cfg, start)
	m.hit("ip:10.0.0.2", cfg, start.Add(30*time.Second))

	m.sweep(start.Add(61 * time.Second))

	_, stale := m.entries.Load("ip:10.0.0.1")
	_, live := m.entries.Load("ip:10.0.0.2")
	assert.False(t, stale)
	assert.True(t, live)

	// A swept key starts a fresh window.
	count, _ := m.hit("ip:10.0.0.1", cfg, start.Add(62*time.Second))
	assert.Equal(t, 1, count)
}
