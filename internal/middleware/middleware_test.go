package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessions map[string]*models.User

func (s stubSessions) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "gone" {
		return nil, errs.NotFound("User not found")
	}
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errs.Unauthorized("Not authorized, token failed")
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "alice"}
	r := gin.New()
	r.GET("/me", AuthMiddleware(stubSessions{"good": user}), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"invalid", "Bearer bad", http.StatusUnauthorized},
		{"user deleted", "Bearer gone", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRecovery(t *testing.T) {
	for _, prod := range []bool{false, true} {
		r := gin.New()
		r.Use(Recovery(prod))
		r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "kaboom")
		assert.Equal(t, !prod, strings.Contains(w.Body.String(), `"stack"`), "production=%v", prod)
	}
}

func TestNotFound(t *testing.T) {
	r := gin.New()
	r.NoRoute(NotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Not found - /nope"}`, w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type failingShared struct{ calls int }

func (f *failingShared) AllowAction(ctx context.Context, key, action string, rate, burst int) (bool, error) {
	f.calls++
	return false, errors.New("redis down")
}

type denyShared struct{}

func (denyShared) AllowAction(ctx context.Context, key, action string, rate, burst int) (bool, error) {
	return false, nil
}

func TestRateLimiter_LocalBurst(t *testing.T) {
	rl := NewRateLimiter(1, nil)
	ctx := context.Background()

	assert.True(t, rl.Allow(ctx, "ip", "login"))
	assert.True(t, rl.Allow(ctx, "ip", "login"))
	assert.False(t, rl.Allow(ctx, "ip", "login"))
	assert.True(t, rl.Allow(ctx, "ip", "register"), "actions have separate buckets")
	assert.True(t, rl.Allow(ctx, "other-ip", "login"))
}

func TestRateLimiter_SharedFallback(t *testing.T) {
	shared := &failingShared{}
	rl := NewRateLimiter(5, shared)
	assert.True(t, rl.Allow(context.Background(), "k", "write"))
	assert.Equal(t, 1, shared.calls)

	rl = NewRateLimiter(5, denyShared{})
	assert.False(t, rl.Allow(context.Background(), "k", "write"))
}

func TestRateLimiter_Prune(t *testing.T) {
	rl := NewRateLimiter(1, nil)
	rl.getLimiter("a")
	assert.Equal(t, 0, rl.prune(time.Now(), time.Minute))
	assert.Equal(t, 1, rl.prune(time.Now().Add(2*time.Minute), time.Minute))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimitMiddleware(NewRateLimiter(1, nil), "login"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
