package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dropindrop/internal/domain"
	"dropindrop/internal/pkg/cache"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/token"
)

type fakeTokens struct{}

func (fakeTokens) ValidateToken(s string) (*token.CustomClaims, error) {
	switch s {
	case "admin-token":
		return &token.CustomClaims{UserID: "u1", Role: "admin"}, nil
	case "user-token":
		return &token.CustomClaims{UserID: "u2", Role: "user"}, nil
	}
	return nil, errors.New("inválido")
}

// memoryCache é um cache.Client em memória para os testes.
type memoryCache struct {
	mu   sync.Mutex
	ints map[string]int
	fail bool
}

func newMemoryCache() *memoryCache { return &memoryCache{ints: map[string]int{}} }

func (m *memoryCache) Get(context.Context, string) (string, error) { return "", cache.ErrCacheMiss }
func (m *memoryCache) GetInt(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 0, errors.New("redis fora do ar")
	}
	v, ok := m.ints[key]
	if !ok {
		return 0, cache.ErrCacheMiss
	}
	return v, nil
}
func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := value.(int); ok {
		m.ints[key] = v
	}
	return nil
}
func (m *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints[key]++
	return int64(m.ints[key]), nil
}
func (m *memoryCache) Delete(_ context.Context, key string) error { delete(m.ints, key); return nil }
func (m *memoryCache) Ping(context.Context) error                 { return nil }
func (m *memoryCache) Close() error                               { return nil }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func adminChain() http.Handler {
	log := logger.NewNop()
	return NewAuthMiddleware(fakeTokens{}, log)(PermissionMiddleware(log, domain.RoleAdmin)(okHandler()))
}

func TestAuthAndPermission(t *testing.T) {
	cases := []struct {
		name   string
		header string
		status int
	}{
		{"sem header", "", http.StatusUnauthorized},
		{"sem Bearer", "admin-token", http.StatusUnauthorized},
		{"token inválido", "Bearer xyz", http.StatusUnauthorized},
		{"role sem permissão", "Bearer user-token", http.StatusForbidden},
		{"admin", "Bearer admin-token", http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/drops/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			adminChain().ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestPermissionMiddleware_WithoutClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	PermissionMiddleware(logger.NewNop(), domain.RoleAdmin)(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	c := newMemoryCache()
	h := RateLimiter(c, 2, time.Minute, logger.NewNop())(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/articles", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	c := newMemoryCache()
	c.fail = true
	rec := httptest.NewRecorder()

	RateLimiter(c, 1, time.Minute, logger.NewNop())(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
