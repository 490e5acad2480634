package middleware

import (
	"campusbuddy/internal/config"
	"campusbuddy/internal/utils"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testSecret  = "campusbuddy_test_jwt_secret_key_123456"
	testStudent = "0b7e1e4a-5b7a-4e0e-9a43-3f1f0c8e2d11"
)

func newTestTokens(t *testing.T) *utils.TokenManager {
	t.Helper()
	tokens, err := utils.NewTokenManager(testSecret, "campusbuddy-api", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tokens
}

func newProtectedRouter(tokens *utils.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api", AuthMiddleware(tokens))
	api.GET("/me", func(c *gin.Context) {
		identity, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": identity.UserID, "role": identity.Role})
	})
	api.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func doRequest(router http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	router := newProtectedRouter(newTestTokens(t))

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer not-a-jwt"} {
		resp := doRequest(router, "/api/me", header)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.Code)
		}
	}
}

func TestAuthMiddlewareResolvesIdentity(t *testing.T) {
	tokens := newTestTokens(t)
	router := newProtectedRouter(tokens)

	token, err := tokens.GenerateToken(testStudent, "student")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	resp := doRequest(router, "/api/me", "Bearer "+token)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = doRequest(router, "/api/admin", "Bearer "+token)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", resp.Code)
	}

	adminToken, _ := tokens.GenerateToken(testStudent, "admin")
	resp = doRequest(router, "/api/admin", "Bearer "+adminToken)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", resp.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(RequestIDMiddleware(zap.New(core)))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	resp := doRequest(router, "/ping", "")
	generated := resp.Header().Get("X-Request-ID")
	if generated == "" || resp.Body.String() != generated {
		t.Fatalf("expected generated request id in header and context, got %q / %q", generated, resp.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "  client-id  ")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get("X-Request-ID"); got != "client-id" {
		t.Fatalf("expected client request id to be kept, got %q", got)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 access log entries, got %d", len(entries))
	}
	if entries[1].ContextMap()["request_id"] != "client-id" {
		t.Fatalf("unexpected log fields %v", entries[1].ContextMap())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2})

	router := gin.New()
	router.POST("/login", RateLimitMiddleware(limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected a different client to have its own bucket, got %d", resp.Code)
	}
}

func TestIPRateLimiterEvictsIdleClients(t *testing.T) {
	limiter := NewIPRateLimiter(config.RateLimitConfig{RequestsPerMinute: 60, Burst: 1})
	now := time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	now = now.Add(limiterIdleTTL + time.Second)
	limiter.Allow("10.0.0.2")

	if _, ok := limiter.clients["10.0.0.1"]; ok {
		t.Fatalf("expected idle client to be evicted")
	}
	if len(limiter.clients) != 1 {
		t.Fatalf("expected one tracked client, got %d", len(limiter.clients))
	}
}
