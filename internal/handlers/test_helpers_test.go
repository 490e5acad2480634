package handlers

import (
	"bytes"
	"campusbuddy/internal/config"
	"campusbuddy/internal/database"
	"campusbuddy/internal/match"
	"campusbuddy/internal/models"
	"campusbuddy/internal/recommend"
	"campusbuddy/internal/utils"
	"campusbuddy/internal/wellness"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret     = "campusbuddy_test_jwt_secret_key_1234567890"
	testMonitoringKey = "monitor-key"
	testAdminEmail    = "admin@campus.edu"
)

var testNow = time.Date(2025, time.November, 10, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	handler *Handler
	router  *gin.Engine
	store   database.Store
	tokens  *utils.TokenManager
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Auth.JWTSecret = testJWTSecret
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Auth.AdminEmails = []string{testAdminEmail}
	cfg.Monitoring.APIKey = testMonitoringKey
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestEnv(t *testing.T, store database.Store, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	advisor := wellness.NewAdvisor()
	handler := New(Deps{
		Config:      cfg,
		Store:       store,
		Matcher:     match.NewEngine(),
		Recommender: recommend.New(),
		Advisor:     advisor,
		Ledger: wellness.NewLedger(store, advisor,
			wellness.WithClock(func() time.Time { return testNow }, time.UTC),
		),
		Tokens: tokens,
	})

	return &testEnv{handler: handler, router: handler.Router(), store: store, tokens: tokens}
}

func setupMockDB(t *testing.T) (*database.PostgresStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return database.NewPostgresStore(db), mock, func() { _ = db.Close() }
}

func (e *testEnv) seedUser(t *testing.T, user models.User) (models.User, string) {
	t.Helper()
	created, err := e.store.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := e.tokens.GenerateToken(created.ID, created.Role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return created, token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) doWithHeader(method, path, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(header, value)
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v (body %s)", err, resp.Body.String())
	}
	return out
}

func mustStatus(t *testing.T, actual int, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func expectHTTP200(t *testing.T, status int) {
	t.Helper()
	mustStatus(t, status, http.StatusOK)
}
