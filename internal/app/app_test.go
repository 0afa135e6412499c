package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arix/server/internal/adapter/outbound/clerk"
	"github.com/arix/server/internal/adapter/outbound/memory"
	"github.com/arix/server/internal/domain/creation"
	"github.com/arix/server/internal/domain/entitlement"
	"github.com/arix/server/internal/domain/generation"
	"github.com/arix/server/internal/domain/identity"
	"github.com/arix/server/internal/domain/payment"
	"github.com/arix/server/internal/infra/config"
	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
	"github.com/arix/server/internal/utils/metrics"
)

const testSecret = "test-secret"

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, req *outbound.TextGenerationRequest) (string, error) {
	return "echo: " + req.Prompt, nil
}

type emptyDirectory struct{}

func (emptyDirectory) GetUser(context.Context, string) (*model.UserProfile, error) {
	return nil, nil
}

func newTestDependencies(t *testing.T, requests int) *Dependencies {
	t.Helper()

	cfg := &config.Config{
		Log:       config.LogConfig{Level: "info"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"https://app.arix.test"}},
		RateLimit: config.RateLimitConfig{Enabled: true, Requests: requests, Window: time.Minute},
	}

	verifier, err := clerk.NewTokenVerifier(&clerk.VerifierConfig{Secret: testSecret})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New("arix_test", reg)
	grants := memory.NewPremiumGrantStore()
	creations := memory.NewCreationStore()
	gate := entitlement.NewGate(memory.NewQuotaLedger(), nil, m, nil, nil)

	genCfg := generation.DefaultConfig()
	genCfg.UploadDir = t.TempDir()

	return &Dependencies{
		Config:      cfg,
		Logger:      zap.NewNop(),
		Registry:    reg,
		Metrics:     m,
		RateLimiter: memory.NewRateLimiter(),
		Resolver:    identity.NewResolver(verifier, emptyDirectory{}, grants, nil, nil),
		Gate:        gate,
		Generation:  generation.NewDomain(gate, echoGenerator{}, nil, nil, nil, creations, m, genCfg, nil),
		Creation:    creation.NewDomain(creations, emptyDirectory{}, nil, nil),
		Payment:     payment.NewDomain(nil, grants, nil, nil),
	}
}

func token(t *testing.T, sub string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func post(r http.Handler, path, bearer string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r := NewRouter(newTestDependencies(t, 30))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresAuth(t *testing.T) {
	r := NewRouter(newTestDependencies(t, 30))

	w := post(r, "/api/ai/generate-article", "", map[string]any{"prompt": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])

	w = post(r, "/api/ai/generate-article", "not-a-jwt", map[string]any{"prompt": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_GenerateWithSession(t *testing.T) {
	r := NewRouter(newTestDependencies(t, 30))

	w := post(r, "/api/ai/generate-article", token(t, "user_42"), map[string]any{"prompt": "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var body model.ContentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "echo: hello", body.Content)
}

func TestRouter_RateLimitsGeneration(t *testing.T) {
	r := NewRouter(newTestDependencies(t, 2))
	session := token(t, "user_1")

	for i := 0; i < 2; i++ {
		w := post(r, "/api/ai/generate-blog-title", session, map[string]any{"prompt": "x"})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := post(r, "/api/ai/generate-blog-title", session, map[string]any{"prompt": "x"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Non-generation routes are not limited.
	req := httptest.NewRequest(http.MethodGet, "/api/user/usage", nil)
	req.Header.Set("Authorization", "Bearer "+session)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := NewRouter(newTestDependencies(t, 30))

	req := httptest.NewRequest(http.MethodOptions, "/api/ai/generate-article", nil)
	req.Header.Set("Origin", "https://app.arix.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://app.arix.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_TestPaymentUpgradesPlan(t *testing.T) {
	r := NewRouter(newTestDependencies(t, 30))
	session := token(t, "user_7")

	w := post(r, "/api/payment/test-payment", session, nil)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/user/usage", nil)
	req.Header.Set("Authorization", "Bearer "+session)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var usage model.UsageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usage))
	assert.Equal(t, model.PlanPremium, usage.Plan)
}
