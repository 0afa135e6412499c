package gin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arix/server/internal/adapter/outbound/memory"
	"github.com/arix/server/internal/domain/creation"
	"github.com/arix/server/internal/domain/entitlement"
	"github.com/arix/server/internal/domain/generation"
	"github.com/arix/server/internal/domain/payment"
	"github.com/arix/server/internal/infra/resilience"
	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
	"github.com/arix/server/internal/utils/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ===== Mocks =====

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, req *outbound.TextGenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) TextToImage(ctx context.Context, prompt string) (*outbound.GeneratedImage, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.GeneratedImage), args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetUser(ctx context.Context, userID string) (*model.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

// bucketStorage keeps uploads in a map and serves them from a fake CDN.
type bucketStorage struct {
	objects map[string][]byte
}

func (s *bucketStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *bucketStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *bucketStorage) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key + "?sig=1", nil
}

func (s *bucketStorage) DurableURL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

// ===== Fixture =====

type fixture struct {
	router    *gin.Engine
	text      *MockTextGenerator
	images    *MockImageGenerator
	directory *MockDirectory
	storage   *bucketStorage
	grants    outbound.PremiumGrantPort
}

// withIdentity stands in for the auth middleware; the X-Test-User header picks the caller.
func withIdentity(plan model.Plan) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-Test-User")
		if userID == "" {
			userID = "user_1"
		}
		c.Set(middleware.IdentityKey, &model.Identity{UserID: userID, Plan: plan})
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func newFixture(t *testing.T, plan model.Plan) *fixture {
	t.Helper()

	f := &fixture{
		text:      new(MockTextGenerator),
		images:    new(MockImageGenerator),
		directory: new(MockDirectory),
		storage:   &bucketStorage{objects: map[string][]byte{}},
		grants:    memory.NewPremiumGrantStore(),
	}

	gate := entitlement.NewGate(memory.NewQuotaLedger(), nil, nil, nil, nil)
	creations := memory.NewCreationStore()

	genCfg := generation.DefaultConfig()
	genCfg.UploadDir = t.TempDir()
	gen := generation.NewDomain(gate, f.text, f.images, nil, f.storage, creations, nil, genCfg, nil)
	catalog := creation.NewDomain(creations, f.directory, nil, nil)
	pay := payment.NewDomain(nil, f.grants, nil, nil)

	r := gin.New()
	RegisterSystemRoutes(r, prometheus.NewRegistry())
	api := r.Group("/api", withIdentity(plan))
	RegisterGenerationRoutes(api, NewGenerationHandler(gen))
	RegisterCreationRoutes(api, NewCreationHandler(catalog))
	RegisterAccountRoutes(api, NewAccountHandler(gate, pay))
	f.router = r
	return f
}

func (f *fixture) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// ===== Tests =====

func TestSystemRoutes(t *testing.T) {
	f := newFixture(t, model.PlanFree)

	w := f.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Server is Live", w.Body.String())

	w = f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])

	w = f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateArticle_RoundTrip(t *testing.T) {
	f := newFixture(t, model.PlanFree)
	f.text.On("Generate", mock.Anything, mock.MatchedBy(func(r *outbound.TextGenerationRequest) bool {
		return r.Prompt == "Write about Go" && r.MaxTokens == 500
	})).Return("Go is a language.", nil)

	before := time.Now().UTC().Add(-time.Second)
	w := f.do(http.MethodPost, "/api/ai/generate-article", "", gin.H{"prompt": "Write about Go", "length": 500})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Go is a language.", body["content"])

	w = f.do(http.MethodGet, "/api/user/get-user-creations", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list model.CreationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Creations, 1)
	c := list.Creations[0]
	assert.Equal(t, "Write about Go", c.Prompt)
	assert.Equal(t, "Go is a language.", c.Content)
	assert.Equal(t, model.CreationTypeArticle, c.Type)
	assert.False(t, c.CreatedAt.Before(before))
	assert.Empty(t, c.Likes)
}

func TestGenerateArticle_FreeLimit(t *testing.T) {
	f := newFixture(t, model.PlanFree)
	f.text.On("Generate", mock.Anything, mock.Anything).Return("text", nil)

	for i := 0; i < 10; i++ {
		w := f.do(http.MethodPost, "/api/ai/generate-blog-title", "", gin.H{"prompt": fmt.Sprintf("p%d", i)})
		require.Equal(t, http.StatusOK, w.Code, "call %d", i)
	}

	w := f.do(http.MethodPost, "/api/ai/generate-article", "", gin.H{"prompt": "one more"})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["upgrade"])
	assert.Contains(t, body["message"], "Upgrade to premium")
	f.text.AssertNumberOfCalls(t, "Generate", 10)

	// Another user has an independent counter.
	w = f.do(http.MethodPost, "/api/ai/generate-article", "user_2", gin.H{"prompt": "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateArticle_PremiumUnlimited(t *testing.T) {
	f := newFixture(t, model.PlanPremium)
	f.text.On("Generate", mock.Anything, mock.Anything).Return("text", nil)

	for i := 0; i < 12; i++ {
		w := f.do(http.MethodPost, "/api/ai/generate-article", "", gin.H{"prompt": "x"})
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestGenerateArticle_Errors(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		f := newFixture(t, model.PlanFree)
		w := f.do(http.MethodPost, "/api/ai/generate-article", "", gin.H{"prompt": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Prompt is required", decodeBody(t, w)["message"])
		f.text.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t, model.PlanFree)
		req := httptest.NewRequest(http.MethodPost, "/api/ai/generate-article", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider timeout is retryable", func(t *testing.T) {
		f := newFixture(t, model.PlanFree)
		f.text.On("Generate", mock.Anything, mock.Anything).Return("", resilience.ErrTimeout)
		w := f.do(http.MethodPost, "/api/ai/generate-article", "", gin.H{"prompt": "x"})
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Equal(t, true, decodeBody(t, w)["retryable"])
	})

	t.Run("provider failure hides details", func(t *testing.T) {
		f := newFixture(t, model.PlanFree)
		f.text.On("Generate", mock.Anything, mock.Anything).Return("", fmt.Errorf("gemini: secret key sk-123 rejected"))
		w := f.do(http.MethodPost, "/api/ai/generate-article", "", gin.H{"prompt": "x"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NotContains(t, w.Body.String(), "sk-123")
	})

	t.Run("breaker open", func(t *testing.T) {
		f := newFixture(t, model.PlanFree)
		f.text.On("Generate", mock.Anything, mock.Anything).Return("", resilience.ErrUnavailable)
		w := f.do(http.MethodPost, "/api/ai/generate-article", "", gin.H{"prompt": "x"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGenerateImage(t *testing.T) {
	f := newFixture(t, model.PlanFree)
	f.images.On("TextToImage", mock.Anything, "a red fox").
		Return(&outbound.GeneratedImage{Data: []byte("png"), ContentType: "image/png"}, nil)

	w := f.do(http.MethodPost, "/api/ai/generate-image", "", gin.H{"prompt": "a red fox", "publish": true})
	require.Equal(t, http.StatusOK, w.Code)
	url, _ := decodeBody(t, w)["secure_url"].(string)
	assert.Contains(t, url, "https://cdn.test/images/user_1/")
	assert.Len(t, f.storage.objects, 1)

	f.directory.On("GetUser", mock.Anything, "user_1").
		Return(&model.UserProfile{ID: "user_1", FirstName: "Ada", LastName: "Lovelace", AvatarURL: "https://img/ada"}, nil)

	w = f.do(http.MethodGet, "/api/user/get-published-creations", "user_2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed model.PublishedCreationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Creations, 1)
	assert.Equal(t, url, feed.Creations[0].Content)
	assert.Equal(t, "Ada Lovelace", feed.Creations[0].Author.Name)
}

func TestRemoveImageBackground_MissingFile(t *testing.T) {
	f := newFixture(t, model.PlanFree)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/remove-image-background", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image file is required", decodeBody(t, w)["message"])
}

func TestRemoveImageBackground_NotAnImage(t *testing.T) {
	f := newFixture(t, model.PlanFree)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("just some text, not pixels"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/remove-image-background", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.storage.objects)
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t, model.PlanFree)
	f.text.On("Generate", mock.Anything, mock.Anything).Return("body", nil)

	w := f.do(http.MethodPost, "/api/ai/generate-article", "author", gin.H{"prompt": "x"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/user/get-user-creations", "author", nil)
	var list model.CreationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Creations, 1)
	id := list.Creations[0].ID

	w = f.do(http.MethodPost, "/api/user/toggle-like", "fan", gin.H{"id": id})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Creation Liked", decodeBody(t, w)["message"])

	w = f.do(http.MethodPost, "/api/user/toggle-like", "fan", gin.H{"id": id})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Creation Unliked", decodeBody(t, w)["message"])

	w = f.do(http.MethodPost, "/api/user/toggle-like", "fan", gin.H{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/user/toggle-like", "fan", gin.H{"id": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserCreations_Empty(t *testing.T) {
	f := newFixture(t, model.PlanFree)

	w := f.do(http.MethodGet, "/api/user/get-user-creations", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"creations":[]}`, w.Body.String())
}

func TestUsage(t *testing.T) {
	f := newFixture(t, model.PlanFree)
	f.text.On("Generate", mock.Anything, mock.Anything).Return("body", nil)

	f.do(http.MethodPost, "/api/ai/generate-article", "", gin.H{"prompt": "x"})

	w := f.do(http.MethodGet, "/api/user/usage", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage model.UsageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, model.PlanFree, usage.Plan)

	found := false
	for _, q := range usage.Quotas {
		if q.Bucket == "text" {
			found = true
			assert.Equal(t, int64(1), q.Used)
			assert.Equal(t, int64(9), q.Remaining)
		}
	}
	assert.True(t, found)
}

func TestTestPayment(t *testing.T) {
	f := newFixture(t, model.PlanFree)

	w := f.do(http.MethodPost, "/api/payment/test-payment", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Test payment processed successfully", decodeBody(t, w)["message"])

	grant, err := f.grants.Find(context.Background(), "user_1")
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Equal(t, payment.MethodTestCard, grant.Method)
}

func TestToAppError_UnknownIsGeneric(t *testing.T) {
	f := newFixture(t, model.PlanFree)
	f.router.GET("/boom", func(c *gin.Context) {
		handleError(c, fmt.Errorf("pq: relation \"creations\" does not exist"))
	})

	w := f.do(http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"internal server error","code":"INTERNAL_ERROR"}`, w.Body.String())
}
