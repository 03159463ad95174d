package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framecart/backend/config"
	"github.com/framecart/backend/internal/domain"
	"github.com/framecart/backend/internal/usecase"
)

type stubCatalog struct {
	results   []domain.CatalogResult
	searchErr error
	cart      *domain.Cart
	cartErr   error
	lastQuery string
	lastStore domain.StoreConfig
}

func (s *stubCatalog) Search(_ context.Context, query string, _ int, store domain.StoreConfig) ([]domain.CatalogResult, error) {
	s.lastQuery = query
	s.lastStore = store
	return s.results, s.searchErr
}

func (s *stubCatalog) CreateCart(_ context.Context, _ []domain.CartLine, _ map[string]string, store domain.StoreConfig) (*domain.Cart, error) {
	s.lastStore = store
	return s.cart, s.cartErr
}

type stubExtractor struct{}

func (stubExtractor) ExtractFrames(context.Context, string) ([]string, error) { return nil, nil }

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeFrame(context.Context, []byte) ([]domain.RawDetection, error) {
	return nil, nil
}

type stubFetcher struct{}

func (stubFetcher) FetchVideo(context.Context, string) (string, error) { return "", nil }

type stubStore struct {
	analyses map[string]*domain.VideoAnalysis
}

func (s *stubStore) Get(_ context.Context, id string) (*domain.VideoAnalysis, error) {
	if a, ok := s.analyses[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAnalysisNotFound
}

func (s *stubStore) Set(_ context.Context, a *domain.VideoAnalysis, _ time.Duration) error {
	s.analyses[a.ID] = a
	return nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	delete(s.analyses, id)
	return nil
}

type testEnv struct {
	router  *gin.Engine
	catalog *stubCatalog
	store   *stubStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := &stubCatalog{}
	store := &stubStore{analyses: make(map[string]*domain.VideoAnalysis)}

	analysis := usecase.NewAnalysisService(stubExtractor{}, stubAnalyzer{}, store, usecase.AnalysisServiceConfig{}, zerolog.Nop())
	match := usecase.NewMatchService(catalog, 1, zerolog.Nop())

	handler := NewHandler(
		analysis,
		match,
		catalog,
		stubFetcher{},
		domain.StoreConfig{Domain: "test.myshopify.com", AccessToken: "default-token"},
		usecase.MatchOptions{LimitPerItem: 5, MaxItems: 6},
		zerolog.Nop(),
	)

	cfg := &config.Config{Server: config.Server{
		Environment:    "test",
		AllowedOrigins: []string{"*"},
	}}

	return &testEnv{
		router:  SetupRouter(cfg, handler),
		catalog: catalog,
		store:   store,
	}
}

func (e *testEnv) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "framecart-backend", body["service"])
}

func TestSearchCatalog(t *testing.T) {
	t.Run("requires a query", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.post(t, "/api/v1/catalog/search", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns catalog results", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.results = []domain.CatalogResult{
			{ID: "gid://shopify/Product/1", Title: "Red Runner"},
		}

		w := env.post(t, "/api/v1/catalog/search", map[string]any{"query": "sneaker red"})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "test.myshopify.com", body["store"])
		assert.EqualValues(t, 1, body["count"])
		assert.Equal(t, "sneaker red", env.catalog.lastQuery)
	})

	t.Run("per-request store override replaces the default", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.post(t, "/api/v1/catalog/search", map[string]any{
			"query": "hat",
			"store": map[string]any{"domain": "other.myshopify.com", "access_token": "other-token"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "other.myshopify.com", env.catalog.lastStore.Domain)
		assert.Equal(t, "other-token", env.catalog.lastStore.AccessToken)
	})

	t.Run("maps rate limiting to 429", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.searchErr = domain.ErrRateLimited

		w := env.post(t, "/api/v1/catalog/search", map[string]any{"query": "hat"})
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("maps upstream failures to 502", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.searchErr = &domain.UpstreamError{Status: 500, Body: "boom"}

		w := env.post(t, "/api/v1/catalog/search", map[string]any{"query": "hat"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestMatchFromAnalysis(t *testing.T) {
	t.Run("requires the analysis payload", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.post(t, "/api/v1/catalog/match", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("matches every consolidated item", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.results = []domain.CatalogResult{{ID: "p1", Title: "Blue Hat"}}

		w := env.post(t, "/api/v1/catalog/match", map[string]any{
			"analysis": map[string]any{
				"consolidated_products": []map[string]any{
					{"type": "hat", "color": "blue"},
					{"type": "sneaker", "color": "red"},
				},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		items, ok := body["items"].([]any)
		require.True(t, ok)
		assert.Len(t, items, 2)
	})

	t.Run("reports per-item failures instead of failing the batch", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.searchErr = &domain.UpstreamError{Status: 500, Body: "boom"}

		w := env.post(t, "/api/v1/catalog/match", map[string]any{
			"analysis": map[string]any{
				"consolidated_products": []map[string]any{{"type": "hat", "color": "blue"}},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		items := body["items"].([]any)
		require.Len(t, items, 1)
		item := items[0].(map[string]any)
		assert.NotEmpty(t, item["error"])
		assert.NotNil(t, item["results"])
	})
}

func TestCreateCart(t *testing.T) {
	t.Run("requires at least one line", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.post(t, "/api/v1/cart", map[string]any{"lines": []any{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns the created cart", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.cart = &domain.Cart{CartID: "gid://shopify/Cart/abc", CheckoutURL: "https://x/checkout"}

		w := env.post(t, "/api/v1/cart", map[string]any{
			"lines": []map[string]any{{"variant_id": "gid://shopify/ProductVariant/1", "quantity": 1}},
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "gid://shopify/Cart/abc", body["cart_id"])
		assert.Equal(t, "https://x/checkout", body["checkout_url"])
	})

	t.Run("maps user errors to 422", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.cartErr = &domain.CartCreationError{
			UserErrors: []domain.CartUserError{{Field: []string{"input", "lines"}, Message: "merchandise does not exist"}},
		}

		w := env.post(t, "/api/v1/cart", map[string]any{
			"lines": []map[string]any{{"variant_id": "bad", "quantity": 1}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		body := decodeBody(t, w)
		assert.NotEmpty(t, body["user_errors"])
	})
}

func TestGetAnalysis(t *testing.T) {
	t.Run("returns a stored analysis", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.analyses["a1"] = &domain.VideoAnalysis{ID: "a1", TotalFramesAnalyzed: 4}

		w := env.get(t, "/api/v1/analyses/a1")
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		analysis := body["analysis"].(map[string]any)
		assert.Equal(t, "a1", analysis["id"])
	})

	t.Run("unknown analysis is 404", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.get(t, "/api/v1/analyses/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
