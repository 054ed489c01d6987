package serverhttp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-service/internal/config"
	"quote-service/internal/quote/handler"
	"quote-service/internal/quote/model"
	"quote-service/internal/quote/service"
	"quote-service/internal/session"
)

func newTestRouter(t *testing.T, rps float64, burst int) http.Handler {
	t.Helper()
	cfg := config.Config{
		AllowOrigins:     []string{"https://tienda.cl"},
		MaxUploadMB:      1,
		CatalogHeaderRow: 1,
		SessionTTL:       time.Hour,
		RateLimitRPS:     rps,
		RateLimitBurst:   burst,
		FuzzyThreshold:   0.70,
		SearchLimit:      20,
		DescriptionTopN:  5,
	}
	p := int64(1000)
	cat, err := service.LoadCatalog([]model.Record{{Code: "A100", Description: "filtro de aceite", Price: &p}})
	require.NoError(t, err)
	qh := handler.New(cfg, service.NewEngine(cat, cfg.MatchOptions()), session.NewStore(time.Hour, zerolog.Nop()), zerolog.Nop())
	return NewRouter(cfg, qh, zerolog.Nop())
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ServiceEndpoints(t *testing.T) {
	r := newTestRouter(t, 0, 0)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":1`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quote_service_catalog_products")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/search?q=aceite", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A100")
}

func TestRouter_RequestIDPassthrough(t *testing.T) {
	r := newTestRouter(t, 0, 0)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := serve(r, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(t, 0, 0)

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "https://tienda.cl")
	rec := serve(r, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://tienda.cl", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://otro.cl")
	rec = serve(r, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(t, 0.001, 1)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/search?q=aceite", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/search?q=aceite", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// health и metrics не лимитируются
	rec = serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	r := newTestRouter(t, 0, 0)
	rec := serve(r, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	big := bytes.Repeat([]byte("a100 "), (1<<20)/5+10)
	rec = serve(r, httptest.NewRequest(http.MethodPost, "/sessions/x/documents", bytes.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
