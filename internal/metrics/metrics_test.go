package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(resolutions.WithLabelValues("exact", "exact"))
	IncResolution("exact", "exact")
	IncResolution("exact", "exact")
	assert.Equal(t, before+2, testutil.ToFloat64(resolutions.WithLabelValues("exact", "exact")))

	s := testutil.ToFloat64(searches)
	IncSearch()
	assert.Equal(t, s+1, testutil.ToFloat64(searches))

	q := testutil.ToFloat64(quotesGenerated)
	IncQuoteGenerated()
	assert.Equal(t, q+1, testutil.ToFloat64(quotesGenerated))

	failed := testutil.ToFloat64(catalogReloads.WithLabelValues("error"))
	IncCatalogReload(false)
	assert.Equal(t, failed+1, testutil.ToFloat64(catalogReloads.WithLabelValues("error")))
}

func TestGauges(t *testing.T) {
	SetCatalogProducts(1200)
	assert.Equal(t, 1200.0, testutil.ToFloat64(catalogProducts))
	SetSessionsActive(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(sessionsActive))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/search", "200"))
	ObserveRequest("GET", "/search", http.StatusOK, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/search", "200")))
}

func TestHandler(t *testing.T) {
	Register()
	Register() // второй вызов не паникует
	IncSearch()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quote_service_searches_total")
}
