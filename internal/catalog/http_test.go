package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"FlashIt/internal/catalog"
	"FlashIt/pkg/kit"
)

func newCatalogTS(t *testing.T, metrics kit.MetricsDeps) *httptest.Server {
	t.Helper()

	store := catalog.NewMemStore()
	s := &catalog.Server{
		Catalog: catalog.New(catalog.Seed()),
		Source:  store,
		Log:     zap.NewNop(),
	}

	ts := httptest.NewServer(catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Metrics: metrics,
	}))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestCatalogHTTP_Products(t *testing.T) {
	ts := newCatalogTS(t, kit.MetricsDeps{})

	var page catalog.Page
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/products", &page))
	assert.Equal(t, "All Products", page.Title)
	assert.Len(t, page.Products, 10)

	page = catalog.Page{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/products?category=books", &page))
	assert.Equal(t, "Books Products", page.Title)
	assert.Len(t, page.Products, 2)

	page = catalog.Page{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/products?q=coffee", &page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, 12, page.Products[0].ID)

	page = catalog.Page{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/products/featured", &page))
	assert.Len(t, page.Products, 6)
}

func TestCatalogHTTP_Detail(t *testing.T) {
	ts := newCatalogTS(t, kit.MetricsDeps{})

	var d catalog.Detail
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/products/15", &d))
	assert.Equal(t, "Classic Literature Collection", d.Name)
	assert.Equal(t, "₹499.99", d.PriceLabel)
	assert.Len(t, d.QuantityOptions, 10)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/products/5", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/products/abc", nil))
}

func TestCatalogHTTP_CategoriesAndProbes(t *testing.T) {
	ts := newCatalogTS(t, kit.MetricsDeps{})

	var cats []string
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/categories", &cats))
	assert.Equal(t, []string{"electronics", "fashion", "home", "books"}, cats)

	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/readyz", nil))
}

func TestCatalogHTTP_MetricsRequireToken(t *testing.T) {
	ts := newCatalogTS(t, kit.MetricsDeps{
		Service:  "catalog",
		Registry: prometheus.NewRegistry(),
		Enabled:  true,
		Token:    "metrics-token",
	})

	assert.Equal(t, http.StatusForbidden, getJSON(t, ts.URL+"/metrics", nil))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer metrics-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
