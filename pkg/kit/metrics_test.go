package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstrumented(t *testing.T, deps MetricsDeps) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	Instrument(r, deps)
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url, token string) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestInstrument_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := newInstrumented(t, MetricsDeps{Service: "catalog", Registry: reg})

	get(t, ts.URL+"/products/1", "")
	get(t, ts.URL+"/products/2", "")
	get(t, ts.URL+"/nope/123", "")

	families, err := reg.Gather()
	require.NoError(t, err)

	paths := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "flashit_http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == labelPath {
					paths[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"/products/{id}": 2, unmatchedRoute: 1}, paths)
}

func TestInstrument_MetricsEndpointAuth(t *testing.T) {
	ts := newInstrumented(t, MetricsDeps{Service: "cart", Registry: prometheus.NewRegistry(), Enabled: true, Token: "s3cret"})

	assert.Equal(t, http.StatusForbidden, get(t, ts.URL+"/metrics", ""))
	assert.Equal(t, http.StatusForbidden, get(t, ts.URL+"/metrics", "wrong"))
	assert.Equal(t, http.StatusOK, get(t, ts.URL+"/metrics", "s3cret"))

	closed := newInstrumented(t, MetricsDeps{Service: "cart", Registry: prometheus.NewRegistry(), Enabled: true})
	assert.Equal(t, http.StatusForbidden, get(t, closed.URL+"/metrics", ""))
}
