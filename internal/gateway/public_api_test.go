package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"FlashIt/internal/cart"
	"FlashIt/internal/catalog"
	"FlashIt/internal/gateway"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalog.Server{
		Catalog: catalog.New(catalog.Seed()),
		Source:  catalog.NewMemStore(),
	}
	h := catalog.NewHandler(s, catalog.HTTPDeps{Log: zap.NewNop()})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newCartTS(t *testing.T) *httptest.Server {
	t.Helper()

	carts := cart.NewRegistry(cart.RegistryOptions{})
	s := &cart.Server{
		Carts:    carts,
		Sessions: cart.NewSessions("test-secret", time.Hour),
	}
	h := cart.NewHandler(s, cart.HTTPDeps{Log: zap.NewNop()})

	ts := httptest.NewServer(h)
	t.Cleanup(func() {
		ts.Close()
		_ = carts.Close(context.Background())
	})
	return ts
}

func newGatewayTS(t *testing.T, catalogURL, cartURL string) *httptest.Server {
	t.Helper()

	h, err := gateway.NewHandler(
		gateway.Deps{CatalogURL: catalogURL, CartURL: cartURL},
		gateway.HTTPDeps{Log: zap.NewNop()},
	)
	if err != nil {
		t.Fatalf("gateway.NewHandler: %v", err)
	}

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestGateway_PublicAPI_HappyPath(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS := newCartTS(t)
	gwTS := newGatewayTS(t, catalogTS.URL, cartTS.URL)

	c := &http.Client{}

	var detail catalog.Detail
	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/products/4", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("product status=%d body=%s", resp.StatusCode, string(raw))
		}
		if err := json.Unmarshal(raw, &detail); err != nil {
			t.Fatalf("decode product: %v body=%s", err, string(raw))
		}
		if detail.Name != "Smartphone Pro" {
			t.Fatalf("name=%q", detail.Name)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/categories", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("categories status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	var session string
	{
		resp, raw := doJSON(t, c, http.MethodPost, gwTS.URL+"/cart/items", map[string]any{
			"id":       detail.ID,
			"name":     detail.Name,
			"price":    detail.Price,
			"image":    detail.Image,
			"quantity": 1,
		}, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add item status=%d body=%s", resp.StatusCode, string(raw))
		}
		session = resp.Header.Get(cart.SessionHeader)
		if session == "" {
			t.Fatalf("no session token")
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/cart", nil, map[string]string{
			cart.SessionHeader: session,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get cart status=%d body=%s", resp.StatusCode, string(raw))
		}

		var v cart.View
		if err := json.Unmarshal(raw, &v); err != nil {
			t.Fatalf("decode cart: %v body=%s", err, string(raw))
		}
		if len(v.Items) != 1 || v.Items[0].ID != 4 {
			t.Fatalf("items=%+v", v.Items)
		}
		if !v.Totals.Shipping.IsZero() {
			t.Fatalf("shipping=%s want free", v.Totals.Shipping)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/readyz", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("readyz status=%d body=%s", resp.StatusCode, string(raw))
		}
	}
}

func TestGateway_ReadyzFailsWhenUpstreamDown(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS := newCartTS(t)
	cartURL := cartTS.URL
	cartTS.Close()

	gwTS := newGatewayTS(t, catalogTS.URL, cartURL)

	resp, raw := doJSON(t, &http.Client{}, http.MethodGet, gwTS.URL+"/readyz", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}
	if !bytes.Contains(raw, []byte("cart not ready")) {
		t.Fatalf("body=%s", string(raw))
	}

	resp, _ = doJSON(t, &http.Client{}, http.MethodGet, gwTS.URL+"/cart", nil, nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("proxy status=%d", resp.StatusCode)
	}
}

func TestGateway_RejectsRelativeUpstream(t *testing.T) {
	_, err := gateway.NewHandler(gateway.Deps{CatalogURL: "catalog:8082", CartURL: "http://cart"}, gateway.HTTPDeps{})
	if err == nil {
		t.Fatalf("expected error for relative upstream")
	}
}
