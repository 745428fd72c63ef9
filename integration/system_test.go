//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"
)

const sessionHeader = "X-Cart-Session"

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

type cartView struct {
	Items []struct {
		ID       int `json:"id"`
		Quantity int `json:"quantity"`
	} `json:"items"`
	Totals struct {
		ItemCount int    `json:"itemCount"`
		Total     string `json:"total"`
	} `json:"totals"`
}

// TestSystem_E2E_CartSurvivesRestart browses the catalog through the
// gateway, fills a cart and, with E2E_RESTART_CART=1, checks the cart is
// still there after the cart service restarts.
func TestSystem_E2E_CartSurvivesRestart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var page struct {
		Products []struct {
			ID    int    `json:"id"`
			Name  string `json:"name"`
			Price string `json:"price"`
			Image string `json:"image"`
		} `json:"products"`
	}
	doJSON(t, http.MethodGet, baseURL+"/products/featured", "", nil, &page, 200)
	if len(page.Products) == 0 {
		t.Fatalf("expected featured products")
	}
	p := page.Products[0]

	session := doJSON(t, http.MethodPost, baseURL+"/cart/items", "", map[string]any{
		"id": p.ID, "name": p.Name, "price": p.Price, "image": p.Image, "quantity": 2,
	}, nil, 200)
	if session == "" {
		t.Fatalf("no session token issued")
	}

	var before cartView
	doJSON(t, http.MethodGet, baseURL+"/cart", session, nil, &before, 200)
	if before.Totals.ItemCount != 2 {
		t.Fatalf("itemCount=%d want 2", before.Totals.ItemCount)
	}

	if os.Getenv("E2E_RESTART_CART") == "1" {
		restartContainer(t, ctx, "cart")
		waitReady(t, ctx, baseURL+"/readyz")

		var after cartView
		doJSON(t, http.MethodGet, baseURL+"/cart", session, nil, &after, 200)
		if after.Totals.Total != before.Totals.Total || len(after.Items) != 1 {
			t.Fatalf("cart changed across restart: before=%+v after=%+v", before, after)
		}
	}

	doJSON(t, http.MethodPost, baseURL+"/cart/checkout", session, nil, nil, 200)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

// doJSON sends body with the given cart session and returns the session
// token the server answered with, if any.
func doJSON(t *testing.T, method, url, session string, body any, out any, want int) string {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.Header.Get(sessionHeader)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
