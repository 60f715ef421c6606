//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

type cartResp struct {
	Items []struct {
		Product struct {
			ID int64 `json:"id"`
		} `json:"product"`
		Quantity int `json:"quantity"`
	} `json:"items"`
	Subtotal  float64 `json:"subtotal"`
	LineCount int     `json:"lineCount"`
}

func TestSystem_E2E_CartSurvivesRestart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	email := fmt.Sprintf("user_%d_%d@example.com", time.Now().Unix(), rand.Intn(100000))
	pass := "password123!"

	doJSON(t, http.MethodPost, baseURL+"/session/register", map[string]any{
		"firstName":       "E2E",
		"lastName":        "User",
		"email":           email,
		"password":        pass,
		"confirmPassword": pass,
	}, nil, 201)

	doJSON(t, http.MethodDelete, baseURL+"/cart", nil, nil, 200)

	var list struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
		Status string `json:"status"`
	}
	doJSON(t, http.MethodPost, baseURL+"/products/fetch", nil, &list, 200)
	if list.Status != "succeeded" || len(list.Items) == 0 {
		t.Fatalf("expected products, got status=%q n=%d", list.Status, len(list.Items))
	}
	pid := list.Items[0].ID

	var c cartResp
	doJSON(t, http.MethodPost, baseURL+"/cart/items", map[string]any{"product_id": pid}, &c, 200)
	doJSON(t, http.MethodPost, baseURL+"/cart/items", map[string]any{"product_id": pid}, &c, 200)
	if c.LineCount != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %#v", c)
	}

	if os.Getenv("E2E_RESTART_STOREFRONT") == "1" {
		restartStorefrontContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")

		var after cartResp
		doJSON(t, http.MethodGet, baseURL+"/cart", nil, &after, 200)
		if after.LineCount != 1 || after.Subtotal != c.Subtotal {
			t.Fatalf("cart not restored: before=%#v after=%#v", c, after)
		}
	}

	var order struct {
		ID string `json:"orderId"`
	}
	doJSON(t, http.MethodPost, baseURL+"/checkout", map[string]any{
		"firstName":     "E2E",
		"lastName":      "User",
		"address":       "1 Test St",
		"city":          "Testville",
		"zipCode":       "12345",
		"country":       "US",
		"paymentMethod": "paypal",
	}, &order, 201)
	if order.ID == "" {
		t.Fatalf("order id missing")
	}
	doJSON(t, http.MethodPost, baseURL+"/checkout/"+order.ID+"/confirm", nil, nil, 200)

	doJSON(t, http.MethodGet, baseURL+"/cart", nil, &c, 200)
	if c.LineCount != 0 {
		t.Fatalf("cart not cleared after confirm: %#v", c)
	}

	doJSON(t, http.MethodPost, baseURL+"/session/logout", nil, nil, 200)
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

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
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
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
