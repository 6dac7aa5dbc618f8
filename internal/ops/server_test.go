package ops_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/ops"
	"github.com/snackbot/economy-engine/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	srv := httptest.NewServer(ops.NewServer(st, nil).Router())
	t.Cleanup(srv.Close)
	return srv, st
}

func seedAsset(t *testing.T, st *store.MemoryStore, symbol, class string, price float64) {
	t.Helper()
	err := st.PutAsset(context.Background(), &model.Asset{
		Symbol: symbol,
		Name:   symbol,
		Class:  class,
		Price:  decimal.NewFromFloat(price),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", symbol, err)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestListAssets(t *testing.T) {
	srv, st := newTestServer(t)
	seedAsset(t, st, "BTC", model.ClassCrypto, 50000)
	seedAsset(t, st, "AAPL", model.ClassStocks, 180)

	resp, err := http.Get(srv.URL + "/api/v1/assets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var assets []model.Asset
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}

	// Class filter.
	resp2, err := http.Get(srv.URL + "/api/v1/assets?class=crypto")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()

	assets = nil
	if err := json.NewDecoder(resp2.Body).Decode(&assets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(assets) != 1 || assets[0].Symbol != "BTC" {
		t.Errorf("unexpected filtered listing: %+v", assets)
	}
}

func TestListAssets_EmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/assets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var assets []model.Asset
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if assets == nil {
		t.Error("expected an empty array, not null")
	}
}

func TestGetAsset(t *testing.T) {
	srv, st := newTestServer(t)
	seedAsset(t, st, "BTC", model.ClassCrypto, 50000)

	// The path symbol is normalized before lookup.
	resp, err := http.Get(srv.URL + "/api/v1/assets/btc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var asset model.Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if asset.Symbol != "BTC" || !asset.Price.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("unexpected asset: %+v", asset)
	}
}

func TestGetAsset_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/assets/DOGE")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpsertAsset(t *testing.T) {
	srv, st := newTestServer(t)

	body := `{"symbol":"eth","name":"Ethereum","class":"crypto","price":"3000"}`
	resp, err := http.Post(srv.URL+"/api/v1/assets", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	stored, err := st.GetAsset(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored == nil {
		t.Fatal("asset was not stored")
	}
	if stored.Symbol != "ETH" {
		t.Errorf("symbol should be stored uppercased, got %q", stored.Symbol)
	}
	if !stored.Price.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected price 3000, got %s", stored.Price)
	}
	if stored.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should default to now")
	}
}

func TestUpsertAsset_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "missing symbol", body: `{"class":"crypto","price":"10"}`},
		{name: "bad class", body: `{"symbol":"X","class":"bonds","price":"10"}`},
		{name: "zero price", body: `{"symbol":"X","class":"crypto","price":"0"}`},
		{name: "negative price", body: `{"symbol":"X","class":"crypto","price":"-5"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/assets", "application/json", bytes.NewBufferString(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}
