package oracle_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/oracle"
	"github.com/snackbot/economy-engine/internal/store"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"btc", "BTC"},
		{"  eth ", "ETH"},
		{"AAPL", "AAPL"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := oracle.Normalize(tc.input); got != tc.want {
			t.Errorf("Normalize(%q): expected %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestLookup(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	err := st.PutAsset(ctx, &model.Asset{
		Symbol: "BTC",
		Name:   "Bitcoin",
		Class:  model.ClassCrypto,
		Price:  decimal.NewFromInt(50000),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	o := oracle.New(st)

	// Lookups normalize before hitting the store.
	for _, symbol := range []string{"BTC", "btc", " Btc "} {
		a, err := o.Lookup(ctx, symbol)
		if err != nil {
			t.Fatalf("lookup %q: %v", symbol, err)
		}
		if a == nil || a.Symbol != "BTC" {
			t.Errorf("lookup %q: expected BTC, got %+v", symbol, a)
		}
	}

	a, err := o.Lookup(ctx, "DOGE")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a != nil {
		t.Errorf("unknown symbol should yield nil, got %+v", a)
	}
}
