package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/store"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Every Store implementation must satisfy the same record semantics, so
// the suite runs against each backend.
func TestStoreConformance(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) store.Store
	}{
		{
			name: "memory",
			open: func(t *testing.T) store.Store {
				return store.NewMemoryStore()
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) store.Store {
				s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "economy.db"))
				if err != nil {
					t.Fatalf("open sqlite: %v", err)
				}
				t.Cleanup(func() { s.Close() })
				return s
			},
		},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			t.Run("balances", func(t *testing.T) { testBalances(t, backend.open(t)) })
			t.Run("positions", func(t *testing.T) { testPositions(t, backend.open(t)) })
			t.Run("streaks", func(t *testing.T) { testStreaks(t, backend.open(t)) })
			t.Run("assets", func(t *testing.T) { testAssets(t, backend.open(t)) })
		})
	}
}

func testBalances(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, found, err := s.GetBalance(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Error("unseen account should report found=false")
	}

	if err := s.PutBalance(ctx, "alice", d(123.45)); err != nil {
		t.Fatalf("put: %v", err)
	}
	bal, found, err := s.GetBalance(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || !bal.Equal(d(123.45)) {
		t.Errorf("expected 123.45 found, got %s found=%v", bal, found)
	}

	// Overwrite, including down to zero.
	if err := s.PutBalance(ctx, "alice", decimal.Zero); err != nil {
		t.Fatalf("put: %v", err)
	}
	bal, found, _ = s.GetBalance(ctx, "alice")
	if !found || !bal.IsZero() {
		t.Errorf("expected zero found, got %s found=%v", bal, found)
	}
}

func testPositions(t *testing.T, s store.Store) {
	ctx := context.Background()

	positions, err := s.GetPositions(ctx, "alice", model.ClassCrypto)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if positions == nil || len(positions) != 0 {
		t.Errorf("unseen record should be an empty non-nil map, got %v", positions)
	}

	written := map[string]*model.Position{
		"BTC": {
			Total: d(2),
			History: []model.TradeEntry{
				{Quantity: d(3), Cash: d(150)},
				{Quantity: d(-1), Cash: d(50)},
			},
		},
	}
	if err := s.PutPositions(ctx, "alice", model.ClassCrypto, written); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetPositions(ctx, "alice", model.ClassCrypto)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	pos := got["BTC"]
	if pos == nil || !pos.Total.Equal(d(2)) || len(pos.History) != 2 {
		t.Fatalf("roundtrip mismatch: %+v", pos)
	}
	if !pos.History[1].Quantity.Equal(d(-1)) || !pos.History[1].Cash.Equal(d(50)) {
		t.Errorf("history entry mismatch: %+v", pos.History[1])
	}

	// Classes are separate records.
	other, err := s.GetPositions(ctx, "alice", model.ClassStocks)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("stocks record should be empty, got %v", other)
	}

	// Mutating the returned map must not leak into the store.
	got["BTC"].Total = d(99)
	delete(got, "BTC")
	reread, _ := s.GetPositions(ctx, "alice", model.ClassCrypto)
	if pos := reread["BTC"]; pos == nil || !pos.Total.Equal(d(2)) {
		t.Errorf("store state leaked through returned map: %+v", pos)
	}

	// An empty map deletes the record.
	if err := s.PutPositions(ctx, "alice", model.ClassCrypto, map[string]*model.Position{}); err != nil {
		t.Fatalf("put empty: %v", err)
	}
	deleted, _ := s.GetPositions(ctx, "alice", model.ClassCrypto)
	if len(deleted) != 0 {
		t.Errorf("record should be deleted, got %v", deleted)
	}
}

func testStreaks(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, found, err := s.GetStreak(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Error("unseen account should report found=false")
	}

	written := model.Streak{CurrentWin: 2, HighestWin: 5, TotalWin: 9, TotalLose: 4}
	if err := s.PutStreak(ctx, "alice", written); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, found, err := s.GetStreak(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || got != written {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func testAssets(t *testing.T, s store.Store) {
	ctx := context.Background()

	a, err := s.GetAsset(ctx, "BTC")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a != nil {
		t.Errorf("unknown symbol should yield nil, got %+v", a)
	}

	now := time.Now().UTC().Truncate(time.Second)
	for _, asset := range []model.Asset{
		{Symbol: "BTC", Name: "Bitcoin", Class: model.ClassCrypto, Price: d(50000), UpdatedAt: now},
		{Symbol: "AAPL", Name: "Apple", Class: model.ClassStocks, Price: d(180), UpdatedAt: now},
		{Symbol: "ETH", Name: "Ethereum", Class: model.ClassCrypto, Price: d(3000), UpdatedAt: now},
	} {
		asset := asset
		if err := s.PutAsset(ctx, &asset); err != nil {
			t.Fatalf("put %s: %v", asset.Symbol, err)
		}
	}

	got, err := s.GetAsset(ctx, "BTC")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != "Bitcoin" || !got.Price.Equal(d(50000)) {
		t.Errorf("roundtrip mismatch: %+v", got)
	}

	// Upsert overwrites in place.
	if err := s.PutAsset(ctx, &model.Asset{Symbol: "BTC", Name: "Bitcoin", Class: model.ClassCrypto, Price: d(60000), UpdatedAt: now}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ = s.GetAsset(ctx, "BTC")
	if !got.Price.Equal(d(60000)) {
		t.Errorf("expected updated price 60000, got %s", got.Price)
	}

	all, err := s.ListAssets(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(all))
	}
	// Symbol-sorted: AAPL, BTC, ETH.
	if all[0].Symbol != "AAPL" || all[1].Symbol != "BTC" || all[2].Symbol != "ETH" {
		t.Errorf("unexpected order: %s %s %s", all[0].Symbol, all[1].Symbol, all[2].Symbol)
	}

	crypto, err := s.ListAssets(ctx, model.ClassCrypto)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(crypto) != 2 || crypto[0].Symbol != "BTC" || crypto[1].Symbol != "ETH" {
		t.Errorf("unexpected crypto listing: %+v", crypto)
	}
}
