package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing and
// development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu        sync.RWMutex
	balances  map[string]decimal.Decimal
	positions map[string]map[string]*model.Position
	streaks   map[string]model.Streak
	assets    map[string]*model.Asset
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances:  make(map[string]decimal.Decimal),
		positions: make(map[string]map[string]*model.Position),
		streaks:   make(map[string]model.Streak),
		assets:    make(map[string]*model.Asset),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) GetBalance(_ context.Context, account string) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bal, ok := s.balances[balanceKey(account)]
	return bal, ok, nil
}

func (s *MemoryStore) PutBalance(_ context.Context, account string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[balanceKey(account)] = amount
	return nil
}

func (s *MemoryStore) GetPositions(_ context.Context, account, class string) (map[string]*model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.positions[positionsKey(account, class)]
	if !ok {
		return make(map[string]*model.Position), nil
	}
	// Return copies to avoid external mutation of stored state.
	return model.ClonePositions(m), nil
}

func (s *MemoryStore) PutPositions(_ context.Context, account, class string, positions map[string]*model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := positionsKey(account, class)
	if len(positions) == 0 {
		delete(s.positions, key)
		return nil
	}
	s.positions[key] = model.ClonePositions(positions)
	return nil
}

func (s *MemoryStore) GetStreak(_ context.Context, account string) (model.Streak, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.streaks[streakKey(account)]
	return st, ok, nil
}

func (s *MemoryStore) PutStreak(_ context.Context, account string, st model.Streak) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.streaks[streakKey(account)] = st
	return nil
}

func (s *MemoryStore) GetAsset(_ context.Context, symbol string) (*model.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[assetKey(symbol)]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) PutAsset(_ context.Context, asset *model.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *asset
	s.assets[assetKey(asset.Symbol)] = &cp
	return nil
}

func (s *MemoryStore) ListAssets(_ context.Context, class string) ([]model.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := make([]model.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		if class != "" && a.Class != class {
			continue
		}
		assets = append(assets, *a)
	}
	// Stable order for display and tests.
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })
	return assets, nil
}
