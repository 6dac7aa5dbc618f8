package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/model"
)

// CachedStore wraps a primary Store with a Redis read-through cache for
// asset records. Assets are read on every price lookup and written only by
// the price-refresh collaborator, which makes them the one profitable
// thing to cache. Balances, positions, and streaks are deliberately not
// cached: they sit inside read-modify-write cycles where a stale read
// would corrupt state.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Asset cache ---

func (s *CachedStore) GetAsset(ctx context.Context, symbol string) (*model.Asset, error) {
	data, err := s.rdb.Get(ctx, cacheAssetKey(symbol)).Bytes()
	if err == nil {
		var a model.Asset
		if json.Unmarshal(data, &a) == nil {
			return &a, nil
		}
	}

	// Cache miss: read from primary.
	a, err := s.primary.GetAsset(ctx, symbol)
	if err != nil || a == nil {
		return a, err
	}
	s.cacheAsset(ctx, a)
	return a, nil
}

func (s *CachedStore) PutAsset(ctx context.Context, asset *model.Asset) error {
	if err := s.primary.PutAsset(ctx, asset); err != nil {
		return err
	}
	s.cacheAsset(ctx, asset)
	return nil
}

func (s *CachedStore) cacheAsset(ctx context.Context, a *model.Asset) {
	if data, err := json.Marshal(a); err == nil {
		s.rdb.Set(ctx, cacheAssetKey(a.Symbol), data, s.ttl)
	}
}

func cacheAssetKey(symbol string) string { return fmt.Sprintf("asset:%s", symbol) }

// --- Passthrough (read-modify-write state is never cached) ---

func (s *CachedStore) GetBalance(ctx context.Context, account string) (decimal.Decimal, bool, error) {
	return s.primary.GetBalance(ctx, account)
}

func (s *CachedStore) PutBalance(ctx context.Context, account string, amount decimal.Decimal) error {
	return s.primary.PutBalance(ctx, account, amount)
}

func (s *CachedStore) GetPositions(ctx context.Context, account, class string) (map[string]*model.Position, error) {
	return s.primary.GetPositions(ctx, account, class)
}

func (s *CachedStore) PutPositions(ctx context.Context, account, class string, positions map[string]*model.Position) error {
	return s.primary.PutPositions(ctx, account, class, positions)
}

func (s *CachedStore) GetStreak(ctx context.Context, account string) (model.Streak, bool, error) {
	return s.primary.GetStreak(ctx, account)
}

func (s *CachedStore) PutStreak(ctx context.Context, account string, st model.Streak) error {
	return s.primary.PutStreak(ctx, account, st)
}

func (s *CachedStore) ListAssets(ctx context.Context, class string) ([]model.Asset, error) {
	return s.primary.ListAssets(ctx, class)
}
