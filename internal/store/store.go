// Package store defines the persistence interface for the economy engine.
// Implementations include SQLite (default, embedded), PostgreSQL, Redis
// (read-through asset cache), and in-memory (for testing).
//
// Every record is an independently readable/writable key: there are no
// cross-record transactions. Keys follow the "<scope>-<id>" layout:
//
//	balance-<account>   one balance per account
//	stocks-<account>    one position map per account per asset class
//	crypto-<account>
//	streak-<account>    one streak record per account
//	asset-<SYMBOL>      one price/metadata record per asset symbol
//
// Absent keys mean "default state": callers must tolerate the found=false
// result rather than treating it as an error.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/model"
)

// Store is the persistence interface. The unit of atomicity is a single
// key's read or write; cross-key consistency is the caller's concern.
type Store interface {
	// --- Balances ---

	// GetBalance returns the stored balance for an account. found is false
	// when the account has never been written.
	GetBalance(ctx context.Context, account string) (bal decimal.Decimal, found bool, err error)

	// PutBalance unconditionally overwrites the stored balance.
	// Non-negativity is the caller's responsibility.
	PutBalance(ctx context.Context, account string, amount decimal.Decimal) error

	// --- Positions ---

	// GetPositions returns the symbol→position map for one asset class.
	// A never-written account yields an empty, non-nil map.
	GetPositions(ctx context.Context, account, class string) (map[string]*model.Position, error)

	// PutPositions overwrites the position map for one asset class.
	// An empty map deletes the record.
	PutPositions(ctx context.Context, account, class string, positions map[string]*model.Position) error

	// --- Streaks ---

	// GetStreak returns the streak counters for an account; found is false
	// when no wager has ever been recorded.
	GetStreak(ctx context.Context, account string) (s model.Streak, found bool, err error)

	// PutStreak overwrites the streak counters.
	PutStreak(ctx context.Context, account string, s model.Streak) error

	// --- Assets (price oracle records) ---

	// GetAsset returns the asset record for a symbol, or (nil, nil) when
	// the symbol is unknown. Symbols are stored uppercased.
	GetAsset(ctx context.Context, symbol string) (*model.Asset, error)

	// PutAsset creates or overwrites an asset record. Only the external
	// price-refresh collaborator writes assets.
	PutAsset(ctx context.Context, asset *model.Asset) error

	// ListAssets returns all asset records, optionally filtered by class
	// (empty class means all).
	ListAssets(ctx context.Context, class string) ([]model.Asset, error)
}

// Key composition helpers shared by implementations.

func balanceKey(account string) string { return "balance-" + account }
func positionsKey(account, class string) string { return class + "-" + account }
func streakKey(account string) string  { return "streak-" + account }
func assetKey(symbol string) string    { return "asset-" + symbol }
