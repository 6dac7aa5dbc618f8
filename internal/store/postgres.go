package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL. Records are JSONB rows
// in a single key/value table; decimal values serialize as JSON strings
// so precision is exact.
//
// Expected schema:
//
//	CREATE TABLE IF NOT EXISTS records (
//	    key   TEXT PRIMARY KEY,
//	    value JSONB NOT NULL
//	)
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a PostgreSQL-backed store and ensures the
// records table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	_, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS records (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) getJSON(ctx context.Context, key string, out any) (bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM records WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *PostgresStore) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO records (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, raw)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM records WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) GetBalance(ctx context.Context, account string) (decimal.Decimal, bool, error) {
	var rec balanceRecord
	found, err := s.getJSON(ctx, balanceKey(account), &rec)
	return rec.Balance, found, err
}

func (s *PostgresStore) PutBalance(ctx context.Context, account string, amount decimal.Decimal) error {
	return s.putJSON(ctx, balanceKey(account), balanceRecord{Balance: amount})
}

func (s *PostgresStore) GetPositions(ctx context.Context, account, class string) (map[string]*model.Position, error) {
	positions := make(map[string]*model.Position)
	if _, err := s.getJSON(ctx, positionsKey(account, class), &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (s *PostgresStore) PutPositions(ctx context.Context, account, class string, positions map[string]*model.Position) error {
	key := positionsKey(account, class)
	if len(positions) == 0 {
		return s.delete(ctx, key)
	}
	return s.putJSON(ctx, key, positions)
}

func (s *PostgresStore) GetStreak(ctx context.Context, account string) (model.Streak, bool, error) {
	var st model.Streak
	found, err := s.getJSON(ctx, streakKey(account), &st)
	return st, found, err
}

func (s *PostgresStore) PutStreak(ctx context.Context, account string, st model.Streak) error {
	return s.putJSON(ctx, streakKey(account), st)
}

func (s *PostgresStore) GetAsset(ctx context.Context, symbol string) (*model.Asset, error) {
	var a model.Asset
	found, err := s.getJSON(ctx, assetKey(symbol), &a)
	if err != nil || !found {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) PutAsset(ctx context.Context, asset *model.Asset) error {
	return s.putJSON(ctx, assetKey(asset.Symbol), asset)
}

func (s *PostgresStore) ListAssets(ctx context.Context, class string) ([]model.Asset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT value FROM records WHERE key LIKE 'asset-%' ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var a model.Asset
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode asset record: %w", err)
		}
		if class != "" && a.Class != class {
			continue
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
