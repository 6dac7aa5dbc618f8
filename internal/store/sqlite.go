package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/snackbot/economy-engine/internal/model"
)

// balanceRecord is the JSON envelope for a stored balance. decimal values
// serialize as strings, so NUMERIC precision survives the round trip.
type balanceRecord struct {
	Balance decimal.Decimal `json:"balance"`
}

// SQLiteStore implements Store backed by a single key/value table in a
// SQLite database. This is the default for single-host bot deployments.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and
// ensures the records table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// The driver is not safe for concurrent writers on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) getJSON(ctx context.Context, key string, out any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetBalance(ctx context.Context, account string) (decimal.Decimal, bool, error) {
	var rec balanceRecord
	found, err := s.getJSON(ctx, balanceKey(account), &rec)
	return rec.Balance, found, err
}

func (s *SQLiteStore) PutBalance(ctx context.Context, account string, amount decimal.Decimal) error {
	return s.putJSON(ctx, balanceKey(account), balanceRecord{Balance: amount})
}

func (s *SQLiteStore) GetPositions(ctx context.Context, account, class string) (map[string]*model.Position, error) {
	positions := make(map[string]*model.Position)
	if _, err := s.getJSON(ctx, positionsKey(account, class), &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (s *SQLiteStore) PutPositions(ctx context.Context, account, class string, positions map[string]*model.Position) error {
	key := positionsKey(account, class)
	if len(positions) == 0 {
		return s.delete(ctx, key)
	}
	return s.putJSON(ctx, key, positions)
}

func (s *SQLiteStore) GetStreak(ctx context.Context, account string) (model.Streak, bool, error) {
	var st model.Streak
	found, err := s.getJSON(ctx, streakKey(account), &st)
	return st, found, err
}

func (s *SQLiteStore) PutStreak(ctx context.Context, account string, st model.Streak) error {
	return s.putJSON(ctx, streakKey(account), st)
}

func (s *SQLiteStore) GetAsset(ctx context.Context, symbol string) (*model.Asset, error) {
	var a model.Asset
	found, err := s.getJSON(ctx, assetKey(symbol), &a)
	if err != nil || !found {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) PutAsset(ctx context.Context, asset *model.Asset) error {
	return s.putJSON(ctx, assetKey(asset.Symbol), asset)
}

func (s *SQLiteStore) ListAssets(ctx context.Context, class string) ([]model.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM records WHERE key LIKE 'asset-%' ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var a model.Asset
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decode asset record: %w", err)
		}
		if class != "" && a.Class != class {
			continue
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
