// Package model defines the core domain types shared across the economy engine.
// All monetary values use shopspring/decimal, never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset classes. Positions are persisted per class so a user can hold the
// same ticker as both a stock and a crypto without collision.
const (
	ClassStocks = "stocks"
	ClassCrypto = "crypto"
)

// Classes lists every known asset class.
var Classes = []string{ClassStocks, ClassCrypto}

// Asset is a tradable symbol with its current price and display metadata.
// Written only by the external price-refresh collaborator; the engine
// treats assets as read-only.
type Asset struct {
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Class             string          `json:"class"` // "stocks" or "crypto"
	Price             decimal.Decimal `json:"price"`
	Change24h         decimal.Decimal `json:"change_24h"`
	MarketCap         decimal.Decimal `json:"market_cap"`
	CirculatingSupply decimal.Decimal `json:"circulating_supply"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TradeEntry is one row of a position's append-only trade history.
// Quantity is signed: positive entries are buys, negative are sells.
// Cash is the unsigned cash value exchanged for the trade.
type TradeEntry struct {
	Quantity decimal.Decimal `json:"quantity"`
	Cash     decimal.Decimal `json:"cash"`
}

// Position is a user's holding in one symbol: the current net quantity and
// the full trade history. Invariant: Total equals the sum of all history
// quantities, and a position is deleted outright when Total reaches zero.
type Position struct {
	Total   decimal.Decimal `json:"total"`
	History []TradeEntry    `json:"history"`
}

// Clone returns a deep copy so stored positions cannot be mutated through
// a returned reference.
func (p *Position) Clone() *Position {
	cp := &Position{Total: p.Total}
	if p.History != nil {
		cp.History = make([]TradeEntry, len(p.History))
		copy(cp.History, p.History)
	}
	return cp
}

// ClonePositions deep-copies a symbol→position map.
func ClonePositions(m map[string]*Position) map[string]*Position {
	out := make(map[string]*Position, len(m))
	for sym, p := range m {
		out[sym] = p.Clone()
	}
	return out
}

// Streak holds a user's win/loss streak counters. Totals and highs are
// monotonically non-decreasing; the current counters reset when the
// outcome flips.
type Streak struct {
	CurrentWin  int `json:"current_win"`
	CurrentLose int `json:"current_lose"`
	HighestWin  int `json:"highest_win"`
	HighestLose int `json:"highest_lose"`
	TotalWin    int `json:"total_win"`
	TotalLose   int `json:"total_lose"`
}
