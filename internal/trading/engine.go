// Package trading converts between cash and asset positions at oracle
// prices, maintaining each position's append-only trade history.
package trading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/events"
	"github.com/snackbot/economy-engine/internal/ledger"
	"github.com/snackbot/economy-engine/internal/metrics"
	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/oracle"
	"github.com/snackbot/economy-engine/internal/store"
)

var (
	// ErrUnknownAsset is returned when a symbol has no price record.
	ErrUnknownAsset = errors.New("trading: unknown asset")

	// ErrNoPosition is returned when selling or querying a symbol the
	// account has never bought.
	ErrNoPosition = errors.New("trading: no position in symbol")

	// ErrInsufficientHoldings is returned when a sell exceeds the
	// position's total.
	ErrInsufficientHoldings = errors.New("trading: insufficient holdings")
)

// Engine executes buys and sells against the ledger and position store.
// Pass nil for hub if event broadcasting is not needed.
type Engine struct {
	store  store.Store
	ledger *ledger.Ledger
	oracle *oracle.Oracle
	hub    *events.Hub
}

// NewEngine creates a trading engine.
func NewEngine(st store.Store, l *ledger.Ledger, o *oracle.Oracle, hub *events.Hub) *Engine {
	return &Engine{store: st, ledger: l, oracle: o, hub: hub}
}

// Receipt summarizes an executed buy or sell.
type Receipt struct {
	Symbol     string
	Class      string
	Side       string // "buy" or "sell"
	Quantity   decimal.Decimal
	Cash       decimal.Decimal
	Price      decimal.Decimal
	NewBalance decimal.Decimal
}

// Buy spends cash on a symbol at the current oracle price. The quantity
// bought is cash/price; the position's history gains a positive entry and
// the balance is debited. Both writes happen only after every check has
// passed.
func (e *Engine) Buy(ctx context.Context, account, symbol string, cash decimal.Decimal) (*Receipt, error) {
	if cash.IsNegative() {
		return nil, ledger.ErrInvalidAmount
	}

	asset, err := e.oracle.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if asset == nil || !asset.Price.IsPositive() {
		return nil, ErrUnknownAsset
	}

	release := e.ledger.Acquire(account)
	defer release()

	bal, err := e.ledger.Balance(ctx, account)
	if err != nil {
		return nil, err
	}
	if bal.LessThan(cash) {
		return nil, ledger.ErrInsufficientFunds
	}

	positions, err := e.store.GetPositions(ctx, account, asset.Class)
	if err != nil {
		return nil, fmt.Errorf("read positions for %s: %w", account, err)
	}

	quantity := cash.Div(asset.Price)

	pos := positions[asset.Symbol]
	if pos == nil {
		pos = &model.Position{Total: decimal.Zero}
		positions[asset.Symbol] = pos
	}
	pos.History = append(pos.History, model.TradeEntry{Quantity: quantity, Cash: cash})
	pos.Total = pos.Total.Add(quantity)

	// A zero-cash buy must not leave a zero-total record behind.
	if pos.Total.IsZero() {
		delete(positions, asset.Symbol)
	}

	if err := e.store.PutPositions(ctx, account, asset.Class, positions); err != nil {
		return nil, fmt.Errorf("write positions for %s: %w", account, err)
	}
	newBal := bal.Sub(cash)
	if err := e.ledger.SetBalance(ctx, account, newBal); err != nil {
		return nil, err
	}

	e.record(account, asset, "buy", quantity, cash)

	return &Receipt{
		Symbol:     asset.Symbol,
		Class:      asset.Class,
		Side:       "buy",
		Quantity:   quantity,
		Cash:       cash,
		Price:      asset.Price,
		NewBalance: newBal,
	}, nil
}

// Sell disposes of part or all of a position at the current oracle price.
// The size argument is absolute ("2.5") or relative ("50%"). The history
// gains a negative entry; a position whose total reaches exactly zero is
// deleted rather than kept at zero.
func (e *Engine) Sell(ctx context.Context, account, symbol, size string) (*Receipt, error) {
	asset, err := e.oracle.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if asset == nil || !asset.Price.IsPositive() {
		return nil, ErrUnknownAsset
	}

	release := e.ledger.Acquire(account)
	defer release()

	positions, err := e.store.GetPositions(ctx, account, asset.Class)
	if err != nil {
		return nil, fmt.Errorf("read positions for %s: %w", account, err)
	}
	pos := positions[asset.Symbol]
	if pos == nil {
		return nil, ErrNoPosition
	}

	quantity, err := ParseQuantity(size, pos.Total)
	if err != nil {
		return nil, err
	}
	if quantity.IsNegative() {
		return nil, ledger.ErrInvalidAmount
	}
	if quantity.GreaterThan(pos.Total) {
		return nil, ErrInsufficientHoldings
	}

	cash := quantity.Mul(asset.Price)

	pos.History = append(pos.History, model.TradeEntry{Quantity: quantity.Neg(), Cash: cash})
	pos.Total = pos.Total.Sub(quantity)
	if pos.Total.IsZero() {
		delete(positions, asset.Symbol)
	}

	if err := e.store.PutPositions(ctx, account, asset.Class, positions); err != nil {
		return nil, fmt.Errorf("write positions for %s: %w", account, err)
	}

	bal, err := e.ledger.Balance(ctx, account)
	if err != nil {
		return nil, err
	}
	newBal := bal.Add(cash)
	if err := e.ledger.SetBalance(ctx, account, newBal); err != nil {
		return nil, err
	}

	e.record(account, asset, "sell", quantity, cash)

	return &Receipt{
		Symbol:     asset.Symbol,
		Class:      asset.Class,
		Side:       "sell",
		Quantity:   quantity,
		Cash:       cash,
		Price:      asset.Price,
		NewBalance: newBal,
	}, nil
}

// CostBasis reports the percent gain of a position against the average of
// its per-trade buy unit costs. Sell entries are excluded from the
// average, and the average is not weighted by trade size. That matches
// the historically displayed P&L and is kept for compatibility.
func (e *Engine) CostBasis(ctx context.Context, account, symbol string) (decimal.Decimal, error) {
	asset, err := e.oracle.Lookup(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if asset == nil || !asset.Price.IsPositive() {
		return decimal.Zero, ErrUnknownAsset
	}

	positions, err := e.store.GetPositions(ctx, account, asset.Class)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read positions for %s: %w", account, err)
	}
	pos := positions[asset.Symbol]
	if pos == nil {
		return decimal.Zero, ErrNoPosition
	}

	unitCostSum := decimal.Zero
	buys := 0
	for _, entry := range pos.History {
		if !entry.Quantity.IsPositive() {
			continue
		}
		unitCostSum = unitCostSum.Add(entry.Cash.Div(entry.Quantity))
		buys++
	}
	if buys == 0 {
		return decimal.Zero, ErrNoPosition
	}

	avgBuyPrice := unitCostSum.Div(decimal.NewFromInt(int64(buys)))
	return asset.Price.Div(avgBuyPrice).Sub(decimal.NewFromInt(1)).Mul(oneHundred), nil
}

// Holding is one row of a portfolio report.
type Holding struct {
	Symbol string
	Total  decimal.Decimal
	Price  decimal.Decimal
	Value  decimal.Decimal
}

// Portfolio lists an account's holdings in one asset class with current
// values. Symbols with no price record are valued at zero.
func (e *Engine) Portfolio(ctx context.Context, account, class string) ([]Holding, error) {
	positions, err := e.store.GetPositions(ctx, account, class)
	if err != nil {
		return nil, fmt.Errorf("read positions for %s: %w", account, err)
	}

	holdings := make([]Holding, 0, len(positions))
	for symbol, pos := range positions {
		h := Holding{Symbol: symbol, Total: pos.Total}
		if asset, err := e.oracle.Lookup(ctx, symbol); err == nil && asset != nil {
			h.Price = asset.Price
			h.Value = pos.Total.Mul(asset.Price)
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// NetWorth is the account balance plus the current value of every
// position across all asset classes, using zero for any symbol whose
// price lookup fails.
func (e *Engine) NetWorth(ctx context.Context, account string) (decimal.Decimal, error) {
	total, err := e.ledger.Balance(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}

	for _, class := range model.Classes {
		holdings, err := e.Portfolio(ctx, account, class)
		if err != nil {
			return decimal.Zero, err
		}
		for _, h := range holdings {
			total = total.Add(h.Value)
		}
	}
	return total, nil
}

func (e *Engine) record(account string, asset *model.Asset, side string, quantity, cash decimal.Decimal) {
	metrics.TradesTotal.WithLabelValues(asset.Class, side).Inc()
	cashF, _ := cash.Float64()
	metrics.TradeVolume.WithLabelValues(asset.Class).Add(cashF)

	slog.Info("trade executed",
		"account", account,
		"symbol", asset.Symbol,
		"class", asset.Class,
		"side", side,
		"qty", quantity.String(),
		"cash", cash.String(),
		"price", asset.Price.String(),
	)

	if e.hub != nil {
		e.hub.Broadcast(events.Event{
			Type:    "trade",
			Account: account,
			Symbol:  asset.Symbol,
			Side:    side,
			Amount:  cash.String(),
		})
	}
}
