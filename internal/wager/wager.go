// Package wager implements the gambling games: coinflip, lottery, slots,
// and blackjack. Each game computes its outcome from a random draw and a
// bet, then realizes it as a single balance read-modify-write cycle under
// the account's lock. Games never persist transient state.
package wager

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/events"
	"github.com/snackbot/economy-engine/internal/ledger"
	"github.com/snackbot/economy-engine/internal/metrics"
	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/streak"
)

var (
	// ErrInvalidChoice is returned for a malformed enum-like argument,
	// e.g. a coin side that is neither heads nor tails.
	ErrInvalidChoice = errors.New("wager: invalid choice")

	// ErrBetLimitExceeded is returned when a bet exceeds the configured
	// table maximum.
	ErrBetLimitExceeded = errors.New("wager: bet exceeds table limit")

	// ErrGameOver is returned when acting on an already-resolved
	// blackjack game.
	ErrGameOver = errors.New("wager: game already resolved")
)

// Source supplies uniform, independent random draws. *math/rand.Rand
// satisfies it; tests inject scripted sources.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Engine runs the games against the ledger. MaxBet of zero means no
// table limit. Pass nil for hub if event broadcasting is not needed.
type Engine struct {
	ledger  *ledger.Ledger
	streaks *streak.Tracker
	rng     Source
	maxBet  decimal.Decimal
	hub     *events.Hub
}

// NewEngine creates a wagering engine.
func NewEngine(l *ledger.Ledger, st *streak.Tracker, rng Source, maxBet decimal.Decimal, hub *events.Hub) *Engine {
	return &Engine{ledger: l, streaks: st, rng: rng, maxBet: maxBet, hub: hub}
}

func (e *Engine) checkLimit(bet decimal.Decimal) error {
	if e.maxBet.IsPositive() && bet.GreaterThan(e.maxBet) {
		return ErrBetLimitExceeded
	}
	return nil
}

// floorBalance applies the inherited non-positive-floor quirk: a balance
// at or below 1 is granted 1 unit before the bet is evaluated.
func floorBalance(bal decimal.Decimal) decimal.Decimal {
	if bal.LessThanOrEqual(decimal.NewFromInt(1)) {
		return bal.Add(decimal.NewFromInt(1))
	}
	return bal
}

// FlipResult is the outcome of a coinflip.
type FlipResult struct {
	Call       string // normalized "h" or "t"
	Side       string // drawn side
	Won        bool
	Bet        decimal.Decimal
	NewBalance decimal.Decimal
}

// Coinflip wagers bet on a coin side ("h"/"heads" or "t"/"tails"). A zero
// bet is an allowed no-op wager; a negative bet is invalid.
func (e *Engine) Coinflip(ctx context.Context, account, call string, bet decimal.Decimal) (*FlipResult, error) {
	side, ok := normalizeCall(call)
	if !ok {
		return nil, ErrInvalidChoice
	}
	if bet.IsNegative() {
		return nil, ledger.ErrInvalidAmount
	}
	if err := e.checkLimit(bet); err != nil {
		return nil, err
	}

	release := e.ledger.Acquire(account)
	defer release()

	bal, err := e.ledger.Balance(ctx, account)
	if err != nil {
		return nil, err
	}
	bal = floorBalance(bal)
	if bet.GreaterThan(bal) {
		return nil, ledger.ErrInsufficientFunds
	}

	drawn := coinSides[e.rng.Intn(len(coinSides))]
	won := drawn == side

	newBal := bal.Sub(bet)
	if won {
		newBal = bal.Add(bet)
	}
	if err := e.ledger.SetBalance(ctx, account, newBal); err != nil {
		return nil, err
	}

	e.record(account, "coinflip", won, bet)

	return &FlipResult{
		Call:       side,
		Side:       drawn,
		Won:        won,
		Bet:        bet,
		NewBalance: newBal,
	}, nil
}

var coinSides = [2]string{"h", "t"}

func normalizeCall(call string) (string, bool) {
	switch normalized := normalize(call); normalized {
	case "h", "heads":
		return "h", true
	case "t", "tails":
		return "t", true
	default:
		return "", false
	}
}

// LotteryResult is the outcome of a lottery draw.
type LotteryResult struct {
	Number     int // drawn 1..100; 50 wins
	Won        bool
	Bet        decimal.Decimal
	Payout     decimal.Decimal // credited on win (99x the bet)
	NewBalance decimal.Decimal
}

// Lottery draws one of 100 numbers; only 50 wins, paying 99x the bet.
func (e *Engine) Lottery(ctx context.Context, account string, bet decimal.Decimal) (*LotteryResult, error) {
	if !bet.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if err := e.checkLimit(bet); err != nil {
		return nil, err
	}

	release := e.ledger.Acquire(account)
	defer release()

	bal, err := e.ledger.Balance(ctx, account)
	if err != nil {
		return nil, err
	}
	if bet.GreaterThan(bal) {
		return nil, ledger.ErrInsufficientFunds
	}

	number := e.rng.Intn(100) + 1
	won := number == 50

	payout := bet.Mul(decimal.NewFromInt(99))
	newBal := bal.Sub(bet)
	if won {
		newBal = bal.Add(payout)
	}
	if err := e.ledger.SetBalance(ctx, account, newBal); err != nil {
		return nil, err
	}

	e.record(account, "lottery", won, bet)

	return &LotteryResult{
		Number:     number,
		Won:        won,
		Bet:        bet,
		Payout:     payout,
		NewBalance: newBal,
	}, nil
}

// Streak returns the account's current streak counters.
func (e *Engine) Streak(ctx context.Context, account string) (model.Streak, error) {
	return e.streaks.Get(ctx, account)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (e *Engine) record(account, game string, won bool, bet decimal.Decimal) {
	outcome := "lost"
	if won {
		outcome = "won"
	}
	e.recordOutcome(account, game, outcome, bet)
}

func (e *Engine) recordOutcome(account, game, outcome string, bet decimal.Decimal) {
	metrics.WagersTotal.WithLabelValues(game, outcome).Inc()
	betF, _ := bet.Float64()
	metrics.WagerVolume.WithLabelValues(game).Add(betF)

	slog.Info("wager resolved",
		"account", account,
		"game", game,
		"outcome", outcome,
		"bet", bet.String(),
	)

	if e.hub != nil {
		e.hub.Broadcast(events.Event{
			Type:    "wager",
			Account: account,
			Game:    game,
			Outcome: outcome,
			Amount:  bet.String(),
		})
	}
}
