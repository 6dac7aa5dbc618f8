package wager

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/ledger"
	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/streak"
)

// reelSymbols is the 13-symbol slot alphabet. Each of the four reels
// draws independently and uniformly from it.
var reelSymbols = [13]string{
	"🍒", "🍋", "🍊", "🍉", "🍇", "🍓", "🍍", "🥝", "🔔", "⭐", "💎", "🪙", "🎰",
}

// Slot payout multipliers by pattern tier.
const (
	payoutFourOfAKind  = 100
	payoutThreeOfAKind = 10
	payoutTwoPair      = 10
	payoutOnePair      = 1
	payoutNone         = -1
)

// SpinResult is the outcome of a slot spin.
type SpinResult struct {
	Reels      [4]string
	Multiplier int64 // bet multiplier; -1 is a full loss
	Won        bool
	Bet        decimal.Decimal
	Delta      decimal.Decimal // signed balance change
	NewBalance decimal.Decimal
	Streak     model.Streak
}

// Spin draws four reels and settles bet × multiplier against the balance.
// The balance gets the same non-positive-floor treatment as coinflip, and
// the result feeds the streak tracker.
func (e *Engine) Spin(ctx context.Context, account string, bet decimal.Decimal) (*SpinResult, error) {
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

	var reels [4]string
	for i := range reels {
		reels[i] = reelSymbols[e.rng.Intn(len(reelSymbols))]
	}

	mult := evaluateReels(reels)
	delta := bet.Mul(decimal.NewFromInt(mult))
	newBal := bal.Add(delta)

	if err := e.ledger.SetBalance(ctx, account, newBal); err != nil {
		return nil, err
	}

	won := mult > 0
	result := streak.Lost
	if won {
		result = streak.Won
	}
	st, err := e.streaks.Update(ctx, account, result)
	if err != nil {
		return nil, err
	}

	e.record(account, "slots", won, bet)

	return &SpinResult{
		Reels:      reels,
		Multiplier: mult,
		Won:        won,
		Bet:        bet,
		Delta:      delta,
		NewBalance: newBal,
		Streak:     st,
	}, nil
}

// evaluateReels maps a four-reel draw to its payout multiplier. Tiers are
// checked in precedence order; the equality relations they test are
// disjoint, so exactly one tier applies to any draw.
func evaluateReels(r [4]string) int64 {
	a, b, c, d := r[0], r[1], r[2], r[3]
	switch {
	case a == b && b == c && c == d:
		return payoutFourOfAKind
	case (a == b && b == c) || (a == b && b == d) || (a == c && c == d) || (b == c && c == d):
		return payoutThreeOfAKind
	case (a == b && c == d) || (a == c && b == d) || (a == d && b == c):
		return payoutTwoPair
	case a == b || a == c || a == d || b == c || b == d || c == d:
		return payoutOnePair
	default:
		return payoutNone
	}
}
