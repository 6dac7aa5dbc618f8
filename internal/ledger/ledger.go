// Package ledger manages account cash balances. Accounts are created
// lazily: reading an unseen account yields the starting grant.
//
// Mutations of the same account are serialized through a per-account keyed
// mutex. Engines that compose their own read-modify-write cycle (trading,
// wagering) must hold the account lock via Acquire across the whole cycle.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/store"
)

var (
	// ErrInvalidAmount is returned for a negative, zero-where-forbidden,
	// or unparseable amount.
	ErrInvalidAmount = errors.New("ledger: invalid amount")

	// ErrInsufficientFunds is returned when an account's balance cannot
	// cover the requested debit.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
)

// StartingBalance is the grant every unseen account begins with.
var StartingBalance = decimal.NewFromInt(1000)

// Ledger provides balance reads and writes over a Store.
type Ledger struct {
	store store.Store
	locks *keyedMutex
}

// New creates a ledger over the given store.
func New(st store.Store) *Ledger {
	return &Ledger{
		store: st,
		locks: newKeyedMutex(),
	}
}

// Acquire locks the given account for a read-modify-write cycle and
// returns the release function. Callers must release exactly once.
func (l *Ledger) Acquire(account string) (release func()) {
	return l.locks.acquire(account)
}

// Balance returns the account's balance, or the starting grant for an
// account that has never been written.
func (l *Ledger) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	bal, found, err := l.store.GetBalance(ctx, account)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read balance for %s: %w", account, err)
	}
	if !found {
		return StartingBalance, nil
	}
	return bal, nil
}

// SetBalance unconditionally overwrites the account's balance. It does not
// validate non-negativity; callers must pre-check before writing.
func (l *Ledger) SetBalance(ctx context.Context, account string, amount decimal.Decimal) error {
	if err := l.store.PutBalance(ctx, account, amount); err != nil {
		return fmt.Errorf("write balance for %s: %w", account, err)
	}
	return nil
}

// Deposit adds a non-negative delta to the account's balance and returns
// the new balance. Negative deltas fail with ErrInvalidAmount; debits go
// through Transfer or an engine's own settle cycle instead.
func (l *Ledger) Deposit(ctx context.Context, account string, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}

	release := l.Acquire(account)
	defer release()

	bal, err := l.Balance(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	next := bal.Add(delta)
	if err := l.SetBalance(ctx, account, next); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

// Transfer moves amount from one account to another. The debit and credit
// are two independent writes sequenced debit-first; there is no cross-key
// transaction, so a store failure between them leaves a detectable
// inconsistency rather than a silent retry.
func (l *Ledger) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if from == to {
		return nil
	}

	// Lock both accounts in a fixed order to avoid deadlock between two
	// opposing transfers.
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	releaseFirst := l.Acquire(first)
	defer releaseFirst()
	releaseSecond := l.Acquire(second)
	defer releaseSecond()

	fromBal, err := l.Balance(ctx, from)
	if err != nil {
		return err
	}
	if fromBal.LessThan(amount) {
		return ErrInsufficientFunds
	}
	toBal, err := l.Balance(ctx, to)
	if err != nil {
		return err
	}

	if err := l.SetBalance(ctx, from, fromBal.Sub(amount)); err != nil {
		return err
	}
	return l.SetBalance(ctx, to, toBal.Add(amount))
}
