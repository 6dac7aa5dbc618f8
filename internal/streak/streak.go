// Package streak tracks per-account win/loss streak counters.
package streak

import (
	"context"
	"fmt"

	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/store"
)

// Result is a wager outcome fed to the tracker.
type Result string

const (
	Won  Result = "won"
	Lost Result = "lost"
)

// Tracker loads and updates streak records. One read plus one write per
// update.
type Tracker struct {
	store store.Store
}

// New creates a tracker over the given store.
func New(st store.Store) *Tracker {
	return &Tracker{store: st}
}

// Get returns the account's counters, zeroed if none exist yet.
func (t *Tracker) Get(ctx context.Context, account string) (model.Streak, error) {
	s, _, err := t.store.GetStreak(ctx, account)
	if err != nil {
		return model.Streak{}, fmt.Errorf("read streak for %s: %w", account, err)
	}
	return s, nil
}

// Update applies one outcome to the account's counters and returns the
// new state. A win banks the losing streak into its high-water mark and
// resets it; a loss does the symmetric thing.
func (t *Tracker) Update(ctx context.Context, account string, r Result) (model.Streak, error) {
	s, err := t.Get(ctx, account)
	if err != nil {
		return model.Streak{}, err
	}

	switch r {
	case Won:
		if s.CurrentLose > s.HighestLose {
			s.HighestLose = s.CurrentLose
		}
		s.TotalWin++
		s.CurrentWin++
		s.CurrentLose = 0
	case Lost:
		if s.CurrentWin > s.HighestWin {
			s.HighestWin = s.CurrentWin
		}
		s.TotalLose++
		s.CurrentLose++
		s.CurrentWin = 0
	default:
		return model.Streak{}, fmt.Errorf("streak: unknown result %q", r)
	}

	if err := t.store.PutStreak(ctx, account, s); err != nil {
		return model.Streak{}, fmt.Errorf("write streak for %s: %w", account, err)
	}
	return s, nil
}
