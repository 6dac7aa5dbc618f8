package streak_test

import (
	"context"
	"testing"

	"github.com/snackbot/economy-engine/internal/store"
	"github.com/snackbot/economy-engine/internal/streak"
)

func TestGet_DefaultsToZero(t *testing.T) {
	tracker := streak.New(store.NewMemoryStore())

	s, err := tracker.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.CurrentWin != 0 || s.CurrentLose != 0 || s.TotalWin != 0 || s.TotalLose != 0 {
		t.Errorf("expected zeroed counters, got %+v", s)
	}
}

func TestUpdate_Sequence(t *testing.T) {
	tracker := streak.New(store.NewMemoryStore())
	ctx := context.Background()

	// Outcomes with the expected counters after each.
	steps := []struct {
		result                  streak.Result
		curWin, curLose         int
		highWin, highLose       int
		totalWin, totalLose     int
	}{
		{streak.Won, 1, 0, 0, 0, 1, 0},
		{streak.Won, 2, 0, 0, 0, 2, 0},
		{streak.Lost, 0, 1, 2, 0, 2, 1},
		{streak.Lost, 0, 2, 2, 0, 2, 2},
		{streak.Lost, 0, 3, 2, 0, 2, 3},
		{streak.Won, 1, 0, 2, 3, 3, 3},
		{streak.Won, 2, 0, 2, 3, 4, 3},
		{streak.Won, 3, 0, 2, 3, 5, 3},
		{streak.Lost, 0, 1, 3, 3, 5, 4},
	}

	for n, step := range steps {
		s, err := tracker.Update(ctx, "alice", step.result)
		if err != nil {
			t.Fatalf("step %d: %v", n, err)
		}
		if s.CurrentWin != step.curWin || s.CurrentLose != step.curLose {
			t.Errorf("step %d: expected current %dW/%dL, got %dW/%dL",
				n, step.curWin, step.curLose, s.CurrentWin, s.CurrentLose)
		}
		if s.HighestWin != step.highWin || s.HighestLose != step.highLose {
			t.Errorf("step %d: expected best %dW/%dL, got %dW/%dL",
				n, step.highWin, step.highLose, s.HighestWin, s.HighestLose)
		}
		if s.TotalWin != step.totalWin || s.TotalLose != step.totalLose {
			t.Errorf("step %d: expected lifetime %dW/%dL, got %dW/%dL",
				n, step.totalWin, step.totalLose, s.TotalWin, s.TotalLose)
		}
	}

	// The final state must be persisted, not just returned.
	s, err := tracker.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.TotalWin != 5 || s.TotalLose != 4 {
		t.Errorf("persisted state mismatch: %+v", s)
	}
}

func TestUpdate_UnknownResult(t *testing.T) {
	tracker := streak.New(store.NewMemoryStore())

	if _, err := tracker.Update(context.Background(), "alice", streak.Result("draw")); err == nil {
		t.Error("expected error for unknown result")
	}
}

func TestUpdate_AccountsAreIndependent(t *testing.T) {
	tracker := streak.New(store.NewMemoryStore())
	ctx := context.Background()

	if _, err := tracker.Update(ctx, "alice", streak.Won); err != nil {
		t.Fatalf("update alice: %v", err)
	}

	s, err := tracker.Get(ctx, "bob")
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if s.TotalWin != 0 {
		t.Errorf("bob should be untouched, got %+v", s)
	}
}
