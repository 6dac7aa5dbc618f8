package wager

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/ledger"
)

// Card is one playing card. Rank is "A", "2".."10", "J", "Q", or "K".
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (c Card) String() string { return c.Rank + c.Suit }

var (
	suits = [4]string{"♠", "♥", "♦", "♣"}
	ranks = [13]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

func cardValue(rank string) int {
	switch rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	default:
		return int(rank[0] - '0')
	}
}

// NewDeck returns a fresh, unshuffled 52-card deck in suit-major order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range suits {
		for _, rank := range ranks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// Score totals a hand with aces counted as 11, reduced by 10 per ace
// while the total would bust. Deterministic and side-effect-free.
func Score(hand []Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		total += cardValue(c.Rank)
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// Outcome is a resolved blackjack result.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeWin
	OutcomeLose
	OutcomePush
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	case OutcomePush:
		return "push"
	default:
		return "pending"
	}
}

// BlackjackGame is the transient state of one interactive hand. It lives
// only for the duration of the session and is never persisted; the single
// durable effect is the balance settlement at resolution.
//
// Methods are safe for concurrent use: interactive sessions receive their
// hit/stand inputs from independently dispatched interaction handlers, so
// the hand serializes them itself. Only the caller holding the lock can
// pass the pending gate, which keeps settlement single-shot.
type BlackjackGame struct {
	engine  *Engine
	account string
	bet     decimal.Decimal

	mu      sync.Mutex
	deck    []Card
	next    int
	player  []Card
	dealer  []Card
	outcome Outcome
}

// Blackjack deals a new hand from a fresh shuffled deck. Naturals resolve
// immediately: a player natural wins outright (even against a dealer
// natural), and a dealer natural against a plain hand loses.
func (e *Engine) Blackjack(ctx context.Context, account string, bet decimal.Decimal) (*BlackjackGame, error) {
	if bet.IsNegative() {
		return nil, ledger.ErrInvalidAmount
	}
	if err := e.checkLimit(bet); err != nil {
		return nil, err
	}

	release := e.ledger.Acquire(account)
	bal, err := e.ledger.Balance(ctx, account)
	release()
	if err != nil {
		return nil, err
	}
	if bet.GreaterThan(bal) {
		return nil, ledger.ErrInsufficientFunds
	}

	deck := NewDeck()
	e.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	g := &BlackjackGame{
		engine:  e,
		account: account,
		bet:     bet,
		deck:    deck,
	}
	g.player = append(g.player, g.draw(), g.draw())
	g.dealer = append(g.dealer, g.draw(), g.draw())

	if Score(g.player) == 21 {
		return g, g.resolve(ctx, OutcomeWin)
	}
	if Score(g.dealer) == 21 {
		return g, g.resolve(ctx, OutcomeLose)
	}
	return g, nil
}

func (g *BlackjackGame) draw() Card {
	c := g.deck[g.next]
	g.next++
	return c
}

// Hit deals one card to the player. A score over 21 busts and resolves
// the game as a loss immediately.
func (g *BlackjackGame) Hit(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.outcome != OutcomePending {
		return ErrGameOver
	}
	g.player = append(g.player, g.draw())
	if Score(g.player) > 21 {
		return g.resolve(ctx, OutcomeLose)
	}
	return nil
}

// Stand ends the player's turn. The dealer draws until its score is at
// least 16 and at least the player's score (a "beat or 16" rule, kept
// from the original game in place of the usual stand-on-17), then the
// hand resolves.
func (g *BlackjackGame) Stand(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.outcome != OutcomePending {
		return ErrGameOver
	}

	playerScore := Score(g.player)
	for {
		dealerScore := Score(g.dealer)
		if dealerScore >= 16 && dealerScore >= playerScore {
			break
		}
		g.dealer = append(g.dealer, g.draw())
	}

	dealerScore := Score(g.dealer)
	switch {
	case dealerScore > 21:
		return g.resolve(ctx, OutcomeWin)
	case dealerScore < playerScore:
		return g.resolve(ctx, OutcomeWin)
	case dealerScore == playerScore:
		return g.resolve(ctx, OutcomePush)
	default:
		return g.resolve(ctx, OutcomeLose)
	}
}

// resolve settles the bet as one balance read-modify-write cycle under
// the account lock. A push changes nothing.
func (g *BlackjackGame) resolve(ctx context.Context, o Outcome) error {
	g.outcome = o

	if o != OutcomePush && !g.bet.IsZero() {
		e := g.engine
		release := e.ledger.Acquire(g.account)
		defer release()

		bal, err := e.ledger.Balance(ctx, g.account)
		if err != nil {
			return err
		}
		newBal := bal.Sub(g.bet)
		if o == OutcomeWin {
			newBal = bal.Add(g.bet)
		}
		// The balance was only checked at the deal and can shrink before
		// resolution; a loss debits at most what remains so a committed
		// balance never goes negative.
		if newBal.IsNegative() {
			newBal = decimal.Zero
		}
		if err := e.ledger.SetBalance(ctx, g.account, newBal); err != nil {
			return err
		}
	}

	g.engine.recordOutcome(g.account, "blackjack", o.String(), g.bet)
	return nil
}

// Done reports whether the hand has resolved.
func (g *BlackjackGame) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome != OutcomePending
}

// Outcome returns the resolved result, or OutcomePending.
func (g *BlackjackGame) Outcome() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome
}

// Bet returns the wagered amount.
func (g *BlackjackGame) Bet() decimal.Decimal { return g.bet }

// Player returns a copy of the player's hand.
func (g *BlackjackGame) Player() []Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Card(nil), g.player...)
}

// Dealer returns a copy of the dealer's hand.
func (g *BlackjackGame) Dealer() []Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Card(nil), g.dealer...)
}

// DealerUpCard returns the dealer's visible card during play.
func (g *BlackjackGame) DealerUpCard() Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dealer[0]
}

// PlayerScore returns the player's current score.
func (g *BlackjackGame) PlayerScore() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Score(g.player)
}

// DealerScore returns the dealer's current score.
func (g *BlackjackGame) DealerScore() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Score(g.dealer)
}
