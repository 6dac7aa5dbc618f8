package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/trading"
	"github.com/snackbot/economy-engine/internal/wager"
)

// parseBet parses an optional bet argument; absent means zero.
func parseBet(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return trading.ParseAmount(raw)
}

func (b *Bot) handleCoinflip(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	bet, err := parseBet(option(i, "bet"))
	if err != nil {
		return err
	}

	res, err := b.wagers.Coinflip(ctx, userID(i), option(i, "side"), bet)
	if err != nil {
		return err
	}

	side := "heads"
	if res.Side == "t" {
		side = "tails"
	}
	verdict := fmt.Sprintf("you lost %s", fmtMoney(res.Bet))
	if res.Won {
		verdict = fmt.Sprintf("you won %s", fmtMoney(res.Bet))
	}
	respondText(s, i, fmt.Sprintf("🪙 The coin landed on **%s** — %s (balance: %s)",
		side, verdict, fmtMoney(res.NewBalance)))
	return nil
}

func (b *Bot) handleLottery(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	bet, err := parseBet(option(i, "bet"))
	if err != nil {
		return err
	}

	res, err := b.wagers.Lottery(ctx, userID(i), bet)
	if err != nil {
		return err
	}

	if res.Won {
		respondText(s, i, fmt.Sprintf("🎉 Ticket **%d** hit the jackpot! You won %s (balance: %s)",
			res.Number, fmtMoney(res.Payout), fmtMoney(res.NewBalance)))
	} else {
		respondText(s, i, fmt.Sprintf("🎟️ Ticket **%d** — no luck, you lost %s (balance: %s)",
			res.Number, fmtMoney(res.Bet), fmtMoney(res.NewBalance)))
	}
	return nil
}

func (b *Bot) handleSlots(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	bet, err := parseBet(option(i, "bet"))
	if err != nil {
		return err
	}

	res, err := b.wagers.Spin(ctx, userID(i), bet)
	if err != nil {
		return err
	}

	reels := strings.Join(res.Reels[:], " | ")
	verdict := fmt.Sprintf("lost %s", fmtMoney(res.Bet))
	if res.Won {
		verdict = fmt.Sprintf("won %s (x%d)", fmtMoney(res.Delta), res.Multiplier)
	}
	respondText(s, i, fmt.Sprintf("🎰 %s — you %s (balance: %s, streak: %dW)",
		reels, verdict, fmtMoney(res.NewBalance), res.Streak.CurrentWin))
	return nil
}

func (b *Bot) handleStreak(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	st, err := b.streaks.Get(ctx, userID(i))
	if err != nil {
		return err
	}
	respondText(s, i, fmt.Sprintf(
		"🔥 Current: %dW / %dL — Best: %dW / %dL — Lifetime: %dW / %dL",
		st.CurrentWin, st.CurrentLose, st.HighestWin, st.HighestLose, st.TotalWin, st.TotalLose))
	return nil
}

// --- Blackjack: interactive session with hit/stand buttons ---

func (b *Bot) handleBlackjack(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	uid := userID(i)

	b.mu.Lock()
	if g, ok := b.hands[uid]; ok && !g.Done() {
		b.mu.Unlock()
		respondText(s, i, "You already have a hand in progress — hit or stand first.")
		return nil
	}
	b.mu.Unlock()

	bet, err := parseBet(option(i, "bet"))
	if err != nil {
		return err
	}

	game, err := b.wagers.Blackjack(ctx, uid, bet)
	if err != nil {
		return err
	}

	if game.Done() {
		// A natural resolved at the deal.
		respondText(s, i, blackjackSummary(game))
		return nil
	}

	b.mu.Lock()
	b.hands[uid] = game
	b.mu.Unlock()

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    blackjackTable(game),
			Components: blackjackButtons(),
		},
	})
}

func (b *Bot) dispatchComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	if customID != "blackjack_hit" && customID != "blackjack_stand" {
		return
	}

	uid := userID(i)
	b.mu.Lock()
	game, ok := b.hands[uid]
	b.mu.Unlock()
	if !ok || game.Done() {
		respondText(s, i, "No hand in progress — start one with /blackjack.")
		return
	}

	ctx := context.Background()
	var err error
	if customID == "blackjack_hit" {
		err = game.Hit(ctx)
	} else {
		err = game.Stand(ctx)
	}
	if errors.Is(err, wager.ErrGameOver) {
		// A double-clicked button loses the race against its twin.
		respondText(s, i, "That hand is already finished.")
		return
	}
	if err != nil {
		respondText(s, i, "Something went wrong, try again later.")
		return
	}

	if game.Done() {
		b.mu.Lock()
		delete(b.hands, uid)
		b.mu.Unlock()
		updateMessage(s, i, blackjackSummary(game), []discordgo.MessageComponent{})
		return
	}
	updateMessage(s, i, blackjackTable(game), blackjackButtons())
}

func blackjackButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: "blackjack_hit"},
				discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: "blackjack_stand"},
			},
		},
	}
}

func blackjackTable(g *wager.BlackjackGame) string {
	return fmt.Sprintf("🃏 Your hand: %s (**%d**)\nDealer shows: %s",
		handString(g.Player()), g.PlayerScore(), g.DealerUpCard())
}

func blackjackSummary(g *wager.BlackjackGame) string {
	var verdict string
	switch g.Outcome() {
	case wager.OutcomeWin:
		verdict = fmt.Sprintf("You **won** %s!", fmtMoney(g.Bet()))
	case wager.OutcomeLose:
		verdict = fmt.Sprintf("You **lost** %s.", fmtMoney(g.Bet()))
	default:
		verdict = "Push — your bet is returned."
	}
	return fmt.Sprintf("🃏 Your hand: %s (**%d**)\nDealer: %s (**%d**)\n%s",
		handString(g.Player()), g.PlayerScore(),
		handString(g.Dealer()), g.DealerScore(), verdict)
}

func handString(cards []wager.Card) string {
	parts := make([]string, len(cards))
	for n, c := range cards {
		parts[n] = c.String()
	}
	return strings.Join(parts, " ")
}
