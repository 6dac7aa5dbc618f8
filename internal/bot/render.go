package bot

import (
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/ledger"
	"github.com/snackbot/economy-engine/internal/trading"
	"github.com/snackbot/economy-engine/internal/wager"
)

// userMessage maps expected, user-correctable errors to a chat message.
// Anything else is treated as a fault: logged, rendered generically, and
// never retried.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "That amount doesn't look right.", true
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "You don't have enough money for that.", true
	case errors.Is(err, trading.ErrUnknownAsset):
		return "I don't know that symbol.", true
	case errors.Is(err, trading.ErrNoPosition):
		return "You don't hold any of that.", true
	case errors.Is(err, trading.ErrInsufficientHoldings):
		return "You're trying to sell more than you own.", true
	case errors.Is(err, wager.ErrInvalidChoice):
		return "Pick heads or tails.", true
	case errors.Is(err, wager.ErrBetLimitExceeded):
		return "That bet is over the table limit.", true
	default:
		return "", false
	}
}

// fmtMoney renders a decimal for chat with two fraction digits.
func fmtMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		slog.Error("interaction respond failed", "err", err)
	}
}

// updateMessage edits the originating message in place (blackjack turns).
func updateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
		},
	})
	if err != nil {
		slog.Error("interaction update failed", "err", err)
	}
}
