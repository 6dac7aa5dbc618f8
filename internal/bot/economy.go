package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/snackbot/economy-engine/internal/ledger"
	"github.com/snackbot/economy-engine/internal/metrics"
	"github.com/snackbot/economy-engine/internal/model"
	"github.com/snackbot/economy-engine/internal/trading"
)

func (b *Bot) handleBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	bal, err := b.ledger.Balance(ctx, userID(i))
	if err != nil {
		return err
	}
	respondText(s, i, fmt.Sprintf("💰 Balance: **%s**", fmtMoney(bal)))
	return nil
}

func (b *Bot) handlePay(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	to := optionUser(s, i, "user")
	if to == "" {
		return ledger.ErrInvalidAmount
	}
	amount, err := trading.ParseAmount(option(i, "amount"))
	if err != nil {
		return err
	}

	if err := b.ledger.Transfer(ctx, userID(i), to, amount); err != nil {
		return err
	}
	metrics.TransfersTotal.Inc()

	respondText(s, i, fmt.Sprintf("✅ Sent **%s** to <@%s>", fmtMoney(amount), to))
	return nil
}

func (b *Bot) handleNetWorth(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	worth, err := b.trading.NetWorth(ctx, userID(i))
	if err != nil {
		return err
	}
	respondText(s, i, fmt.Sprintf("📈 Net worth: **%s**", fmtMoney(worth)))
	return nil
}

func (b *Bot) handlePortfolio(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	class := option(i, "class")
	classes := model.Classes
	if class != "" {
		classes = []string{class}
	}

	var sb strings.Builder
	total := 0
	for _, c := range classes {
		holdings, err := b.trading.Portfolio(ctx, userID(i), c)
		if err != nil {
			return err
		}
		for _, h := range holdings {
			fmt.Fprintf(&sb, "**%s** (%s): %s @ %s = %s\n",
				h.Symbol, c, h.Total.String(), fmtMoney(h.Price), fmtMoney(h.Value))
			total++
		}
	}
	if total == 0 {
		respondText(s, i, "You don't hold any assets.")
		return nil
	}
	respondText(s, i, sb.String())
	return nil
}

func (b *Bot) handlePrice(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	asset, err := b.oracle.Lookup(ctx, option(i, "symbol"))
	if err != nil {
		return err
	}
	if asset == nil {
		return trading.ErrUnknownAsset
	}
	respondText(s, i, fmt.Sprintf("**%s** (%s): %s (24h: %s%%)",
		asset.Symbol, asset.Name, fmtMoney(asset.Price), asset.Change24h.StringFixed(2)))
	return nil
}

func (b *Bot) handleBuy(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	cash, err := trading.ParseAmount(option(i, "amount"))
	if err != nil {
		return err
	}

	receipt, err := b.trading.Buy(ctx, userID(i), option(i, "symbol"), cash)
	if err != nil {
		return err
	}
	respondText(s, i, fmt.Sprintf("🟢 Bought **%s %s** for %s (balance: %s)",
		receipt.Quantity.String(), receipt.Symbol, fmtMoney(receipt.Cash), fmtMoney(receipt.NewBalance)))
	return nil
}

func (b *Bot) handleSell(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	receipt, err := b.trading.Sell(ctx, userID(i), option(i, "symbol"), option(i, "amount"))
	if err != nil {
		return err
	}
	respondText(s, i, fmt.Sprintf("🔴 Sold **%s %s** for %s (balance: %s)",
		receipt.Quantity.String(), receipt.Symbol, fmtMoney(receipt.Cash), fmtMoney(receipt.NewBalance)))
	return nil
}

func (b *Bot) handleGain(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	gain, err := b.trading.CostBasis(ctx, userID(i), option(i, "symbol"))
	if err != nil {
		return err
	}
	arrow := "📈"
	if gain.IsNegative() {
		arrow = "📉"
	}
	respondText(s, i, fmt.Sprintf("%s **%s%%** against your average buy price", arrow, gain.StringFixed(2)))
	return nil
}
