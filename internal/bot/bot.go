// Package bot is the Discord command surface. It parses slash-command
// input, calls the engines, and renders results. All game and ledger
// semantics live in the engine packages; nothing here mutates state
// directly.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/snackbot/economy-engine/internal/ledger"
	"github.com/snackbot/economy-engine/internal/metrics"
	"github.com/snackbot/economy-engine/internal/oracle"
	"github.com/snackbot/economy-engine/internal/streak"
	"github.com/snackbot/economy-engine/internal/trading"
	"github.com/snackbot/economy-engine/internal/wager"
)

// Bot wires Discord interactions to the economy engines.
type Bot struct {
	session *discordgo.Session
	guildID string

	ledger  *ledger.Ledger
	trading *trading.Engine
	wagers  *wager.Engine
	streaks *streak.Tracker
	oracle  *oracle.Oracle

	// In-progress blackjack hands keyed by user id. Transient session
	// state only; never persisted.
	mu    sync.Mutex
	hands map[string]*wager.BlackjackGame

	registered []*discordgo.ApplicationCommand
}

// New creates a bot. guildID scopes command registration; empty means
// global registration.
func New(token, guildID string, l *ledger.Ledger, t *trading.Engine, w *wager.Engine, s *streak.Tracker, o *oracle.Oracle) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		session: session,
		guildID: guildID,
		ledger:  l,
		trading: t,
		wagers:  w,
		streaks: s,
		oracle:  o,
		hands:   make(map[string]*wager.BlackjackGame),
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Start opens the gateway connection and registers slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord connection: %w", err)
	}

	for _, cmd := range commands {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.guildID, cmd)
		if err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	slog.Info("slash commands registered", "count", len(b.registered))
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		slog.Error("discord close failed", "err", err)
	}
}

func (b *Bot) onReady(_ *discordgo.Session, event *discordgo.Ready) {
	slog.Info("discord connected", "user", event.User.Username, "id", event.User.ID)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.dispatchComponent(s, i)
	}
}

func (b *Bot) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	handler, ok := handlers[name]
	if !ok {
		return
	}

	ctx := context.Background()
	if err := handler(b, ctx, s, i); err != nil {
		status := "error"
		if msg, userFacing := userMessage(err); userFacing {
			status = "rejected"
			respondText(s, i, msg)
		} else {
			slog.Error("command failed", "command", name, "err", err)
			respondText(s, i, "Something went wrong, try again later.")
		}
		metrics.CommandsTotal.WithLabelValues(name, status).Inc()
		return
	}
	metrics.CommandsTotal.WithLabelValues(name, "ok").Inc()
}

// userID extracts the invoking user's id from a guild or DM interaction.
func userID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

type handlerFunc func(b *Bot, ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error

var handlers = map[string]handlerFunc{
	"balance":   (*Bot).handleBalance,
	"pay":       (*Bot).handlePay,
	"networth":  (*Bot).handleNetWorth,
	"portfolio": (*Bot).handlePortfolio,
	"price":     (*Bot).handlePrice,
	"buy":       (*Bot).handleBuy,
	"sell":      (*Bot).handleSell,
	"gain":      (*Bot).handleGain,
	"coinflip":  (*Bot).handleCoinflip,
	"lottery":   (*Bot).handleLottery,
	"slots":     (*Bot).handleSlots,
	"blackjack": (*Bot).handleBlackjack,
	"streak":    (*Bot).handleStreak,
}

var commands = []*discordgo.ApplicationCommand{
	{Name: "balance", Description: "Show your balance"},
	{
		Name:        "pay",
		Description: "Send money to another user",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Recipient", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "amount", Description: "Amount to send", Required: true},
		},
	},
	{Name: "networth", Description: "Balance plus the value of all your holdings"},
	{
		Name:        "portfolio",
		Description: "List your holdings",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type: discordgo.ApplicationCommandOptionString, Name: "class", Description: "Asset class",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "stocks", Value: "stocks"},
					{Name: "crypto", Value: "crypto"},
				},
			},
		},
	},
	{
		Name:        "price",
		Description: "Look up an asset price",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "symbol", Description: "Ticker symbol", Required: true},
		},
	},
	{
		Name:        "buy",
		Description: "Buy an asset with cash",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "symbol", Description: "Ticker symbol", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "amount", Description: "Cash to spend", Required: true},
		},
	},
	{
		Name:        "sell",
		Description: "Sell part or all of a position",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "symbol", Description: "Ticker symbol", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "amount", Description: "Quantity or percentage, e.g. 2.5 or 50%", Required: true},
		},
	},
	{
		Name:        "gain",
		Description: "Percent gain against your average buy price",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "symbol", Description: "Ticker symbol", Required: true},
		},
	},
	{
		Name:        "coinflip",
		Description: "Flip a coin for your bet",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "side", Description: "heads or tails", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "bet", Description: "Bet amount"},
		},
	},
	{
		Name:        "lottery",
		Description: "Pick a ticket: 1 in 100 pays 99x",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "bet", Description: "Bet amount", Required: true},
		},
	},
	{
		Name:        "slots",
		Description: "Spin the slot machine",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "bet", Description: "Bet amount", Required: true},
		},
	},
	{
		Name:        "blackjack",
		Description: "Play a hand of blackjack",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "bet", Description: "Bet amount", Required: true},
		},
	},
	{Name: "streak", Description: "Show your win/loss streaks"},
}

// option returns a command option's string value, or "" when absent.
func option(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// optionUser returns a command option's user id, or "".
func optionUser(s *discordgo.Session, i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			if u := opt.UserValue(s); u != nil {
				return u.ID
			}
		}
	}
	return ""
}
