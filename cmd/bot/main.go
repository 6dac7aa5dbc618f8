package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/snackbot/economy-engine/internal/bot"
	"github.com/snackbot/economy-engine/internal/config"
	"github.com/snackbot/economy-engine/internal/events"
	"github.com/snackbot/economy-engine/internal/ledger"
	"github.com/snackbot/economy-engine/internal/ops"
	"github.com/snackbot/economy-engine/internal/oracle"
	"github.com/snackbot/economy-engine/internal/store"
	"github.com/snackbot/economy-engine/internal/streak"
	"github.com/snackbot/economy-engine/internal/trading"
	"github.com/snackbot/economy-engine/internal/wager"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "path", *configPath, "err", err)
		os.Exit(1)
	}
	if cfg.Discord.Token == "" {
		slog.Error("discord token not set (config discord.token or DISCORD_TOKEN)")
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	switch {
	case cfg.Storage.DatabaseURL != "":
		pool, err := pgxpool.New(context.Background(), cfg.Storage.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		pg, err := store.NewPostgresStore(context.Background(), pool)
		if err != nil {
			slog.Error("database init failed", "err", err)
			os.Exit(1)
		}
		st = pg
		slog.Info("connected to PostgreSQL")

	case cfg.Storage.SQLitePath != "":
		sq, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			slog.Error("sqlite open failed", "path", cfg.Storage.SQLitePath, "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, func() { sq.Close() })
		st = sq
		slog.Info("using SQLite store", "path", cfg.Storage.SQLitePath)

	default:
		slog.Warn("no database configured, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	// Wrap with a Redis read-through asset cache if configured.
	if cfg.Storage.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			slog.Error("invalid redis url", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		ttl := time.Duration(cfg.Storage.CacheTTL) * time.Second
		st = store.NewCachedStore(st, rdb, ttl)
		slog.Info("redis asset cache enabled", "ttl", ttl)
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Table limits ---
	maxBet := decimal.Zero
	if cfg.Wagering.MaxBet != "" {
		maxBet, err = decimal.NewFromString(cfg.Wagering.MaxBet)
		if err != nil {
			slog.Error("invalid max_bet", "value", cfg.Wagering.MaxBet, "err", err)
			os.Exit(1)
		}
	}

	// --- Event hub ---
	hub := events.NewHub()
	go hub.Run()

	// --- Engines ---
	led := ledger.New(st)
	orc := oracle.New(st)
	streaks := streak.New(st)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	trader := trading.NewEngine(st, led, orc, hub)
	wagers := wager.NewEngine(led, streaks, rng, maxBet, hub)

	// --- Discord bot ---
	economyBot, err := bot.New(cfg.Discord.Token, cfg.Discord.GuildID, led, trader, wagers, streaks, orc)
	if err != nil {
		slog.Error("bot init failed", "err", err)
		os.Exit(1)
	}
	if err := economyBot.Start(); err != nil {
		slog.Error("bot start failed", "err", err)
		os.Exit(1)
	}
	defer economyBot.Stop()

	// --- Ops HTTP server ---
	opsSrv := ops.NewServer(st, hub)
	srv := &http.Server{
		Addr:         cfg.Ops.Addr,
		Handler:      opsSrv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("ops server listening", "addr", cfg.Ops.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("ops server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down economy-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("economy-engine stopped")
}
