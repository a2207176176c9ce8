package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/filmoteka/filmoteka/internal/bot"
	"github.com/filmoteka/filmoteka/internal/catalog"
	"github.com/filmoteka/filmoteka/internal/config"
	"github.com/filmoteka/filmoteka/internal/recommend"
	"github.com/filmoteka/filmoteka/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.ValidateBot(); err != nil {
		log.Fatal("invalid configuration", logger.Error(err))
	}

	db, cleanup, err := catalog.NewDB(cfg.Database, log.Zap())
	if err != nil {
		log.Fatal("open catalog database", logger.Error(err))
	}
	defer cleanup()

	store := catalog.NewStore(db)
	rec := recommend.New(store)

	b, err := bot.New(cfg.Telegram.Token, store, rec, log)
	if err != nil {
		log.Fatal("connect to telegram", logger.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("bot stopped unexpectedly", logger.Error(err))
	}
}
