package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filmoteka/filmoteka/internal/catalog"
	"github.com/filmoteka/filmoteka/internal/config"
	"github.com/filmoteka/filmoteka/internal/syncer"
	"github.com/filmoteka/filmoteka/pkg/events"
	"github.com/filmoteka/filmoteka/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	sheet := flag.String("sheet", "", "override the target sheet name")
	daemon := flag.Bool("daemon", false, "keep running and sync on the configured interval")
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

	if err := cfg.ValidateSync(); err != nil {
		log.Fatal("invalid configuration", logger.Error(err))
	}

	targetSheet := cfg.Sheets.SheetName
	if *sheet != "" {
		targetSheet = *sheet
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, cleanup, err := catalog.NewDB(cfg.Database, log.Zap())
	if err != nil {
		log.Fatal("open catalog database", logger.Error(err))
	}
	defer cleanup()

	source, err := syncer.NewSheetsSource(ctx, cfg.Sheets)
	if err != nil {
		log.Fatal("create sheets source", logger.Error(err))
	}

	bus := events.NewBus(log)
	defer bus.Close()
	subscribeAudit(bus, log)

	engine := syncer.New(catalog.NewStore(db), source, bus, log)

	if !*daemon {
		os.Exit(runOnce(ctx, engine, targetSheet, log))
	}

	// Interval runs never overlap: each tick waits for the previous run to
	// finish before the next one starts.
	log.Info("sync daemon started",
		logger.String("sheet", targetSheet),
		logger.Duration("interval", cfg.Sync.Interval))

	ticker := time.NewTicker(cfg.Sync.Interval)
	defer ticker.Stop()

	runOnce(ctx, engine, targetSheet, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("sync daemon stopped")
			return
		case <-ticker.C:
			runOnce(ctx, engine, targetSheet, log)
		}
	}
}

// runOnce executes a single sync run and maps its status to an exit code.
func runOnce(ctx context.Context, engine *syncer.Engine, sheet string, log logger.Logger) int {
	report, err := engine.Run(ctx, sheet)
	if err != nil {
		log.Error("sync run failed",
			logger.String("run_id", report.RunID.String()),
			logger.String("status", string(report.Status)),
			logger.Error(err))
		return 1
	}

	log.Info("sync run finished",
		logger.String("run_id", report.RunID.String()),
		logger.String("status", string(report.Status)),
		logger.Duration("elapsed", report.Finished.Sub(report.Started)))
	return 0
}

// subscribeAudit mirrors the run's audit events into the log so an operator
// can review a sync without re-running it.
func subscribeAudit(bus *events.Bus, log logger.Logger) {
	audit := func(ctx context.Context, e events.Event) error {
		if base, ok := e.(*events.BaseEvent); ok {
			log.Debug("audit event",
				logger.String("type", base.Type),
				logger.Any("data", base.Data))
		}
		return nil
	}
	for _, eventType := range []string{
		events.TypeMovieAdded,
		events.TypeMovieUpdated,
		events.TypeGenreAdded,
		events.TypeRowSkipped,
		events.TypeSyncCompleted,
	} {
		bus.Subscribe(eventType, audit)
	}
}
