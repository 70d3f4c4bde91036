package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notedash/internal/config"
	"notedash/internal/logger"
	"notedash/internal/services/records"

	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Create bootstrap logger for early errors
	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	stopProfiling, err := startProfiling(cfg.PyroscopeAddr, cfg.StoreBackend, logg)
	if err != nil {
		logg.Error("profiling", "err", err)
		os.Exit(1)
	}
	defer stopProfiling()

	st, err := openStorage(ctx, cfg, logg)
	if err != nil {
		logg.Error("storage init", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}

	hub := records.NewHub(cfg.WSOutboxBuffer)
	store, err := records.Open(ctx, st.kv,
		records.WithLogger(logg),
		records.WithBus(hub),
		records.WithDefaultTitle(cfg.DefaultNoteTitle),
		records.WithSampleData(cfg.SeedSamples),
	)
	if err != nil {
		logg.Error("record store open", "err", err)
		_ = st.close(context.Background())
		os.Exit(1)
	}

	logg.Info("starting NoteDash", "port", cfg.AppPort, "backend", cfg.StoreBackend)

	app := setupRouter(cfg, routerDeps{
		store:   store,
		hub:     hub,
		backend: cfg.StoreBackend,
		health:  st.health,
	})
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return st.close(shutdownCtx)
	})

	// Wait and exit
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}
