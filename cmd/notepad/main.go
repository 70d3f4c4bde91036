// Command notepad is a terminal view for the notes held by a running
// server. It edits one note at a time and autosaves through the server's
// /ipc socket.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notedash/internal/config"
	"notedash/internal/ipc"
	"notedash/internal/logger"
	"notedash/internal/services/records"
	"notedash/internal/services/session"

	"github.com/urfave/cli/v3"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// stdout belongs to the shell
	log := logger.New(cfg, os.Stderr)

	url := cmd.String("url")
	if url == "" {
		url = fmt.Sprintf("ws://localhost:%d/ipc", cfg.AppPort)
	}

	dialCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	transport, err := dialTransport(dialCtx, url)
	if err != nil {
		return err
	}
	defer func() { _ = transport.Close() }()

	sh := newShell(os.Stdout)
	client := ipc.NewClient(transport, sessionOptions(cfg, log, sh.autosaved)...)
	defer client.Close()
	sh.client = client

	return sh.run(ctx, os.Stdin)
}

// sessionOptions maps configuration onto the edit session
func sessionOptions(cfg config.Config, log *slog.Logger, onAutosave func(*records.Note, error)) []session.Option {
	return []session.Option{
		session.WithAutosaveDelay(time.Duration(cfg.AutosaveDelayMS) * time.Millisecond),
		session.WithDefaultTitle(cfg.DefaultNoteTitle),
		session.WithLogger(log),
		session.WithAutosaveHook(onAutosave),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "notepad",
		Usage:  "Edit NoteDash notes from the terminal",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "url",
				Aliases:     []string{"u"},
				Usage:       "IPC socket of the server",
				DefaultText: "ws://localhost:$APP_PORT/ipc",
				Sources:     cli.EnvVars("NOTEPAD_IPC_URL"),
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("notepad error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
