package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tramboard/internal/notify"
	"tramboard/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web board and JSON API",
	Args:  cobra.NoArgs,
}

func init() {
	serveCmd.RunE = withApp(runServe)
	serveCmd.Flags().Int("port", 0, "HTTP port (default from config)")
}

func runServe(ctx context.Context, a *app, _ []string) error {
	if port, _ := serveCmd.Flags().GetInt("port"); port > 0 {
		a.cfg.Port = port
	}

	// Browsers ask for their own permission; the server only stops
	// forwarding when notifications are switched off.
	perm := notify.Granted
	if notify.ParsePermission(a.cfg.Notifications) == notify.Denied {
		perm = notify.Denied
	}
	broker := notify.NewBroker(perm, a.logger)
	orch, notifier := a.orchestrator(a.fetcher, broker)
	srv := server.New(a.cfg, orch, a.dir, broker, a.msgs, a.logger)

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		notifier.Wait()
		a.logger.Info("notifications drained")
		return nil
	})
	return g.Wait()
}
