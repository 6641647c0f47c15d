// Command users-pager browses the paginated users listing from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/users-pagination/internal/config"
	"github.com/Sternrassler/users-pagination/pkg/client"
	"github.com/Sternrassler/users-pagination/pkg/logging"
	"github.com/Sternrassler/users-pagination/pkg/metrics"
	"github.com/Sternrassler/users-pagination/pkg/viewmodel"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "users-pager: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	base := logging.Setup(cfg.LoggingConfig())
	logger := logging.NewLogger(logging.ComponentCLI)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	usersClient, err := client.New(cfg.ClientConfig())
	if err != nil {
		return fmt.Errorf("create users client: %w", err)
	}

	composer, err := viewmodel.NewComposer(usersClient, cfg.ComposerConfig(), base)
	if err != nil {
		return fmt.Errorf("create users view: %w", err)
	}

	logger.Info().
		Str("api_url", cfg.APIURL).
		Int("page_size", cfg.PageSize).
		Int("window_size", cfg.WindowSize).
		Msg("Starting users pager")

	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.MetricsAddr)
		})
	}

	g.Go(func() error {
		defer cancel()
		p := newPager(composer, os.Stdout, cfg.RequestTimeout)
		return p.Run(gctx, os.Stdin)
	})

	// Unblocks the pager's read on interrupt.
	g.Go(func() error {
		<-gctx.Done()
		os.Stdin.Close()
		return nil
	})

	err = g.Wait()
	logger.Info().Msg("Users pager stopped")
	return err
}
