package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bazaarlens/bazaarlens-go/internal/config"
	"github.com/bazaarlens/bazaarlens-go/internal/server"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/catalog"
)

var (
	// watch flags
	listenAddr string
	heartbeat  time.Duration
	usePolling bool
	quiet      bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow Player.log and output inventory snapshots",
	Long: `Follow The Bazaar's Player.log and output a snapshot of your hand and
stash whenever it changes, plus a heartbeat while the game is idle.

Snapshots are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq.

Examples:
  # Follow the auto-detected log
  bazaarlens watch

  # Resolve items and opponents against the catalogs
  bazaarlens watch --items items_db.json --monsters combat_encounters.json

  # Serve snapshots to an overlay page on ws://127.0.0.1:8787/ws
  bazaarlens watch --listen 127.0.0.1:8787 --quiet

  # Human-readable output
  bazaarlens watch --format pretty`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addLogFlag(watchCmd)
	addCatalogFlags(watchCmd, true)
	addFormatFlag(watchCmd)
	watchCmd.Flags().StringVar(&listenAddr, "listen", "",
		"Serve websocket and HTTP API on this address (e.g. 127.0.0.1:8787)")
	watchCmd.Flags().DurationVar(&heartbeat, "heartbeat", bazaarlens.DefaultHeartbeat,
		"Republish interval while the log is idle")
	watchCmd.Flags().BoolVar(&usePolling, "poll", false,
		"Poll the log file instead of using filesystem notifications")
	watchCmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"Do not write snapshots to stdout")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr())

	items, monsters, err := loadCatalogs(cfg)
	if err != nil {
		return err
	}

	watcher, err := bazaarlens.NewWatcher(watchOptions(cfg, logger, items, monsters)...)
	if err != nil {
		return err
	}
	defer watcher.Close()
	logger.Info("watching", "path", watcher.LogPath())

	var srv *server.Server
	serveErr := make(chan error, 1)
	if cfg.Listen != "" {
		srv = server.New(monsters, logger)
		go func() {
			serveErr <- srv.ListenAndServe(ctx, cfg.Listen)
		}()
	}

	snaps, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				// errs is closed first; a fatal error is already buffered
				if errs != nil {
					if err, ok := <-errs; ok {
						return err
					}
				}
				return nil
			}
			if srv != nil {
				if err := srv.Publish(snap); err != nil {
					logger.Warn("publish failed", "error", err)
				}
			}
			if !quiet {
				if err := OutputSnapshot(cfg.Format, snap, out); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return err

		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("server: %w", err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func watchOptions(cfg *config.Config, logger *slog.Logger, items *catalog.Items, monsters *catalog.Monsters) []bazaarlens.WatchOption {
	return []bazaarlens.WatchOption{
		bazaarlens.WithLogPath(cfg.LogPath),
		bazaarlens.WithPollInterval(cfg.PollInterval),
		bazaarlens.WithHeartbeat(cfg.Heartbeat),
		bazaarlens.WithSettleDelay(cfg.SettleDelay),
		bazaarlens.WithIdleTimeout(cfg.IdleTimeout),
		bazaarlens.WithPolling(cfg.Polling),
		bazaarlens.WithItems(items),
		bazaarlens.WithMonsters(monsters),
		bazaarlens.WithLogger(logger),
	}
}
