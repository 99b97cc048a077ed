package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bazaarlens/bazaarlens-go/internal/config"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/catalog"
)

// Flags shared by several subcommands. Each command binds the ones it
// uses; a flag only overrides the config file when set explicitly.
var (
	logPath      string
	itemsPath    string
	monstersPath string
	format       string
)

func addLogFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&logPath, "log", "l", "",
		"Player.log path (auto-detected if not specified)")
}

func addCatalogFlags(cmd *cobra.Command, items bool) {
	if items {
		cmd.Flags().StringVar(&itemsPath, "items", "",
			"Item catalog (items_db.json, optionally .zst)")
	}
	cmd.Flags().StringVar(&monstersPath, "monsters", "",
		"Monster catalog (combat_encounters.json, optionally .zst)")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&format, "format", "f", "jsonl",
		"Output format: "+strings.Join(formatNames(), ", "))
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formatNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for name := range ValidFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadSettings reads the config file (--config, then $BAZAARLENS_CONFIG)
// and applies explicitly set flags on top.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log") {
		cfg.LogPath = logPath
	}
	if flags.Changed("items") {
		cfg.ItemsPath = itemsPath
	}
	if flags.Changed("monsters") {
		cfg.MonstersPath = monstersPath
	}
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("listen") {
		cfg.Listen = listenAddr
	}
	if flags.Changed("heartbeat") {
		cfg.Heartbeat = heartbeat
	}
	if flags.Changed("poll") {
		cfg.Polling = usePolling
	}

	if !ValidFormats[cfg.Format] {
		return nil, fmt.Errorf("invalid format %q (valid: %s)", cfg.Format, strings.Join(formatNames(), ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCatalogs loads the configured catalogs. An unset path yields a nil
// catalog; a configured path that fails to load is an error.
func loadCatalogs(cfg *config.Config) (*catalog.Items, *catalog.Monsters, error) {
	var (
		items    *catalog.Items
		monsters *catalog.Monsters
		err      error
	)
	if cfg.ItemsPath != "" {
		if items, err = catalog.LoadItems(cfg.ItemsPath); err != nil {
			return nil, nil, err
		}
	}
	if cfg.MonstersPath != "" {
		if monsters, err = catalog.LoadMonsters(cfg.MonstersPath); err != nil {
			return nil, nil, err
		}
	}
	return items, monsters, nil
}

// newLogger returns a text logger on w; Debug level with --verbose.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
