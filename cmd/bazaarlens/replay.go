package main

import (
	"github.com/spf13/cobra"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens"
)

var replayCmd = &cobra.Command{
	Use:   "replay [log-file]",
	Short: "Print the inventory at the end of a log file",
	Long: `Process the current run of a Player.log up to its end and print the
resulting snapshot once. The file is not followed.

Examples:
  # Inspect a captured log
  bazaarlens replay Player-prev.log --items items_db.json

  # Use the auto-detected log
  bazaarlens replay --format pretty`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	addLogFlag(replayCmd)
	addCatalogFlags(replayCmd, true)
	addFormatFlag(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.LogPath = args[0]
	}

	items, monsters, err := loadCatalogs(cfg)
	if err != nil {
		return err
	}

	snap, err := bazaarlens.ReplayFile("",
		bazaarlens.WithLogPath(cfg.LogPath),
		bazaarlens.WithItems(items),
		bazaarlens.WithMonsters(monsters),
		bazaarlens.WithLogger(newLogger(cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}
	return OutputSnapshot(cfg.Format, snap, cmd.OutOrStdout())
}
