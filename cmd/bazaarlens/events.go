package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bazaarlens/bazaarlens-go/internal/logfile"
	"github.com/bazaarlens/bazaarlens-go/internal/logfinder"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/event"
)

var (
	// events flags
	kinds    []string
	fromFile bool
)

var eventsCmd = &cobra.Command{
	Use:   "events [log-file]",
	Short: "Print the events recognized in a log file",
	Long: `Parse a Player.log and print every recognized event of the current
run. Useful for checking what the tracker sees in a captured log.

Examples:
  # Purchases and sales only
  bazaarlens events Player.log --kinds purchased,sold

  # Include earlier runs in the same file
  bazaarlens events --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	addLogFlag(eventsCmd)
	addFormatFlag(eventsCmd)
	eventsCmd.Flags().StringSliceVarP(&kinds, "kinds", "k", nil,
		"Event kinds to show (comma-separated)")
	eventsCmd.Flags().BoolVarP(&fromFile, "all", "a", false,
		"Start at the beginning of the file instead of the current run")
	registerKindCompletion(eventsCmd, "kinds")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.LogPath = args[0]
	}

	include, err := NormalizeKinds(kinds)
	if err != nil {
		return err
	}
	filter := make(map[event.Kind]bool, len(include))
	for _, k := range include {
		filter[k] = true
	}

	path, err := logfinder.FindLogPath(cfg.LogPath)
	if err != nil {
		return err
	}

	l, err := logfile.Open(path)
	if err != nil {
		return &bazaarlens.WatchError{Op: bazaarlens.WatchOpOpen, Path: path, Err: err}
	}
	defer l.Close()

	var offset int64
	if !fromFile {
		scan, err := l.Scan()
		if err != nil {
			return &bazaarlens.WatchError{Op: bazaarlens.WatchOpScan, Path: path, Err: err}
		}
		offset = scan.RunOffset
	}

	out := cmd.OutOrStdout()
	var outErr error
	err = l.ReadFrom(offset, func(line string) {
		if outErr != nil {
			return
		}
		ev := bazaarlens.ParseLine(line)
		if ev == nil || (len(filter) > 0 && !filter[ev.Kind]) {
			return
		}
		outErr = OutputEvent(cfg.Format, *ev, out)
	})
	if err != nil {
		return &bazaarlens.WatchError{Op: bazaarlens.WatchOpRead, Path: path, Err: err}
	}
	if outErr != nil {
		return fmt.Errorf("output error: %w", outErr)
	}
	return nil
}
