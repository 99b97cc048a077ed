package bazaarlens

import (
	"fmt"

	"github.com/bazaarlens/bazaarlens-go/internal/logfile"
	"github.com/bazaarlens/bazaarlens-go/internal/logfinder"
)

// ReplayFile processes the current run of the log at path up to EOF and
// returns the resulting snapshot. Nothing is followed or published.
//
// Only WithLogPath (used when path is empty), WithItems, WithMonsters and
// WithLogger are relevant; other options are ignored.
func ReplayFile(path string, opts ...WatchOption) (Snapshot, error) {
	cfg := applyWatchOptions(opts)
	if path == "" {
		p, err := logfinder.FindLogPath(cfg.logPath)
		if err != nil {
			return Snapshot{}, fmt.Errorf("finding log file: %w", err)
		}
		path = p
	}
	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	l, err := logfile.Open(path)
	if err != nil {
		return Snapshot{}, &WatchError{Op: WatchOpOpen, Path: path, Err: err}
	}
	defer l.Close()

	scan, err := l.Scan()
	if err != nil {
		return Snapshot{}, &WatchError{Op: WatchOpScan, Path: path, Err: err}
	}

	t := NewTracker(scan.Templates)
	if err := l.ReadFrom(scan.RunOffset, func(line string) {
		t.HandleLine(line)
	}); err != nil {
		return Snapshot{}, &WatchError{Op: WatchOpRead, Path: path, Err: err}
	}
	log.Debug("replayed log file", "path", path, "offset", scan.RunOffset, "size", scan.Size)

	snap, missing := Resolver{Items: cfg.items, Monsters: cfg.monsters}.Snapshot(t)
	if len(missing.Hand) > 0 {
		log.Warn("hand items missing from catalog", "templates", missing.Hand)
	}
	return snap, nil
}
