package bazaarlens

import (
	"errors"
	"fmt"

	"github.com/bazaarlens/bazaarlens-go/internal/logfinder"
)

// Sentinel errors returned by this package.
var (
	// ErrWatcherClosed is returned by Watch after Close has been called.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrAlreadyWatching is returned when Watch is called more than once.
	ErrAlreadyWatching = errors.New("watch already started")

	// ErrLogNotFound is returned when no log path can be derived from
	// options, environment or platform defaults.
	ErrLogNotFound = logfinder.ErrLogNotFound
)

// WatchOp identifies the stage of the watch loop that failed.
type WatchOp string

// Watch operations reported in WatchError.
const (
	WatchOpWait WatchOp = "wait"
	WatchOpScan WatchOp = "scan"
	WatchOpOpen WatchOp = "open"
	WatchOpStat WatchOp = "stat"
	WatchOpRead WatchOp = "read"
)

// WatchError is sent on the error channel when the watch loop stops
// because the log file could not be accessed.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("bazaarlens: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("bazaarlens: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}
