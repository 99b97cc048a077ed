package bazaarlens

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/bazaarlens/bazaarlens-go/internal/logfile"
	"github.com/bazaarlens/bazaarlens-go/internal/logfinder"
)

// watcherErrBuffer is the buffer size for the error channel.
const watcherErrBuffer = 16

// Watcher tails The Bazaar's Player.log and publishes inventory snapshots.
type Watcher struct {
	cfg     watchConfig // internal configuration (immutable after creation)
	logPath string
	log     *slog.Logger
	resolve Resolver

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc // cancel func to stop the goroutine
	doneCh   chan struct{}      // signals when goroutine has exited
	watching bool               // true if Watch() has been called
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewWatcher creates a watcher using functional options.
// Validates options and resolves the log path; the file itself does not
// have to exist yet. Does NOT start goroutines.
func NewWatcher(opts ...WatchOption) (*Watcher, error) {
	cfg := applyWatchOptions(opts)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logPath, err := logfinder.FindLogPath(cfg.logPath)
	if err != nil {
		return nil, fmt.Errorf("finding log file: %w", err)
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	return &Watcher{
		cfg:     *cfg,
		logPath: logPath,
		log:     log,
		resolve: Resolver{Items: cfg.items, Monsters: cfg.monsters},
	}, nil
}

// Watch creates a watcher and starts it.
//
// The watcher stops when ctx is cancelled; callers that need a synchronous
// shutdown should use NewWatcher and Watcher.Close instead.
func Watch(ctx context.Context, opts ...WatchOption) (<-chan Snapshot, <-chan error, error) {
	w, err := NewWatcher(opts...)
	if err != nil {
		return nil, nil, err
	}
	return w.Watch(ctx)
}

// LogPath returns the resolved log file path.
func (w *Watcher) LogPath() string {
	return w.logPath
}

// Watch starts the background loop and returns its channels.
// Both channels are closed when ctx is done, Close is called, or the log
// file becomes unreadable; in the last case a *WatchError is sent first.
// Watch can only be called once per Watcher instance.
//
// Returns ErrWatcherClosed if the watcher has been closed.
// Returns ErrAlreadyWatching if Watch() has already been called.
func (w *Watcher) Watch(ctx context.Context) (<-chan Snapshot, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	snapCh := make(chan Snapshot)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, snapCh, errCh)

	return snapCh, errCh, nil
}

// Close stops the watcher and releases resources.
// Safe to call multiple times.
// Blocks until the goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

// session is the state of one run of the watch loop.
type session struct {
	w       *Watcher
	ctx     context.Context
	snapCh  chan<- Snapshot
	tracker *Tracker
	src     LineSource
	size    int64
	settled bool
}

func (w *Watcher) run(ctx context.Context, snapCh chan<- Snapshot, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(snapCh)
	defer close(errCh)

	if err := w.waitForFile(ctx); err != nil {
		if ctx.Err() == nil {
			sendError(ctx, errCh, &WatchError{Op: WatchOpWait, Path: w.logPath, Err: err})
		}
		return
	}

	s := &session{w: w, ctx: ctx, snapCh: snapCh}
	defer s.closeSource()

	if werr := s.start(false); werr != nil {
		sendError(ctx, errCh, werr)
		return
	}

	for ctx.Err() == nil {
		if werr := s.step(); werr != nil {
			sendError(ctx, errCh, werr)
			return
		}
	}
}

// waitForFile polls until the log file exists.
func (w *Watcher) waitForFile(ctx context.Context) error {
	logged := false
	for {
		_, err := w.cfg.statSize(w.logPath)
		if err == nil {
			w.log.Debug("found log file", "path", w.logPath)
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if !logged {
			w.log.Debug("log file not found, waiting", "path", w.logPath, "poll_interval", w.cfg.pollInterval)
			logged = true
		}
		if err := sleep(ctx, w.cfg.clock, w.cfg.pollInterval); err != nil {
			return err
		}
	}
}

// start scans the file and opens the line source. With fromStart the source
// is opened at offset 0 instead of the current run's offset.
func (s *session) start(fromStart bool) *WatchError {
	path := s.w.logPath
	scan, err := logfile.Scan(path)
	if err != nil {
		return &WatchError{Op: WatchOpScan, Path: path, Err: err}
	}
	offset := scan.RunOffset
	if fromStart {
		offset = 0
	}

	if s.tracker == nil {
		s.tracker = NewTracker(scan.Templates)
	} else {
		s.tracker.Reset(scan.Templates)
	}
	s.size = scan.Size

	src, err := s.w.cfg.openSource(s.ctx, path, offset)
	if err != nil {
		return &WatchError{Op: WatchOpOpen, Path: path, Err: err}
	}
	s.src = src

	s.w.log.Debug("scanned log file",
		"path", path,
		"known_instances", len(scan.Templates),
		"offset", offset,
		"size", scan.Size,
	)
	return nil
}

// step runs one iteration of the loop.
func (s *session) step() *WatchError {
	path := s.w.logPath

	size, err := s.w.cfg.statSize(path)
	if err != nil {
		return &WatchError{Op: WatchOpStat, Path: path, Err: err}
	}
	if size < s.size {
		return s.reset(size)
	}
	s.size = size

	line, ok, err := s.src.Next(s.ctx)
	if err != nil {
		if s.ctx.Err() != nil {
			return nil
		}
		return &WatchError{Op: WatchOpRead, Path: path, Err: err}
	}

	if ok {
		if s.tracker.HandleLine(line) {
			s.publish(false)
		}
		return nil
	}

	if !s.settled {
		if sleep(s.ctx, s.w.cfg.clock, s.w.cfg.settleDelay) != nil {
			return nil
		}
		s.settled = true
		s.w.log.Debug("initial state", "hand", s.handTemplates(), "stash", len(s.tracker.inv.stash))
	}
	s.publish(true)
	_ = sleep(s.ctx, s.w.cfg.clock, s.w.cfg.heartbeat)
	return nil
}

// reset handles a shrunken file: state is rebuilt from a fresh scan and
// reading restarts at the beginning of the file. Whatever the old source
// already read from the shortened file is discarded with the old state.
func (s *session) reset(size int64) *WatchError {
	s.w.log.Debug("log file truncated, resetting", "path", s.w.logPath, "old_size", s.size, "new_size", size)
	s.closeSource()
	if werr := s.start(true); werr != nil {
		return werr
	}
	s.settled = false
	s.send(EmptySnapshot())
	return nil
}

// publish resolves and sends the current state. The heartbeat publish
// also warns about hand items the catalog has no record for.
func (s *session) publish(heartbeat bool) {
	snap, missing := s.w.resolve.Snapshot(s.tracker)
	if heartbeat && len(missing.Hand) > 0 {
		s.w.log.Warn("hand items missing from catalog", "templates", missing.Hand)
	}
	s.send(snap)
}

func (s *session) send(snap Snapshot) {
	select {
	case s.snapCh <- snap:
	case <-s.ctx.Done():
	}
}

func (s *session) closeSource() {
	if s.src != nil {
		_ = s.src.Close()
		s.src = nil
	}
}

func (s *session) handTemplates() []string {
	hand := s.tracker.Hand()
	tids := make([]string, len(hand))
	for i, iid := range hand {
		tids[i] = s.tracker.instances.Resolve(iid)
	}
	return tids
}

// sendError sends an error to the error channel without blocking shutdown.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
		// Drop error only if buffer is full
	}
}
