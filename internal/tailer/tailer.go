// Package tailer provides file tailing for The Bazaar's Player.log.
package tailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nxadm/tail"
)

// tailerErrBuffer is the buffer size for the error channel.
const tailerErrBuffer = 16

// ErrClosed is returned by Next once the underlying tail has stopped.
var ErrClosed = errors.New("tailer closed")

// Tailer wraps nxadm/tail and exposes a pull-style Next for a single consumer.
type Tailer struct {
	t      *tail.Tail
	ctx    context.Context
	cancel context.CancelFunc
	lines  chan string
	errors chan error
	doneCh chan struct{}

	idleTimeout time.Duration

	mu      sync.Mutex
	stopped bool
}

// Config holds configuration for tailing.
type Config struct {
	// Offset is the byte offset to start reading from.
	Offset int64

	// Poll uses polling instead of inotify/ReadDirectoryChangesW.
	Poll bool

	// IdleTimeout is how long Next waits for a line before reporting
	// that none is available.
	IdleTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Offset:      0,
		Poll:        false,
		IdleTimeout: 250 * time.Millisecond,
	}
}

// New creates a Tailer reading path from cfg.Offset onwards.
// The file must exist.
//
// When following, nxadm/tail reopens a truncated file and continues from
// its start regardless of ReOpen. Callers that rebuild state on truncation
// must detect it themselves and drop this Tailer: lines it delivered from
// the shortened file before that are stale.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    false,
		Poll:      cfg.Poll,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: cfg.Offset, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening tail: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	tailer := &Tailer{
		t:           t,
		ctx:         ctx,
		cancel:      cancel,
		lines:       make(chan string),
		errors:      make(chan error, tailerErrBuffer),
		doneCh:      make(chan struct{}),
		idleTimeout: cfg.IdleTimeout,
	}

	go tailer.run()

	return tailer, nil
}

// Next returns the next complete line.
// ok is false when no line arrived within the idle timeout.
// A non-nil error means the tail failed or ctx was cancelled.
func (t *Tailer) Next(ctx context.Context) (line string, ok bool, err error) {
	timer := time.NewTimer(t.idleTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case err := <-t.errors:
		return "", false, err
	case line, open := <-t.lines:
		if !open {
			return "", false, ErrClosed
		}
		return line, true, nil
	case <-timer.C:
		return "", false, nil
	}
}

// Close stops tailing and releases the file.
// Safe to call multiple times.
func (t *Tailer) Close() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	t.cancel()
	<-t.doneCh
	err := t.t.Stop()
	t.t.Cleanup()
	return err
}

func (t *Tailer) run() {
	defer close(t.doneCh)
	defer close(t.lines)

	for {
		select {
		case <-t.ctx.Done():
			return
		case line, ok := <-t.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				select {
				case t.errors <- fmt.Errorf("tail: %w", line.Err):
				case <-t.ctx.Done():
					return
				default:
					// Drop error only if buffer is full
				}
				continue
			}
			select {
			case t.lines <- line.Text:
			case <-t.ctx.Done():
				return
			}
		}
	}
}
