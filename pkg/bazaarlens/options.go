package bazaarlens

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bazaarlens/bazaarlens-go/internal/logfile"
	"github.com/bazaarlens/bazaarlens-go/internal/tailer"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/catalog"
)

// Defaults for the watch loop.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultHeartbeat    = 10 * time.Second
	DefaultSettleDelay  = 2 * time.Second
	DefaultIdleTimeout  = 250 * time.Millisecond
)

// WatchOption configures a Watcher using the functional options pattern.
type WatchOption func(*watchConfig)

// LineSource yields complete log lines.
// Next returns ok=false when no line is currently available.
type LineSource interface {
	Next(ctx context.Context) (line string, ok bool, err error)
	Close() error
}

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	logPath      string
	pollInterval time.Duration // wait between checks for a missing file
	heartbeat    time.Duration // sleep after each idle publish
	settleDelay  time.Duration // one-time wait before the first idle publish
	idleTimeout  time.Duration
	usePolling   bool
	items        *catalog.Items
	monsters     *catalog.Monsters
	logger       *slog.Logger
	clock        Clock

	openSource func(ctx context.Context, path string, offset int64) (LineSource, error)
	statSize   func(path string) (int64, error)
}

// defaultWatchConfig returns a watchConfig with sensible defaults.
func defaultWatchConfig() *watchConfig {
	c := &watchConfig{
		pollInterval: DefaultPollInterval,
		heartbeat:    DefaultHeartbeat,
		settleDelay:  DefaultSettleDelay,
		idleTimeout:  DefaultIdleTimeout,
		clock:        realClock{},
		statSize:     logfile.Stat,
	}
	c.openSource = c.openTailer
	return c
}

func (c *watchConfig) openTailer(ctx context.Context, path string, offset int64) (LineSource, error) {
	return tailer.New(ctx, path, tailer.Config{
		Offset:      offset,
		Poll:        c.usePolling,
		IdleTimeout: c.idleTimeout,
	})
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option values.
func (c *watchConfig) validate() error {
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.heartbeat <= 0 {
		return fmt.Errorf("heartbeat must be positive, got %v", c.heartbeat)
	}
	if c.settleDelay < 0 {
		return fmt.Errorf("settle delay must be non-negative, got %v", c.settleDelay)
	}
	if c.idleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", c.idleTimeout)
	}
	return nil
}

// WithLogPath sets the Player.log path.
// If not set, BAZAARLENS_LOG and then the platform default are used.
func WithLogPath(path string) WatchOption {
	return func(c *watchConfig) {
		c.logPath = path
	}
}

// WithPollInterval sets how often to check for the log file while it does
// not exist yet. Default: 2 seconds.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithHeartbeat sets the pause after each idle publish. Default: 10 seconds.
func WithHeartbeat(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.heartbeat = d
	}
}

// WithSettleDelay sets the wait before the first idle publish after a scan,
// giving consumers time to subscribe. Default: 2 seconds.
func WithSettleDelay(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.settleDelay = d
	}
}

// WithIdleTimeout sets how long a read waits for a new line before the
// watcher treats the file as idle. Default: 250ms.
func WithIdleTimeout(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.idleTimeout = d
	}
}

// WithPolling makes the tailer poll the file instead of using filesystem
// notifications. Useful on network drives.
func WithPolling(poll bool) WatchOption {
	return func(c *watchConfig) {
		c.usePolling = poll
	}
}

// WithItems sets the item catalog used to resolve hand and stash entries.
// Without it, snapshots carry bare template ids.
func WithItems(items *catalog.Items) WatchOption {
	return func(c *watchConfig) {
		c.items = items
	}
}

// WithMonsters sets the monster catalog used to resolve the encounter.
func WithMonsters(monsters *catalog.Monsters) WatchOption {
	return func(c *watchConfig) {
		c.monsters = monsters
	}
}

// WithLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// WithClock replaces the clock used for the poll, settle and heartbeat waits.
// If clock is nil, this option has no effect.
func WithClock(clock Clock) WatchOption {
	return func(c *watchConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}
