package tailer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Poll = true
	cfg.IdleTimeout = 100 * time.Millisecond
	return cfg
}

// nextLine waits for a line, treating idle timeouts as retries.
func nextLine(t *testing.T, tl *Tailer, timeout time.Duration) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		line, ok, err := tl.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if ok {
			return line
		}
	}
	t.Fatal("timeout waiting for line")
	return ""
}

func TestTailer_ExistingAndNewLines(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "Player.log")
	if err := os.WriteFile(logFile, []byte("existing1\nexisting2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tl, err := New(context.Background(), logFile, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer tl.Close()

	for _, want := range []string{"existing1", "existing2"} {
		if got := nextLine(t, tl, 2*time.Second); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	f.WriteString("appended\n")
	f.Sync()

	if got := nextLine(t, tl, 3*time.Second); got != "appended" {
		t.Errorf("got %q, want %q", got, "appended")
	}
}

func TestTailer_Offset(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "Player.log")
	content := "skip me\nkeep me\n"
	if err := os.WriteFile(logFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Offset = int64(len("skip me\n"))

	tl, err := New(context.Background(), logFile, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer tl.Close()

	if got := nextLine(t, tl, 2*time.Second); got != "keep me" {
		t.Errorf("got %q, want %q", got, "keep me")
	}
}

func TestTailer_IdleReportsNoLine(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "Player.log")
	if err := os.WriteFile(logFile, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tl, err := New(context.Background(), logFile, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer tl.Close()

	line, ok, err := tl.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ok {
		t.Errorf("Next() = %q, want no line", line)
	}
}

func TestTailer_NextCancelled(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "Player.log")
	if err := os.WriteFile(logFile, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tl, err := New(context.Background(), logFile, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer tl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := tl.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestTailer_CloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "Player.log")
	if err := os.WriteFile(logFile, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tl, err := New(context.Background(), logFile, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	tl.Close()
	if err := tl.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, _, err := tl.Next(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Next() after Close error = %v, want ErrClosed", err)
	}
}

func TestTailer_MissingFile(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing.log"), testConfig())
	if err == nil {
		t.Error("New() expected error for missing file")
	}
}

func TestTailer_FollowsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "Player.log")
	if err := os.WriteFile(logFile, []byte("first run line one\nfirst run line two\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tl, err := New(context.Background(), logFile, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer tl.Close()

	for _, want := range []string{"first run line one", "first run line two"} {
		if got := nextLine(t, tl, 2*time.Second); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}

	// the game restarted and rewrote a shorter log
	if err := os.WriteFile(logFile, []byte("new\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := nextLine(t, tl, 5*time.Second); got != "new" {
		t.Errorf("after truncation got %q, want %q", got, "new")
	}
}
