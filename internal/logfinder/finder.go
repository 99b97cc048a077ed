// Package logfinder resolves the location of The Bazaar's Player.log.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvLogPath is the environment variable name for specifying the log file.
const EnvLogPath = "BAZAARLENS_LOG"

// ErrLogNotFound is returned when no candidate log path can be derived.
var ErrLogNotFound = errors.New("log file location unknown")

// logSubPath is the Player.log location relative to the user profile.
var logSubPath = []string{"AppData", "LocalLow", "Tempo Storm", "The Bazaar", "Player.log"}

// DefaultLogPaths returns candidate Player.log paths in priority order.
func DefaultLogPaths() []string {
	var candidates []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			candidates = append(candidates, p)
		}
	}

	if profile := os.Getenv("USERPROFILE"); profile != "" {
		add(filepath.Join(append([]string{profile}, logSubPath...)...))
	}

	// LocalLow is one level up from Local
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		add(filepath.Join(append([]string{filepath.Dir(filepath.Dir(localAppData))}, logSubPath...)...))
	}

	if home, err := os.UserHomeDir(); err == nil {
		add(filepath.Join(append([]string{home}, logSubPath...)...))
	}

	return candidates
}

// FindLogPath returns the absolute path of the log file to follow.
//
// Priority:
//  1. explicit (if non-empty)
//  2. BAZAARLENS_LOG environment variable
//  3. the first DefaultLogPaths() entry that exists, else the first entry
//
// The file does not need to exist yet; the watcher waits for it.
// Symlinks are resolved when the file exists.
func FindLogPath(explicit string) (string, error) {
	if explicit != "" {
		return resolveLogPath(explicit)
	}

	if env := os.Getenv(EnvLogPath); env != "" {
		p, err := resolveLogPath(env)
		if err != nil {
			return "", fmt.Errorf("%s environment variable: %w", EnvLogPath, err)
		}
		return p, nil
	}

	candidates := DefaultLogPaths()
	if len(candidates) == 0 {
		return "", ErrLogNotFound
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return resolveLogPath(c)
		}
	}
	return resolveLogPath(candidates[0])
}

// resolveLogPath makes p absolute and resolves symlinks if it exists.
func resolveLogPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving log path: %w", err)
	}
	if _, err := os.Lstat(abs); err != nil {
		return abs, nil
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving log path: %w", err)
	}
	return resolved, nil
}
