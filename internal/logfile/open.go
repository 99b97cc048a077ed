// Package logfile opens and scans the game log file.
package logfile

import (
	"errors"
	"io"
	"os"
)

// ErrNotRegularFile is returned when the log path is a symlink, directory,
// FIFO or device instead of the file the game writes.
var ErrNotRegularFile = errors.New("not a regular file")

// File is an opened log file pinned to the size it had when opened.
//
// Reads through a File stop at that size, so a scan and a later read of
// the same File see the same bytes while the game keeps appending.
type File struct {
	f    *os.File
	path string
	size int64
}

// Open opens the log at path. The path itself must be a regular file, and
// the opened descriptor must still be that same file.
func Open(path string) (*File, error) {
	before, err := lstatRegular(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() || !os.SameFile(before, info) {
		f.Close()
		return nil, &os.PathError{Op: "open", Path: path, Err: ErrNotRegularFile}
	}

	return &File{f: f, path: path, size: info.Size()}, nil
}

// Path returns the path the file was opened from.
func (l *File) Path() string { return l.path }

// Size returns the size of the file when it was opened.
func (l *File) Size() int64 { return l.size }

// Close closes the file.
func (l *File) Close() error { return l.f.Close() }

// section returns a reader over [offset, Size).
func (l *File) section(offset int64) *io.SectionReader {
	if offset > l.size {
		offset = l.size
	}
	return io.NewSectionReader(l.f, offset, l.size-offset)
}

// Stat returns the current size of the log at path, applying the same
// regular-file check as Open. The watcher calls it once per step to
// detect truncation.
func Stat(path string) (int64, error) {
	info, err := lstatRegular(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func lstatRegular(path string) (os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, &os.PathError{Op: "stat", Path: path, Err: ErrNotRegularFile}
	}
	return info, nil
}
