package logfile

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/bazaarlens/bazaarlens-go/internal/parser"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/event"
)

// scanBufferSize is the read buffer for full-file scans.
const scanBufferSize = 64 * 1024

// ScanResult is the outcome of a full pass over the log file.
type ScanResult struct {
	// Templates maps every purchased instance id to its template id,
	// regardless of which run the purchase belongs to.
	Templates map[string]string

	// RunOffset is the byte offset of the line following the last run-start
	// marker, or 0 if the file has no marker.
	RunOffset int64

	// Size is the number of bytes scanned.
	Size int64
}

// Scan opens the log at path and scans it once.
func Scan(path string) (*ScanResult, error) {
	l, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	return l.Scan()
}

// Scan reads the file from the start up to Size.
func (l *File) Scan() (*ScanResult, error) {
	return ScanReader(l.section(0))
}

// ScanReader is Scan over an arbitrary reader positioned at the start of the log.
func ScanReader(r io.Reader) (*ScanResult, error) {
	res := &ScanResult{Templates: make(map[string]string)}
	br := bufio.NewReaderSize(r, scanBufferSize)

	var offset int64
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			offset += int64(len(line))
			if parser.IsRunStart(line) {
				res.RunOffset = offset
			}
			if ev := parser.Parse(line); ev != nil && ev.Kind == event.Purchased {
				res.Templates[ev.InstanceID] = ev.TemplateID
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}

	res.Size = offset
	return res, nil
}

// ReadFrom opens the log at path and calls fn for every line from offset.
func ReadFrom(path string, offset int64, fn func(line string)) error {
	l, err := Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	return l.ReadFrom(offset, fn)
}

// ReadFrom calls fn for every line between offset and Size.
// The trailing newline is stripped; a final unterminated line is included.
func (l *File) ReadFrom(offset int64, fn func(line string)) error {
	br := bufio.NewReaderSize(l.section(offset), scanBufferSize)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			fn(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
