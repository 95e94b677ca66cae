// Package tail implements incremental reading of growing files. A
// Reader remembers how far into a file it has read and returns only the
// complete lines appended since, so each read costs work proportional
// to the new bytes rather than the whole file.
package tail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrClosed is returned when reading from a closed Reader.
var ErrClosed = errors.New("tail: reader is closed")

// Reader tails a single file. It is not safe for concurrent use; all
// reads for a path go through one Reader.
type Reader struct {
	path   string
	file   *os.File
	offset int64
}

// Open opens path for tailing, positioned at the current end of file.
// Content already present is never returned; only lines appended after
// Open. Fails if the file does not exist.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &Reader{path: path, file: file, offset: info.Size()}, nil
}

// Offset reports how many bytes of the file have been consumed.
func (r *Reader) Offset() int64 { return r.offset }

// ReadNewLines returns the complete, non-blank lines appended since the
// previous call, in file order. A trailing fragment without a line
// terminator is neither returned nor consumed; it is picked up by a
// later call once terminated. The call performs a single bounded read
// and never blocks waiting for more data.
//
// If the file was truncated or replaced (observed size below the stored
// offset), the reader reopens it and treats the whole file as new.
func (r *Reader) ReadNewLines() ([]string, error) {
	if r.file == nil {
		return nil, ErrClosed
	}

	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Race between a change notification and deletion.
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", r.path, err)
	}

	if info.Size() < r.offset {
		if err := r.reopen(); err != nil {
			return nil, err
		}
	}

	if info.Size() == r.offset {
		return nil, nil
	}

	buf := make([]byte, info.Size()-r.offset)
	n, err := r.file.ReadAt(buf, r.offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	buf = buf[:n]

	// Only consume up to the last line terminator; the rest is a
	// partial line still being written.
	end := bytes.LastIndexByte(buf, '\n')
	if end < 0 {
		return nil, nil
	}
	r.offset += int64(end + 1)

	var lines []string
	for _, line := range bytes.Split(buf[:end], []byte{'\n'}) {
		text := strings.TrimSpace(string(line))
		if text != "" {
			lines = append(lines, text)
		}
	}
	return lines, nil
}

// reopen re-establishes the handle after truncation or rotation and
// resets the offset so the whole file is treated as new.
func (r *Reader) reopen() error {
	file, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", r.path, err)
	}
	r.file.Close() //nolint:errcheck
	r.file = file
	r.offset = 0
	return nil
}

// Close releases the file handle. Safe to call more than once.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
