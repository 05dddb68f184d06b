// Package readfile loads a text file as lines for viewing and searching.
package readfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrTooLarge is returned when a file exceeds its Limits.
var ErrTooLarge = errors.New("file too large")

// Limits bound what ReadLines accepts. Zero fields are unlimited.
type Limits struct {
	MaxBytes int64
	MaxLines int
}

// DefaultLimits keeps a whole-document scan and render interactive.
var DefaultLimits = Limits{MaxBytes: 64 << 20, MaxLines: 1_000_000}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadLines reads path and splits it on "\n" after folding "\r\n". A
// leading UTF-8 byte order mark is dropped so it never shifts match
// offsets on the first line. Lone "\r" is kept.
func ReadLines(path string, limits Limits) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if limits.MaxBytes > 0 {
		if info, err := f.Stat(); err == nil && info.Mode().IsRegular() && info.Size() > limits.MaxBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, path, info.Size(), limits.MaxBytes)
		}
		// Stat lies for pipes and growing files.
		r = io.LimitReader(f, limits.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, limits.MaxBytes)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if limits.MaxLines > 0 && len(lines) > limits.MaxLines {
		return nil, fmt.Errorf("%w: %s has %d lines, limit %d", ErrTooLarge, path, len(lines), limits.MaxLines)
	}
	return lines, nil
}
