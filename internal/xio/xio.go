// Package xio opens compressed and plain inputs and outputs.
package xio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

// lz4 frame magic number, little endian.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// Open opens path for reading, or stdin when path is "-".
// BGZF, gzip and LZ4 content is decompressed based on its magic bytes.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return NewReader(io.NopCloser(os.Stdin))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	rc, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return rc, nil
}

// NewReader wraps rc with the decompressor matching its first bytes.
// Closing the returned reader closes rc.
func NewReader(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	head, err := br.Peek(18)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek header: %w", err)
	}

	switch {
	case isBGZF(head):
		bg, err := bgzf.NewReader(br, 0)
		if err != nil {
			return nil, fmt.Errorf("create bgzf reader: %w", err)
		}
		return &stack{Reader: bg, closers: []io.Closer{bg, rc}}, nil
	case isGzip(head):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return &stack{Reader: gz, closers: []io.Closer{gz, rc}}, nil
	case bytes.HasPrefix(head, lz4Magic):
		return &stack{Reader: lz4.NewReader(br), closers: []io.Closer{rc}}, nil
	default:
		return &stack{Reader: br, closers: []io.Closer{rc}}, nil
	}
}

// Create opens path for writing, or stdout when path is "" or "-".
// A ".gz" suffix selects gzip and ".lz4" selects LZ4 framing.
func Create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		gz := gzip.NewWriter(f)
		return &stackWriter{Writer: gz, closers: []io.Closer{gz, f}}, nil
	case strings.HasSuffix(lower, ".lz4"):
		lw := lz4.NewWriter(f)
		return &stackWriter{Writer: lw, closers: []io.Closer{lw, f}}, nil
	default:
		return f, nil
	}
}

// isGzip checks for the gzip magic number (0x1f, 0x8b).
func isGzip(head []byte) bool {
	return len(head) >= 2 && head[0] == 0x1f && head[1] == 0x8b
}

// isBGZF checks for a gzip member carrying the BGZF "BC" extra subfield.
func isBGZF(head []byte) bool {
	const flagExtra = 0x04
	return isGzip(head) && len(head) >= 16 &&
		head[3]&flagExtra != 0 && head[12] == 'B' && head[13] == 'C'
}

type stack struct {
	io.Reader
	closers []io.Closer
}

func (s *stack) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type stackWriter struct {
	io.Writer
	closers []io.Closer
}

func (s *stackWriter) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
