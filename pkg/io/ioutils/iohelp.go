// Package ioutils opens forecast files for reading and writing, transparently handling gzip and
// the "-" stdin/stdout convention.
package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsStdio reports whether path names stdin or stdout.
func IsStdio(path string) bool { return path == "" || path == "-" }

// OpenMaybeCompressed opens path (or stdin for "-") and returns a buffered reader. gzip input is
// detected by the magic bytes, so a ".gz" extension is not required.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	var src io.Reader
	closeSrc := func() error { return nil }
	if IsStdio(path) {
		src = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		src, closeSrc = f, f.Close
	}

	br := bufio.NewReader(src)
	if magic, err := br.Peek(len(gzipMagic)); err == nil && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = closeSrc()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, closeSrc}}, nil
	}
	return &readCloser{Reader: br, closers: []func() error{closeSrc}}, nil
}

// CreateMaybeCompressed creates path (or uses stdout for "-"). Paths ending in ".gz" are gzip
// compressed. Close flushes everything.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if IsStdio(path) {
		bw := bufio.NewWriter(os.Stdout)
		return &writeCloser{Writer: bw, closers: []func() error{bw.Flush}}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		zw := gzip.NewWriter(bw)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, bw.Flush, f.Close}}, nil
	}
	return &writeCloser{Writer: bw, closers: []func() error{bw.Flush, f.Close}}, nil
}

// runClosers calls every closer in order and returns the first error.
func runClosers(closers []func() error) error {
	var first error
	for _, c := range closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error { return runClosers(r.closers) }

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error { return runClosers(w.closers) }
