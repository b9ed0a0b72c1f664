package fileio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Open opens a file for reading, transparently decompressing it when
// the name ends in ".gz".
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip %s: %w", name, err)
	}
	return &gzReadCloser{gz: gz, f: f}, nil
}

// Create creates a file for writing, gzip-compressing it when the name
// ends in ".gz". The returned writer must be closed to flush.
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, nil
	}
	return &gzWriteCloser{gz: gzip.NewWriter(f), f: f}, nil
}

type gzReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (r *gzReadCloser) Read(p []byte) (int, error) { return r.gz.Read(p) }

func (r *gzReadCloser) Close() error {
	gzErr := r.gz.Close()
	if err := r.f.Close(); err != nil {
		return err
	}
	return gzErr
}

type gzWriteCloser struct {
	gz *gzip.Writer
	f  *os.File
}

func (w *gzWriteCloser) Write(p []byte) (int, error) { return w.gz.Write(p) }

func (w *gzWriteCloser) Close() error {
	gzErr := w.gz.Close()
	if err := w.f.Close(); err != nil {
		return err
	}
	return gzErr
}

// ReadLines returns the non-empty lines of r with everything after the
// comment marker stripped and surrounding whitespace trimmed.
func ReadLines(r io.Reader, comment string) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if comment != "" {
			if idx := strings.Index(line, comment); idx >= 0 {
				line = line[:idx]
			}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// ReadLinesFile reads the non-comment lines of the named file, which
// may be gzip-compressed.
func ReadLinesFile(name, comment string) ([]string, error) {
	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f, comment)
}
