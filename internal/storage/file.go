package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes reports to a single file.
//
// By default the file is truncated when a cycle starts, so a failed cycle leaves
// it empty or partial. With atomic set the report goes to path+".tmp" and is only
// renamed over path on Commit, keeping the last good report on failure.
type FileSink struct {
	path   string
	atomic bool
}

func NewFileSink(path string, atomic bool) *FileSink {
	return &FileSink{path: path, atomic: atomic}
}

// Path returns the report path.
func (s *FileSink) Path() string {
	return s.path
}

// Open creates (or truncates) the destination file.
func (s *FileSink) Open() (Destination, error) {
	if s.path == "" {
		return nil, fmt.Errorf("output path is required")
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	target := s.path
	if s.atomic {
		target = s.path + ".tmp"
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	return &fileDestination{
		file:   file,
		writer: bufio.NewWriter(file),
		path:   s.path,
		atomic: s.atomic,
	}, nil
}

type fileDestination struct {
	file   *os.File
	writer *bufio.Writer
	path   string
	atomic bool
	done   bool
}

func (d *fileDestination) Write(p []byte) (int, error) {
	return d.writer.Write(p)
}

func (d *fileDestination) Commit() error {
	if d.done {
		return fmt.Errorf("destination already closed")
	}
	d.done = true

	if err := d.writer.Flush(); err != nil {
		d.file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if d.atomic {
		if err := os.Rename(d.file.Name(), d.path); err != nil {
			return fmt.Errorf("rename output: %w", err)
		}
	}
	return nil
}

func (d *fileDestination) Discard() error {
	if d.done {
		return nil
	}
	d.done = true

	if d.atomic {
		closeErr := d.file.Close()
		removeErr := os.Remove(d.file.Name())
		return errors.Join(closeErr, removeErr)
	}

	// Whatever was written stays in the truncated file.
	flushErr := d.writer.Flush()
	closeErr := d.file.Close()
	return errors.Join(flushErr, closeErr)
}
