// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collection reads and writes collection files: UTF-8 text with one
// JSON-encoded Document per line.
package collection

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/pdiddy/pmc-search/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxLineBytes bounds a single Document line. Full-text articles run to a few
// hundred kilobytes; the largest PMC records stay well under this.
const maxLineBytes = 64 << 20

// Writer appends Documents to a temporary file next to the destination and
// renames it into place on Close, so a collection path only ever holds a
// complete file.
type Writer struct {
	path  string
	tmp   *os.File
	buf   *bufio.Writer
	enc   *jsoniter.Encoder
	count int
}

// Create opens a Writer for path, creating parent directories.
func Create(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".collection-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	buf := bufio.NewWriter(tmp)
	return &Writer{path: path, tmp: tmp, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write appends doc as one line.
func (w *Writer) Write(doc types.Document) error {
	if err := w.enc.Encode(doc); err != nil {
		return fmt.Errorf("writing %s: %w", doc.ID, err)
	}
	w.count++
	return nil
}

// Count returns the number of Documents written so far.
func (w *Writer) Count() int { return w.count }

// Close flushes the file and moves it to its destination.
func (w *Writer) Close() error {
	tmpPath := w.tmp.Name()
	flushErr := w.buf.Flush()
	closeErr := w.tmp.Close()
	if flushErr != nil {
		w.discard()
		return fmt.Errorf("flushing collection: %w", flushErr)
	}
	if closeErr != nil {
		w.discard()
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		w.discard()
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Abort discards everything written. The collection directory is removed
// too when nothing else is in it.
func (w *Writer) Abort() {
	w.tmp.Close()
	w.discard()
}

func (w *Writer) discard() {
	os.Remove(w.tmp.Name())
	os.Remove(filepath.Dir(w.path))
}

// Scan calls fn for each Document in the collection at path, in file order.
// Blank lines are skipped. Scanning stops at the first error from fn.
func Scan(path string, fn func(types.Document) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening collection: %w", err)
	}
	defer f.Close()
	return scan(f, fn)
}

func scan(r io.Reader, fn func(types.Document) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), maxLineBytes)
	for line := 1; sc.Scan(); line++ {
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var doc types.Document
		if err := json.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}
	return nil
}

// Load reads the collection at path into a map keyed by Document.ID.
// When an id repeats, the last line wins.
func Load(path string) (map[string]types.Document, error) {
	docs := make(map[string]types.Document)
	err := Scan(path, func(doc types.Document) error {
		docs[doc.ID] = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
