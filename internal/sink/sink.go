// Package sink writes converted text to stdout or a file in a chosen
// character encoding.
package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var ErrUnknownEncoding = errors.New("unknown encoding")

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Lookup returns the encoding for a WHATWG label such as "windows-1251".
// It returns nil for UTF-8, which needs no conversion.
func Lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return e, nil
}

// NewWriter returns a writer encoding UTF-8 text written to it into name.
// Runes the encoding cannot represent are replaced. Close flushes it and
// does not close w.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(e.NewEncoder())), nil
}

// Print writes text to w, adding a final newline if text lacks one.
func Print(w io.Writer, text, enc string) error {
	ew, err := NewWriter(w, enc)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(ew, text); err != nil {
		ew.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := ew.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// WriteFile writes text to path like Print. The file is only created once
// the encoding is known to be valid, and path is left untouched when the
// write fails.
func WriteFile(path, text, enc string) error {
	if _, err := Lookup(enc); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return Print(w, text, enc)
	})
}

// writeFile writes to a temporary file next to path and renames it over
// path on success.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("create output: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("create output: %w", err)
	}
	return nil
}
