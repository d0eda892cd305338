// Package manifest reads and writes shasum manifests: text files with one
// "<sha256 hex>  <relative path>" line per copied file.
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// HashLen is the length of a hex-encoded SHA-256 digest.
	HashLen = 64

	separator  = "  "
	minLineLen = HashLen + len(separator) + 1
)

// ErrMalformed reports a line that does not follow the fixed layout.
var ErrMalformed = errors.New("malformed manifest line")

// Entry is one manifest line.
type Entry struct {
	Hash string
	Path string
}

// Encode renders e as a manifest line including the trailing newline.
func Encode(e Entry) string {
	return e.Hash + separator + e.Path + "\n"
}

// Decode parses one manifest line. A single trailing "\n" or "\r\n" is
// ignored. Only the layout is checked: the digest is not validated as hex.
func Decode(line string) (Entry, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	if len(line) < minLineLen {
		return Entry{}, fmt.Errorf("%w: %d characters, need at least %d",
			ErrMalformed, len(line), minLineLen)
	}
	if line[HashLen:HashLen+len(separator)] != separator {
		return Entry{}, fmt.Errorf("%w: expected two spaces at offset %d", ErrMalformed, HashLen)
	}
	return Entry{
		Hash: line[:HashLen],
		Path: line[HashLen+len(separator):],
	}, nil
}

func (e Entry) validate() error {
	if len(e.Hash) != HashLen {
		return fmt.Errorf("%w: digest has %d characters, want %d", ErrMalformed, len(e.Hash), HashLen)
	}
	if e.Path == "" || strings.ContainsAny(e.Path, "\r\n") {
		return fmt.Errorf("%w: unencodable path %q", ErrMalformed, e.Path)
	}
	return nil
}

// LocalPath returns the entry's path in host form. With convert set, a
// path containing no host separator has the other platform's separator
// rewritten, so manifests written on Windows verify on Unix and back.
func (e Entry) LocalPath(convert bool) string {
	p := e.Path
	if convert && !strings.ContainsRune(p, filepath.Separator) {
		p = strings.ReplaceAll(p, string(foreignSeparator()), string(filepath.Separator))
	}
	return p
}

// Resolve joins the entry's path onto root.
func (e Entry) Resolve(root string, convert bool) string {
	return filepath.Join(root, e.LocalPath(convert))
}

func foreignSeparator() rune {
	if filepath.Separator == '/' {
		return '\\'
	}
	return '/'
}
