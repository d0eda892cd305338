package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Prefix and Suffix bracket every manifest file name.
	Prefix = "shasum."
	Suffix = ".txt"

	nameLayout = "2006-01-02.15.04.05"

	// Paths are bounded by PATH_MAX in practice; allow generous headroom.
	maxLineLen = 1 << 20
)

var (
	// ErrExists is returned by Create when the manifest name is taken.
	ErrExists = errors.New("manifest already exists")
	// ErrNoManifests is returned by Discover when a root holds no manifest.
	ErrNoManifests = errors.New("no shasum manifests found")
)

// FileName returns the manifest name for a copy session started at t,
// e.g. shasum.2024-03-01.12.30.05.txt.
func FileName(t time.Time) string {
	return Prefix + t.Format(nameLayout) + Suffix
}

// IsManifestName reports whether name follows the manifest naming scheme.
func IsManifestName(name string) bool {
	return strings.HasPrefix(name, Prefix) && strings.HasSuffix(name, Suffix)
}

// Writer appends entries to a manifest file.
type Writer struct {
	f    *os.File
	path string
	n    int
}

// Create makes a new manifest in dir named after t. It never replaces an
// existing file.
func Create(dir string, t time.Time) (*Writer, error) {
	path := filepath.Join(dir, FileName(t))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	return &Writer{f: f, path: path}, nil
}

// Append writes one entry. Each line goes straight to the file so an
// interrupted copy still leaves every completed entry on disk.
func (w *Writer) Append(e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	if _, err := w.f.WriteString(Encode(e)); err != nil {
		return fmt.Errorf("write manifest %s: %w", w.path, err)
	}
	w.n++
	return nil
}

// Path returns the manifest's file path.
func (w *Writer) Path() string { return w.path }

// Len returns the number of entries written so far.
func (w *Writer) Len() int { return w.n }

// Close flushes the manifest to stable storage and closes it.
func (w *Writer) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("sync manifest %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close manifest %s: %w", w.path, err)
	}
	return nil
}

// LineError locates a malformed line.
type LineError struct {
	Err  error
	Path string
	Line int
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Read decodes path line by line, calling fn for every entry. It stops at
// the first malformed line with a *LineError, or at the first error from fn.
func Read(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLen)

	line := 0
	for sc.Scan() {
		line++
		e, err := Decode(sc.Text())
		if err != nil {
			return &LineError{Path: path, Line: line, Err: err}
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read manifest %s: %w", path, err)
	}
	return nil
}

// Discover lists the manifests directly inside root, in name order. Only
// regular files count. Finding none is an error.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}

	var found []string
	for _, de := range entries {
		if !de.Type().IsRegular() || !IsManifestName(de.Name()) {
			continue
		}
		found = append(found, filepath.Join(root, de.Name()))
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoManifests, root)
	}
	return found, nil
}
