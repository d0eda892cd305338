package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHash = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestEncode(t *testing.T) {
	line := Encode(Entry{Hash: sampleHash, Path: "sub/file.txt"})
	assert.Equal(t, sampleHash+"  sub/file.txt\n", line)
}

func TestDecodeRoundTrip(t *testing.T) {
	paths := []string{
		"a",
		"sub/file.txt",
		"dir with spaces/file  with  double  spaces.txt",
		"  leading spaces",
		`windows\style\path.bin`,
		"ünïcödé/ファイル",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			in := Entry{Hash: sampleHash, Path: p}
			out, err := Decode(Encode(in))
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestDecodeCRLF(t *testing.T) {
	e, err := Decode(sampleHash + "  file.txt\r\n")
	require.NoError(t, err)
	assert.Equal(t, "file.txt", e.Path)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "empty", line: ""},
		{name: "hash only", line: sampleHash},
		{name: "separator without path", line: sampleHash + "  "},
		{name: "misaligned separator", line: sampleHash[:63] + "  ab"},
		{name: "single space", line: sampleHash + " x file.txt"},
		{name: "tab separator", line: sampleHash + "\t\tfile.txt"},
		{name: "short hash", line: sampleHash[:60] + "  some/longer/path.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.line)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeMinimalLine(t *testing.T) {
	line := sampleHash + "  x"
	require.Len(t, line, 67)
	e, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, "x", e.Path)
}

func TestDecodeDoesNotValidateHex(t *testing.T) {
	upper := strings.ToUpper(sampleHash)
	e, err := Decode(upper + "  file")
	require.NoError(t, err)
	assert.Equal(t, upper, e.Hash)
}

func TestLocalPath(t *testing.T) {
	foreign := string(foreignSeparator())
	native := string(filepath.Separator)

	e := Entry{Hash: sampleHash, Path: "a" + foreign + "b" + foreign + "c.txt"}
	assert.Equal(t, "a"+native+"b"+native+"c.txt", e.LocalPath(true))
	assert.Equal(t, e.Path, e.LocalPath(false))

	mixed := Entry{Hash: sampleHash, Path: "a" + native + "b" + foreign + "c.txt"}
	assert.Equal(t, mixed.Path, mixed.LocalPath(true), "paths already using the host separator are untouched")

	assert.Equal(t, filepath.Join("/root", "a", "b", "c.txt"), e.Resolve("/root", true))
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 1, 7, 5, 9, 0, time.Local)
	name := FileName(ts)
	assert.Equal(t, "shasum.2024-03-01.07.05.09.txt", name)
	assert.True(t, IsManifestName(name))

	assert.False(t, IsManifestName("shasum.2024.md"))
	assert.False(t, IsManifestName("checksums.txt"))
}

func TestCreateAppendClose(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)

	w, err := Create(dir, ts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName(ts)), w.Path())

	require.NoError(t, w.Append(Entry{Hash: sampleHash, Path: "one.txt"}))
	require.NoError(t, w.Append(Entry{Hash: sampleHash, Path: filepath.Join("sub", "two.txt")}))
	assert.Equal(t, 2, w.Len())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t,
		sampleHash+"  one.txt\n"+sampleHash+"  "+filepath.Join("sub", "two.txt")+"\n",
		string(data))
}

func TestCreateRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	ts := time.Now()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName(ts)), []byte("keep me"), 0o644))

	_, err := Create(dir, ts)
	assert.ErrorIs(t, err, ErrExists)

	data, err := os.ReadFile(filepath.Join(dir, FileName(ts)))
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestAppendRejectsInvalidEntries(t *testing.T) {
	w, err := Create(t.TempDir(), time.Now())
	require.NoError(t, err)
	defer w.Close()

	assert.ErrorIs(t, w.Append(Entry{Hash: "abc", Path: "x"}), ErrMalformed)
	assert.ErrorIs(t, w.Append(Entry{Hash: sampleHash, Path: ""}), ErrMalformed)
	assert.ErrorIs(t, w.Append(Entry{Hash: sampleHash, Path: "a\nb"}), ErrMalformed)
	assert.Equal(t, 0, w.Len())
}

func TestReadStopsAtMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shasum.test.txt")
	content := Encode(Entry{Hash: sampleHash, Path: "good1"}) +
		"garbage\n" +
		Encode(Entry{Hash: sampleHash, Path: "good2"})
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var seen []string
	err := Read(path, func(e Entry) error {
		seen = append(seen, e.Path)
		return nil
	})

	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 2, lineErr.Line)
	assert.Equal(t, path, lineErr.Path)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, []string{"good1"}, seen)
}

func TestReadPropagatesCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shasum.test.txt")
	require.NoError(t, os.WriteFile(path, []byte(Encode(Entry{Hash: sampleHash, Path: "f"})), 0o644))

	stop := errors.New("stop")
	err := Read(path, func(Entry) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestReadMissingFile(t *testing.T) {
	err := Read(filepath.Join(t.TempDir(), "missing.txt"), func(Entry) error { return nil })
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"shasum.2024-01-02.03.04.05.txt",
		"shasum.2023-01-01.00.00.00.txt",
		"notes.txt",
		"shasum.backup",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}
	// Directories and symlinks with matching names are ignored.
	require.NoError(t, os.Mkdir(filepath.Join(root, "shasum.dir.txt"), 0o755))
	require.NoError(t, os.Symlink("notes.txt", filepath.Join(root, "shasum.link.txt")))
	// Manifests in subdirectories are not discovered.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "shasum.nested.txt"), nil, 0o644))

	found, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "shasum.2023-01-01.00.00.00.txt"),
		filepath.Join(root, "shasum.2024-01-02.03.04.05.txt"),
	}, found)
}

func TestDiscoverNone(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "data.bin"), nil, 0o644))

	_, err := Discover(root)
	assert.ErrorIs(t, err, ErrNoManifests)

	_, err = Discover(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
