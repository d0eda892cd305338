package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/shacopy/internal/event"
	"github.com/bamsammich/shacopy/internal/manifest"
)

const mib = 1 << 20

// patterned returns n bytes that differ block to block, so a reordered or
// duplicated block changes the digest.
func patterned(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + i/4096)
	}
	return b
}

func sumHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// createTestTree populates root with:
//
//	empty.bin    (0 bytes)
//	one.bin      (1 MiB)
//	sub/three.bin (3 MiB)
//
// and returns the content keyed by relative path.
func createTestTree(t *testing.T, root string) map[string][]byte {
	t.Helper()

	files := map[string][]byte{
		"empty.bin":                        {},
		"one.bin":                          patterned(mib),
		filepath.Join("sub", "three.bin"): bytes.Repeat([]byte("shacopy!"), 3*mib/8),
	}
	for rel, data := range files {
		writeFile(t, filepath.Join(root, rel), data)
	}
	return files
}

// copyTree runs CopyTree from a fresh tree into an empty destination and
// returns the destination and the result.
func copyTree(t *testing.T, cfg CopyConfig) (string, map[string][]byte, CopyResult) {
	t.Helper()

	dir := t.TempDir()
	cfg.Src = filepath.Join(dir, "src")
	cfg.Dst = filepath.Join(dir, "dst")
	files := createTestTree(t, cfg.Src)
	require.NoError(t, os.Mkdir(cfg.Dst, 0o755))

	res := CopyTree(context.Background(), cfg)
	require.NoError(t, res.Err)
	return cfg.Dst, files, res
}

func readManifest(t *testing.T, path string) []manifest.Entry {
	t.Helper()
	var entries []manifest.Entry
	require.NoError(t, manifest.Read(path, func(e manifest.Entry) error {
		entries = append(entries, e)
		return nil
	}))
	return entries
}

// collect drains events into a slice until the returned stop func is
// called.
func collect() (chan event.Event, func() []event.Event) {
	ch := make(chan event.Event, 16)
	done := make(chan []event.Event)
	go func() {
		var got []event.Event
		for e := range ch {
			got = append(got, e)
		}
		done <- got
	}()
	return ch, func() []event.Event {
		close(ch)
		return <-done
	}
}

func countType(events []event.Event, typ event.Type) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}
