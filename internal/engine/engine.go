package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/shacopy/internal/event"
	"github.com/bamsammich/shacopy/internal/manifest"
	"github.com/bamsammich/shacopy/internal/overwrite"
	"github.com/bamsammich/shacopy/internal/stats"
)

const (
	// DefaultBlockSize is the read size of every pipeline.
	DefaultBlockSize = 128 * 1024
	// DefaultQueueDepth is the capacity of every pipeline link.
	DefaultQueueDepth = 10
)

// ErrNotDirectory is returned when a copy root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// CopyConfig describes a copy operation. It is built once and shared by
// value with every stage.
type CopyConfig struct {
	Limiter    *rate.Limiter
	Events     chan<- event.Event
	OnProgress func(stats.Statistics)
	Src        string
	Dst        string
	BlockSize  int
	QueueDepth int
	Policy     overwrite.Policy
}

func (c CopyConfig) withDefaults() CopyConfig {
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = DefaultQueueDepth
	}
	return c
}

// CopyResult is the outcome of a tree copy.
type CopyResult struct {
	Err      error
	Manifest string
	Stats    stats.Statistics
	Elapsed  time.Duration
}

// CopyTree copies cfg.Src into cfg.Dst, writing a new shasum manifest at
// the root of cfg.Dst with one line per copied file. The first file that
// fails to copy aborts the whole walk; files already copied stay.
func CopyTree(ctx context.Context, cfg CopyConfig) CopyResult {
	cfg = cfg.withDefaults()
	start := time.Now()

	for _, root := range []string{cfg.Src, cfg.Dst} {
		info, err := os.Stat(root)
		if err != nil {
			return CopyResult{Err: fmt.Errorf("stat root: %w", err)}
		}
		if !info.IsDir() {
			return CopyResult{Err: fmt.Errorf("%s: %w", root, ErrNotDirectory)}
		}
	}

	w, err := manifest.Create(cfg.Dst, start)
	if err != nil {
		return CopyResult{Err: err}
	}
	event.Emit(cfg.Events, event.Event{
		Type:     event.ManifestCreated,
		Root:     cfg.Dst,
		Manifest: w.Path(),
	})
	slog.Info("copy started",
		"src", cfg.Src,
		"dst", cfg.Dst,
		"manifest", w.Path(),
		"block_size", cfg.BlockSize,
		"queue_depth", cfg.QueueDepth,
		"policy", cfg.Policy,
	)

	tc := &treeCopier{cfg: cfg, manifest: w}
	copyErr := tc.copyDir(ctx, cfg.Src, cfg.Dst, "")
	if err := w.Close(); err != nil && copyErr == nil {
		copyErr = err
	}

	return CopyResult{
		Stats:    tc.stats,
		Manifest: w.Path(),
		Elapsed:  time.Since(start),
		Err:      copyErr,
	}
}

// treeCopier carries the state of one walk. It is used from a single
// goroutine: the status consumer of each file pipeline runs on it too.
type treeCopier struct {
	manifest *manifest.Writer
	cfg      CopyConfig
	stats    stats.Statistics
}

func (tc *treeCopier) copyDir(ctx context.Context, src, dst, rel string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("list %s: %w", src, err)
	}

	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := de.Name()
		srcPath := filepath.Join(src, name)
		dstPath := filepath.Join(dst, name)
		relPath := filepath.Join(rel, name)

		// Stat follows symlinks: a link to a regular file is copied as that
		// file's content. Links to directories are not descended into, which
		// keeps the walk free of cycles.
		info, err := os.Stat(srcPath)
		if err != nil {
			slog.Warn("skipping unreadable entry", "path", srcPath, "error", err)
			tc.skip(relPath)
			continue
		}

		switch {
		case info.IsDir() && de.Type()&fs.ModeSymlink != 0:
			slog.Warn("skipping symlinked directory", "path", srcPath)
			tc.skip(relPath)
		case info.IsDir():
			if err := tc.ensureDir(dstPath, relPath); err != nil {
				return err
			}
			if err := tc.copyDir(ctx, srcPath, dstPath, relPath); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := tc.copyFile(ctx, srcPath, dstPath, relPath); err != nil {
				return err
			}
		default:
			slog.Debug("skipping special file", "path", srcPath, "mode", info.Mode().String())
			tc.skip(relPath)
		}
	}
	return nil
}

func (tc *treeCopier) ensureDir(dst, rel string) error {
	if _, err := os.Lstat(dst); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", dst, err)
	}

	if err := os.Mkdir(dst, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dst, err)
	}
	tc.stats.DirsCreated++
	event.Emit(tc.cfg.Events, event.Event{Type: event.DirCreated, Path: rel, Root: tc.cfg.Dst})
	return nil
}

func (tc *treeCopier) copyFile(ctx context.Context, src, dst, rel string) error {
	ok, err := tc.mayWrite(src, dst)
	if err != nil {
		return err
	}
	if !ok {
		slog.Debug("keeping existing file", "path", rel, "policy", tc.cfg.Policy)
		tc.skip(rel)
		return nil
	}

	var copied int64
	digest, err := CopyFile(ctx, src, dst, tc.cfg, func(n int64) {
		copied += n
		tc.stats.BytesRead += n
		if tc.cfg.OnProgress != nil {
			tc.cfg.OnProgress(tc.stats)
		}
	})
	if err != nil {
		tc.stats.Errors++
		event.Emit(tc.cfg.Events, event.Event{
			Type:  event.FileFailed,
			Path:  rel,
			Root:  tc.cfg.Dst,
			Size:  copied,
			Error: err,
		})
		return fmt.Errorf("copy %s: %w", rel, err)
	}

	if err := tc.manifest.Append(manifest.Entry{Hash: digest, Path: rel}); err != nil {
		return err
	}
	tc.stats.FilesRead++
	event.Emit(tc.cfg.Events, event.Event{
		Type:     event.FileCopied,
		Path:     rel,
		Root:     tc.cfg.Dst,
		Manifest: tc.manifest.Path(),
		Hash:     digest,
		Size:     copied,
	})
	slog.Debug("copied", "path", rel, "bytes", copied, "sha256", digest)
	return nil
}

// mayWrite applies the overwrite policy when dst already exists. A
// destination symlink the policy allows replacing is removed first so the
// copy never writes through it.
func (tc *treeCopier) mayWrite(src, dst string) (bool, error) {
	existing, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", dst, err)
	}

	incoming, err := os.Lstat(src)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}

	if !tc.cfg.Policy.Decide(overwrite.MetadataOf(existing), overwrite.MetadataOf(incoming)) {
		return false, nil
	}
	if existing.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(dst); err != nil {
			return false, fmt.Errorf("remove symlink %s: %w", dst, err)
		}
	}
	return true, nil
}

func (tc *treeCopier) skip(rel string) {
	tc.stats.FilesSkipped++
	event.Emit(tc.cfg.Events, event.Event{Type: event.FileSkipped, Path: rel, Root: tc.cfg.Dst})
}
