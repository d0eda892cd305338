package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bamsammich/shacopy/internal/event"
	"github.com/bamsammich/shacopy/internal/manifest"
	"github.com/bamsammich/shacopy/internal/stats"
)

// VerifyConfig controls a verification run over one or more roots.
type VerifyConfig struct {
	Events chan<- event.Event
	// Manifest, when set, is verified against every root instead of the
	// manifests discovered inside each root.
	Manifest string
	Roots    []string
	Hash     HashConfig
	// ConvertSeparators rewrites manifest paths written on a platform with
	// the other path separator.
	ConvertSeparators bool
	// Parallel verifies each root on its own goroutine.
	Parallel bool
}

// VerifyResult is the merged outcome of a verification run.
type VerifyResult struct {
	// Err joins the errors of roots that could not be processed at all.
	Err     error
	Stats   stats.Statistics
	Elapsed time.Duration
}

// OK reports whether every root was processed and every file matched.
func (r VerifyResult) OK() bool {
	return r.Err == nil && !r.Stats.Failed()
}

// Verify re-hashes every file listed by the manifests of cfg.Roots and
// compares the digests. Per-file and per-manifest problems are tallied and
// never stop the run; a root that cannot be listed fails that root only.
//
// Each root accumulates its own Statistics. In parallel mode those are
// merged once every worker has returned, so no counter is shared.
func Verify(ctx context.Context, cfg VerifyConfig) VerifyResult {
	start := time.Now()
	scopes := make([]stats.Statistics, len(cfg.Roots))
	errs := make([]error, len(cfg.Roots))

	if cfg.Parallel && len(cfg.Roots) > 1 {
		var wg sync.WaitGroup
		for i, root := range cfg.Roots {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = verifyRoot(ctx, cfg, root, &scopes[i])
			}()
		}
		wg.Wait()
	} else {
		for i, root := range cfg.Roots {
			errs[i] = verifyRoot(ctx, cfg, root, &scopes[i])
		}
	}

	return VerifyResult{
		Stats:   stats.Merge(scopes...),
		Err:     errors.Join(errs...),
		Elapsed: time.Since(start),
	}
}

// verifyRoot verifies one root into st, which only this call mutates.
func verifyRoot(ctx context.Context, cfg VerifyConfig, root string, st *stats.Statistics) error {
	manifests, err := manifestsFor(root, cfg.Manifest)
	if err != nil {
		st.Errors++
		slog.Error("cannot verify root", "root", root, "error", err)
		event.Emit(cfg.Events, event.Event{Type: event.RootFailed, Root: root, Error: err})
		return fmt.Errorf("%s: %w", root, err)
	}

	for _, m := range manifests {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := verifyManifest(ctx, cfg, root, m, st); err != nil {
			return err
		}
	}
	return nil
}

func manifestsFor(root, explicit string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}
	if explicit != "" {
		return []string{explicit}, nil
	}
	return manifest.Discover(root)
}

// verifyManifest checks every entry of one manifest. Only context
// cancellation is returned; everything else is counted in st.
func verifyManifest(
	ctx context.Context,
	cfg VerifyConfig,
	root, path string,
	st *stats.Statistics,
) error {
	slog.Debug("verifying manifest", "root", root, "manifest", path)
	event.Emit(cfg.Events, event.Event{Type: event.VerifyStarted, Root: root, Manifest: path})

	err := manifest.Read(path, func(e manifest.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		verifyEntry(ctx, cfg, root, path, e, st)
		return nil
	})

	var lineErr *manifest.LineError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &lineErr):
		st.Errors++
		slog.Warn("malformed manifest line, skipping rest of manifest",
			"manifest", path, "line", lineErr.Line)
		event.Emit(cfg.Events, event.Event{
			Type:     event.ManifestMalformed,
			Root:     root,
			Manifest: path,
			Error:    err,
		})
	default:
		st.Errors++
		slog.Warn("cannot read manifest", "manifest", path, "error", err)
		event.Emit(cfg.Events, event.Event{
			Type:     event.ManifestMalformed,
			Root:     root,
			Manifest: path,
			Error:    err,
		})
	}
	return nil
}

func verifyEntry(
	ctx context.Context,
	cfg VerifyConfig,
	root, manifestPath string,
	e manifest.Entry,
	st *stats.Statistics,
) {
	full := e.Resolve(root, cfg.ConvertSeparators)
	base := event.Event{Root: root, Manifest: manifestPath, Path: full, Expected: e.Hash}

	got, err := HashFile(ctx, full, cfg.Hash, st)
	if err != nil {
		st.Errors++
		slog.Warn("cannot hash file", "path", full, "error", err)
		base.Type = event.VerifyError
		base.Error = err
		event.Emit(cfg.Events, base)
		return
	}

	st.FilesRead++
	base.Hash = got
	if got == e.Hash {
		st.Matches++
		base.Type = event.VerifyOK
	} else {
		st.Mismatches++
		slog.Warn("digest mismatch", "path", full, "expected", e.Hash, "actual", got)
		base.Type = event.VerifyMismatch
	}
	event.Emit(cfg.Events, base)
}
