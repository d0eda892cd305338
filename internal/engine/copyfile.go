package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/time/rate"

	"github.com/bamsammich/shacopy/internal/manifest"
	"github.com/bamsammich/shacopy/internal/pipeline"
	"github.com/bamsammich/shacopy/internal/platform"
)

// CopyFile copies src to dst while hashing the bytes in flight, returning
// the lowercase hex SHA-256 of everything written.
//
// Four stages run concurrently, joined by links of cfg.QueueDepth:
//
//	reader -> router -+-> hasher
//	                  +-> writer
//	                  +-> status (consumed here, feeding progress)
//
// The call returns once every stage has finished. On failure dst is left
// as far as it got; nothing is truncated or removed.
func CopyFile(
	ctx context.Context,
	src, dst string,
	cfg CopyConfig,
	progress func(n int64),
) (string, error) {
	cfg = cfg.withDefaults()

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOpen, err)
	}
	var size int64
	if info, statErr := in.Stat(); statErr == nil {
		size = info.Size()
	}

	out, err := os.Create(dst)
	if err != nil {
		in.Close()
		return "", fmt.Errorf("create %s: %w", dst, err)
	}

	pool := pipeline.NewBlockPool(cfg.BlockSize)
	fromReader := pipeline.NewLink(cfg.QueueDepth)
	toHasher := pipeline.NewLink(cfg.QueueDepth)
	toWriter := pipeline.NewLink(cfg.QueueDepth)
	status := pipeline.NewLink(cfg.QueueDepth)

	var (
		g      pipeline.Group
		digest string
	)
	g.Go("reader", func() error {
		return readStage(ctx, in, pool, cfg.Limiter, fromReader)
	})
	g.Go("router", func() error {
		return routeStage(fromReader, toHasher, toWriter, status)
	})
	g.Go("hasher", func() error {
		var hashErr error
		digest, hashErr = hashStage(toHasher)
		return hashErr
	})
	g.Go("writer", func() error {
		return writeStage(out, size, toWriter)
	})

	consumeStatus(status, progress)

	if err := g.Wait(); err != nil {
		return "", err
	}
	if len(digest) != manifest.HashLen {
		return "", fmt.Errorf("%w: digest %q", ErrHashIncomplete, digest)
	}
	return digest, nil
}

// readStage reads f block by block until EOF. It owns f and closes it.
func readStage(
	ctx context.Context,
	f *os.File,
	pool *pipeline.BlockPool,
	limiter *rate.Limiter,
	out *pipeline.Link,
) (err error) {
	defer f.Close()
	defer func() { out.Abort(err) }()

	platform.AdviseSequential(f)
	r := limitReader(ctx, f, limiter)

	for {
		b := pool.Get()
		n, readErr := r.Read(b.Buffer())
		if n > 0 {
			b.SetLen(n)
			if err := out.Send(pipeline.Data(b)); err != nil {
				return err
			}
		} else {
			b.Release()
		}

		switch {
		case errors.Is(readErr, io.EOF):
			return out.Send(pipeline.Done())
		case readErr != nil:
			return fmt.Errorf("%w: %s: %w", ErrRead, f.Name(), readErr)
		}
	}
}

// routeStage fans every block out to the hasher and the writer, and its
// length to the status link. Terminal messages go to all three.
func routeStage(in, toHasher, toWriter, status *pipeline.Link) (err error) {
	defer in.Drain()
	defer func() {
		toHasher.Abort(err)
		toWriter.Abort(err)
		status.Abort(err)
	}()

	for {
		m, err := in.Recv()
		if err != nil {
			return err
		}

		switch m.Kind() {
		case pipeline.KindData:
			b := m.Block()
			b.Retain()
			// A rejected Send drops its own reference.
			if err := toHasher.Send(pipeline.Data(b)); err != nil {
				b.Release()
				return err
			}
			if err := toWriter.Send(pipeline.Data(b)); err != nil {
				return err
			}
			if err := status.Send(pipeline.Count(m.Len())); err != nil {
				return err
			}
		case pipeline.KindDone, pipeline.KindError:
			for _, l := range []*pipeline.Link{toHasher, toWriter, status} {
				if err := l.Send(m); err != nil {
					return err
				}
			}
			return nil
		default:
			return fmt.Errorf("%w: unexpected %s message", pipeline.ErrBrokenLink, m.Kind())
		}
	}
}

// writeStage writes blocks to f in arrival order. It owns f and closes
// it. After a write error it keeps draining so the router never stalls.
func writeStage(f *os.File, size int64, in *pipeline.Link) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", f.Name(), cerr)
		}
	}()
	defer in.Drain()

	platform.Preallocate(f, size)

	var writeErr error
	for {
		m, err := in.Recv()
		if err != nil {
			return err
		}

		switch m.Kind() {
		case pipeline.KindData:
			b := m.Block()
			if writeErr == nil {
				if _, werr := f.Write(b.Bytes()); werr != nil {
					writeErr = werr
				}
			}
			b.Release()
		case pipeline.KindDone, pipeline.KindError:
			return writeErr
		}
	}
}

// consumeStatus forwards byte counts to progress until the stream ends.
// It runs on the caller's goroutine.
func consumeStatus(status *pipeline.Link, progress func(int64)) {
	defer status.Drain()
	for {
		m, err := status.Recv()
		if err != nil || m.Terminal() {
			return
		}
		if progress != nil {
			progress(int64(m.Len()))
		}
	}
}
