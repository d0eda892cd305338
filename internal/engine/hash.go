package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/time/rate"

	"github.com/bamsammich/shacopy/internal/pipeline"
	"github.com/bamsammich/shacopy/internal/platform"
	"github.com/bamsammich/shacopy/internal/stats"
)

var (
	// ErrOpen wraps failures to open a file for reading.
	ErrOpen = errors.New("open failed")
	// ErrRead wraps failures while reading an open file.
	ErrRead = errors.New("read failed")
	// ErrHashIncomplete is returned when a hash stage ends without Done.
	ErrHashIncomplete = errors.New("hash incomplete")
)

// HashConfig selects how files are re-hashed during verification.
type HashConfig struct {
	Limiter    *rate.Limiter
	BlockSize  int
	QueueDepth int
	// Threaded moves hashing onto its own goroutine, fed over a link of
	// QueueDepth blocks while the caller keeps reading.
	Threaded bool
}

func (c HashConfig) withDefaults() HashConfig {
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = DefaultQueueDepth
	}
	return c
}

// HashFile returns the lowercase hex SHA-256 of the file at path. Bytes
// are added to st.BytesRead as they are read; st must be owned by the
// caller's goroutine. Both strategies produce identical digests.
func HashFile(ctx context.Context, path string, cfg HashConfig, st *stats.Statistics) (string, error) {
	cfg = cfg.withDefaults()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	platform.AdviseSequential(f)
	r := limitReader(ctx, f, cfg.Limiter)

	if cfg.Threaded {
		return hashPipelined(r, path, cfg, st)
	}
	return hashSequential(r, path, cfg, st)
}

func hashSequential(r io.Reader, path string, cfg HashConfig, st *stats.Statistics) (string, error) {
	h := sha256.New()
	buf := make([]byte, cfg.BlockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			st.BytesRead += int64(n)
		}
		switch {
		case errors.Is(err, io.EOF):
			return hex.EncodeToString(h.Sum(nil)), nil
		case err != nil:
			return "", fmt.Errorf("%w: %s: %w", ErrRead, path, err)
		}
	}
}

// hashPipelined reads on the calling goroutine and hashes on a second
// one. The hash stage is always joined before returning.
func hashPipelined(r io.Reader, path string, cfg HashConfig, st *stats.Statistics) (string, error) {
	pool := pipeline.NewBlockPool(cfg.BlockSize)
	link := pipeline.NewLink(cfg.QueueDepth)

	var (
		g      pipeline.Group
		digest string
	)
	g.Go("hasher", func() error {
		var err error
		digest, err = hashStage(link)
		return err
	})

	readErr := feed(r, path, pool, link, st)
	link.Abort(readErr)
	hashErr := g.Wait()

	switch {
	case readErr != nil:
		return "", readErr
	case hashErr != nil:
		return "", hashErr
	}
	return digest, nil
}

// feed pushes blocks from r onto link until EOF or the first error. The
// link is terminated with Done on success; the caller aborts it otherwise.
func feed(
	r io.Reader,
	path string,
	pool *pipeline.BlockPool,
	link *pipeline.Link,
	st *stats.Statistics,
) error {
	for {
		b := pool.Get()
		n, err := r.Read(b.Buffer())
		if n > 0 {
			b.SetLen(n)
			if sendErr := link.Send(pipeline.Data(b)); sendErr != nil {
				return sendErr
			}
			st.BytesRead += int64(n)
		} else {
			b.Release()
		}

		switch {
		case errors.Is(err, io.EOF):
			return link.Send(pipeline.Done())
		case err != nil:
			return fmt.Errorf("%w: %s: %w", ErrRead, path, err)
		}
	}
}

// hashStage folds every Data block into a SHA-256 and returns the digest
// on Done. An Error message discards the partial hash.
func hashStage(in *pipeline.Link) (string, error) {
	defer in.Drain()

	h := sha256.New()
	for {
		m, err := in.Recv()
		if err != nil {
			return "", err
		}

		switch m.Kind() {
		case pipeline.KindData:
			b := m.Block()
			h.Write(b.Bytes())
			b.Release()
		case pipeline.KindDone:
			return hex.EncodeToString(h.Sum(nil)), nil
		case pipeline.KindError:
			return "", ErrHashIncomplete
		default:
			return "", fmt.Errorf("%w: unexpected %s message", pipeline.ErrBrokenLink, m.Kind())
		}
	}
}
