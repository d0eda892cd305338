package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/shacopy/internal/config"
	"github.com/bamsammich/shacopy/internal/engine"
	"github.com/bamsammich/shacopy/internal/ui"
)

type verifyFlags struct {
	blockSize           *sizeFlag
	bwLimit             *sizeFlag
	manifest            string
	queueDepth          int
	noConvertSeparators bool
	threaded            bool
	parallel            bool
}

func newVerifyCmd(g *globalFlags) *cobra.Command {
	f := verifyFlags{
		blockSize:  newSizeFlag("128K"),
		bwLimit:    newSizeFlag(""),
		queueDepth: engine.DefaultQueueDepth,
	}

	cmd := &cobra.Command{
		Use:   "verify [flags] <directory>...",
		Short: "Re-hash directory trees against their SHA-256 manifests",
		Long: `Verify every file listed by the shasum.*.txt manifests found directly inside
each <directory>. With --manifest, that one manifest is checked against every
<directory> instead, and no discovery takes place.

Each file is reported as OK, FAILED (mismatch) or FAILED (error: ...). The
exit status is non-zero when any file failed or any directory could not be
verified.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := f.applyConfig(cmd, cfg.Verify); err != nil {
				return err
			}
			return runVerify(cmd, g, f, args)
		},
	}

	cmd.Flags().
		StringVarP(&f.manifest, "manifest", "m", "", "verify this manifest instead of discovering shasum.*.txt files")
	cmd.Flags().BoolVar(&f.noConvertSeparators, "no-convert-separators", false,
		"resolve manifest paths exactly as written, without rewriting foreign path separators")
	cmd.Flags().
		BoolVarP(&f.threaded, "threaded", "t", false, "hash on a separate goroutine from reading")
	cmd.Flags().
		BoolVarP(&f.parallel, "parallel", "P", false, "verify each directory concurrently")
	cmd.Flags().VarP(f.blockSize, "block-size", "b", "read block size (e.g. 64K, 1M)")
	cmd.Flags().
		IntVarP(&f.queueDepth, "queue-size", "Q", f.queueDepth, "blocks buffered between reader and hasher")
	cmd.Flags().Var(f.bwLimit, "bwlimit", "bandwidth limit shared by all directories (e.g. 100M)")
	return cmd
}

// applyConfig applies config file defaults for flags not explicitly set on the CLI.
func (f *verifyFlags) applyConfig(cmd *cobra.Command, c config.VerifyConfig) error {
	applyInt(cmd, "queue-size", &f.queueDepth, c.QueueDepth)
	applyBool(cmd, "threaded", &f.threaded, c.Threaded)
	applyBool(cmd, "parallel", &f.parallel, c.Parallel)
	if c.ConvertSeparators != nil && !cmd.Flags().Changed("no-convert-separators") {
		f.noConvertSeparators = !*c.ConvertSeparators
	}
	return applyString(cmd, "block-size", c.BlockSize)
}

func runVerify(cmd *cobra.Command, g *globalFlags, f verifyFlags, roots []string) error {
	blockSize, err := f.blockSize.blockSize()
	if err != nil {
		return err
	}
	if f.queueDepth < 1 {
		return fmt.Errorf("queue size must be at least 1, got %d", f.queueDepth)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	presenter := ui.NewPresenter(ui.Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Root:      displayRoot(roots),
		Quiet:     g.quiet,
		Verbose:   g.verbose,
		Color:     ui.IsTTY(os.Stdout.Fd()),
	})
	events, wait := startPresenter(presenter, g.logFile != "")

	slog.Debug("verify started",
		"roots", roots,
		"manifest", f.manifest,
		"block_size", blockSize,
		"queue_depth", f.queueDepth,
		"threaded", f.threaded,
		"parallel", f.parallel,
	)

	res := engine.Verify(ctx, engine.VerifyConfig{
		Roots:             roots,
		Manifest:          f.manifest,
		ConvertSeparators: !f.noConvertSeparators,
		Parallel:          f.parallel,
		Events:            events,
		Hash: engine.HashConfig{
			BlockSize:  blockSize,
			QueueDepth: f.queueDepth,
			Threaded:   f.threaded,
			Limiter:    engine.NewBWLimiter(f.bwLimit.bytes),
		},
	})
	stop()
	wait()

	if !g.quiet {
		fmt.Fprintln(os.Stderr, ui.VerifySummary(res.Stats, res.Elapsed))
	}

	if !res.OK() {
		slog.Debug("verification failed", "stats", res.Stats.String(), "error", res.Err)
		return &exitError{code: 1}
	}
	return nil
}

// displayRoot is stripped from result lines when a single root is
// verified; with several roots the full paths tell them apart.
func displayRoot(roots []string) string {
	if len(roots) != 1 {
		return ""
	}
	return filepath.Clean(roots[0])
}
