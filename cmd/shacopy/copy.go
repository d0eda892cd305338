package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/shacopy/internal/config"
	"github.com/bamsammich/shacopy/internal/engine"
	"github.com/bamsammich/shacopy/internal/overwrite"
	"github.com/bamsammich/shacopy/internal/stats"
	"github.com/bamsammich/shacopy/internal/ui"
)

type copyFlags struct {
	blockSize  *sizeFlag
	bwLimit    *sizeFlag
	policy     policyFlag
	queueDepth int
	noProgress bool
}

func newCopyCmd(g *globalFlags) *cobra.Command {
	f := copyFlags{
		blockSize:  newSizeFlag("128K"),
		bwLimit:    newSizeFlag(""),
		policy:     policyFlag{policy: overwrite.Default},
		queueDepth: engine.DefaultQueueDepth,
	}

	cmd := &cobra.Command{
		Use:   "copy [flags] <source> <destination>",
		Short: "Copy a directory tree, writing a SHA-256 manifest into the destination",
		Long: `Copy every regular file under <source> into <destination>, which must both be
existing directories. Each file is read once; the bytes are hashed and
written concurrently. A shasum.YYYY-MM-DD.HH.MM.SS.txt manifest listing the
SHA-256 of every copied file is created at the root of <destination>.

The first file that fails to copy stops the run. Files copied before the
failure remain and stay listed in the manifest.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := f.applyConfig(cmd, cfg.Copy); err != nil {
				return err
			}
			return runCopy(cmd, g, f, args[0], args[1])
		},
	}

	cmd.Flags().VarP(f.blockSize, "block-size", "b", "read block size (e.g. 64K, 1M)")
	cmd.Flags().
		IntVarP(&f.queueDepth, "queue-size", "Q", f.queueDepth, "blocks buffered between pipeline stages")
	cmd.Flags().VarP(&f.policy, "overwrite-policy", "p", policyUsage())
	cmd.Flags().Var(f.bwLimit, "bwlimit", "bandwidth limit (e.g. 100M, 1G)")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "disable the progress line")
	return cmd
}

// applyConfig applies config file defaults for flags not explicitly set on the CLI.
func (f *copyFlags) applyConfig(cmd *cobra.Command, c config.CopyConfig) error {
	applyInt(cmd, "queue-size", &f.queueDepth, c.QueueDepth)
	return errors.Join(
		applyString(cmd, "block-size", c.BlockSize),
		applyString(cmd, "overwrite-policy", c.OverwritePolicy),
		applyString(cmd, "bwlimit", c.BWLimit),
	)
}

func runCopy(cmd *cobra.Command, g *globalFlags, f copyFlags, src, dst string) error {
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
		Quiet:     g.quiet,
		Verbose:   g.verbose,
		Color:     ui.IsTTY(os.Stdout.Fd()),
	})
	events, wait := startPresenter(presenter, g.logFile != "")

	var onProgress func(stats.Statistics)
	var meter *ui.Meter
	if !g.quiet && !f.noProgress && ui.IsTTY(os.Stderr.Fd()) {
		meter = ui.NewMeter(os.Stderr, ui.TermWidth(os.Stderr.Fd()))
		onProgress = meter.Update
	}

	res := engine.CopyTree(ctx, engine.CopyConfig{
		Src:        src,
		Dst:        dst,
		BlockSize:  blockSize,
		QueueDepth: f.queueDepth,
		Policy:     f.policy.policy,
		Limiter:    engine.NewBWLimiter(f.bwLimit.bytes),
		Events:     events,
		OnProgress: onProgress,
	})
	stop()
	wait()
	if meter != nil {
		meter.Finish()
	}

	if !g.quiet {
		fmt.Fprintln(os.Stderr, ui.CopyReport(res.Stats.BytesRead, res.Elapsed))
		fmt.Fprintln(os.Stderr, ui.CopySummary(res.Stats, res.Elapsed))
	}

	if res.Err != nil {
		slog.Error("copy failed", "error", res.Err, "manifest", res.Manifest)
		return &exitError{code: 1}
	}
	return nil
}
