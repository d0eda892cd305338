package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bamsammich/shacopy/internal/config"
	"github.com/bamsammich/shacopy/internal/event"
	"github.com/bamsammich/shacopy/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logCloser io.Closer
	logFile   string
	verbose   bool
	quiet     bool
}

func run(args []string) int {
	var g globalFlags
	defer g.closeLog()

	rootCmd := newRootCmd(&g)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(g *globalFlags) *cobra.Command {
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "shacopy",
		Short: "Copy directory trees with in-flight SHA-256 manifests, and verify them later",
		Long: `shacopy copies a directory tree while hashing every file as it is read,
writing a shasum.<timestamp>.txt manifest into the destination. The verify
command re-hashes a tree against its manifests and reports each file as OK
or FAILED.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return g.setupLogging()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "shacopy %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&g.quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().
		StringVar(&g.logFile, "log", "", "write structured JSON log to FILE")

	rootCmd.AddCommand(newCopyCmd(g))
	rootCmd.AddCommand(newVerifyCmd(g))
	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

// setupLogging installs the default logger: text on stderr, plus JSON on
// the --log file when given. Every record carries the run's session id.
func (g *globalFlags) setupLogging() error {
	logLevel := slog.LevelInfo
	switch {
	case g.verbose:
		logLevel = slog.LevelDebug
	case g.quiet:
		logLevel = slog.LevelWarn
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	var logHandler slog.Handler = textHandler
	if g.logFile != "" {
		lf, err := os.Create(g.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		g.logCloser = lf
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}

	slog.SetDefault(slog.New(logHandler).With("session", uuid.NewString()))
	return nil
}

func (g *globalFlags) closeLog() {
	if g.logCloser != nil {
		g.logCloser.Close()
	}
}

// loadConfig reads the optional config file and applies its theme. A bad
// file is reported and ignored.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "path", config.Path(), "error", err)
		return config.Config{}
	}
	ui.ApplyTheme(ui.Theme{
		Green: cfg.Theme.Green,
		Red:   cfg.Theme.Red,
		Muted: cfg.Theme.Muted,
	})
	return cfg
}

// startPresenter runs p on its own goroutine and returns the channel the
// engine emits on. When logEvents is set, every event is also recorded as
// a structured log record before reaching p. The returned func closes the
// channel and waits for p to finish.
func startPresenter(p ui.Presenter, logEvents bool) (chan<- event.Event, func()) {
	events := make(chan event.Event, 256)

	presenterEvents := (<-chan event.Event)(events)
	if logEvents {
		teed := make(chan event.Event, 256)
		go func() {
			for ev := range events {
				logEvent(ev)
				teed <- ev
			}
			close(teed)
		}()
		presenterEvents = teed
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := p.Run(presenterEvents); err != nil {
			fmt.Fprintf(os.Stderr, "presenter: %v\n", err)
		}
	}()

	return events, func() {
		close(events)
		wg.Wait()
	}
}

func logEvent(ev event.Event) {
	attrs := []slog.Attr{
		slog.String("type", ev.Type.String()),
		slog.String("path", ev.Path),
		slog.String("root", ev.Root),
	}
	if ev.Manifest != "" {
		attrs = append(attrs, slog.String("manifest", ev.Manifest))
	}
	if ev.Hash != "" {
		attrs = append(attrs, slog.String("sha256", ev.Hash))
	}
	if ev.Expected != "" {
		attrs = append(attrs, slog.String("expected", ev.Expected))
	}
	if ev.Size > 0 {
		attrs = append(attrs, slog.Int64("size", ev.Size))
	}
	if ev.Error != nil {
		attrs = append(attrs, slog.String("error", ev.Error.Error()))
	}
	slog.LogAttrs(context.Background(), slog.LevelDebug, "shacopy.event", attrs...)
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
