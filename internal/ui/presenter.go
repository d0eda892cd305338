package ui

import "io"

// Presenter consumes engine events and prints per-file results.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	// Root is stripped from displayed paths.
	Root    string
	Quiet   bool
	Verbose bool
	Color   bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	return &plainPresenter{
		w:       cfg.Writer,
		errW:    cfg.ErrWriter,
		root:    cfg.Root,
		verbose: cfg.Verbose,
		styles:  NewStyles(cfg.Color),
	}
}
