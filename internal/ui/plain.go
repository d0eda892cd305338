package ui

import (
	"fmt"
	"io"
)

// plainPresenter prints one line per verified file to w, in the
// `path: OK` form of checksum tools. Copy events are listed only when
// verbose. Problems that are not about a single file go to errW.
type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	root    string
	styles  Styles
	verbose bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	for ev := range events {
		p.handleEvent(ev)
	}
	return nil
}

func (p *plainPresenter) handleEvent(ev Event) {
	path := StripRoot(p.root, ev.Path)
	switch ev.Type {
	case ManifestCreated:
		fmt.Fprintf(p.w, "writing SHA-256 sums to %s\n", ev.Manifest)
	case FileCopied:
		if p.verbose {
			fmt.Fprintf(p.w, "%s  %s  %s\n", path, FormatBytes(ev.Size), p.styles.Muted(ev.Hash))
		}
	case FileSkipped:
		if p.verbose {
			fmt.Fprintf(p.w, "%s  %s\n", path, p.styles.Muted("skipped"))
		}
	case DirCreated:
		if p.verbose {
			fmt.Fprintf(p.w, "%s/  %s\n", path, p.styles.Muted("created"))
		}
	case FileFailed:
		fmt.Fprintf(p.errW, "%s: %s\n", path, p.styles.Failed(fmt.Sprintf("FAILED (error: %v)", ev.Error)))
	case VerifyStarted:
		fmt.Fprintf(p.w, "found manifest %s\n", ev.Manifest)
	case VerifyOK:
		fmt.Fprintf(p.w, "%s: %s\n", path, p.styles.OK("OK"))
	case VerifyMismatch:
		fmt.Fprintf(p.w, "%s: %s\n", path, p.styles.Failed("FAILED (mismatch)"))
	case VerifyError:
		fmt.Fprintf(p.w, "%s: %s\n", path, p.styles.Failed(fmt.Sprintf("FAILED (error: %v)", ev.Error)))
	case ManifestMalformed:
		fmt.Fprintf(p.errW, "%s: %s\n", ev.Manifest, p.styles.Failed(fmt.Sprintf("FAILED (%v)", ev.Error)))
	case RootFailed:
		fmt.Fprintf(p.errW, "%s: %s\n", ev.Root, p.styles.Failed(fmt.Sprintf("FAILED (error: %v)", ev.Error)))
	}
}
