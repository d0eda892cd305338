package ui

import "github.com/bamsammich/shacopy/internal/event"

// Event is the engine event consumed by presenters.
type Event = event.Event

// Re-export event types for convenience.
const (
	ManifestCreated   = event.ManifestCreated
	DirCreated        = event.DirCreated
	FileCopied        = event.FileCopied
	FileSkipped       = event.FileSkipped
	FileFailed        = event.FileFailed
	VerifyStarted     = event.VerifyStarted
	VerifyOK          = event.VerifyOK
	VerifyMismatch    = event.VerifyMismatch
	VerifyError       = event.VerifyError
	ManifestMalformed = event.ManifestMalformed
	RootFailed        = event.RootFailed
)
