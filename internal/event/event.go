package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ManifestCreated Type = iota + 1
	DirCreated
	FileCopied
	FileSkipped
	FileFailed
	VerifyStarted
	VerifyOK
	VerifyMismatch
	VerifyError
	ManifestMalformed
	RootFailed
)

var typeNames = [...]string{
	ManifestCreated:   "ManifestCreated",
	DirCreated:        "DirCreated",
	FileCopied:        "FileCopied",
	FileSkipped:       "FileSkipped",
	FileFailed:        "FileFailed",
	VerifyStarted:     "VerifyStarted",
	VerifyOK:          "VerifyOK",
	VerifyMismatch:    "VerifyMismatch",
	VerifyError:       "VerifyError",
	ManifestMalformed: "ManifestMalformed",
	RootFailed:        "RootFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress or outcome event from an engine.
type Event struct {
	Timestamp time.Time
	Error     error
	Type      Type
	Path      string // path relative to Root, or a manifest path
	Root      string // copy destination or verification root
	Manifest  string // manifest being written or verified
	Hash      string // computed digest, when one exists
	Expected  string // digest recorded in the manifest
	Size      int64
}

// Emit sends e on ch, stamping it with the current time. A nil channel
// discards the event. Sends block: presenters must keep consuming until
// the engine returns.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	ch <- e
}
