package pipeline

import (
	"errors"
	"fmt"
)

// ErrBrokenLink reports a stage that used a link against its contract: a
// send after the terminal message, or a receive from a link whose sender
// went away without one. It always indicates a programming defect.
var ErrBrokenLink = errors.New("broken pipeline link")

// Link is a bounded FIFO between exactly one sending stage and one
// receiving stage. Send blocks while depth messages are in flight.
//
// The sender finishes every stream with exactly one terminal message (Done
// or Error); the link closes itself right after. sent is touched only by
// the sender and received only by the receiver.
type Link struct {
	ch       chan Message
	sent     bool
	received bool
}

// NewLink creates a link holding at most depth in-flight messages. Depths
// below one are raised to one.
func NewLink(depth int) *Link {
	if depth < 1 {
		depth = 1
	}
	return &Link{ch: make(chan Message, depth)}
}

// Send enqueues m, blocking while the link is full.
func (l *Link) Send(m Message) error {
	if l.sent {
		m.release()
		return fmt.Errorf("%w: %s sent after terminal message", ErrBrokenLink, m.Kind())
	}
	l.ch <- m
	if m.Terminal() {
		l.sent = true
		close(l.ch)
	}
	return nil
}

// Recv dequeues the next message, blocking until one is available.
func (l *Link) Recv() (Message, error) {
	m, ok := <-l.ch
	if !ok {
		return Message{}, fmt.Errorf("%w: receive after end of stream", ErrBrokenLink)
	}
	if m.Terminal() {
		l.received = true
	}
	return m, nil
}

// Abort ends the stream with an Error carrying cause unless a terminal
// message was already sent. Stages defer it on their outputs so a failing
// or panicking stage never leaves its consumer blocked.
func (l *Link) Abort(cause error) {
	if l.sent {
		return
	}
	_ = l.Send(Fail(cause)) //nolint:errcheck // cannot fail: l.sent is false
}

// Drain discards and releases messages until the terminal one, unless it
// was already received. Stages defer it on their inputs so an early exit
// never leaves the producer blocked on a full link.
func (l *Link) Drain() {
	for !l.received {
		m, ok := <-l.ch
		if !ok {
			return
		}
		m.release()
		if m.Terminal() {
			l.received = true
		}
	}
}
