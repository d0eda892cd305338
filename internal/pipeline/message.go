package pipeline

import "errors"

// Kind identifies the variant carried by a Message.
type Kind int

const (
	KindData Kind = iota + 1
	KindDone
	KindError
)

var kindNames = [...]string{
	KindData:  "Data",
	KindDone:  "Done",
	KindError: "Error",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// errAborted is carried by Error messages whose sender gave no cause,
// typically a stage that panicked before it could report anything.
var errAborted = errors.New("stage aborted")

// Message is the unit passed between stages. It is one of three variants:
// Data (a block of file bytes, or a bare byte count on status links), Done
// and Error. Done and Error are terminal.
type Message struct {
	block *Block
	err   error
	kind  Kind
	n     int
}

// Data wraps a block. The receiver takes over the sender's reference.
func Data(b *Block) Message {
	return Message{kind: KindData, block: b, n: b.Len()}
}

// Count is a Data message carrying only a byte count. Status links use it
// so progress accounting never holds a reference to block memory.
func Count(n int) Message {
	return Message{kind: KindData, n: n}
}

// Done marks the successful end of a stream.
func Done() Message {
	return Message{kind: KindDone}
}

// Fail marks the failed end of a stream. A nil cause is replaced with a
// generic one so Error messages always carry something.
func Fail(err error) Message {
	if err == nil {
		err = errAborted
	}
	return Message{kind: KindError, err: err}
}

func (m Message) Kind() Kind { return m.kind }

// Block returns the payload of a Data message, or nil for counts and
// terminal messages.
func (m Message) Block() *Block { return m.block }

// Len is the number of bytes described by a Data message.
func (m Message) Len() int { return m.n }

// Err returns the cause carried by an Error message.
func (m Message) Err() error { return m.err }

// Terminal reports whether no further message may follow m on its link.
func (m Message) Terminal() bool {
	return m.kind == KindDone || m.kind == KindError
}

// release drops the message's block reference, if any.
func (m Message) release() {
	if m.block != nil {
		m.block.Release()
	}
}
