package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "ManifestCreated", typ: ManifestCreated},
		{want: "DirCreated", typ: DirCreated},
		{want: "FileCopied", typ: FileCopied},
		{want: "FileSkipped", typ: FileSkipped},
		{want: "FileFailed", typ: FileFailed},
		{want: "VerifyStarted", typ: VerifyStarted},
		{want: "VerifyOK", typ: VerifyOK},
		{want: "VerifyMismatch", typ: VerifyMismatch},
		{want: "VerifyError", typ: VerifyError},
		{want: "ManifestMalformed", typ: ManifestMalformed},
		{want: "RootFailed", typ: RootFailed},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(999).String())
}

func TestEventZeroValue(t *testing.T) {
	var e Event
	assert.Equal(t, Type(0), e.Type)
	assert.True(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Path)
	assert.Zero(t, e.Size)
	require.NoError(t, e.Error)
}

func TestEmitStampsTimestamp(t *testing.T) {
	ch := make(chan Event, 1)
	before := time.Now()
	Emit(ch, Event{Type: VerifyOK, Path: "a.txt"})

	e := <-ch
	assert.Equal(t, VerifyOK, e.Type)
	assert.Equal(t, "a.txt", e.Path)
	assert.False(t, e.Timestamp.Before(before))
}

func TestEmitNilChannel(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(nil, Event{Type: FileCopied})
	})
}
