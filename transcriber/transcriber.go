// Package transcriber turns the encoder's raw caption stream into timestamped
// transcript segments via an external speech recognizer, with enable/disable
// toggles that keep timestamps aligned to the recording clock.
package transcriber

import (
	"context"
	"sync"
)

// Segment is one recognized utterance. Offsets are milliseconds; in the
// shared Transcript they are session-relative, while a recognizer session
// reports them relative to its own listening window.
type Segment struct {
	StartMs int64
	EndMs   int64
	Text    string
}

// SessionConfig parameterizes one listening window.
type SessionConfig struct {
	Language string
}

// Recognizer creates listening sessions. Implementations: the whisper.cpp
// process recognizer and FakeRecognizer for tests.
type Recognizer interface {
	Start(ctx context.Context, cfg SessionConfig) (Session, error)
}

// Session is one listening window of the recognizer. Feed pushes raw
// s16le/16k/mono PCM; Segments delivers completed utterances in time order
// and is closed once the recognizer is done; Close releases the recognizer.
type Session interface {
	Feed(pcm []byte) error
	Segments() <-chan Segment
	Close() error
}

// Transcript is the shared, append-only segment store. The pipeline's
// consumer loop is the sole writer; the TUI and the exporter read snapshots.
type Transcript struct {
	mu   sync.Mutex
	segs []Segment
}

func (t *Transcript) Append(seg Segment) {
	t.mu.Lock()
	t.segs = append(t.segs, seg)
	t.mu.Unlock()
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.segs)
}

// Snapshot returns a copy in append order.
func (t *Transcript) Snapshot() []Segment {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Segment, len(t.segs))
	copy(out, t.segs)
	return out
}
