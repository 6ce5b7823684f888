package transcriber

import (
	"context"
	"sync"
)

// FakeRecognizer scripts one set of window-relative segments per Start call,
// for deterministic pipeline tests without a recognizer binary.
type FakeRecognizer struct {
	mu       sync.Mutex
	scripts  [][]Segment
	starts   []SessionConfig
	startErr error
}

func NewFakeRecognizer(scripts ...[]Segment) *FakeRecognizer {
	return &FakeRecognizer{scripts: scripts}
}

func (f *FakeRecognizer) FailStarts(err error) { f.startErr = err }

// Starts returns the configs of all sessions started so far.
func (f *FakeRecognizer) Starts() []SessionConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SessionConfig, len(f.starts))
	copy(out, f.starts)
	return out
}

func (f *FakeRecognizer) Start(_ context.Context, cfg SessionConfig) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	var script []Segment
	if len(f.starts) < len(f.scripts) {
		script = f.scripts[len(f.starts)]
	}
	f.starts = append(f.starts, cfg)
	return newFakeSession(script), nil
}

// fakeSession emits its script on the first Feed, mimicking a recognizer
// finalizing utterances once audio arrives.
type fakeSession struct {
	segs     chan Segment
	script   []Segment
	emitOnce sync.Once
	closed   sync.Once
}

func newFakeSession(script []Segment) *fakeSession {
	return &fakeSession{segs: make(chan Segment, len(script)+1), script: script}
}

func (s *fakeSession) Feed(pcm []byte) error {
	s.emitOnce.Do(func() {
		for _, seg := range s.script {
			s.segs <- seg
		}
	})
	return nil
}

func (s *fakeSession) Segments() <-chan Segment { return s.segs }

func (s *fakeSession) Close() error {
	s.closed.Do(func() { close(s.segs) })
	return nil
}
