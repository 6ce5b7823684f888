package transcriber

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"
)

type noteLog struct {
	mu    sync.Mutex
	notes []string
}

func (n *noteLog) note(format string, args ...any) {
	n.mu.Lock()
	n.notes = append(n.notes, fmt.Sprintf(format, args...))
	n.mu.Unlock()
}

func (n *noteLog) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// feedChunks keeps the pipeline loop turning.
func feedChunks(w io.Writer, n int) {
	chunk := make([]byte, chunkSize)
	for i := 0; i < n; i++ {
		if _, err := w.Write(chunk); err != nil {
			return
		}
	}
}

func TestPipelineRebasesSegments(t *testing.T) {
	r, w := io.Pipe()
	rec := NewFakeRecognizer([]Segment{{StartMs: 500, EndMs: 1200, Text: "hello there"}})
	tr := &Transcript{}
	ctl := NewControls()
	var log noteLog

	// Transcription toggled on at t=10s.
	ctl.SetEnabled(true)
	ctl.SendRearm(Rearm{BaseOffsetMs: 10_000, Language: "en"})

	done := make(chan error, 1)
	go func() { done <- Run(r, rec, tr, ctl, log.note) }()
	go feedChunks(w, 50)

	waitFor(t, "segment", func() bool { return tr.Len() == 1 })
	seg := tr.Snapshot()[0]
	if seg.StartMs != 10_500 || seg.EndMs != 11_200 {
		t.Errorf("segment = %+v, want start 10500 end 11200", seg)
	}
	if seg.Text != "hello there" {
		t.Errorf("text = %q", seg.Text)
	}

	ctl.Stop()
	w.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestPipelineDrainsWhileDisabled(t *testing.T) {
	r, w := io.Pipe()
	rec := NewFakeRecognizer()
	tr := &Transcript{}
	ctl := NewControls()
	var log noteLog

	done := make(chan error, 1)
	go func() { done <- Run(r, rec, tr, ctl, log.note) }()

	// The encoder keeps producing regardless; all of it must be consumed
	// without a recognizer session.
	feedChunks(w, 20)
	w.Close()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tr.Len() != 0 {
		t.Errorf("no segments expected, got %d", tr.Len())
	}
	if len(rec.Starts()) != 0 {
		t.Errorf("no sessions expected, got %d", len(rec.Starts()))
	}
}

func TestPipelineRearmCyclesRebaseAndLanguage(t *testing.T) {
	r, w := io.Pipe()
	rec := NewFakeRecognizer(
		[]Segment{{StartMs: 100, EndMs: 400, Text: "first"}},
		[]Segment{{StartMs: 250, EndMs: 900, Text: "deuxième"}},
	)
	tr := &Transcript{}
	ctl := NewControls()
	var log noteLog

	done := make(chan error, 1)
	go func() { done <- Run(r, rec, tr, ctl, log.note) }()

	writer := make(chan struct{})
	go func() {
		defer close(writer)
		chunk := make([]byte, chunkSize)
		for {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}()

	ctl.SetEnabled(true)
	ctl.SendRearm(Rearm{BaseOffsetMs: 1_000, Language: "en"})
	waitFor(t, "first segment", func() bool { return tr.Len() == 1 })

	ctl.SetEnabled(false)

	ctl.SetEnabled(true)
	ctl.SendRearm(Rearm{BaseOffsetMs: 20_000, Language: "fr"})
	waitFor(t, "second segment", func() bool { return tr.Len() == 2 })

	ctl.Stop()
	w.Close()
	<-writer
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	segs := tr.Snapshot()
	if segs[0].StartMs != 1_100 {
		t.Errorf("first start = %d, want 1100", segs[0].StartMs)
	}
	if segs[1].StartMs != 20_250 {
		t.Errorf("second start = %d, want 20250", segs[1].StartMs)
	}
	// Bases move forward, so do rebased offsets.
	if segs[1].StartMs < segs[0].StartMs {
		t.Error("segments must be non-decreasing across re-arms")
	}

	starts := rec.Starts()
	if len(starts) != 2 {
		t.Fatalf("want 2 sessions, got %d", len(starts))
	}
	if starts[0].Language != "en" || starts[1].Language != "fr" {
		t.Errorf("languages = %+v", starts)
	}
}

func TestPipelineSurvivesRecognizerStartFailure(t *testing.T) {
	r, w := io.Pipe()
	rec := NewFakeRecognizer()
	rec.FailStarts(errors.New("model not found"))
	tr := &Transcript{}
	ctl := NewControls()
	var log noteLog

	ctl.SetEnabled(true)
	ctl.SendRearm(Rearm{BaseOffsetMs: 0, Language: "en"})

	done := make(chan error, 1)
	go func() { done <- Run(r, rec, tr, ctl, log.note) }()

	feedChunks(w, 10)
	w.Close()

	if err := <-done; err != nil {
		t.Fatalf("Run must not fail the session: %v", err)
	}
	if log.count() == 0 {
		t.Error("start failure should be noted")
	}
}

func TestPipelineStops(t *testing.T) {
	r, w := io.Pipe()
	rec := NewFakeRecognizer()
	tr := &Transcript{}
	ctl := NewControls()
	var log noteLog

	done := make(chan error, 1)
	go func() { done <- Run(r, rec, tr, ctl, log.note) }()

	ctl.Stop()
	w.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline did not stop")
	}
}
