package ffmpeg

import (
	"errors"
	"testing"
)

func TestFakeProcessLifecycle(t *testing.T) {
	p := NewFakeProcess()

	if exited, _ := p.TryWait(); exited {
		t.Fatal("process should be running")
	}

	p.Exit(errors.New("killed"))

	exited, err := p.TryWait()
	if !exited {
		t.Fatal("process should have exited")
	}
	if err == nil {
		t.Fatal("abnormal exit must surface an error")
	}
}

func TestFakeProcessStopIsCleanAndIdempotent(t *testing.T) {
	p := NewFakeProcess()
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	if !p.Stopped() {
		t.Error("Stopped() should report true")
	}
	exited, err := p.TryWait()
	if !exited || err != nil {
		t.Errorf("stop must read as a clean exit, got %v,%v", exited, err)
	}
	select {
	case <-p.Done():
	default:
		t.Error("Done must be closed after Stop")
	}
}

func TestFakeProcessStdoutEOFOnExit(t *testing.T) {
	p := NewFakeProcess()
	go p.Exit(nil)
	buf := make([]byte, 16)
	if _, err := p.Stdout().Read(buf); err == nil {
		t.Error("expected EOF from caption stream after exit")
	}
}
