package ffmpeg

import (
	"io"
	"sync"
)

// FakeProcess simulates encoder exits and the raw caption stream for
// deterministic tests of the control loop and shutdown sequencing.
type FakeProcess struct {
	mu       sync.Mutex
	done     chan struct{}
	exitErr  error
	stopped  bool
	stdoutR  *io.PipeReader
	stdoutW  *io.PipeWriter
	exitOnce sync.Once
}

func NewFakeProcess() *FakeProcess {
	r, w := io.Pipe()
	return &FakeProcess{done: make(chan struct{}), stdoutR: r, stdoutW: w}
}

// WriteRaw feeds bytes into the fake caption stream.
func (f *FakeProcess) WriteRaw(p []byte) (int, error) { return f.stdoutW.Write(p) }

// Exit simulates process termination; a nil err is a clean exit.
func (f *FakeProcess) Exit(err error) {
	f.exitOnce.Do(func() {
		f.mu.Lock()
		f.exitErr = err
		f.mu.Unlock()
		f.stdoutW.Close()
		close(f.done)
	})
}

// Stopped reports whether Stop was called.
func (f *FakeProcess) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func (f *FakeProcess) Stdout() io.Reader { return f.stdoutR }

func (f *FakeProcess) Done() <-chan struct{} { return f.done }

func (f *FakeProcess) TryWait() (bool, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.stopped {
			return true, nil
		}
		return true, f.exitErr
	default:
		return false, nil
	}
}

func (f *FakeProcess) Stop() error {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	f.Exit(nil)
	return nil
}
