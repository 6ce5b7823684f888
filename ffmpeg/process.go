package ffmpeg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
)

// Process is the supervision seam over the external encoder. The real
// implementation wraps os/exec; FakeProcess drives the control loop in tests
// without spawning anything.
type Process interface {
	// Stdout is the raw caption stream; nil when transcription was not requested.
	Stdout() io.Reader
	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}
	// TryWait reports non-blockingly whether the process exited, and with what
	// verdict: a nil error for a clean stop, non-nil for an abnormal exit.
	TryWait() (bool, error)
	// Stop terminates the process if still alive (signal, then wait). It is
	// idempotent and must be called on every exit path.
	Stop() error
}

type process struct {
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	done     chan struct{}
	waitErr  error // valid after done is closed
	stopping atomic.Bool
}

// Spawn starts the encoder and attaches the diagnostics tailer to its stderr.
// A spawn failure is fatal to the session; once running, the tailer owns
// stderr until the process exits.
func Spawn(req Request, ring *LogRing, meter *LevelMeter) (Process, error) {
	cmd := exec.Command(Binary, Args(req)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stderr: %w", err)
	}
	var stdout io.ReadCloser
	if req.Transcribe {
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("ffmpeg stdout: %w", err)
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn ffmpeg: %w", err)
	}

	p := &process{cmd: cmd, stdout: stdout, done: make(chan struct{})}
	go Tail(stderr, ring, meter)
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// SpawnDebug prints the constructed command and runs the encoder with
// inherited stdio until it exits. No TUI, no tailer.
func SpawnDebug(req Request) error {
	fmt.Println(CommandLine(req))
	cmd := exec.Command(Binary, Args(req)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (p *process) Stdout() io.Reader { return p.stdout }

func (p *process) Done() <-chan struct{} { return p.done }

func (p *process) TryWait() (bool, error) {
	select {
	case <-p.done:
		return true, p.verdict()
	default:
		return false, nil
	}
}

func (p *process) Stop() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	p.stopping.Store(true)
	// Signal failure means the process raced us to the exit; the wait
	// goroutine reaps it either way.
	_ = p.cmd.Process.Signal(syscall.SIGTERM)
	<-p.done
	return nil
}

// verdict classifies the exit. Anything after we asked the process to stop is
// clean, as is death by interrupt/termination signal or ffmpeg's code 255
// (its own SIGINT handler).
func (p *process) verdict() error {
	if p.waitErr == nil || p.stopping.Load() {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(p.waitErr, &ee) {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			switch ws.Signal() {
			case syscall.SIGINT, syscall.SIGTERM:
				return nil
			}
		}
		if ee.ExitCode() == 255 {
			return nil
		}
	}
	return fmt.Errorf("ffmpeg exited: %w", p.waitErr)
}
