package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
)

// MicControl is the out-of-band gain channel: an append-only command file that
// the encoder's asendcmd filter re-reads while running. Plain file appends
// never block the writer, so a slow (or not yet attached) reader is harmless.
type MicControl struct {
	path string
}

// PrepareMicControl creates the command file under the OS temp dir and
// initializes it to unmuted so the encoder starts with the mic audible.
func PrepareMicControl() (*MicControl, error) {
	dir := filepath.Join(os.TempDir(), "rcrd-mic")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mic control dir: %w", err)
	}
	return newMicControl(filepath.Join(dir, fmt.Sprintf("mic-%d.cmd", os.Getpid())))
}

func newMicControl(path string) (*MicControl, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mic control create: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "0.0 %s volume 1.0\n", micVolTarget); err != nil {
		return nil, fmt.Errorf("mic control init: %w", err)
	}
	return &MicControl{path: path}, nil
}

func (c *MicControl) Path() string { return c.path }

// WriteVolume appends a gain-change directive, gain in [0,1]. The encoder
// applies it asynchronously, so mute state and audible gain are eventually
// consistent, not atomic with the toggle.
func (c *MicControl) WriteVolume(gain float64) error {
	if gain < 0 || gain > 1 {
		return fmt.Errorf("mic gain out of range: %v", gain)
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("mic control open: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "0.0 %s volume %.1f\n", micVolTarget, gain); err != nil {
		return fmt.Errorf("mic control write: %w", err)
	}
	return nil
}

// Remove deletes the command file. Callers treat failure as non-fatal.
func (c *MicControl) Remove() error {
	return os.Remove(c.path)
}
