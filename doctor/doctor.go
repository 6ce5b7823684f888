// Package doctor runs prerequisite checks so a session doesn't fail mid-call.
package doctor

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/ademasi/rcrd/config"
	"github.com/ademasi/rcrd/devices"
	"github.com/ademasi/rcrd/ffmpeg"
)

// Run executes all checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfg config.Config) int {
	fmt.Println("rcrd doctor - system diagnostics")
	fmt.Println("================================")

	allPass := true
	for i, c := range checks(cfg) {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(checks(cfg)), c.name)
		if msg, ok := c.run(); ok {
			fmt.Printf("  PASS: %s\n", msg)
		} else {
			fmt.Printf("  FAIL: %s\n", msg)
			allPass = false
		}
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

type check struct {
	name string
	run  func() (string, bool)
}

func checks(cfg config.Config) []check {
	return []check{
		{"encoder binary", func() (string, bool) {
			path, err := exec.LookPath(ffmpeg.Binary)
			if err != nil {
				return "ffmpeg not found on PATH", false
			}
			return path, true
		}},
		{"device discovery", func() (string, bool) {
			d, err := devices.Detect()
			if err != nil {
				return err.Error(), false
			}
			return fmt.Sprintf("sink=%s source=%s", orNone(d.Sink), orNone(d.Source)), true
		}},
		{"recognizer binary", func() (string, bool) {
			if cfg.WhisperModel == "" {
				return "no whisper_model configured; live transcription disabled (ok)", true
			}
			path, err := exec.LookPath(cfg.RecognizerCommand)
			if err != nil {
				return fmt.Sprintf("%s not found on PATH", cfg.RecognizerCommand), false
			}
			if _, err := os.Stat(cfg.WhisperModel); err != nil {
				return fmt.Sprintf("model missing: %s", cfg.WhisperModel), false
			}
			return path, true
		}},
		{"config file", func() (string, bool) {
			if _, err := config.Load(); err != nil {
				return err.Error(), false
			}
			return config.Path(), true
		}},
		{"microphone capture", checkMic},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
