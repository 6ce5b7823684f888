package main

import (
	"time"

	"github.com/ademasi/rcrd/ffmpeg"
	"github.com/ademasi/rcrd/transcriber"
)

// Session bundles everything the control loop touches while a recording is
// live. It is assembled once in runRecord and handed to the TUI model; the
// shutdown sequence reads it back after the loop exits.
type Session struct {
	Start    time.Time
	Duration time.Duration // 0 = until stopped
	Output   string
	Monitor  string
	Mic      string // empty when recording without a microphone
	GitRev   string
	Model    string // recognizer model path; empty disables the 't' key
	Language string

	Proc   ffmpeg.Process
	MicCtl *ffmpeg.MicControl // nil when Mic is empty
	Ring   *ffmpeg.LogRing
	Meter  *ffmpeg.LevelMeter

	Transcript *transcriber.Transcript
	Controls   *transcriber.Controls
}

func (s *Session) Elapsed() time.Duration {
	return time.Since(s.Start)
}
