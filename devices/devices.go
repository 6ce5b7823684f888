// Package devices resolves the default PipeWire sink and source to tap.
// Discovery runs once at startup; when it fails, a session can still start
// with explicit overrides.
package devices

import "fmt"

// Defaults holds the discovered default node names. Either may be empty.
type Defaults struct {
	Sink   string
	Source string
}

// Detect asks pw-dump for the default sink/source and falls back to the
// PulseAudio protocol server (PipeWire exposes one) when pw-dump is missing
// or unparsable.
func Detect() (Defaults, error) {
	d, pwErr := detectPipewire()
	if pwErr == nil && (d.Sink != "" || d.Source != "") {
		return d, nil
	}
	p, pulseErr := detectPulse()
	if pulseErr == nil && (p.Sink != "" || p.Source != "") {
		return p, nil
	}
	if pwErr == nil {
		pwErr = fmt.Errorf("no default nodes in pw-dump output")
	}
	return Defaults{}, fmt.Errorf("device discovery failed: %v (pulse fallback: %v)", pwErr, pulseErr)
}

// Monitor derives the monitor node name from a sink name.
func Monitor(sink string) string {
	return sink + ".monitor"
}
