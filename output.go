package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ademasi/rcrd/transcriber"
)

// Marker is an in-call bookmark; timestamps are seconds from session start.
type Marker struct {
	Timestamp float64 `json:"timestamp"`
	Note      string  `json:"note"`
}

func defaultOutputName(prefix string, now time.Time) string {
	return prefix + now.Format("20060102-150405") + ".ogg"
}

// siblingPath swaps the extension of the recording path, so exports land next
// to the audio file.
func siblingPath(output, ext string) string {
	base := strings.TrimSuffix(output, filepath.Ext(output))
	return base + ext
}

// gitRevision returns the short revision of the working tree, or "" when not
// in a repository (shown in the TUI header for dev builds).
func gitRevision() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// saveMarkers writes the marker list as pretty-printed JSON next to the
// recording. No file is created for an empty list.
func saveMarkers(output string, markers []Marker) (string, error) {
	if len(markers) == 0 {
		return "", nil
	}
	data, err := json.MarshalIndent(markers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding markers: %w", err)
	}
	path := siblingPath(output, ".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing markers: %w", err)
	}
	return path, nil
}

// saveTranscript writes finalized segments as start,end,text CSV next to the
// recording. No file is created for an empty transcript.
func saveTranscript(output string, segs []transcriber.Segment) (string, error) {
	if len(segs) == 0 {
		return "", nil
	}
	path := siblingPath(output, ".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating transcript: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"start", "end", "text"}); err != nil {
		f.Close()
		return "", err
	}
	for _, s := range segs {
		rec := []string{
			transcriber.FormatTimecode(s.StartMs),
			transcriber.FormatTimecode(s.EndMs),
			s.Text,
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
