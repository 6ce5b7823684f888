package devices

import (
	"encoding/json"
	"fmt"
	"os/exec"
)

func detectPipewire() (Defaults, error) {
	out, err := exec.Command("pw-dump").Output()
	if err != nil {
		return Defaults{}, fmt.Errorf("pw-dump: %w (is pipewire-utils installed?)", err)
	}
	return parsePWDump(out)
}

// parsePWDump scans the device-graph dump for the metadata object carrying
// the default node keys. PipeWire has shipped both a top-level "metadata"
// array and an "info.items" array, and values as either plain strings or
// {"name": ...} objects; all variants are accepted.
func parsePWDump(data []byte) (Defaults, error) {
	var root []struct {
		Type     string         `json:"type"`
		Metadata []metadataItem `json:"metadata"`
		Info     *struct {
			Items []metadataItem `json:"items"`
		} `json:"info"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return Defaults{}, fmt.Errorf("pw-dump returned invalid JSON: %w", err)
	}

	var d Defaults
	for _, obj := range root {
		if obj.Type != "PipeWire:Interface:Metadata" {
			continue
		}
		items := obj.Metadata
		if items == nil && obj.Info != nil {
			items = obj.Info.Items
		}
		for _, item := range items {
			switch item.Key {
			case "default.audio.sink", "default.configured.audio.sink":
				if d.Sink == "" {
					d.Sink = item.name()
				}
			case "default.audio.source", "default.configured.audio.source":
				if d.Source == "" {
					d.Source = item.name()
				}
			}
		}
	}
	return d, nil
}

type metadataItem struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (m metadataItem) name() string {
	var s string
	if json.Unmarshal(m.Value, &s) == nil {
		return s
	}
	var obj struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if json.Unmarshal(m.Value, &obj) == nil {
		if obj.Name != "" {
			return obj.Name
		}
		return obj.Value
	}
	return ""
}
