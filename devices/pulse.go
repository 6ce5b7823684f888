package devices

import (
	"fmt"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

func detectPulse() (Defaults, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return Defaults{}, fmt.Errorf("pulse: %w", err)
	}
	defer c.Close()

	var reply proto.GetServerInfoReply
	if err := c.RawRequest(&proto.GetServerInfo{}, &reply); err != nil {
		return Defaults{}, fmt.Errorf("pulse server info: %w", err)
	}
	return Defaults{Sink: reply.DefaultSinkName, Source: reply.DefaultSourceName}, nil
}

// Source is a selectable capture node.
type Source struct {
	ID   string
	Name string
}

// ListSources enumerates capture nodes for the interactive picker.
func ListSources() ([]Source, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	defer c.Close()

	sources, err := c.ListSources()
	if err != nil {
		return nil, fmt.Errorf("pulse list sources: %w", err)
	}
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		out = append(out, Source{ID: s.ID(), Name: s.Name()})
	}
	return out, nil
}
