package dump

import (
	"fmt"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gopkg.in/yaml.v3"

	"github.com/flpkit/flp"
)

type (
	// Summary is a flattened, YAML friendly view of a decoded project.
	// References between entities are replaced by names or indices.
	Summary struct {
		Version      string               `yaml:",omitempty"`
		PPQN         uint16               `yaml:"ppqn"`
		Tempo        float64              `yaml:",omitempty"`
		TimeSig      string               `yaml:"timesig"`
		Created      string               `yaml:",omitempty"`
		Spent        string               `yaml:",omitempty"`
		Info         flp.ProjectInfo      `yaml:",omitempty"`
		Filters      []string             `yaml:",omitempty"`
		Channels     []ChannelSummary     `yaml:",omitempty"`
		Patterns     []PatternSummary     `yaml:",omitempty"`
		Arrangements []ArrangementSummary `yaml:",omitempty"`
		Diagnostics  []string             `yaml:",omitempty"`
	}

	ChannelSummary struct {
		Index      uint16
		Name       string `yaml:",omitempty"`
		Type       string
		Color      string
		Filter     string   `yaml:",omitempty"`
		Automation string   `yaml:",omitempty"`
		Targets    []string `yaml:",omitempty"`
		Points     int      `yaml:",omitempty"`
	}

	PatternSummary struct {
		ID      uint16 `yaml:"id"`
		Name    string `yaml:",omitempty"`
		Color   string
		Notes   int
		Length  uint32
		Markers []string `yaml:",omitempty"`
	}

	ArrangementSummary struct {
		Index   uint16
		Name    string `yaml:",omitempty"`
		Items   int
		Length  uint32
		Markers []string `yaml:",omitempty"`

		// Tracks lists the tracks that are named or hold at least one item.
		Tracks []string `yaml:",omitempty"`
	}
)

// Summarize flattens p.
func Summarize(p *flp.Project) Summary {
	s := Summary{
		Version: p.Version,
		PPQN:    p.PPQN,
		Tempo:   p.Tempo,
		TimeSig: fmt.Sprintf("%d/%d", p.TimeSig.Numerator, p.TimeSig.Beat),
		Info:    p.Info,
	}
	if !p.Time.Created.IsZero() {
		s.Created = p.Time.Created.Format(time.RFC3339)
	}
	if p.Time.Spent != 0 {
		s.Spent = p.Time.Spent.String()
	}
	for _, f := range p.Filters {
		s.Filters = append(s.Filters, f.Name)
	}
	for _, c := range p.Channels {
		s.Channels = append(s.Channels, summarizeChannel(c))
	}
	for _, pat := range p.Patterns {
		ps := PatternSummary{ID: pat.ID(), Name: pat.Name, Color: pat.Color.Hex(), Notes: len(pat.Notes), Length: pat.Length()}
		for _, m := range pat.Markers {
			ps.Markers = append(ps.Markers, markerLine(m))
		}
		s.Patterns = append(s.Patterns, ps)
	}
	for _, a := range p.Arrangements {
		s.Arrangements = append(s.Arrangements, summarizeArrangement(a))
	}
	for _, d := range p.Diagnostics {
		s.Diagnostics = append(s.Diagnostics, d.String())
	}
	return s
}

func summarizeChannel(c *flp.ReadChannel) ChannelSummary {
	cs := ChannelSummary{Index: c.Index, Name: c.Name, Type: c.Type.String(), Color: c.Color.Hex()}
	if c.Filter != nil {
		cs.Filter = c.Filter.Name
	}
	if c.Automation != nil {
		cs.Automation = c.Automation.Kind.String()
		for _, t := range c.Automation.Targets {
			cs.Targets = append(cs.Targets, t.String())
		}
	}
	if c.AutoData != nil {
		cs.Points = len(c.AutoData.Points)
	}
	return cs
}

func summarizeArrangement(a *flp.Arrangement) ArrangementSummary {
	as := ArrangementSummary{Index: a.Index, Name: a.Name, Items: len(a.Items)}
	used := map[*flp.PlaylistTrack]bool{}
	for _, item := range a.Items {
		used[item.Track] = true
		if end := item.Tick + item.Duration; end > as.Length {
			as.Length = end
		}
	}
	for _, m := range a.Markers {
		as.Markers = append(as.Markers, markerLine(m))
	}
	for i := range a.Tracks {
		t := &a.Tracks[i]
		if t.Name != "" || used[t] {
			as.Tracks = append(as.Tracks, fmt.Sprintf("%d: %v", t.ID(), t))
		}
	}
	return as
}

func markerLine(m *flp.PlaylistMarker) string {
	if m.Type == flp.MarkerTimeSig {
		return fmt.Sprintf("%d: %v %d/%d", m.Tick, m.Type, m.Numerator, m.Denominator)
	}
	if m.Name == "" {
		return fmt.Sprintf("%d: %v", m.Tick, m.Type)
	}
	return fmt.Sprintf("%d: %v %q", m.Tick, m.Type, m.Name)
}

// YAML marshals the summary.
func (s Summary) YAML() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("could not marshal the project summary"))
	}
	return b, nil
}
