package flp

import (
	"fmt"
	"math"
	"time"
)

type (
	// Project is the entity graph produced by decoding a file. All numeric
	// references have been bound: notes point at ReadChannels, playlist items
	// at Patterns or ReadChannels and at their track.
	Project struct {
		PPQN         uint16
		NumChannels  uint16 // as declared by the header
		Version      string
		Tempo        float64 // BPM, from the fine tempo event
		Time         ProjectTime
		Info         ProjectInfo
		TimeSig      TimeSignature
		Filters      []*ChannelFilter
		Patterns     []*Pattern
		Channels     []*ReadChannel
		Arrangements []*Arrangement
		// Diagnostics lists everything unusual but harmless met while
		// decoding, such as unknown or obsolete event tags.
		Diagnostics []Diagnostic
	}

	// Song is the write side entity graph. Channels, automations, patterns,
	// filters and arrangements must be created through its New* methods so
	// their indices are assigned in order and stay stable.
	Song struct {
		PPQN         uint16
		Tempo        float64 // BPM
		Time         ProjectTime
		Info         ProjectInfo
		TimeSig      TimeSignature
		Filters      []*ChannelFilter
		Channels     []*WriteChannel
		Automations  []*Automation
		Patterns     []*Pattern
		Arrangements []*Arrangement

		nextChannel uint16
	}

	// ProjectInfo holds the free text fields of the project info window.
	ProjectInfo struct {
		Title   string `yaml:",omitempty"`
		Comment string `yaml:",omitempty"`
		Author  string `yaml:",omitempty"`
		Genre   string `yaml:",omitempty"`
		URL     string `yaml:",omitempty"`
	}

	// TimeSignature is the project wide time signature.
	TimeSignature struct {
		Numerator uint8
		Beat      uint8
	}

	// ProjectTime is the creation date and the total time spent on the
	// project. Both are stored as fractional days; the creation date counts
	// from 1899-12-30.
	ProjectTime struct {
		Created time.Time
		Spent   time.Duration
	}

	// Diagnostic is a non-fatal finding of the decoder.
	Diagnostic struct {
		Offset int
		Kind   DiagnosticKind
		Tag    uint8
		Detail string
	}

	DiagnosticKind int
)

const (
	UnknownTag DiagnosticKind = iota
	ObsoleteTag
	UnknownValue
)

const DefaultPPQN = 96

var projectEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// NewSong returns an empty song at 140 BPM in 4/4.
func NewSong(ppqn uint16) *Song {
	return &Song{PPQN: ppqn, Tempo: 140, TimeSig: TimeSignature{4, 4}}
}

// NewFilter appends a channel filter.
func (s *Song) NewFilter(name string) *ChannelFilter {
	f := &ChannelFilter{Index: uint32(len(s.Filters)), Name: name}
	s.Filters = append(s.Filters, f)
	return f
}

// NewChannel appends a MIDI Out channel.
func (s *Song) NewChannel(name string, midiChannel, bank, program uint8, filter *ChannelFilter) *WriteChannel {
	c := &WriteChannel{
		index:          s.nextChannel,
		Name:           name,
		Color:          MIDIOutColor,
		MIDIChannel:    midiChannel,
		MIDIBank:       bank,
		MIDIProgram:    program,
		Filter:         filter,
		Pan:            DefaultChannelPan,
		Volume:         DefaultChannelVolume,
		PitchBendRange: 2,
	}
	s.nextChannel++
	s.Channels = append(s.Channels, c)
	return c
}

// NewAutomation appends an automation clip. targets must be nil for tempo
// automation and non-empty otherwise.
func (s *Song) NewAutomation(name string, kind AutomationKind, targets []*WriteChannel, filter *ChannelFilter) (*Automation, error) {
	if kind == AutomationTempo && targets != nil || kind != AutomationTempo && len(targets) == 0 {
		return nil, InvalidStatef("automation %q: %v automation with %d targets", name, kind, len(targets))
	}
	a := &Automation{
		index:     s.nextChannel,
		Name:      name,
		Color:     kind.DefaultColor(),
		Kind:      kind,
		Targets:   targets,
		Filter:    filter,
		TimeRange: 2,
	}
	s.nextChannel++
	s.Automations = append(s.Automations, a)
	return a, nil
}

// NewPattern appends an empty pattern.
func (s *Song) NewPattern() *Pattern {
	p := NewPattern(uint16(len(s.Patterns)))
	s.Patterns = append(s.Patterns, p)
	return p
}

// NewArrangement appends an arrangement.
func (s *Song) NewArrangement(name string) *Arrangement {
	a := NewArrangement(uint16(len(s.Arrangements)), name)
	s.Arrangements = append(s.Arrangements, a)
	return a
}

// NumChannels counts channels and automations together.
func (s *Song) NumChannels() int {
	return len(s.Channels) + len(s.Automations)
}

// FineTempo is the tempo as stored in the file: BPM times 1000.
func FineTempo(bpm float64) uint32 {
	return uint32(math.Round(bpm * 1000))
}

// Channel returns the decoded channel with the given index, or nil.
func (p *Project) Channel(index uint16) *ReadChannel {
	for _, c := range p.Channels {
		if c.Index == index {
			return c
		}
	}
	return nil
}

// Pattern returns the pattern with the given ID, or nil.
func (p *Project) Pattern(id uint16) *Pattern {
	for _, pat := range p.Patterns {
		if pat.ID() == id {
			return pat
		}
	}
	return nil
}

// Arrangement returns the arrangement with the given index, or nil.
func (p *Project) Arrangement(index uint16) *Arrangement {
	for _, a := range p.Arrangements {
		if a.Index == index {
			return a
		}
	}
	return nil
}

// DaysToTime converts the stored creation date. 0 means unset and gives the
// zero time.
func DaysToTime(days float64) time.Time {
	if days == 0 {
		return time.Time{}
	}
	whole := math.Floor(days)
	return projectEpoch.AddDate(0, 0, int(whole)).Add(time.Duration((days - whole) * float64(24*time.Hour)))
}

// TimeToDays converts a creation date to its stored form.
func TimeToDays(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.Sub(projectEpoch)) / float64(24*time.Hour)
}

func (t ProjectTime) String() string {
	return fmt.Sprintf("{ Created: %v, TimeSpent: %v }", t.Created.Format(time.RFC3339), t.Spent)
}

func (k DiagnosticKind) String() string {
	switch k {
	case UnknownTag:
		return "UnknownTag"
	case ObsoleteTag:
		return "ObsoleteTag"
	case UnknownValue:
		return "UnknownValue"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("@0x%X %v (tag %d): %s", d.Offset, d.Kind, d.Tag, d.Detail)
}
