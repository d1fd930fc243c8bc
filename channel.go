package flp

import "fmt"

type (
	// ChannelRef is anything a note or a playlist item can point at through a
	// channel index. Decoded projects use *ReadChannel; songs being built use
	// *WriteChannel and *Automation.
	ChannelRef interface {
		ChannelIndex() uint16
	}

	// ReadChannel is the identity of a channel as seen while decoding. It only
	// carries what the decoder interprets: name, type, colour, filter and, for
	// automation clips, the curve and what it is connected to. Instrument
	// specific parameters are not modelled.
	ReadChannel struct {
		Index       uint16
		Name        string
		Type        ChannelType
		Color       Color
		FilterIndex uint32
		Filter      *ChannelFilter
		AutoData    *AutomationData
		Automation  *AutomationLink
	}

	// AutomationLink describes what a decoded automation clip drives. Targets
	// is nil for tempo automation.
	AutomationLink struct {
		Kind    AutomationKind
		Targets []*ReadChannel
	}

	// WriteChannel is a fully configured MIDI Out instrument channel. Its
	// index is assigned by Song.NewChannel and never changes.
	WriteChannel struct {
		index uint16

		Name           string
		Color          Color
		MIDIChannel    uint8
		MIDIBank       uint8
		MIDIProgram    uint8
		Filter         *ChannelFilter
		Pan            uint32
		Volume         uint32
		Pitch          int32 // cents
		PitchBendRange int32
	}

	// ChannelFilter is a named group of channels ("Unsorted", "Audio", ...).
	// Its index is its position in the project's filter list.
	ChannelFilter struct {
		Index uint32
		Name  string
	}

	// ChannelType is the kind of generator a channel hosts.
	ChannelType uint8
)

const (
	ChannelSampler ChannelType = iota
	ChannelTS404               // gone since version 12
	ChannelFruityWrapper
	ChannelLayer
	ChannelAudio
	ChannelAutomation
)

const (
	DefaultChannelPan    = 6400
	DefaultChannelVolume = 10000
)

func NewReadChannel(index uint16) *ReadChannel {
	return &ReadChannel{Index: index, Color: DefaultChannelColor}
}

func (c *ReadChannel) ChannelIndex() uint16 { return c.Index }

func (c *ReadChannel) String() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("channel %d", c.Index)
}

func (c *WriteChannel) ChannelIndex() uint16 { return c.index }

func (c *WriteChannel) String() string { return c.Name }

func (t ChannelType) String() string {
	switch t {
	case ChannelSampler:
		return "Sampler"
	case ChannelTS404:
		return "TS404"
	case ChannelFruityWrapper:
		return "FruityWrapper"
	case ChannelLayer:
		return "Layer"
	case ChannelAudio:
		return "Audio"
	case ChannelAutomation:
		return "Automation"
	}
	return fmt.Sprintf("ChannelType(%d)", uint8(t))
}
