package flp

import (
	"sort"
	"strconv"
)

type (
	// Pattern is a clip of notes that can be placed on a playlist. Patterns are
	// identified by ID, which is always Index+1; ID 0 does not exist.
	//
	// A pattern can also own markers (e.g. time signature changes inside the
	// pattern). Those are written in the same block as its name and colour.
	Pattern struct {
		Index   uint16
		Name    string // empty means the pattern uses its default name
		Color   Color
		Notes   []Note
		Markers []*PlaylistMarker
	}

	// Note is a single note of a pattern. Most fields are byte quantized the
	// way they are stored in the file:
	//
	//	Pitch:    -1200 cents => 0, 0 => 120, +1200 cents => 240
	//	Release:  0% => 0x00, 50% => 0x40, 100% => 0x80
	//	Pan:      left => 0x00, centre => 0x40, right => 0x80
	//	Velocity: 0% => 0x00, 80% => 0x64, 100% => 0x80
	//	ModX/Y:   -100 => 0x00, 0 => 0x80, +100 => 0xFF
	Note struct {
		Tick       uint32
		Duration   uint32 // 0 means infinite
		Key        uint8
		Pitch      uint8
		Release    uint8
		Pan        uint8
		Velocity   uint8
		ModX       uint8
		ModY       uint8
		Color      uint8 // 0 through 15
		Portamento bool
		Slide      bool
		// Channel is the instrument playing the note: a *ReadChannel after
		// decoding, normally a *WriteChannel when building a Song.
		Channel ChannelRef
	}
)

// NewPattern returns an empty pattern with the default colour.
func NewPattern(index uint16) *Pattern {
	return &Pattern{Index: index, Color: DefaultPatternColor}
}

// ID is the 1-based identifier used by events and playlist items.
func (p *Pattern) ID() uint16 {
	return p.Index + 1
}

// NewNote returns a note with the default values of the piano roll.
func NewNote(ch ChannelRef, tick uint32, key uint8) Note {
	return Note{
		Tick:     tick,
		Duration: 48,
		Key:      key,
		Pitch:    120,
		Release:  0x40,
		Pan:      0x40,
		Velocity: 0x64,
		ModX:     0x80,
		ModY:     0x80,
		Channel:  ch,
	}
}

// AddNote appends a note; order does not matter until the pattern is written.
func (p *Pattern) AddNote(n Note) {
	p.Notes = append(p.Notes, n)
}

// SortNotes orders notes by tick, keeping the relative order of notes that
// start together.
func (p *Pattern) SortNotes() {
	sort.SliceStable(p.Notes, func(i, j int) bool { return p.Notes[i].Tick < p.Notes[j].Tick })
}

// HasProperties reports whether the pattern has anything besides notes worth
// storing: a name, a non-default colour or markers.
func (p *Pattern) HasProperties() bool {
	return p.Name != "" || p.Color != DefaultPatternColor || len(p.Markers) > 0
}

// Length returns the tick at which the last note of the pattern ends.
func (p *Pattern) Length() uint32 {
	var end uint32
	for _, n := range p.Notes {
		if e := n.Tick + n.Duration; e > end {
			end = e
		}
	}
	return end
}

func (p *Pattern) String() string {
	if p.Name != "" {
		return p.Name
	}
	return "#" + strconv.Itoa(int(p.ID()))
}
