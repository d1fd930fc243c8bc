package flp

import "fmt"

type (
	// PlaylistMarker is a marker on an arrangement timeline or inside a
	// pattern. Numerator and Denominator are only meaningful for TimeSig
	// markers; use SetType and SetTimeSig to keep the two consistent.
	PlaylistMarker struct {
		Tick        uint32
		Type        MarkerType
		Name        string // empty uses the default name, e.g. "Marker #1"
		Numerator   uint8
		Denominator uint8
	}

	// MarkerType is stored in the top byte of the packed marker value.
	MarkerType uint8
)

const (
	MarkerNone           MarkerType = 0
	MarkerLoop           MarkerType = 1
	MarkerSkip           MarkerType = 2
	MarkerPause          MarkerType = 3
	MarkerLoopPoint      MarkerType = 4
	MarkerStart          MarkerType = 5
	MarkerTimeSig        MarkerType = 8
	MarkerStartRecording MarkerType = 9
	MarkerStopRecording  MarkerType = 10
)

// NewMarker returns a marker of a type other than TimeSig.
func NewMarker(tick uint32, typ MarkerType, name string) (*PlaylistMarker, error) {
	m := &PlaylistMarker{Name: name}
	if err := m.SetTick(tick); err != nil {
		return nil, err
	}
	if err := m.SetType(typ); err != nil {
		return nil, err
	}
	return m, nil
}

// NewTimeSigMarker returns a time signature marker named "num/denom".
func NewTimeSigMarker(tick uint32, num, denom uint8) (*PlaylistMarker, error) {
	m := &PlaylistMarker{Name: fmt.Sprintf("%d/%d", num, denom)}
	if err := m.SetTick(tick); err != nil {
		return nil, err
	}
	m.SetTimeSig(num, denom)
	return m, nil
}

// UnpackMarker splits the packed 32-bit value of a NewTimeMarker event.
func UnpackMarker(v uint32) *PlaylistMarker {
	return &PlaylistMarker{Type: MarkerType(v >> 24), Tick: v & MaxMarkerTick}
}

// Packed returns the value of the NewTimeMarker event for m.
func (m *PlaylistMarker) Packed() uint32 {
	return uint32(m.Type)<<24 | m.Tick&MaxMarkerTick
}

func (m *PlaylistMarker) SetTick(tick uint32) error {
	if tick > MaxMarkerTick {
		return InvalidStatef("marker tick %d is above %d", tick, MaxMarkerTick)
	}
	m.Tick = tick
	return nil
}

// SetType changes the marker type and clears any time signature. TimeSig
// markers must be set up with SetTimeSig instead.
func (m *PlaylistMarker) SetType(typ MarkerType) error {
	if typ == MarkerTimeSig || !typ.Defined() {
		return InvalidStatef("cannot set marker type %v", typ)
	}
	m.Type = typ
	m.Numerator, m.Denominator = 0, 0
	return nil
}

func (m *PlaylistMarker) SetTimeSig(num, denom uint8) {
	m.Type = MarkerTimeSig
	m.Numerator, m.Denominator = num, denom
}

// Validate checks the invariants the writer relies on.
func (m *PlaylistMarker) Validate() error {
	if m.Tick > MaxMarkerTick {
		return InvalidStatef("marker %q: tick %d is above %d", m.Name, m.Tick, MaxMarkerTick)
	}
	if !m.Type.Defined() {
		return InvalidStatef("marker %q: undefined type %v", m.Name, m.Type)
	}
	if m.Type != MarkerTimeSig && (m.Numerator != 0 || m.Denominator != 0) {
		return InvalidStatef("marker %q: time signature on a %v marker", m.Name, m.Type)
	}
	return nil
}

func (m *PlaylistMarker) String() string {
	return m.Type.String() + ": " + m.Name
}

// Defined reports whether t is one of the known marker types; 6 and 7 are
// unused.
func (t MarkerType) Defined() bool {
	return t <= MarkerStart || (t >= MarkerTimeSig && t <= MarkerStopRecording)
}

func (t MarkerType) String() string {
	switch t {
	case MarkerNone:
		return "None"
	case MarkerLoop:
		return "MarkerLoop"
	case MarkerSkip:
		return "MarkerSkip"
	case MarkerPause:
		return "MarkerPause"
	case MarkerLoopPoint:
		return "Loop"
	case MarkerStart:
		return "Start"
	case MarkerTimeSig:
		return "TimeSig"
	case MarkerStartRecording:
		return "StartRecording"
	case MarkerStopRecording:
		return "StopRecording"
	}
	return fmt.Sprintf("MarkerType(%d)", uint8(t))
}
