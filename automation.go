package flp

import (
	"fmt"
	"sort"
)

type (
	// Automation is an automation clip channel. It shares the channel index
	// space with WriteChannels; Song.NewAutomation assigns the index.
	//
	// Targets lists the channels the clip drives and is nil for Tempo, which
	// drives the project tempo instead.
	Automation struct {
		index uint16

		Name      string
		Color     Color
		Kind      AutomationKind
		Targets   []*WriteChannel
		Data      AutomationData
		Filter    *ChannelFilter
		TimeRange int32
	}

	// AutomationKind is the parameter an automation clip is connected to.
	AutomationKind uint8

	// AutomationData is the curve of an automation clip.
	AutomationData struct {
		Points []AutomationPoint
	}

	// AutomationPoint is one point of a curve. Tick is absolute; the file
	// stores the distance to the next point instead. Tension shapes the curve
	// coming from the previous point and is in [-1, 1].
	AutomationPoint struct {
		Tick    uint32
		Value   float64
		Tension float32
		Curve   CurveType
	}

	// CurveType is the shape of the segment leading to a point.
	CurveType uint8
)

const (
	AutomationVolume AutomationKind = iota
	AutomationPanpot
	AutomationPitch
	AutomationMIDIProgram
	AutomationTempo
)

const (
	CurveSingle CurveType = iota
	CurveDouble
	CurveHold
	CurveStairs
	CurveSmoothStairs
	CurvePulse
	CurveWave
	CurveSingle2
	CurveDouble2
	CurveHalfSine
	CurveSmooth
	CurveSingle3
	CurveDouble3
)

// MaxCurveType is the largest defined curve shape.
const MaxCurveType = CurveDouble3

// Tempo automation stores a normalized value; these are the tempos at 0.0 and
// 1.0 of the full range.
const (
	MinAutomationTempo = 10.0
	MaxAutomationTempo = 522.0
)

// TempoToValue maps a tempo in BPM to the normalized value stored by a tempo
// curve. The mapping is linear and not clamped.
func TempoToValue(bpm float64) float64 {
	return (bpm - MinAutomationTempo) / (MaxAutomationTempo - MinAutomationTempo)
}

// ValueToTempo is the inverse of TempoToValue.
func ValueToTempo(v float64) float64 {
	return MinAutomationTempo + v*(MaxAutomationTempo-MinAutomationTempo)
}

func (a *Automation) ChannelIndex() uint16 { return a.index }

func (a *Automation) String() string { return a.Name }

// DefaultColor returns the colour a freshly created clip of kind k gets.
func (k AutomationKind) DefaultColor() Color {
	switch k {
	case AutomationVolume:
		return Color{142, 96, 96}
	case AutomationPanpot:
		return Color{129, 142, 96}
	case AutomationPitch:
		return Color{142, 96, 136}
	case AutomationMIDIProgram:
		return Color{109, 96, 142}
	case AutomationTempo:
		return Color{142, 115, 96}
	}
	return DefaultChannelColor
}

// Signed reports whether the curve spans a range centred on zero; only
// panning and pitch do.
func (k AutomationKind) Signed() bool {
	return k == AutomationPanpot || k == AutomationPitch
}

func (k AutomationKind) String() string {
	switch k {
	case AutomationVolume:
		return "Volume"
	case AutomationPanpot:
		return "Panpot"
	case AutomationPitch:
		return "Pitch"
	case AutomationMIDIProgram:
		return "MIDIProgram"
	case AutomationTempo:
		return "Tempo"
	}
	return fmt.Sprintf("AutomationKind(%d)", uint8(k))
}

func (c CurveType) String() string {
	names := [...]string{"SingleCurve", "DoubleCurve", "Hold", "Stairs", "SmoothStairs", "Pulse", "Wave",
		"SingleCurve2", "DoubleCurve2", "HalfSine", "Smooth", "SingleCurve3", "DoubleCurve3"}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("CurveType(%d)", uint8(c))
}

// AddPoint appends a point with the Hold shape.
func (d *AutomationData) AddPoint(tick uint32, value float64) {
	d.Points = append(d.Points, AutomationPoint{Tick: tick, Value: value, Curve: CurveHold})
}

// AddTempoPoint appends a point of a tempo curve, converting bpm with
// TempoToValue.
func (d *AutomationData) AddTempoPoint(tick uint32, bpm float64) {
	d.AddPoint(tick, TempoToValue(bpm))
}

// PadPoints makes sure the curve has a point at tick 0 (with defaultValue) and
// a point at targetTick (holding the last value). The curve must not be
// empty.
func (d *AutomationData) PadPoints(targetTick uint32, defaultValue float64) error {
	if len(d.Points) == 0 {
		return InvalidStatef("cannot pad an automation curve without points")
	}
	if d.Points[0].Tick != 0 {
		d.Points = append([]AutomationPoint{{Tick: 0, Value: defaultValue, Curve: CurveHold}}, d.Points...)
	}
	if last := d.Points[len(d.Points)-1]; last.Tick != targetTick {
		d.AddPoint(targetTick, last.Value)
	}
	return nil
}

// PadTempoPoints is PadPoints for tempo curves, with the default in BPM.
func (d *AutomationData) PadTempoPoints(targetTick uint32, defaultBPM float64) error {
	return d.PadPoints(targetTick, TempoToValue(defaultBPM))
}

// SortPoints orders the points by tick.
func (d *AutomationData) SortPoints() {
	sort.SliceStable(d.Points, func(i, j int) bool { return d.Points[i].Tick < d.Points[j].Tick })
}

// Length returns the tick of the last point.
func (d *AutomationData) Length() uint32 {
	if len(d.Points) == 0 {
		return 0
	}
	return d.Points[len(d.Points)-1].Tick
}
