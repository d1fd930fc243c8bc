package codec

import (
	"encoding/binary"
	"math"

	"github.com/flpkit/flp"
)

const (
	curveHeaderSize = 29
	curvePointSize  = 24
	curveFooterSize = 104
	curveFixedSize  = curveHeaderSize + curveFooterSize

	// lastPointDelta stands in for the delta of the last point. It is not a
	// regular NaN and is never read as a number.
	lastPointDelta uint64 = 0xFFFFFFFF00000001
)

var curveFooter = func() []byte {
	var b []byte
	for _, v := range []uint32{math.MaxUint32, math.MaxUint32, math.MaxUint32, 0x80, 0x80, 0, 0x80, 5, 3, 1, 0, 0} {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(1))
	for _, v := range []uint32{0, 0, 1, 0, math.MaxUint32, math.MaxUint32, math.MaxUint32, 0xB2FB, 0, 0, 0, 0} {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}()

// readCurve decodes an AutomationData payload. Points get absolute ticks:
// the first is at 0 and each following one adds the previous delta, given
// in quarter notes, scaled by ppqn.
func readCurve(b []byte, ppqn uint16) (*flp.AutomationData, error) {
	if len(b) < curveFixedSize || (len(b)-curveFixedSize)%curvePointSize != 0 {
		return nil, flp.Formatf("automation data: bad length %d", len(b))
	}
	count := binary.LittleEndian.Uint32(b[17:])
	if uint64(count) != uint64((len(b)-curveFixedSize)/curvePointSize) {
		return nil, flp.Formatf("automation data: %d points declared in %d bytes", count, len(b))
	}
	data := &flp.AutomationData{Points: make([]flp.AutomationPoint, count)}
	var tick uint32
	for i := range data.Points {
		r := b[curveHeaderSize+i*curvePointSize:]
		data.Points[i] = flp.AutomationPoint{
			Tick:    tick,
			Value:   math.Float64frombits(binary.LittleEndian.Uint64(r)),
			Tension: math.Float32frombits(binary.LittleEndian.Uint32(r[8:])),
			Curve:   flp.CurveType(r[12]),
		}
		delta := binary.LittleEndian.Uint64(r[16:])
		last := i == len(data.Points)-1
		if delta == lastPointDelta {
			if !last {
				return nil, flp.Formatf("automation data: end marker on point %d of %d", i, count)
			}
			break
		}
		if last {
			break
		}
		d := math.Round(math.Float64frombits(delta) * float64(ppqn))
		if !(d >= 0 && d <= math.MaxUint32-float64(tick)) {
			return nil, flp.Formatf("automation data: point %d has delta %v", i, math.Float64frombits(delta))
		}
		tick += uint32(d)
	}
	return data, nil
}

func appendCurve(dst []byte, data *flp.AutomationData, ppqn uint16, signed bool) []byte {
	var signedByte byte
	if signed {
		signedByte = 1
	}
	dst = binary.LittleEndian.AppendUint32(dst, 1)
	dst = binary.LittleEndian.AppendUint32(dst, 0x40)
	dst = append(dst, signedByte)
	dst = binary.LittleEndian.AppendUint32(dst, 4)
	dst = binary.LittleEndian.AppendUint32(dst, 3)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data.Points)))
	dst = binary.LittleEndian.AppendUint32(dst, 0)
	dst = binary.LittleEndian.AppendUint32(dst, 0)
	for i, p := range data.Points {
		curve := uint32(p.Curve)
		if i == 0 {
			curve = 0
		}
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(p.Value))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(p.Tension))
		dst = binary.LittleEndian.AppendUint32(dst, curve)
		if i == len(data.Points)-1 {
			dst = binary.LittleEndian.AppendUint64(dst, lastPointDelta)
			continue
		}
		delta := float64(data.Points[i+1].Tick-p.Tick) / float64(ppqn)
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(delta))
	}
	return append(dst, curveFooter...)
}

// validateCurve checks a curve before writing. The first point has no
// stored tick and is always read back at 0.
func validateCurve(name string, data *flp.AutomationData) error {
	if len(data.Points) > 0 && data.Points[0].Tick != 0 {
		return flp.InvalidStatef("automation %q: first point at tick %d, not 0 (see PadPoints)", name, data.Points[0].Tick)
	}
	for i, p := range data.Points {
		if !(p.Tension >= -1 && p.Tension <= 1) {
			return flp.InvalidStatef("automation %q: point %d tension %v outside [-1, 1]", name, i, p.Tension)
		}
		if p.Curve > flp.MaxCurveType {
			return flp.InvalidStatef("automation %q: point %d has undefined curve %v", name, i, p.Curve)
		}
		if i > 0 && p.Tick <= data.Points[i-1].Tick {
			return flp.InvalidStatef("automation %q: point %d at tick %d does not follow tick %d", name, i, p.Tick, data.Points[i-1].Tick)
		}
	}
	return nil
}
