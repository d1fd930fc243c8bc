package codec

import (
	"encoding/binary"
	"math"

	"github.com/flpkit/flp"
)

const trackSize = 66

// Performance settings stored in the track record, in order: motion, press,
// trigger sync, queue, tolerant, position sync and group with above.
var trackPerformance = [...]byte{0, 0, 5, 0, 1, 0, 0}

const (
	trackPerformanceOffset = 21
	trackGroupOffset       = trackPerformanceOffset + 6*4 + 1
	trackExpandedOffset    = 61
)

// readTrack fills t from a NewPlaylistTrack payload. Newer versions append
// fields, so longer records are accepted.
func readTrack(b []byte, t *flp.PlaylistTrack) error {
	if len(b) < trackSize {
		return flp.Formatf("playlist track %d: record of %d bytes, expected %d", t.ID(), len(b), trackSize)
	}
	t.Color = flp.Color{R: b[4], G: b[5], B: b[6]}
	t.Icon = binary.LittleEndian.Uint32(b[8:])
	t.Size = math.Float32frombits(binary.LittleEndian.Uint32(b[13:]))
	t.GroupWithAbove = b[trackGroupOffset] != 0
	t.Collapsed = b[trackExpandedOffset] == 0
	return nil
}

func appendTrack(dst []byte, t *flp.PlaylistTrack) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(t.ID()))
	dst = append(dst, t.Color.R, t.Color.G, t.Color.B, 0)
	dst = binary.LittleEndian.AppendUint32(dst, t.Icon)
	dst = append(dst, 1)
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(t.Size))
	height := int32(-1)
	if t.Index() <= 0x20 {
		height = -16
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(height))
	perf := trackPerformance
	if t.GroupWithAbove {
		perf[6] = 1
	}
	for _, v := range perf {
		dst = append(dst, 0, v, 0, 0)
	}
	dst = binary.LittleEndian.AppendUint32(dst, 0)
	dst = binary.LittleEndian.AppendUint32(dst, math.MaxUint32)
	dst = binary.LittleEndian.AppendUint32(dst, math.MaxUint32)
	expanded := byte(1)
	if t.Collapsed {
		expanded = 0
	}
	dst = append(dst, expanded)
	return binary.LittleEndian.AppendUint32(dst, 0)
}

func validateTrack(t *flp.PlaylistTrack) error {
	if !(t.Size >= flp.MinTrackSize && t.Size <= flp.MaxTrackSize) {
		return flp.InvalidStatef("playlist track %v: size %v outside [%v, %v]", t, t.Size, flp.MinTrackSize, flp.MaxTrackSize)
	}
	return nil
}
