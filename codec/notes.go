package codec

import (
	"encoding/binary"

	"github.com/flpkit/flp"
)

const (
	noteSize       = 24
	noteSlide      = 8
	notePortamento = 0x10
)

// readNotes decodes a PatternNotes payload. The channel of each note is
// returned separately as a raw index, in the same order as the notes.
func readNotes(b []byte) ([]flp.Note, []uint16, error) {
	if len(b)%noteSize != 0 {
		return nil, nil, flp.Formatf("pattern notes: %d bytes is not a multiple of %d", len(b), noteSize)
	}
	n := len(b) / noteSize
	notes := make([]flp.Note, n)
	channels := make([]uint16, n)
	for i := range notes {
		r := b[i*noteSize:]
		colorPorta := r[19]
		notes[i] = flp.Note{
			Tick:       binary.LittleEndian.Uint32(r),
			Slide:      r[4] == noteSlide,
			Duration:   binary.LittleEndian.Uint32(r[8:]),
			Key:        r[12],
			Pitch:      r[16],
			Release:    r[18],
			Color:      colorPorta & 0x0F,
			Portamento: colorPorta&notePortamento != 0,
			Pan:        r[20],
			Velocity:   r[21],
			ModX:       r[22],
			ModY:       r[23],
		}
		channels[i] = binary.LittleEndian.Uint16(r[6:])
	}
	return notes, channels, nil
}

func appendNote(dst []byte, n *flp.Note) ([]byte, error) {
	if n.Channel == nil {
		return nil, flp.InvalidStatef("note at tick %d has no channel", n.Tick)
	}
	if n.Color > 0x0F {
		return nil, flp.InvalidStatef("note at tick %d: colour %d is above 15", n.Tick, n.Color)
	}
	var slide byte
	if n.Slide {
		slide = noteSlide
	}
	colorPorta := n.Color
	if n.Portamento {
		colorPorta |= notePortamento
	}
	dst = binary.LittleEndian.AppendUint32(dst, n.Tick)
	dst = append(dst, slide, 0x40)
	dst = binary.LittleEndian.AppendUint16(dst, n.Channel.ChannelIndex())
	dst = binary.LittleEndian.AppendUint32(dst, n.Duration)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(n.Key))
	dst = append(dst, n.Pitch, 0, n.Release, colorPorta, n.Pan, n.Velocity, n.ModX, n.ModY)
	return dst, nil
}
