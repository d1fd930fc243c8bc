package flp

import "fmt"

// Color is an RGB colour as stored in pattern, channel and track events. On
// the wire it is a 32-bit value with red in the lowest byte.
type Color struct {
	R, G, B uint8
}

var (
	DefaultPatternColor = Color{72, 81, 86}
	DefaultTrackColor   = Color{72, 81, 86}
	DefaultChannelColor = Color{92, 101, 106}
	MIDIOutColor        = Color{96, 114, 115}
)

func ColorFromUint32(v uint32) Color {
	return Color{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16)}
}

func (c Color) Uint32() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}
