package codec

import (
	"encoding/binary"

	"github.com/flpkit/flp"
)

const (
	connectionSize = 20
	// tempoTarget is the target of a tempo connection; it names the project
	// tempo rather than a channel.
	tempoTarget = 0x4000
)

// Connection types as stored in AutomationConnection events.
const (
	connVolume      = 0x0000
	connPanpot      = 0x0001
	connPitch       = 0x0004
	connTempo       = 0x0005
	connMIDIProgram = 0x8000
)

type rawConnection struct {
	offset     int
	automation uint16
	connType   uint16
	target     uint16
}

func readConnection(b []byte) (rawConnection, error) {
	if len(b) < connectionSize {
		return rawConnection{}, flp.Formatf("automation connection: record of %d bytes, expected %d", len(b), connectionSize)
	}
	return rawConnection{
		automation: binary.LittleEndian.Uint16(b[2:]),
		connType:   binary.LittleEndian.Uint16(b[8:]),
		target:     binary.LittleEndian.Uint16(b[10:]),
	}, nil
}

func appendConnection(dst []byte, automation uint16, kind flp.AutomationKind, target uint16) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, 0)
	dst = binary.LittleEndian.AppendUint16(dst, automation)
	dst = binary.LittleEndian.AppendUint32(dst, 0)
	dst = binary.LittleEndian.AppendUint16(dst, connectionType(kind))
	dst = binary.LittleEndian.AppendUint16(dst, target)
	dst = binary.LittleEndian.AppendUint32(dst, 8)
	return binary.LittleEndian.AppendUint32(dst, 0x1D5)
}

func connectionType(k flp.AutomationKind) uint16 {
	switch k {
	case flp.AutomationPanpot:
		return connPanpot
	case flp.AutomationPitch:
		return connPitch
	case flp.AutomationTempo:
		return connTempo
	case flp.AutomationMIDIProgram:
		return connMIDIProgram
	}
	return connVolume
}

func connectionKind(t uint16) (flp.AutomationKind, bool) {
	switch t {
	case connVolume:
		return flp.AutomationVolume, true
	case connPanpot:
		return flp.AutomationPanpot, true
	case connPitch:
		return flp.AutomationPitch, true
	case connTempo:
		return flp.AutomationTempo, true
	case connMIDIProgram:
		return flp.AutomationMIDIProgram, true
	}
	return 0, false
}
