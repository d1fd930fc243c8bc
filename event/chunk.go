package event

import (
	"encoding/binary"

	"github.com/flpkit/flp"
)

const (
	HeaderMagic = "FLhd"
	DataMagic   = "FLdt"
	// HeaderSize is the size of the whole header chunk including its magic
	// and length; the data chunk starts right after it.
	HeaderSize = 14
	// DataPrefixSize is the magic plus length of the data chunk.
	DataPrefixSize = 8
	// MaxDataLength bounds the declared length of the data chunk.
	MaxDataLength = 0x10000000

	MinChannels = 1
	MaxChannels = 1000
)

// Header is the content of the header chunk.
type Header struct {
	Format      uint16
	NumChannels uint16
	PPQN        uint16
}

// ReadHeader parses and validates the header chunk at the start of b.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, flp.Formatf("header chunk truncated: %d bytes", len(b))
	}
	if string(b[:4]) != HeaderMagic {
		return Header{}, flp.Formatf("header magic is %q, expected %q", b[:4], HeaderMagic)
	}
	if l := binary.LittleEndian.Uint32(b[4:]); l != 6 {
		return Header{}, flp.Formatf("header chunk length is %d, expected 6", l)
	}
	h := Header{
		Format:      binary.LittleEndian.Uint16(b[8:]),
		NumChannels: binary.LittleEndian.Uint16(b[10:]),
		PPQN:        binary.LittleEndian.Uint16(b[12:]),
	}
	if h.Format != 0 {
		return Header{}, flp.Formatf("header format is %d, expected 0", h.Format)
	}
	if h.NumChannels < MinChannels || h.NumChannels > MaxChannels {
		return Header{}, flp.Formatf("header channel count %d outside [%d, %d]", h.NumChannels, MinChannels, MaxChannels)
	}
	return h, nil
}

// Append appends the header chunk to dst.
func (h Header) Append(dst []byte) []byte {
	dst = append(dst, HeaderMagic...)
	dst = binary.LittleEndian.AppendUint32(dst, 6)
	dst = binary.LittleEndian.AppendUint16(dst, h.Format)
	dst = binary.LittleEndian.AppendUint16(dst, h.NumChannels)
	return binary.LittleEndian.AppendUint16(dst, h.PPQN)
}

// dataChunk validates the data chunk prefix at the start of b and returns
// the event payload that follows it.
func dataChunk(b []byte) ([]byte, error) {
	if len(b) < DataPrefixSize {
		return nil, flp.Formatf("data chunk truncated: %d bytes", len(b))
	}
	if string(b[:4]) != DataMagic {
		return nil, flp.Formatf("data magic is %q, expected %q", b[:4], DataMagic)
	}
	l := binary.LittleEndian.Uint32(b[4:])
	rest := b[DataPrefixSize:]
	if l >= MaxDataLength {
		return nil, flp.Formatf("data chunk length 0x%X is not below 0x%X", l, MaxDataLength)
	}
	if uint64(l) != uint64(len(rest)) {
		return nil, flp.Formatf("data chunk length is %d but %d bytes follow", l, len(rest))
	}
	return rest, nil
}

// ReadLength decodes an array length prefix: 7-bit groups, least significant
// first, the high bit of each byte set when another byte follows. It returns
// the length and the number of bytes consumed.
func ReadLength(b []byte) (uint64, int, error) {
	var n uint64
	var shift uint
	for i, c := range b {
		if shift <= 56 {
			n |= uint64(c&0x7F) << shift
		} else if c&0x7F != 0 {
			return 0, 0, flp.Formatf("array length prefix overflows")
		}
		if c&0x80 == 0 {
			return n, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, flp.Formatf("array length prefix truncated")
}

// AppendLength appends the length prefix for n to dst.
func AppendLength(dst []byte, n int) []byte {
	u := uint64(n)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}
