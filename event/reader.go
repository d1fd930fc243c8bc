package event

import (
	"encoding/binary"
	"io"

	"github.com/flpkit/flp"
)

// Record is one decoded event. Value holds the payload of fixed width tags;
// Data holds the payload of array tags and aliases the input buffer.
type Record struct {
	Offset int // of the tag byte, from the start of the file
	Tag    Tag
	Value  uint32
	Data   []byte
}

// Reader walks the events of a project file in order.
type Reader struct {
	Header Header

	events []byte
	pos    int
	base   int
}

// NewReader validates both chunks of a whole file held in b.
func NewReader(b []byte) (*Reader, error) {
	h, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	events, err := dataChunk(b[HeaderSize:])
	if err != nil {
		return nil, err
	}
	return &Reader{Header: h, events: events, base: HeaderSize + DataPrefixSize}, nil
}

// Next returns the next event, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	if r.pos >= len(r.events) {
		return Record{}, io.EOF
	}
	rec := Record{Offset: r.base + r.pos, Tag: Tag(r.events[r.pos])}
	p := r.events[r.pos+1:]
	w := rec.Tag.Width()
	if w == Data {
		n, size, err := ReadLength(p)
		if err != nil {
			return Record{}, flp.Formatf("%v @0x%X: %v", rec.Tag, rec.Offset, err)
		}
		if n > uint64(len(p)-size) {
			return Record{}, flp.Formatf("%v @0x%X: array of %d bytes, only %d left", rec.Tag, rec.Offset, n, len(p)-size)
		}
		rec.Data = p[size : size+int(n)]
		r.pos += 1 + size + int(n)
		return rec, nil
	}
	size := w.Size()
	if len(p) < size {
		return Record{}, flp.Formatf("%v @0x%X: %v payload truncated", rec.Tag, rec.Offset, w)
	}
	switch w {
	case Byte:
		rec.Value = uint32(p[0])
	case Word:
		rec.Value = uint32(binary.LittleEndian.Uint16(p))
	case DWord:
		rec.Value = binary.LittleEndian.Uint32(p)
	}
	r.pos += 1 + size
	return rec, nil
}
