package event

import (
	"encoding/binary"

	"github.com/flpkit/flp"
)

// Writer buffers an event stream. The first error sticks: later calls are
// no-ops and Err and Bytes report it.
type Writer struct {
	buf []byte
	err error
}

// Value writes a fixed width event. v must fit the width of tag.
func (w *Writer) Value(tag Tag, v uint32) {
	if w.err != nil {
		return
	}
	width := tag.Width()
	if width == Data {
		w.err = flp.InvalidStatef("%v carries an array, not a value", tag)
		return
	}
	if size := width.Size(); size < 4 && v>>(8*size) != 0 {
		w.err = flp.InvalidStatef("%v: value 0x%X does not fit in %d bytes", tag, v, size)
		return
	}
	w.buf = append(w.buf, byte(tag))
	switch width {
	case Byte:
		w.buf = append(w.buf, byte(v))
	case Word:
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
	case DWord:
		w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	}
}

// Bool writes a byte event of 0 or 1.
func (w *Writer) Bool(tag Tag, b bool) {
	var v uint32
	if b {
		v = 1
	}
	w.Value(tag, v)
}

// Array writes an array event with its length prefix.
func (w *Writer) Array(tag Tag, data []byte) {
	if w.err != nil {
		return
	}
	if tag.Width() != Data {
		w.err = flp.InvalidStatef("%v carries a %v value, not an array", tag, tag.Width())
		return
	}
	w.buf = append(w.buf, byte(tag))
	w.buf = AppendLength(w.buf, len(data))
	w.buf = append(w.buf, data...)
}

// Text writes a NUL terminated text event in the encoding the tag uses.
func (w *Writer) Text(tag Tag, s string) {
	if w.err != nil {
		return
	}
	b, err := EncodeText(tag, s)
	if err != nil {
		w.err = err
		return
	}
	w.Array(tag, b)
}

func (w *Writer) Err() error { return w.err }

// Len returns the number of event bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes frames the buffered events with h and a data chunk.
func (w *Writer) Bytes(h Header) ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.buf) >= MaxDataLength {
		return nil, flp.InvalidStatef("%d event bytes do not fit in a data chunk", len(w.buf))
	}
	out := make([]byte, 0, HeaderSize+DataPrefixSize+len(w.buf))
	out = h.Append(out)
	out = append(out, DataMagic...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(w.buf)))
	return append(out, w.buf...), nil
}
