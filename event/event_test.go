package event_test

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/flpkit/flp"
	"github.com/flpkit/flp/event"
)

func TestReadHeader(t *testing.T) {
	b := []byte{'F', 'L', 'h', 'd', 6, 0, 0, 0, 0, 0, 1, 0, 96, 0}
	h, err := event.ReadHeader(b)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	expected := event.Header{Format: 0, NumChannels: 1, PPQN: 96}
	if h != expected {
		t.Fatalf("got %+v, expected %+v", h, expected)
	}
	if got := h.Append(nil); !bytes.Equal(got, b) {
		t.Fatalf("Append: got % X, expected % X", got, b)
	}
}

func TestReadHeaderRejects(t *testing.T) {
	valid := []byte{'F', 'L', 'h', 'd', 6, 0, 0, 0, 0, 0, 1, 0, 96, 0}
	cases := map[string]func(b []byte){
		"magic":       func(b []byte) { b[0] = 'X' },
		"length":      func(b []byte) { b[4] = 7 },
		"format":      func(b []byte) { b[8] = 1 },
		"no channels": func(b []byte) { b[10] = 0 },
		"too many":    func(b []byte) { b[10], b[11] = 0xE9, 0x03 }, // 1001
	}
	for name, mutate := range cases {
		b := append([]byte(nil), valid...)
		mutate(b)
		if _, err := event.ReadHeader(b); !errors.Is(err, flp.ErrFormat) {
			t.Errorf("%s: got error %v, expected a format error", name, err)
		}
	}
	if _, err := event.ReadHeader(valid[:10]); flp.Kind(err) != flp.FormatError {
		t.Fatalf("truncated header: got %v, expected a format error", err)
	}
}

func TestWidth(t *testing.T) {
	cases := []struct {
		tag   event.Tag
		width event.Width
	}{
		{0, event.Byte},
		{63, event.Byte},
		{event.NewChannel, event.Word},
		{127, event.Word},
		{event.PluginColor, event.DWord},
		{191, event.DWord},
		{event.ChannelName, event.Data},
		{255, event.Data},
	}
	for _, c := range cases {
		if w := c.tag.Width(); w != c.width {
			t.Errorf("%v: got width %v, expected %v", c.tag, w, c.width)
		}
	}
	if event.Tag(101).Known() {
		t.Fatalf("tag 101 should be unknown")
	}
	if !event.Tempo.Obsolete() || event.FineTempo.Obsolete() {
		t.Fatalf("Tempo should be obsolete and FineTempo not")
	}
}

func TestLength(t *testing.T) {
	cases := []struct {
		n       int
		encoded []byte
	}{
		{0, []byte{0}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{0x10000000, []byte{0x80, 0x80, 0x80, 0x80, 0x01}},
	}
	for _, c := range cases {
		if got := event.AppendLength(nil, c.n); !bytes.Equal(got, c.encoded) {
			t.Errorf("AppendLength(%d): got % X, expected % X", c.n, got, c.encoded)
		}
		n, size, err := event.ReadLength(c.encoded)
		if err != nil || n != uint64(c.n) || size != len(c.encoded) {
			t.Errorf("ReadLength(% X): got %d, %d, %v, expected %d, %d", c.encoded, n, size, err, c.n, len(c.encoded))
		}
	}
	// redundant groups are allowed
	if n, size, err := event.ReadLength([]byte{0x85, 0x80, 0x80, 0x00, 0xFF}); err != nil || n != 5 || size != 4 {
		t.Fatalf("padded prefix: got %d, %d, %v, expected 5, 4", n, size, err)
	}
	if _, _, err := event.ReadLength([]byte{0x80, 0x80}); flp.Kind(err) != flp.FormatError {
		t.Fatalf("truncated prefix: got %v, expected a format error", err)
	}
}

func TestWriterReader(t *testing.T) {
	var w event.Writer
	w.Value(event.IsRegistered, 1)
	w.Value(event.NewPattern, 0x1234)
	w.Value(event.FineTempo, 140000)
	w.Text(event.Version, "21.0.3.3517")
	w.Text(event.PatternName, "Intro")
	w.Array(event.ProjectTime, make([]byte, 16))
	b, err := w.Bytes(event.Header{NumChannels: 1, PPQN: 96})
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	r, err := event.NewReader(b)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if r.Header.PPQN != 96 {
		t.Fatalf("got PPQN %d, expected 96", r.Header.PPQN)
	}
	var tags []event.Tag
	var values []uint32
	var texts []string
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		tags = append(tags, rec.Tag)
		if rec.Tag.Width() != event.Data {
			values = append(values, rec.Value)
			continue
		}
		if rec.Tag.Text() != event.Binary {
			s, err := event.DecodeText(rec.Tag, rec.Data)
			if err != nil {
				t.Fatalf("DecodeText failed: %v", err)
			}
			texts = append(texts, s)
		}
	}
	expectedTags := []event.Tag{event.IsRegistered, event.NewPattern, event.FineTempo, event.Version, event.PatternName, event.ProjectTime}
	if !reflect.DeepEqual(tags, expectedTags) {
		t.Fatalf("got tags %v, expected %v", tags, expectedTags)
	}
	if expected := []uint32{1, 0x1234, 140000}; !reflect.DeepEqual(values, expected) {
		t.Fatalf("got values %v, expected %v", values, expected)
	}
	if expected := []string{"21.0.3.3517", "Intro"}; !reflect.DeepEqual(texts, expected) {
		t.Fatalf("got texts %q, expected %q", texts, expected)
	}
}

func TestWriterWidthMismatch(t *testing.T) {
	var w event.Writer
	w.Value(event.ChannelType, 0x100)
	if flp.Kind(w.Err()) != flp.InvalidState {
		t.Fatalf("oversized byte value: got %v, expected an invalid state error", w.Err())
	}
	w = event.Writer{}
	w.Array(event.NewChannel, []byte{1, 2})
	w.Value(event.IsRegistered, 1)
	if flp.Kind(w.Err()) != flp.InvalidState || w.Len() != 0 {
		t.Fatalf("array on a word tag: got %v with %d bytes, expected a sticky error", w.Err(), w.Len())
	}
}

func TestUTF16Text(t *testing.T) {
	b, err := event.EncodeText(event.ArrangementName, "Arr")
	if err != nil {
		t.Fatalf("EncodeText failed: %v", err)
	}
	expected := []byte{'A', 0, 'r', 0, 'r', 0, 0, 0}
	if !bytes.Equal(b, expected) {
		t.Fatalf("got % X, expected % X", b, expected)
	}
	s, err := event.DecodeText(event.ArrangementName, []byte{'A', 0, 0, 0, 'B', 0, 0, 0})
	if err != nil || s != "AB" {
		t.Fatalf("got %q, %v, expected \"AB\"", s, err)
	}
}

func TestReaderRejectsBadData(t *testing.T) {
	var w event.Writer
	w.Array(event.PatternNotes, make([]byte, 24))
	b, err := w.Bytes(event.Header{NumChannels: 1, PPQN: 96})
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	// trailing byte makes the declared data length wrong
	if _, err := event.NewReader(append(b, 0)); flp.Kind(err) != flp.FormatError {
		t.Fatalf("length mismatch: got %v, expected a format error", err)
	}
	bad := append([]byte(nil), b...)
	bad[14] = 'X'
	if _, err := event.NewReader(bad); flp.Kind(err) != flp.FormatError {
		t.Fatalf("data magic: got %v, expected a format error", err)
	}
	// array claims more bytes than the chunk holds
	var w2 event.Writer
	w2.Value(event.IsRegistered, 1)
	b2, _ := w2.Bytes(event.Header{NumChannels: 1, PPQN: 96})
	b2[len(b2)-2] = byte(event.PatternNotes)
	b2[len(b2)-1] = 0x10
	r, err := event.NewReader(b2)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if _, err := r.Next(); flp.Kind(err) != flp.FormatError {
		t.Fatalf("overlong array: got %v, expected a format error", err)
	}
}
