package event

import (
	"strings"
	"unicode/utf8"

	"github.com/flpkit/flp"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeText decodes the payload of a text tag and strips every NUL, not
// just the terminator. Binary tags are returned as is.
func DecodeText(tag Tag, b []byte) (string, error) {
	var s string
	switch tag.Text() {
	case UTF16:
		d, err := utf16le.NewDecoder().Bytes(b)
		if err != nil {
			return "", flp.Formatf("%v: %v", tag, err)
		}
		s = string(d)
	case UTF8:
		if !utf8.Valid(b) {
			return "", flp.Formatf("%v: invalid UTF-8", tag)
		}
		s = string(b)
	default:
		s = string(b)
	}
	return strings.ReplaceAll(s, "\x00", ""), nil
}

// EncodeText encodes s for a text tag and appends the NUL terminator.
func EncodeText(tag Tag, s string) ([]byte, error) {
	switch tag.Text() {
	case UTF16:
		b, err := utf16le.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, flp.InvalidStatef("%v: %v", tag, err)
		}
		return append(b, 0, 0), nil
	case UTF8:
		return append([]byte(s), 0), nil
	}
	return nil, flp.InvalidStatef("%v is not a text event", tag)
}
