package flp

import (
	"errors"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Error kinds. Every error returned by the codec carries one of these as its
// ftag kind and wraps the matching sentinel, so both ftag.Get and errors.Is
// can be used to tell them apart.
const (
	FormatError  ftag.Kind = "FLP_FORMAT"
	SchemaError  ftag.Kind = "FLP_SCHEMA"
	LinkError    ftag.Kind = "FLP_LINK"
	InvalidState ftag.Kind = "FLP_INVALID_STATE"
)

var (
	ErrFormat       = errors.New("malformed project data")
	ErrSchema       = errors.New("inconsistent project schema")
	ErrLink         = errors.New("unresolved reference")
	ErrInvalidState = errors.New("invalid state for writing")
)

func newError(sentinel error, kind ftag.Kind, format string, args ...any) error {
	return fault.Wrap(sentinel, fmsg.With(fmt.Sprintf(format, args...)), ftag.With(kind))
}

// Formatf returns a FormatError: malformed magic, lengths or thresholds, or an
// event that arrived without the owner it depends on.
func Formatf(format string, args ...any) error {
	return newError(ErrFormat, FormatError, format, args...)
}

// Schemaf returns a SchemaError, e.g. a playlist item referring to neither a
// pattern nor a channel.
func Schemaf(format string, args ...any) error {
	return newError(ErrSchema, SchemaError, format, args...)
}

// Linkf returns a LinkError: a numeric reference with no matching entity
// after the resolution pass.
func Linkf(format string, args ...any) error {
	return newError(ErrLink, LinkError, format, args...)
}

// InvalidStatef returns an InvalidState error, raised by the writer when the
// entity graph breaks an invariant that must hold before bytes are emitted.
func InvalidStatef(format string, args ...any) error {
	return newError(ErrInvalidState, InvalidState, format, args...)
}

// Kind returns the error kind of err, or ftag.None.
func Kind(err error) ftag.Kind {
	if err == nil {
		return ftag.None
	}
	return ftag.Get(err)
}
