// Package dump renders projects for people: a listing of the raw event
// stream and a summary of the decoded entity graph.
package dump

import (
	"embed"
	"encoding/hex"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/flpkit/flp/event"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Lister writes one line per event of a file. The templates "header" and
// "record" of Template are executed for the header and for each event.
type Lister struct {
	Template *template.Template
}

// record is the data the "record" template sees.
type record struct {
	Offset int
	Tag    string
	IsData bool
	Size   int
	Value  uint32
	IsText bool
	Text   string
	Hex    string
	Note   string
}

// New returns a Lister using the built in templates.
func New() (*Lister, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("could not parse the listing templates"))
	}
	return &Lister{Template: tmpl}, nil
}

// Write lists the events of the whole file b. Events up to a malformed one
// are written before the error is returned.
func (l *Lister) Write(w io.Writer, b []byte) error {
	r, err := event.NewReader(b)
	if err != nil {
		return err
	}
	if err := l.Template.ExecuteTemplate(w, "header", r.Header); err != nil {
		return fault.Wrap(err, fmsg.With("could not execute template \"header\""))
	}
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := l.Template.ExecuteTemplate(w, "record", newRecord(rec)); err != nil {
			return fault.Wrap(err, fmsg.With(fmt.Sprintf("could not execute template \"record\" at 0x%X", rec.Offset)))
		}
	}
}

func newRecord(rec event.Record) record {
	r := record{Offset: rec.Offset, Tag: rec.Tag.String(), Value: rec.Value}
	switch {
	case !rec.Tag.Known():
		r.Note = "unknown"
	case rec.Tag.Obsolete():
		r.Note = "obsolete"
	}
	if rec.Tag.Width() != event.Data {
		return r
	}
	r.IsData, r.Size = true, len(rec.Data)
	if rec.Tag.Text() != event.Binary {
		if s, err := event.DecodeText(rec.Tag, rec.Data); err == nil {
			r.IsText, r.Text = true, s
			return r
		}
		r.Note = "undecodable text"
	}
	r.Hex = hex.EncodeToString(rec.Data)
	return r
}
