// Package codec converts between project files and the flp entity graph.
//
// Decoding is a single forward pass over the events followed by a
// resolution pass: the meaning of many events depends on which pattern,
// channel, arrangement, track or marker was opened last, and numeric
// references may point at entities that appear later in the file.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/flpkit/flp"
	"github.com/flpkit/flp/event"
)

const projectTimeSize = 16

type markerOwner int

const (
	noOwner markerOwner = iota
	patternOwner
	arrangementOwner
)

type pendingMarker struct {
	marker      *flp.PlaylistMarker
	offset      int
	numerator   bool
	denominator bool
}

// pending holds the raw references collected during the forward pass, keyed
// by the entity that owns them. The resolver binds them afterwards.
type pending struct {
	noteChannels map[*flp.Pattern][]uint16
	items        map[*flp.Arrangement][]rawItem
	markers      []*pendingMarker
	connections  []rawConnection
	filtered     []*flp.ReadChannel
}

// visitor is the state of one decode call.
type visitor struct {
	project  *flp.Project
	extended bool

	channels     map[uint16]*flp.ReadChannel
	patterns     map[uint16]*flp.Pattern
	arrangements map[uint16]*flp.Arrangement

	pattern     *flp.Pattern
	channel     *flp.ReadChannel
	arrangement *flp.Arrangement
	track       *flp.PlaylistTrack
	marker      *pendingMarker
	trackSlot   int

	// channelOwnsNames is set by NewChannel and cleared by NewInsertSlot;
	// plugin names and colours that follow belong to the channel only while
	// it is set.
	channelOwnsNames bool
	markerOwner      markerOwner

	pending pending
}

// Decode parses a whole project file. On error no project is returned.
func Decode(b []byte) (*flp.Project, error) {
	r, err := event.NewReader(b)
	if err != nil {
		return nil, err
	}
	v := newVisitor(r.Header)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := v.visit(rec); err != nil {
			return nil, err
		}
	}
	if err := v.resolve(); err != nil {
		return nil, err
	}
	return v.project, nil
}

// DecodeFile reads and decodes the project file at path.
func DecodeFile(path string) (*flp.Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("could not read %v", path)))
	}
	p, err := Decode(b)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("could not decode %v", path)))
	}
	return p, nil
}

func newVisitor(h event.Header) *visitor {
	return &visitor{
		project: &flp.Project{
			PPQN:        h.PPQN,
			NumChannels: h.NumChannels,
			TimeSig:     flp.TimeSignature{Numerator: 4, Beat: 4},
		},
		channels:     map[uint16]*flp.ReadChannel{},
		patterns:     map[uint16]*flp.Pattern{},
		arrangements: map[uint16]*flp.Arrangement{},
		pending: pending{
			noteChannels: map[*flp.Pattern][]uint16{},
			items:        map[*flp.Arrangement][]rawItem{},
		},
	}
}

func (v *visitor) visit(rec event.Record) error {
	if !rec.Tag.Known() {
		v.diagnose(rec, flp.UnknownTag, "unknown %v event", rec.Tag.Width())
		return nil
	}
	if rec.Tag.Obsolete() {
		v.diagnose(rec, flp.ObsoleteTag, "%v is no longer used", rec.Tag)
		return nil
	}
	if rec.Tag.Width() == event.Data {
		return v.visitData(rec)
	}
	return v.visitValue(rec)
}

func (v *visitor) visitValue(rec event.Record) error {
	switch rec.Tag {
	case event.NewChannel:
		index := uint16(rec.Value)
		ch, ok := v.channels[index]
		if !ok {
			ch = flp.NewReadChannel(index)
			v.channels[index] = ch
			v.project.Channels = append(v.project.Channels, ch)
		}
		v.channel = ch
		v.channelOwnsNames = true
	case event.NewInsertSlot:
		v.channelOwnsNames = false
	case event.NewPattern:
		id := uint16(rec.Value)
		if id == 0 {
			return flp.Formatf("%v @0x%X: pattern ID 0", rec.Tag, rec.Offset)
		}
		p, ok := v.patterns[id]
		if !ok {
			p = flp.NewPattern(id - 1)
			v.patterns[id] = p
			v.project.Patterns = append(v.project.Patterns, p)
		}
		v.pattern = p
		v.markerOwner = patternOwner
	case event.NewArrangement:
		index := uint16(rec.Value)
		a, ok := v.arrangements[index]
		if !ok {
			a = flp.NewArrangement(index, "")
			v.arrangements[index] = a
			v.project.Arrangements = append(v.project.Arrangements, a)
		}
		v.arrangement = a
		v.track = nil
		v.trackSlot = 0
		v.markerOwner = arrangementOwner
	case event.NewTimeMarker:
		m := flp.UnpackMarker(rec.Value)
		if !m.Type.Defined() {
			v.diagnose(rec, flp.UnknownValue, "marker type %d", uint8(m.Type))
		}
		switch v.markerOwner {
		case patternOwner:
			v.pattern.Markers = append(v.pattern.Markers, m)
		case arrangementOwner:
			v.arrangement.Markers = append(v.arrangement.Markers, m)
		default:
			return flp.Formatf("%v @0x%X: marker outside of a pattern or arrangement", rec.Tag, rec.Offset)
		}
		v.marker = &pendingMarker{marker: m, offset: rec.Offset}
		v.pending.markers = append(v.pending.markers, v.marker)
	case event.TimeSigMarkerNumerator, event.TimeSigMarkerDenominator:
		if err := v.need(rec, v.marker != nil, "marker"); err != nil {
			return err
		}
		m := v.marker
		if m.marker.Type != flp.MarkerTimeSig {
			v.diagnose(rec, flp.UnknownValue, "time signature on a %v marker", m.marker.Type)
			break
		}
		if rec.Tag == event.TimeSigMarkerNumerator {
			m.marker.Numerator, m.numerator = uint8(rec.Value), true
		} else {
			m.marker.Denominator, m.denominator = uint8(rec.Value), true
		}
	case event.FineTempo:
		v.project.Tempo = float64(rec.Value) / 1000
	case event.TimeSigNumerator:
		v.project.TimeSig.Numerator = uint8(rec.Value)
	case event.TimeSigBeat:
		v.project.TimeSig.Beat = uint8(rec.Value)
	case event.ChannelType:
		if err := v.need(rec, v.channel != nil, "channel"); err != nil {
			return err
		}
		v.channel.Type = flp.ChannelType(rec.Value)
		if v.channel.Type > flp.ChannelAutomation {
			v.diagnose(rec, flp.UnknownValue, "channel type %d", rec.Value)
		}
	case event.PluginColor:
		if v.channelOwnsNames {
			v.channel.Color = flp.ColorFromUint32(rec.Value)
		}
	case event.ChanFilterNum:
		if err := v.need(rec, v.channel != nil, "channel"); err != nil {
			return err
		}
		v.channel.FilterIndex = rec.Value
		v.pending.filtered = append(v.pending.filtered, v.channel)
	case event.PatternColor:
		if err := v.need(rec, v.pattern != nil, "pattern"); err != nil {
			return err
		}
		v.pattern.Color = flp.ColorFromUint32(rec.Value)
	}
	return nil
}

func (v *visitor) visitData(rec event.Record) error {
	switch rec.Tag {
	case event.Version:
		s, err := v.text(rec)
		if err != nil {
			return err
		}
		v.project.Version = s
		v.extended = flp.ParseVersion(s).ExtendedItems()
	case event.ProjectTime:
		if len(rec.Data) < projectTimeSize {
			return flp.Formatf("%v @0x%X: %d bytes, expected %d", rec.Tag, rec.Offset, len(rec.Data), projectTimeSize)
		}
		created := math.Float64frombits(binary.LittleEndian.Uint64(rec.Data))
		spent := math.Float64frombits(binary.LittleEndian.Uint64(rec.Data[8:]))
		v.project.Time = flp.ProjectTime{
			Created: flp.DaysToTime(created).Round(time.Millisecond),
			Spent:   time.Duration(spent * float64(24*time.Hour)).Round(time.Millisecond),
		}
	case event.ProjectTitle, event.ProjectComment, event.ProjectURL, event.ProjectAuthor, event.ProjectGenre:
		s, err := v.text(rec)
		if err != nil {
			return err
		}
		info := &v.project.Info
		switch rec.Tag {
		case event.ProjectTitle:
			info.Title = s
		case event.ProjectComment:
			info.Comment = s
		case event.ProjectURL:
			info.URL = s
		case event.ProjectAuthor:
			info.Author = s
		case event.ProjectGenre:
			info.Genre = s
		}
	case event.ChanFilterName:
		s, err := v.text(rec)
		if err != nil {
			return err
		}
		v.project.Filters = append(v.project.Filters, &flp.ChannelFilter{Index: uint32(len(v.project.Filters)), Name: s})
	case event.PatternNotes:
		if err := v.need(rec, v.pattern != nil, "pattern"); err != nil {
			return err
		}
		notes, channels, err := readNotes(rec.Data)
		if err != nil {
			return v.at(rec, err)
		}
		v.pattern.Notes = append(v.pattern.Notes, notes...)
		v.pending.noteChannels[v.pattern] = append(v.pending.noteChannels[v.pattern], channels...)
	case event.PatternName:
		if err := v.need(rec, v.pattern != nil, "pattern"); err != nil {
			return err
		}
		s, err := v.text(rec)
		if err != nil {
			return err
		}
		v.pattern.Name = s
	case event.PluginName:
		if !v.channelOwnsNames {
			break
		}
		s, err := v.text(rec)
		if err != nil {
			return err
		}
		v.channel.Name = s
	case event.AutomationData:
		if err := v.need(rec, v.channel != nil, "channel"); err != nil {
			return err
		}
		data, err := readCurve(rec.Data, v.project.PPQN)
		if err != nil {
			return v.at(rec, err)
		}
		for i, p := range data.Points {
			if p.Curve > flp.MaxCurveType {
				v.diagnose(rec, flp.UnknownValue, "point %d has curve type %d", i, uint8(p.Curve))
			}
		}
		v.channel.AutoData = data
	case event.AutomationConnection:
		c, err := readConnection(rec.Data)
		if err != nil {
			return v.at(rec, err)
		}
		c.offset = rec.Offset
		v.pending.connections = append(v.pending.connections, c)
	case event.ArrangementName:
		if err := v.need(rec, v.arrangement != nil, "arrangement"); err != nil {
			return err
		}
		s, err := v.text(rec)
		if err != nil {
			return err
		}
		v.arrangement.Name = s
	case event.PlaylistItems:
		if err := v.need(rec, v.arrangement != nil, "arrangement"); err != nil {
			return err
		}
		items, raws, err := readItems(rec.Data, v.extended)
		if err != nil {
			return v.at(rec, err)
		}
		v.arrangement.Items = append(v.arrangement.Items, items...)
		v.pending.items[v.arrangement] = append(v.pending.items[v.arrangement], raws...)
	case event.NewPlaylistTrack:
		if err := v.need(rec, v.arrangement != nil, "arrangement"); err != nil {
			return err
		}
		if v.trackSlot >= flp.NumPlaylistTracks {
			return flp.Formatf("%v @0x%X: arrangement %d already has %d tracks", rec.Tag, rec.Offset, v.arrangement.Index, flp.NumPlaylistTracks)
		}
		v.track = &v.arrangement.Tracks[v.trackSlot]
		v.trackSlot++
		if err := readTrack(rec.Data, v.track); err != nil {
			return v.at(rec, err)
		}
	case event.PlaylistTrackName:
		if err := v.need(rec, v.track != nil, "playlist track"); err != nil {
			return err
		}
		s, err := v.text(rec)
		if err != nil {
			return err
		}
		v.track.Name = s
	case event.TimeMarkerName:
		if err := v.need(rec, v.marker != nil, "marker"); err != nil {
			return err
		}
		s, err := v.text(rec)
		if err != nil {
			return err
		}
		v.marker.marker.Name = s
	}
	return nil
}

// need fails when an event arrives before the entity it applies to.
func (v *visitor) need(rec event.Record, ok bool, owner string) error {
	if ok {
		return nil
	}
	return flp.Formatf("%v @0x%X: no current %s", rec.Tag, rec.Offset, owner)
}

func (v *visitor) text(rec event.Record) (string, error) {
	s, err := event.DecodeText(rec.Tag, rec.Data)
	if err != nil {
		return "", v.at(rec, err)
	}
	return s, nil
}

func (v *visitor) at(rec event.Record, err error) error {
	return fault.Wrap(err, fmsg.With(fmt.Sprintf("%v @0x%X", rec.Tag, rec.Offset)))
}

func (v *visitor) diagnose(rec event.Record, kind flp.DiagnosticKind, format string, args ...any) {
	v.project.Diagnostics = append(v.project.Diagnostics, flp.Diagnostic{
		Offset: rec.Offset,
		Kind:   kind,
		Tag:    uint8(rec.Tag),
		Detail: fmt.Sprintf(format, args...),
	})
}
