package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/flpkit/flp"
	"github.com/flpkit/flp/defaults"
	"github.com/flpkit/flp/event"
)

// Encoder writes songs in one format version. A nil Tables uses
// defaults.Default().
type Encoder struct {
	Version flp.Version
	Tables  *defaults.Tables
}

// encoder is the state of one Encode call.
type encoder struct {
	version flp.Version
	tables  *defaults.Tables
	song    *flp.Song
	// channels holds channels and automations by index.
	channels []flp.ChannelRef
	w        event.Writer
}

// Encode writes song in version v with the default tables.
func Encode(song *flp.Song, v flp.Version) ([]byte, error) {
	return Encoder{Version: v}.Encode(song)
}

// EncodeFile writes song to path.
func EncodeFile(path string, song *flp.Song, v flp.Version) error {
	b, err := Encode(song, v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fault.Wrap(err, fmsg.With(fmt.Sprintf("could not write %v", path)))
	}
	return nil
}

// Encode checks the song and writes it. Notes of every pattern and items of
// every arrangement are sorted by tick in place first.
func (e Encoder) Encode(song *flp.Song) ([]byte, error) {
	if e.Version != flp.V20_9_2 && e.Version != flp.V21_0_3 {
		return nil, flp.InvalidStatef("unsupported version %v", e.Version)
	}
	tables := e.Tables
	if tables == nil {
		tables = defaults.Default()
	} else if err := tables.Validate(); err != nil {
		return nil, err
	}
	enc := &encoder{version: e.Version, tables: tables, song: song}
	if err := enc.validate(); err != nil {
		return nil, err
	}
	for _, p := range song.Patterns {
		p.SortNotes()
	}
	for _, a := range song.Arrangements {
		a.SortItems()
	}
	enc.writeProject()
	for _, f := range song.Filters {
		enc.w.Text(event.ChanFilterName, f.Name)
	}
	for _, p := range song.Patterns {
		if err := enc.writeNotes(p); err != nil {
			return nil, err
		}
	}
	for _, c := range enc.channels {
		switch c := c.(type) {
		case *flp.WriteChannel:
			enc.writeChannel(c)
		case *flp.Automation:
			enc.writeAutomation(c)
		}
	}
	for _, a := range song.Automations {
		enc.writeConnections(a)
	}
	for _, p := range song.Patterns {
		if p.HasProperties() {
			enc.writePatternProperties(p)
		}
	}
	for _, a := range song.Arrangements {
		if err := enc.writeArrangement(a); err != nil {
			return nil, err
		}
	}
	enc.w.Value(event.CurrentArrangement, 0)
	numChannels := song.NumChannels()
	if numChannels < event.MinChannels {
		numChannels = event.MinChannels
	}
	return enc.w.Bytes(event.Header{NumChannels: uint16(numChannels), PPQN: song.PPQN})
}

func (e *encoder) writeProject() {
	s := e.song
	e.w.Text(event.Version, e.version.String())
	e.w.Value(event.IsRegistered, 1)
	e.w.Value(event.FineTempo, flp.FineTempo(s.Tempo))
	t := make([]byte, 0, projectTimeSize)
	t = binary.LittleEndian.AppendUint64(t, math.Float64bits(flp.TimeToDays(s.Time.Created)))
	t = binary.LittleEndian.AppendUint64(t, math.Float64bits(s.Time.Spent.Hours()/24))
	e.w.Array(event.ProjectTime, t)
	for _, text := range []struct {
		tag   event.Tag
		value string
	}{
		{event.ProjectTitle, s.Info.Title},
		{event.ProjectComment, s.Info.Comment},
		{event.ProjectURL, s.Info.URL},
		{event.ProjectAuthor, s.Info.Author},
		{event.ProjectGenre, s.Info.Genre},
	} {
		if text.value != "" {
			e.w.Text(text.tag, text.value)
		}
	}
	e.w.Value(event.TimeSigNumerator, uint32(s.TimeSig.Numerator))
	e.w.Value(event.TimeSigBeat, uint32(s.TimeSig.Beat))
}

func (e *encoder) writeNotes(p *flp.Pattern) error {
	b := make([]byte, 0, len(p.Notes)*noteSize)
	for i := range p.Notes {
		var err error
		if b, err = appendNote(b, &p.Notes[i]); err != nil {
			return fault.Wrap(err, fmsg.With(fmt.Sprintf("pattern %v", p)))
		}
	}
	e.w.Value(event.NewPattern, uint32(p.ID()))
	e.w.Array(event.PatternNotes, b)
	return nil
}

// channelHead writes the events that open a channel and set up its plugin.
func (e *encoder) channelHead(index uint16, typ flp.ChannelType, plugin *defaults.Plugin, name string, color flp.Color, params []byte) {
	e.w.Value(event.NewChannel, uint32(index))
	e.w.Value(event.ChannelType, uint32(typ))
	e.w.Text(event.DefPluginName, plugin.PluginName)
	e.w.Array(event.NewPlugin, plugin.NewPlugin)
	e.w.Text(event.PluginName, name)
	e.w.Value(event.PluginIcon, 0)
	e.w.Value(event.PluginColor, color.Uint32())
	if e.version >= flp.V21_0_3 {
		e.w.Value(event.PluginIgnoresTheme, 1)
	}
	if len(params) > 0 {
		e.w.Array(event.PluginParams, params)
	}
}

type channelSettings struct {
	plugin   *defaults.Plugin
	pan      uint32
	volume   uint32
	pitch    int32
	rng      int32
	cutCutBy uint32
	filter   *flp.ChannelFilter
}

// channelBody writes the mixer, filter and parameter events every channel
// has.
func (e *encoder) channelBody(s channelSettings) {
	w := &e.w
	w.Value(event.ChannelIsEnabled, 1)
	w.Array(event.Delay, e.tables.Delay)
	w.Value(event.DelayReso, 0x800080)
	w.Value(event.Reverb, 0x10000)
	w.Value(event.ShiftDelay, 0)
	w.Value(event.SwingMix, 0x80)
	w.Value(event.FX, 0x80)
	w.Value(event.FX3, 0x100)
	w.Value(event.CutOff, 0x400)
	w.Value(event.Resonance, 0)
	w.Value(event.PreAmp, 0)
	w.Value(event.Decay, 0)
	w.Value(event.Attack, 0)
	w.Value(event.StDel, 0x800)
	w.Value(event.FXSine, 0x800000)
	w.Value(event.FadeStereo, 0)
	w.Value(event.TargetFXTrack, 0)
	w.Array(event.BasicChannelParams, basicParams(s.pan, s.volume, s.pitch))
	w.Array(event.ChanOfsLevels, e.tables.ChanOfsLevels)
	w.Array(event.ChanPoly, s.plugin.Poly)
	params := s.plugin.ChannelParams.Clone()
	patchInt32(params, s.plugin.RangeOffset, s.rng)
	w.Array(event.ChannelParams, params)
	w.Value(event.CutCutBy, s.cutCutBy)
	w.Value(event.ChannelLayerFlags, 0)
	w.Value(event.ChanFilterNum, s.filter.Index)
}

// channelTail writes the tracking and envelope presets that close a channel.
func (e *encoder) channelTail(plugin *defaults.Plugin) {
	e.w.Value(event.Unk32, 0)
	for _, t := range e.tables.Tracking {
		e.w.Array(event.ChannelTracking, t)
	}
	for _, env := range e.tables.Envelopes {
		e.w.Array(event.ChannelEnvelope, env)
	}
	e.w.Value(event.ChannelSampleFlags, plugin.SampleFlags)
	e.w.Value(event.ChannelLoopType, 0)
}

func (e *encoder) writeChannel(c *flp.WriteChannel) {
	plugin := &e.tables.MIDIOut
	params := plugin.Params.Clone()
	patchByte(params, plugin.ChannelOffset, c.MIDIChannel)
	patchByte(params, plugin.BankOffset, c.MIDIBank)
	patchByte(params, plugin.ProgramOffset, c.MIDIProgram)
	e.channelHead(c.ChannelIndex(), flp.ChannelFruityWrapper, plugin, c.Name, c.Color, params)
	e.channelBody(channelSettings{
		plugin:   plugin,
		pan:      c.Pan,
		volume:   c.Volume,
		pitch:    c.Pitch,
		rng:      c.PitchBendRange,
		cutCutBy: uint32(c.ChannelIndex()+1) * 0x10001,
		filter:   c.Filter,
	})
	e.channelTail(plugin)
}

func (e *encoder) writeAutomation(a *flp.Automation) {
	plugin := &e.tables.Automation
	e.channelHead(a.ChannelIndex(), flp.ChannelAutomation, plugin, a.Name, a.Color, plugin.Params)
	e.channelBody(channelSettings{
		plugin: plugin,
		pan:    flp.DefaultChannelPan,
		volume: flp.DefaultChannelVolume,
		rng:    a.TimeRange,
		filter: a.Filter,
	})
	e.w.Array(event.AutomationData, appendCurve(nil, &a.Data, e.song.PPQN, a.Kind.Signed()))
	e.channelTail(plugin)
}

func (e *encoder) writeConnections(a *flp.Automation) {
	if a.Kind == flp.AutomationTempo {
		e.w.Array(event.AutomationConnection, appendConnection(nil, a.ChannelIndex(), a.Kind, tempoTarget))
		return
	}
	for _, t := range a.Targets {
		e.w.Array(event.AutomationConnection, appendConnection(nil, a.ChannelIndex(), a.Kind, t.ChannelIndex()))
	}
}

func (e *encoder) writePatternProperties(p *flp.Pattern) {
	e.w.Value(event.NewPattern, uint32(p.ID()))
	if p.Name != "" {
		e.w.Text(event.PatternName, p.Name)
	}
	e.w.Value(event.PatternColor, p.Color.Uint32())
	e.w.Value(event.Unk157, math.MaxUint32)
	e.w.Value(event.Unk158, math.MaxUint32)
	for _, m := range p.Markers {
		e.writeMarker(m)
	}
	e.w.Value(event.Unk164, 0)
}

func (e *encoder) writeMarker(m *flp.PlaylistMarker) {
	e.w.Value(event.NewTimeMarker, m.Packed())
	if m.Type == flp.MarkerTimeSig {
		e.w.Value(event.TimeSigMarkerNumerator, uint32(m.Numerator))
		e.w.Value(event.TimeSigMarkerDenominator, uint32(m.Denominator))
	}
	if m.Name != "" {
		e.w.Text(event.TimeMarkerName, m.Name)
	}
}

func (e *encoder) writeArrangement(a *flp.Arrangement) error {
	extended := e.version.ExtendedItems()
	e.w.Value(event.NewArrangement, uint32(a.Index))
	e.w.Text(event.ArrangementName, a.Name)
	e.w.Value(event.Unk36, 0)
	b := make([]byte, 0, len(a.Items)*itemRecordSize(extended))
	for i, item := range a.Items {
		var err error
		if b, err = appendItem(b, item, item.Track.ID(), extended); err != nil {
			return fault.Wrap(err, fmsg.With(fmt.Sprintf("arrangement %d item %d", a.Index, i)))
		}
	}
	e.w.Array(event.PlaylistItems, b)
	for _, m := range a.Markers {
		e.writeMarker(m)
	}
	for i := range a.Tracks {
		t := &a.Tracks[i]
		e.w.Array(event.NewPlaylistTrack, appendTrack(nil, t))
		if e.version >= flp.V21_0_3 {
			e.w.Bool(event.PlaylistTrackIgnoresTheme, t.Color != flp.DefaultTrackColor)
		}
		if t.Name != "" {
			e.w.Text(event.PlaylistTrackName, t.Name)
		}
	}
	return nil
}

func basicParams(pan, volume uint32, pitch int32) []byte {
	b := make([]byte, 0, 24)
	b = binary.LittleEndian.AppendUint32(b, pan)
	b = binary.LittleEndian.AppendUint32(b, volume)
	b = binary.LittleEndian.AppendUint32(b, uint32(pitch))
	b = binary.LittleEndian.AppendUint32(b, 0x100)
	b = binary.LittleEndian.AppendUint32(b, 0)
	return binary.LittleEndian.AppendUint32(b, 0)
}

func patchByte(b []byte, offset int, v uint8) {
	if offset >= 0 {
		b[offset] = v
	}
}

func patchInt32(b []byte, offset int, v int32) {
	if offset >= 0 {
		binary.LittleEndian.PutUint32(b[offset:], uint32(v))
	}
}
