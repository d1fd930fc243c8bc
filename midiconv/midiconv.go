// Package midiconv builds songs from Standard MIDI Files.
//
// Every MIDI channel used by a track becomes a MIDI Out channel playing the
// same MIDI channel, and every track with notes becomes a pattern placed at
// the start of the arrangement on its own playlist track. The first tempo
// and meter set the project tempo and time signature; later changes become
// a tempo automation clip and time signature markers.
package midiconv

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/flpkit/flp"
)

// Options control the conversion. The zero value gives a song at
// flp.DefaultPPQN with an arrangement named "Arrangement".
type Options struct {
	PPQN        uint16          `yaml:"ppqn,omitempty"`
	Arrangement string          `yaml:"arrangement,omitempty"`
	Filter      string          `yaml:"filter,omitempty"`
	Info        flp.ProjectInfo `yaml:"info,omitempty"`
}

var (
	ErrTimeFormat    = fault.New("only metric time formats can be converted")
	ErrTooManyTracks = fault.New("too many tracks for one arrangement")
)

// ReadFile converts the MIDI file at path.
func ReadFile(path string, opts Options) (*flp.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("could not open %v", path)))
	}
	defer f.Close()
	song, err := Read(f, opts)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("could not convert %v", path)))
	}
	return song, nil
}

// Read converts a MIDI file read from r.
func Read(r io.Reader, opts Options) (*flp.Song, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("could not read the MIDI file"), ftag.With(ftag.InvalidArgument))
	}
	return Convert(s, opts)
}

type channelKey struct {
	track   int
	channel uint8
}

type openNote struct {
	tick  uint32
	index int
}

// converter holds the state of one conversion.
type converter struct {
	opts       Options
	resolution uint64
	song       *flp.Song
	filter     *flp.ChannelFilter
	channels   map[channelKey]*flp.WriteChannel
	programs   map[channelKey]uint8
	tempos     []change[float64]
	meters     []change[[2]uint8]
}

type change[T any] struct {
	tick  uint32
	value T
}

// Convert builds a song from s.
func Convert(s *smf.SMF, opts Options) (*flp.Song, error) {
	tf, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || tf == 0 {
		return nil, fault.Wrap(ErrTimeFormat, fmsg.With(fmt.Sprintf("time format %v", s.TimeFormat)), ftag.With(ftag.InvalidArgument))
	}
	if opts.PPQN == 0 {
		opts.PPQN = flp.DefaultPPQN
	}
	if opts.Arrangement == "" {
		opts.Arrangement = "Arrangement"
	}
	if opts.Filter == "" {
		opts.Filter = "Unsorted"
	}
	c := &converter{
		opts:       opts,
		resolution: uint64(tf),
		song:       flp.NewSong(opts.PPQN),
		channels:   map[channelKey]*flp.WriteChannel{},
		programs:   map[channelKey]uint8{},
	}
	c.song.Info = opts.Info
	c.filter = c.song.NewFilter(opts.Filter)
	arr := c.song.NewArrangement(opts.Arrangement)
	var length uint32
	for i, track := range s.Tracks {
		p, err := c.track(i, track)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if l := p.Length(); l > length {
			length = l
		}
		row, err := nextTrack(arr)
		if err != nil {
			return nil, err
		}
		arr.AddPattern(p, 0, p.Length(), row)
	}
	if err := c.meter(arr); err != nil {
		return nil, err
	}
	if err := c.tempo(arr, length); err != nil {
		return nil, err
	}
	return c.song, nil
}

// tick scales an absolute MIDI tick to the song resolution.
func (c *converter) tick(abs uint64) uint32 {
	return uint32((abs*uint64(c.opts.PPQN) + c.resolution/2) / c.resolution)
}

// track converts the notes of one MIDI track into a pattern, or returns nil
// if the track has none.
func (c *converter) track(index int, track smf.Track) (*flp.Pattern, error) {
	var name string
	var abs uint64
	var notes []flp.Note
	open := map[[2]uint8][]openNote{}
	for _, ev := range track {
		abs += uint64(ev.Delta)
		tick := c.tick(abs)
		msg := ev.Message
		var ch, key, vel uint8
		var bpm float64
		var num, denom uint8
		switch {
		case msg.GetMetaTrackName(&name):
		case msg.GetMetaTempo(&bpm):
			c.tempos = append(c.tempos, change[float64]{tick, bpm})
		case msg.GetMetaMeter(&num, &denom):
			c.meters = append(c.meters, change[[2]uint8]{tick, [2]uint8{num, denom}})
		case msg.GetProgramChange(&ch, &key):
			k := channelKey{index, ch}
			if _, ok := c.programs[k]; !ok {
				c.programs[k] = key
			}
		case msg.GetNoteOn(&ch, &key, &vel) && vel > 0:
			n := flp.NewNote(c.channel(index, ch), tick, key)
			n.Velocity = vel
			open[[2]uint8{ch, key}] = append(open[[2]uint8{ch, key}], openNote{tick, len(notes)})
			notes = append(notes, n)
		case msg.GetNoteOn(&ch, &key, &vel), msg.GetNoteOff(&ch, &key, &vel):
			stack := open[[2]uint8{ch, key}]
			if len(stack) == 0 {
				break
			}
			o := stack[0]
			open[[2]uint8{ch, key}] = stack[1:]
			notes[o.index].Duration = max(tick-o.tick, 1)
		}
	}
	end := c.tick(abs)
	for _, stack := range open {
		for _, o := range stack {
			notes[o.index].Duration = max(end-o.tick, 1)
		}
	}
	if len(notes) == 0 {
		return nil, nil
	}
	if name == "" {
		name = fmt.Sprintf("Track %d", index)
	}
	c.name(index, name)
	p := c.song.NewPattern()
	p.Name = name
	p.Notes = notes
	p.SortNotes()
	return p, nil
}

// channel returns the song channel for a MIDI channel of a track, creating
// it on first use.
func (c *converter) channel(track int, ch uint8) *flp.WriteChannel {
	k := channelKey{track, ch}
	if wc, ok := c.channels[k]; ok {
		return wc
	}
	wc := c.song.NewChannel("", ch, 0, 0, c.filter)
	c.channels[k] = wc
	return wc
}

// name names the channels of a track once the whole track is read, since
// the name and program events may come after the first note.
func (c *converter) name(track int, name string) {
	var keys []channelKey
	for k := range c.channels {
		if k.track == track {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].channel < keys[j].channel })
	for _, k := range keys {
		wc := c.channels[k]
		wc.Name = name
		if len(keys) > 1 {
			wc.Name = fmt.Sprintf("%s (%d)", name, k.channel+1)
		}
		wc.MIDIProgram = c.programs[k]
	}
}

func (c *converter) meter(arr *flp.Arrangement) error {
	sort.SliceStable(c.meters, func(i, j int) bool { return c.meters[i].tick < c.meters[j].tick })
	for i, m := range c.meters {
		if i == 0 && m.tick == 0 {
			c.song.TimeSig = flp.TimeSignature{Numerator: m.value[0], Beat: m.value[1]}
			continue
		}
		if _, err := arr.AddTimeSigMarker(m.tick, m.value[0], m.value[1]); err != nil {
			return err
		}
	}
	return nil
}

// tempo sets the song tempo and, when it changes later on, adds a tempo
// automation clip spanning length ticks.
func (c *converter) tempo(arr *flp.Arrangement, length uint32) error {
	sort.SliceStable(c.tempos, func(i, j int) bool { return c.tempos[i].tick < c.tempos[j].tick })
	var points []change[float64]
	for _, t := range c.tempos {
		if n := len(points); n > 0 && points[n-1].tick == t.tick {
			points[n-1] = t
			continue
		}
		points = append(points, t)
	}
	if len(points) == 0 {
		return nil
	}
	if points[0].tick == 0 {
		c.song.Tempo = points[0].value
	}
	if len(points) == 1 && points[0].tick == 0 {
		return nil
	}
	auto, err := c.song.NewAutomation("Tempo", flp.AutomationTempo, nil, c.filter)
	if err != nil {
		return err
	}
	for _, p := range points {
		auto.Data.AddTempoPoint(p.tick, p.value)
	}
	if err := auto.Data.PadTempoPoints(max(length, auto.Data.Length()), c.song.Tempo); err != nil {
		return err
	}
	row, err := nextTrack(arr)
	if err != nil {
		return err
	}
	arr.AddAutomation(auto, 0, auto.Data.Length(), row)
	return nil
}

// nextTrack returns the first track after the ones already holding an item.
func nextTrack(arr *flp.Arrangement) (*flp.PlaylistTrack, error) {
	if len(arr.Items) >= flp.NumPlaylistTracks {
		return nil, fault.Wrap(ErrTooManyTracks, fmsg.With(fmt.Sprintf("arrangement %q already uses all %d tracks", arr.Name, flp.NumPlaylistTracks)), ftag.With(ftag.InvalidArgument))
	}
	return arr.Track(uint16(len(arr.Items) + 1)), nil
}
