package codec_test

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/flpkit/flp"
	"github.com/flpkit/flp/codec"
	"github.com/flpkit/flp/event"
)

func newTestSong(t testing.TB) *flp.Song {
	t.Helper()
	s := flp.NewSong(flp.DefaultPPQN)
	s.Tempo = 128.5
	s.Time = flp.ProjectTime{Created: time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC), Spent: 90 * time.Minute}
	s.Info = flp.ProjectInfo{Title: "Test song", Author: "someone"}
	unsorted := s.NewFilter("Unsorted")
	autos := s.NewFilter("Automation")
	lead := s.NewChannel("Lead", 0, 0, 81, unsorted)
	bass := s.NewChannel("Bass", 1, 2, 33, unsorted)
	bass.Pan = 3200
	bass.PitchBendRange = 12
	vol, err := s.NewAutomation("Volume", flp.AutomationVolume, []*flp.WriteChannel{lead, bass}, autos)
	if err != nil {
		t.Fatalf("NewAutomation failed: %v", err)
	}
	vol.Data.AddPoint(0, 0.8)
	vol.Data.AddPoint(96, 0.5)
	vol.Data.Points[1].Tension = 0.25
	vol.Data.Points[1].Curve = flp.CurveSingle
	tempo, err := s.NewAutomation("Tempo", flp.AutomationTempo, nil, autos)
	if err != nil {
		t.Fatalf("NewAutomation failed: %v", err)
	}
	tempo.Data.AddTempoPoint(0, 120)
	tempo.Data.AddTempoPoint(384, 140)

	intro := s.NewPattern()
	intro.Name = "Intro"
	intro.AddNote(flp.NewNote(lead, 96, 64))
	n := flp.NewNote(bass, 0, 36)
	n.Color, n.Portamento, n.Slide = 3, true, true
	intro.AddNote(n)
	intro.AddNote(flp.NewNote(lead, 0, 60))
	m, err := flp.NewTimeSigMarker(96, 3, 4)
	if err != nil {
		t.Fatalf("NewTimeSigMarker failed: %v", err)
	}
	intro.Markers = append(intro.Markers, m)
	s.NewPattern() // empty, without properties

	arr := s.NewArrangement("Arrangement")
	arr.Tracks[0].Name = "Drums"
	arr.Tracks[0].Color = flp.Color{R: 200, G: 10, B: 10}
	arr.Tracks[0].Collapsed = true
	arr.Tracks[1].GroupWithAbove = true
	arr.Tracks[1].Size = 2
	arr.Tracks[2].Icon = 7
	arr.AddPattern(intro, 384, 192, arr.Track(2))
	item := arr.AddPattern(intro, 0, 192, arr.Track(1))
	item.Range = flp.TickRange{Start: 0, End: 96}
	item.Flags = flp.ItemSelected
	clip := arr.AddAutomation(tempo, 0, 384, arr.Track(500))
	clip.Fades = &flp.AudioFades{FadeIn: 0.5, Gain: 1}
	if _, err := arr.AddTimeSigMarker(0, 4, 4); err != nil {
		t.Fatalf("AddTimeSigMarker failed: %v", err)
	}
	loop, err := flp.NewMarker(768, flp.MarkerLoop, "")
	if err != nil {
		t.Fatalf("NewMarker failed: %v", err)
	}
	arr.Markers = append(arr.Markers, loop)
	s.NewArrangement("Second")
	return s
}

// expectedProject is what decoding an encoded song must produce. It has to
// be built after encoding, which sorts notes and items.
func expectedProject(s *flp.Song, v flp.Version) *flp.Project {
	p := &flp.Project{
		PPQN:        s.PPQN,
		NumChannels: uint16(s.NumChannels()),
		Version:     v.String(),
		Tempo:       s.Tempo,
		Time:        s.Time,
		Info:        s.Info,
		TimeSig:     s.TimeSig,
	}
	for _, f := range s.Filters {
		p.Filters = append(p.Filters, &flp.ChannelFilter{Index: f.Index, Name: f.Name})
	}
	channels := make([]*flp.ReadChannel, s.NumChannels())
	for _, c := range s.Channels {
		rc := flp.NewReadChannel(c.ChannelIndex())
		rc.Name, rc.Type, rc.Color = c.Name, flp.ChannelFruityWrapper, c.Color
		rc.FilterIndex, rc.Filter = c.Filter.Index, p.Filters[c.Filter.Index]
		channels[c.ChannelIndex()] = rc
	}
	for _, a := range s.Automations {
		rc := flp.NewReadChannel(a.ChannelIndex())
		rc.Name, rc.Type, rc.Color = a.Name, flp.ChannelAutomation, a.Color
		rc.FilterIndex, rc.Filter = a.Filter.Index, p.Filters[a.Filter.Index]
		data := &flp.AutomationData{Points: append([]flp.AutomationPoint{}, a.Data.Points...)}
		data.Points[0].Curve = 0
		rc.AutoData = data
		channels[a.ChannelIndex()] = rc
	}
	for _, a := range s.Automations {
		link := &flp.AutomationLink{Kind: a.Kind}
		for _, t := range a.Targets {
			link.Targets = append(link.Targets, channels[t.ChannelIndex()])
		}
		channels[a.ChannelIndex()].Automation = link
	}
	p.Channels = channels
	for _, pat := range s.Patterns {
		np := flp.NewPattern(pat.Index)
		np.Name, np.Color = pat.Name, pat.Color
		for _, n := range pat.Notes {
			n.Channel = channels[n.Channel.ChannelIndex()]
			np.Notes = append(np.Notes, n)
		}
		for _, m := range pat.Markers {
			c := *m
			np.Markers = append(np.Markers, &c)
		}
		p.Patterns = append(p.Patterns, np)
	}
	for _, a := range s.Arrangements {
		na := flp.NewArrangement(a.Index, a.Name)
		na.Tracks = a.Tracks
		for _, item := range a.Items {
			ni := &flp.PlaylistItem{
				Tick:     item.Tick,
				Duration: item.Duration,
				Range:    item.Range,
				Track:    &na.Tracks[item.Track.Index()],
				Flags:    item.Flags,
			}
			if item.Pattern != nil {
				ni.Pattern = p.Patterns[item.Pattern.Index]
			} else {
				ni.Channel = channels[item.Channel.ChannelIndex()]
			}
			if v.ExtendedItems() && item.Fades != nil && *item.Fades != flp.DefaultAudioFades() {
				f := *item.Fades
				ni.Fades = &f
			}
			na.Items = append(na.Items, ni)
		}
		for _, m := range a.Markers {
			c := *m
			na.Markers = append(na.Markers, &c)
		}
		p.Arrangements = append(p.Arrangements, na)
	}
	return p
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []flp.Version{flp.V20_9_2, flp.V21_0_3} {
		t.Run(v.String(), func(t *testing.T) {
			song := newTestSong(t)
			b, err := codec.Encode(song, v)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			got, err := codec.Decode(b)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			expected := expectedProject(song, v)
			if !got.Time.Created.Equal(expected.Time.Created) || got.Time.Spent != expected.Time.Spent {
				t.Fatalf("got project time %v, expected %v", got.Time, expected.Time)
			}
			got.Time, expected.Time = flp.ProjectTime{}, flp.ProjectTime{}
			if len(got.Diagnostics) > 0 {
				t.Fatalf("unexpected diagnostics: %v", got.Diagnostics)
			}
			for i := range expected.Patterns {
				if !reflect.DeepEqual(got.Patterns[i], expected.Patterns[i]) {
					t.Fatalf("pattern %d: got %+v, expected %+v", i, got.Patterns[i], expected.Patterns[i])
				}
			}
			for i := range expected.Channels {
				if !reflect.DeepEqual(got.Channels[i], expected.Channels[i]) {
					t.Fatalf("channel %d: got %+v, expected %+v", i, got.Channels[i], expected.Channels[i])
				}
			}
			if !reflect.DeepEqual(got, expected) {
				t.Fatalf("decoded project differs from the encoded song")
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	for _, v := range []flp.Version{flp.V20_9_2, flp.V21_0_3} {
		song := newTestSong(t)
		first, err := codec.Encode(song, v)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		second, err := codec.Encode(song, v)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("%v: encoding the same song twice gave different bytes", v)
		}
	}
}

func TestItemLayoutPerVersion(t *testing.T) {
	for _, c := range []struct {
		version     flp.Version
		itemSize    int
		pluginTheme int
		trackTheme  int
	}{
		{flp.V20_9_2, 32, 0, 0},
		{flp.V21_0_3, 60, 4, 2 * flp.NumPlaylistTracks},
	} {
		song := newTestSong(t)
		b, err := codec.Encode(song, c.version)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		items := findRecords(t, b, event.PlaylistItems)
		if len(items) != 2 || len(items[1].Data) != 0 {
			t.Fatalf("%v: got %d item arrays, expected one per arrangement", c.version, len(items))
		}
		if n := len(song.Arrangements[0].Items); len(items[0].Data) != n*c.itemSize {
			t.Fatalf("%v: got %d bytes for %d items, expected %d", c.version, len(items[0].Data), n, n*c.itemSize)
		}
		if got := len(findRecords(t, b, event.PluginIgnoresTheme)); got != c.pluginTheme {
			t.Fatalf("%v: got %d PluginIgnoresTheme events, expected %d", c.version, got, c.pluginTheme)
		}
		if got := len(findRecords(t, b, event.PlaylistTrackIgnoresTheme)); got != c.trackTheme {
			t.Fatalf("%v: got %d PlaylistTrackIgnoresTheme events, expected %d", c.version, got, c.trackTheme)
		}
	}
}

func TestDefaultPatternProperties(t *testing.T) {
	song := newTestSong(t)
	b, err := codec.Encode(song, flp.V20_9_2)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// only the first pattern has a name, markers or a colour of its own
	colors := findRecords(t, b, event.PatternColor)
	if len(colors) != 1 {
		t.Fatalf("got %d PatternColor events, expected 1", len(colors))
	}
	if got := len(findRecords(t, b, event.PatternName)); got != 1 {
		t.Fatalf("got %d PatternName events, expected 1", got)
	}
	song.Patterns[1].Color = flp.Color{R: 1, G: 2, B: 3}
	b, err = codec.Encode(song, flp.V20_9_2)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	colors = findRecords(t, b, event.PatternColor)
	if len(colors) != 2 || colors[1].Value != 0x030201 {
		t.Fatalf("got %v, expected a second PatternColor of 0x030201", colors)
	}
}

func TestEncodeEmptySong(t *testing.T) {
	b, err := codec.Encode(flp.NewSong(flp.DefaultPPQN), flp.V20_9_2)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	p, err := codec.Decode(b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.NumChannels != 1 || len(p.Channels) != 0 || p.Tempo != 140 {
		t.Fatalf("got %d header channels, %d channels and %v BPM, expected 1, 0 and 140", p.NumChannels, len(p.Channels), p.Tempo)
	}
}

func FuzzDecode(f *testing.F) {
	for _, v := range []flp.Version{flp.V20_9_2, flp.V21_0_3} {
		b, err := codec.Encode(newTestSong(f), v)
		if err != nil {
			f.Fatalf("Encode failed: %v", err)
		}
		f.Add(b)
	}
	f.Fuzz(func(t *testing.T, b []byte) {
		p, err := codec.Decode(b)
		if err == nil && p == nil {
			t.Fatalf("Decode returned neither a project nor an error")
		}
		if err != nil && p != nil {
			t.Fatalf("Decode returned a partial project with error %v", err)
		}
	})
}
