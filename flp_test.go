package flp_test

import (
	"errors"
	"testing"
	"time"

	"github.com/flpkit/flp"
)

func TestParseVersion(t *testing.T) {
	for s, expected := range map[string]flp.Version{
		"20.9.2.2963": flp.V20_9_2,
		"21.0.3.3517": flp.V21_0_3,
		"24.1":        flp.V21_0_3,
		"12.5.1":      flp.V20_9_2,
		"":            flp.V20_9_2,
	} {
		if got := flp.ParseVersion(s); got != expected {
			t.Fatalf("ParseVersion(%q): got %v, expected %v", s, got, expected)
		}
	}
}

func TestMarkerPacking(t *testing.T) {
	m, err := flp.NewMarker(0x123456, flp.MarkerLoop, "Loop")
	if err != nil {
		t.Fatalf("NewMarker failed: %v", err)
	}
	if got := m.Packed(); got != 0x01123456 {
		t.Fatalf("got 0x%X, expected 0x01123456", got)
	}
	back := flp.UnpackMarker(m.Packed())
	if back.Tick != m.Tick || back.Type != m.Type {
		t.Fatalf("got %v at %d, expected %v at %d", back.Type, back.Tick, m.Type, m.Tick)
	}
	if err := m.SetTick(flp.MaxMarkerTick + 1); flp.Kind(err) != flp.InvalidState {
		t.Fatalf("got %v, expected an invalid state error", err)
	}
	if err := m.SetType(flp.MarkerTimeSig); !errors.Is(err, flp.ErrInvalidState) {
		t.Fatalf("got %v, expected SetType to refuse TimeSig", err)
	}
	if err := m.SetType(6); err == nil {
		t.Fatalf("expected SetType to refuse an undefined type")
	}
}

func TestTimeSigMarker(t *testing.T) {
	m, err := flp.NewTimeSigMarker(96, 7, 8)
	if err != nil {
		t.Fatalf("NewTimeSigMarker failed: %v", err)
	}
	if m.Type != flp.MarkerTimeSig || m.Name != "7/8" || m.Numerator != 7 || m.Denominator != 8 {
		t.Fatalf("got %+v, expected a 7/8 marker", m)
	}
	if err := m.SetType(flp.MarkerPause); err != nil {
		t.Fatalf("SetType failed: %v", err)
	}
	if m.Numerator != 0 || m.Denominator != 0 {
		t.Fatalf("SetType should clear the time signature, got %d/%d", m.Numerator, m.Denominator)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	m.Numerator = 3
	if err := m.Validate(); err == nil {
		t.Fatalf("expected a time signature on a pause marker to be rejected")
	}
}

func TestPadPoints(t *testing.T) {
	var d flp.AutomationData
	if err := d.PadPoints(384, 0.5); err == nil {
		t.Fatalf("expected padding an empty curve to fail")
	}
	d.AddPoint(96, 0.25)
	if err := d.PadPoints(384, 0.5); err != nil {
		t.Fatalf("PadPoints failed: %v", err)
	}
	expected := []flp.AutomationPoint{
		{Tick: 0, Value: 0.5, Curve: flp.CurveHold},
		{Tick: 96, Value: 0.25, Curve: flp.CurveHold},
		{Tick: 384, Value: 0.25, Curve: flp.CurveHold},
	}
	if len(d.Points) != len(expected) {
		t.Fatalf("got %v, expected %v", d.Points, expected)
	}
	for i := range expected {
		if d.Points[i] != expected[i] {
			t.Fatalf("got %v, expected %v", d.Points, expected)
		}
	}
	if d.Length() != 384 {
		t.Fatalf("got length %d, expected 384", d.Length())
	}
}

func TestTempoValue(t *testing.T) {
	if v := flp.TempoToValue(flp.MinAutomationTempo); v != 0 {
		t.Fatalf("got %v, expected 0", v)
	}
	if v := flp.TempoToValue(flp.MaxAutomationTempo); v != 1 {
		t.Fatalf("got %v, expected 1", v)
	}
	if bpm := flp.ValueToTempo(flp.TempoToValue(140)); bpm != 140 {
		t.Fatalf("got %v, expected 140", bpm)
	}
}

func TestNewAutomationTargets(t *testing.T) {
	s := flp.NewSong(flp.DefaultPPQN)
	f := s.NewFilter("Unsorted")
	ch := s.NewChannel("Lead", 0, 0, 0, f)
	if _, err := s.NewAutomation("Tempo", flp.AutomationTempo, []*flp.WriteChannel{ch}, f); flp.Kind(err) != flp.InvalidState {
		t.Fatalf("got %v, expected tempo automation with targets to be refused", err)
	}
	if _, err := s.NewAutomation("Volume", flp.AutomationVolume, nil, f); flp.Kind(err) != flp.InvalidState {
		t.Fatalf("got %v, expected volume automation without targets to be refused", err)
	}
	a, err := s.NewAutomation("Volume", flp.AutomationVolume, []*flp.WriteChannel{ch}, f)
	if err != nil {
		t.Fatalf("NewAutomation failed: %v", err)
	}
	if ch.ChannelIndex() != 0 || a.ChannelIndex() != 1 || s.NumChannels() != 2 {
		t.Fatalf("got indices %d and %d, expected 0 and 1", ch.ChannelIndex(), a.ChannelIndex())
	}
}

func TestProjectDays(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	days := flp.TimeToDays(created)
	if days != 45352.5 {
		t.Fatalf("got %v days, expected 45352.5", days)
	}
	if got := flp.DaysToTime(days); !got.Equal(created) {
		t.Fatalf("got %v, expected %v", got, created)
	}
	if !flp.DaysToTime(0).IsZero() || flp.TimeToDays(time.Time{}) != 0 {
		t.Fatalf("0 days should map to the zero time")
	}
}

func TestTrackIDs(t *testing.T) {
	a := flp.NewArrangement(0, "Arrangement")
	if a.Track(0) != nil || a.Track(flp.NumPlaylistTracks+1) != nil {
		t.Fatalf("expected tracks outside 1..%d to be nil", flp.NumPlaylistTracks)
	}
	last := a.Track(flp.NumPlaylistTracks)
	if last.Index() != flp.NumPlaylistTracks-1 || last.ID() != flp.NumPlaylistTracks {
		t.Fatalf("got index %d id %d for the last track", last.Index(), last.ID())
	}
}
