package dump_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/flpkit/flp"
	"github.com/flpkit/flp/codec"
	"github.com/flpkit/flp/dump"
	"github.com/flpkit/flp/event"
)

func TestListRecords(t *testing.T) {
	var w event.Writer
	w.Text(event.Version, "20.9.2.2963")
	w.Value(event.FineTempo, 140000)
	w.Value(event.Tag(101), 7)
	w.Array(event.ProjectTime, make([]byte, 16))
	b, err := w.Bytes(event.Header{NumChannels: 2, PPQN: 96})
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	l, err := dump.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	var out bytes.Buffer
	if err := l.Write(&out, b); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, expected 5:\n%v", len(lines), out.String())
	}
	if expected := "FLhd format 0, 2 channels, 96 ppqn"; lines[0] != expected {
		t.Fatalf("got header %q, expected %q", lines[0], expected)
	}
	checks := []string{`"20.9.2.2963"`, "140000 (0x222E0)", "; unknown", "[16] 0000"}
	for i, c := range checks {
		if !strings.Contains(lines[i+1], c) {
			t.Fatalf("line %d is %q, expected it to contain %q", i+1, lines[i+1], c)
		}
	}
	if !strings.HasPrefix(lines[1], "0x00000016 Version") {
		t.Fatalf("got %q, expected the first event at 0x16", lines[1])
	}
}

func TestListMalformed(t *testing.T) {
	l, err := dump.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b := []byte{'F', 'L', 'h', 'd', 6, 0, 0, 0, 0, 0, 1, 0, 96, 0, 'F', 'L', 'd', 't', 2, 0, 0, 0, byte(event.FineTempo), 0}
	var out bytes.Buffer
	if err := l.Write(&out, b); !errors.Is(err, flp.ErrFormat) {
		t.Fatalf("got %v, expected a format error", err)
	}
	if !strings.HasPrefix(out.String(), "FLhd") {
		t.Fatalf("the header should be listed before the error, got %q", out.String())
	}
}

func TestSummarize(t *testing.T) {
	s := flp.NewSong(96)
	f := s.NewFilter("Unsorted")
	ch := s.NewChannel("Bass", 1, 0, 33, f)
	auto, err := s.NewAutomation("Volume", flp.AutomationVolume, []*flp.WriteChannel{ch}, f)
	if err != nil {
		t.Fatalf("NewAutomation failed: %v", err)
	}
	auto.Data.AddPoint(0, 0.5)
	auto.Data.AddPoint(384, 1)
	p := s.NewPattern()
	p.Name = "Intro"
	p.AddNote(flp.NewNote(ch, 0, 60))
	a := s.NewArrangement("Main")
	a.AddPattern(p, 0, 384, a.Track(1))
	a.Tracks[1].Name = "Drums"
	if _, err := a.AddTimeSigMarker(0, 3, 4); err != nil {
		t.Fatalf("AddTimeSigMarker failed: %v", err)
	}
	b, err := codec.Encode(s, flp.V21_0_3)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	project, err := codec.Decode(b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	sum := dump.Summarize(project)
	if sum.Version != "21.0.3.3517" || sum.Tempo != 140 || sum.TimeSig != "4/4" {
		t.Fatalf("got %v %v %v, expected the project values", sum.Version, sum.Tempo, sum.TimeSig)
	}
	if len(sum.Channels) != 2 {
		t.Fatalf("got %d channels, expected 2", len(sum.Channels))
	}
	if c := sum.Channels[1]; c.Automation != "Volume" || !reflect.DeepEqual(c.Targets, []string{"Bass"}) || c.Points != 2 || c.Filter != "Unsorted" {
		t.Fatalf("got %+v, expected a volume automation on Bass", c)
	}
	expected := dump.ArrangementSummary{
		Index:   0,
		Name:    "Main",
		Items:   1,
		Length:  384,
		Markers: []string{"0: TimeSig 3/4"},
		Tracks:  []string{"1: #1", "2: Drums"},
	}
	if !reflect.DeepEqual(sum.Arrangements[0], expected) {
		t.Fatalf("got %+v, expected %+v", sum.Arrangements[0], expected)
	}
	out, err := sum.YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}
	var back dump.Summary
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("could not read back the summary: %v", err)
	}
	if !reflect.DeepEqual(back.Arrangements, sum.Arrangements) {
		t.Fatalf("got %+v, expected %+v", back.Arrangements, sum.Arrangements)
	}
}
