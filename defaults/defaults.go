// Package defaults supplies the constant byte tables the writer needs to fill
// in channel blocks: delay, envelope, tracking and polyphony presets and the
// plugin payloads of MIDI Out and automation channels.
//
// The tables are embedded as YAML. A user can override any of them with
// flp/defaults.yml in the user configuration directory.
package defaults

import (
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/flpkit/flp"
)

type (
	// Tables holds every constant blob of a channel block.
	Tables struct {
		Delay         Blob   `yaml:"delay"`
		ChanOfsLevels Blob   `yaml:"chanOfsLevels"`
		Tracking      []Blob `yaml:"tracking"`
		Envelopes     []Blob `yaml:"envelopes"`
		MIDIOut       Plugin `yaml:"midiOut"`
		Automation    Plugin `yaml:"automation"`
	}

	// Plugin holds the blobs that differ between the plugins a channel can
	// host. Offsets of -1 mean the field is not patched.
	Plugin struct {
		PluginName    string `yaml:"pluginName"`
		NewPlugin     Blob   `yaml:"newPlugin"`
		Params        Blob   `yaml:"params"`
		ChannelOffset int    `yaml:"channelOffset"`
		BankOffset    int    `yaml:"bankOffset"`
		ProgramOffset int    `yaml:"programOffset"`
		Poly          Blob   `yaml:"poly"`
		ChannelParams Blob   `yaml:"channelParams"`
		RangeOffset   int    `yaml:"rangeOffset"`
		SampleFlags   uint32 `yaml:"sampleFlags"`
	}

	// Blob is a byte string written in YAML as whitespace separated hex.
	Blob []byte
)

// NumTracking and NumEnvelopes are the number of ChannelTracking and
// ChannelEnvelope events every channel block has.
const (
	NumTracking  = 2
	NumEnvelopes = 5
)

//go:embed defaults.yml
var defaultTablesYaml []byte

var defaultTables = sync.OnceValue(func() *Tables {
	var t Tables
	if err := yaml.UnmarshalStrict(defaultTablesYaml, &t); err != nil {
		panic(fmt.Errorf("failed to unmarshal default tables: %w", err))
	}
	if err := t.Validate(); err != nil {
		panic(fmt.Errorf("invalid default tables: %w", err))
	}
	return &t
})

// Default returns the embedded tables. The result is shared and must not be
// modified.
func Default() *Tables {
	return defaultTables()
}

// Load applies the YAML in b on top of the embedded tables.
func Load(b []byte) (*Tables, error) {
	t := *Default()
	if err := yaml.UnmarshalStrict(b, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadUser loads flp/defaults.yml from the user configuration directory. When
// the file does not exist, it returns the embedded tables and exists = false.
func LoadUser() (tables *Tables, exists bool, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Default(), false, nil
	}
	b, err := os.ReadFile(filepath.Join(configDir, "flp", "defaults.yml"))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, true, err
	}
	tables, err = Load(b)
	return tables, true, err
}

// Validate checks counts and patch offsets.
func (t *Tables) Validate() error {
	if len(t.Tracking) != NumTracking {
		return flp.InvalidStatef("tables: %d tracking blobs, expected %d", len(t.Tracking), NumTracking)
	}
	if len(t.Envelopes) != NumEnvelopes {
		return flp.InvalidStatef("tables: %d envelope blobs, expected %d", len(t.Envelopes), NumEnvelopes)
	}
	if err := t.MIDIOut.validate("midiOut"); err != nil {
		return err
	}
	return t.Automation.validate("automation")
}

func (p *Plugin) validate(name string) error {
	for _, o := range []struct {
		field  string
		offset int
		size   int
		blob   Blob
	}{
		{"channelOffset", p.ChannelOffset, 1, p.Params},
		{"bankOffset", p.BankOffset, 1, p.Params},
		{"programOffset", p.ProgramOffset, 1, p.Params},
		{"rangeOffset", p.RangeOffset, 4, p.ChannelParams},
	} {
		if o.offset == -1 {
			continue
		}
		if o.offset < 0 || o.offset+o.size > len(o.blob) {
			return flp.InvalidStatef("tables: %s.%s %d outside a %d byte blob", name, o.field, o.offset, len(o.blob))
		}
	}
	return nil
}

func (b *Blob) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	d, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return fmt.Errorf("bad hex blob: %w", err)
	}
	*b = d
	return nil
}

func (b Blob) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// String formats the blob the way the YAML stores it.
func (b Blob) String() string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}

// Clone returns a copy of b that can be patched.
func (b Blob) Clone() []byte {
	return append([]byte(nil), b...)
}
