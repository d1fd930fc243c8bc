package codec

import (
	"fmt"

	"github.com/flpkit/flp"
	"github.com/flpkit/flp/event"
)

// resolve binds the raw references collected by the forward pass.
func (v *visitor) resolve() error {
	p := v.project
	for _, pat := range p.Patterns {
		for i, index := range v.pending.noteChannels[pat] {
			ch, ok := v.channels[index]
			if !ok {
				return flp.Linkf("pattern %v: note %d refers to channel %d, which does not exist", pat, i, index)
			}
			pat.Notes[i].Channel = ch
		}
	}
	for _, a := range p.Arrangements {
		for i, raw := range v.pending.items[a] {
			item := a.Items[i]
			if raw.hasPattern {
				pat, ok := v.patterns[raw.patternID]
				if !ok {
					return flp.Linkf("arrangement %d: item %d refers to pattern %d, which does not exist", a.Index, i, raw.patternID)
				}
				item.Pattern = pat
			} else {
				ch, ok := v.channels[raw.channel]
				if !ok {
					return flp.Linkf("arrangement %d: item %d refers to channel %d, which does not exist", a.Index, i, raw.channel)
				}
				item.Channel = ch
			}
			if raw.trackID < 1 || raw.trackID > flp.NumPlaylistTracks {
				return flp.Linkf("arrangement %d: item %d is on track %d", a.Index, i, raw.trackID)
			}
			item.Track = &a.Tracks[raw.trackID-1]
		}
	}
	for _, m := range v.pending.markers {
		if m.marker.Type == flp.MarkerTimeSig && !(m.numerator && m.denominator) {
			return flp.Formatf("time signature marker %q @0x%X is missing its numerator or denominator", m.marker.Name, m.offset)
		}
	}
	for _, c := range v.pending.connections {
		if err := v.connect(c); err != nil {
			return err
		}
	}
	for _, ch := range v.pending.filtered {
		if uint64(ch.FilterIndex) >= uint64(len(p.Filters)) {
			return flp.Linkf("channel %v uses filter %d of %d", ch, ch.FilterIndex, len(p.Filters))
		}
		ch.Filter = p.Filters[ch.FilterIndex]
	}
	return nil
}

func (v *visitor) connect(c rawConnection) error {
	auto, ok := v.channels[c.automation]
	if !ok {
		return flp.Linkf("automation connection @0x%X: channel %d does not exist", c.offset, c.automation)
	}
	kind, ok := connectionKind(c.connType)
	if !ok {
		v.diagnoseConnection(c, "connection type 0x%X", c.connType)
		return nil
	}
	if auto.Automation == nil {
		auto.Automation = &flp.AutomationLink{Kind: kind}
	} else if auto.Automation.Kind != kind {
		v.diagnoseConnection(c, "%v connection on %v automation %v", kind, auto.Automation.Kind, auto)
		return nil
	}
	if kind == flp.AutomationTempo {
		return nil
	}
	target, ok := v.channels[c.target]
	if !ok {
		return flp.Linkf("automation connection @0x%X: target channel %d does not exist", c.offset, c.target)
	}
	auto.Automation.Targets = append(auto.Automation.Targets, target)
	return nil
}

func (v *visitor) diagnoseConnection(c rawConnection, format string, args ...any) {
	v.project.Diagnostics = append(v.project.Diagnostics, flp.Diagnostic{
		Offset: c.offset,
		Kind:   flp.UnknownValue,
		Tag:    uint8(event.AutomationConnection),
		Detail: fmt.Sprintf(format, args...),
	})
}
