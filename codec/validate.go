package codec

import (
	"math"

	"github.com/flpkit/flp"
	"github.com/flpkit/flp/event"
)

// validate checks everything the writer relies on before a single byte is
// emitted, and collects channels and automations by index.
func (e *encoder) validate() error {
	s := e.song
	if s.PPQN == 0 {
		return flp.InvalidStatef("PPQN is 0")
	}
	if !(s.Tempo > 0 && flp.FineTempo(s.Tempo) > 0 && s.Tempo*1000 <= math.MaxUint32) {
		return flp.InvalidStatef("tempo %v BPM cannot be stored", s.Tempo)
	}
	n := s.NumChannels()
	if n > event.MaxChannels {
		return flp.InvalidStatef("%d channels, at most %d are allowed", n, event.MaxChannels)
	}
	for i, f := range s.Filters {
		if f == nil || f.Index != uint32(i) {
			return flp.InvalidStatef("filter %d is not at its own index", i)
		}
	}
	e.channels = make([]flp.ChannelRef, n)
	add := func(c flp.ChannelRef) error {
		index := int(c.ChannelIndex())
		if index >= n || e.channels[index] != nil {
			return flp.InvalidStatef("channel %v has index %d, which was not assigned by the song", c, index)
		}
		e.channels[index] = c
		return nil
	}
	for _, c := range s.Channels {
		if err := add(c); err != nil {
			return err
		}
		if err := e.validateFilter(c.Name, c.Filter); err != nil {
			return err
		}
	}
	for _, a := range s.Automations {
		if err := add(a); err != nil {
			return err
		}
		if err := e.validateFilter(a.Name, a.Filter); err != nil {
			return err
		}
	}
	for _, a := range s.Automations {
		if err := e.validateAutomation(a); err != nil {
			return err
		}
	}
	for i, p := range s.Patterns {
		if p == nil || int(p.Index) != i {
			return flp.InvalidStatef("pattern %d is not at its own index", i)
		}
		if err := e.validatePattern(p); err != nil {
			return err
		}
	}
	for i, a := range s.Arrangements {
		if a == nil || int(a.Index) != i {
			return flp.InvalidStatef("arrangement %d is not at its own index", i)
		}
		if err := e.validateArrangement(a); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) validateFilter(owner string, f *flp.ChannelFilter) error {
	if f == nil {
		return flp.InvalidStatef("%q has no filter", owner)
	}
	if uint64(f.Index) >= uint64(len(e.song.Filters)) || e.song.Filters[f.Index] != f {
		return flp.InvalidStatef("%q uses filter %q, which is not part of the song", owner, f.Name)
	}
	return nil
}

// known reports whether c is one of the song's channels or automations.
func (e *encoder) known(c flp.ChannelRef) bool {
	index := int(c.ChannelIndex())
	return index < len(e.channels) && e.channels[index] == c
}

func (e *encoder) validateAutomation(a *flp.Automation) error {
	if a.Kind > flp.AutomationTempo {
		return flp.InvalidStatef("automation %q has undefined kind %v", a.Name, a.Kind)
	}
	if a.Kind == flp.AutomationTempo {
		if a.Targets != nil {
			return flp.InvalidStatef("tempo automation %q has targets", a.Name)
		}
	} else if len(a.Targets) == 0 {
		return flp.InvalidStatef("%v automation %q has no targets", a.Kind, a.Name)
	}
	for _, t := range a.Targets {
		if t == nil || !e.known(t) {
			return flp.InvalidStatef("automation %q targets a channel that is not part of the song", a.Name)
		}
	}
	return validateCurve(a.Name, &a.Data)
}

func (e *encoder) validatePattern(p *flp.Pattern) error {
	for i := range p.Notes {
		n := &p.Notes[i]
		if n.Channel == nil || !e.known(n.Channel) {
			return flp.InvalidStatef("pattern %v: note at tick %d is not on a channel of the song", p, n.Tick)
		}
		if n.Color > 0x0F {
			return flp.InvalidStatef("pattern %v: note at tick %d has colour %d", p, n.Tick, n.Color)
		}
	}
	return validateMarkers(p.Markers)
}

func (e *encoder) validateArrangement(a *flp.Arrangement) error {
	for i, item := range a.Items {
		if item == nil {
			return flp.InvalidStatef("arrangement %d: item %d is nil", a.Index, i)
		}
		switch {
		case item.Pattern == nil && item.Channel == nil:
			return flp.InvalidStatef("arrangement %d: item %d has neither a pattern nor a channel", a.Index, i)
		case item.Pattern != nil && item.Channel != nil:
			return flp.InvalidStatef("arrangement %d: item %d has both a pattern and a channel", a.Index, i)
		case item.Pattern != nil:
			idx := int(item.Pattern.Index)
			if idx >= len(e.song.Patterns) || e.song.Patterns[idx] != item.Pattern {
				return flp.InvalidStatef("arrangement %d: item %d uses a pattern that is not part of the song", a.Index, i)
			}
		default:
			if !e.known(item.Channel) {
				return flp.InvalidStatef("arrangement %d: item %d uses a channel that is not part of the song", a.Index, i)
			}
		}
		if item.Track == nil || a.Track(item.Track.ID()) != item.Track {
			return flp.InvalidStatef("arrangement %d: item %d is not on one of its tracks", a.Index, i)
		}
	}
	for i := range a.Tracks {
		if int(a.Tracks[i].Index()) != i {
			return flp.InvalidStatef("arrangement %d was not created with NewArrangement", a.Index)
		}
		if err := validateTrack(&a.Tracks[i]); err != nil {
			return err
		}
	}
	return validateMarkers(a.Markers)
}

func validateMarkers(markers []*flp.PlaylistMarker) error {
	for _, m := range markers {
		if m == nil {
			return flp.InvalidStatef("nil marker")
		}
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}
