package flp

import (
	"fmt"
	"math"
	"sort"
)

type (
	// Arrangement is a named playlist timeline. Every arrangement has exactly
	// NumPlaylistTracks tracks; the array is allocated with the arrangement and
	// items point into it.
	Arrangement struct {
		Index   uint16
		Name    string
		Items   []*PlaylistItem
		Markers []*PlaylistMarker
		Tracks  [NumPlaylistTracks]PlaylistTrack
	}

	// PlaylistItem places a pattern or a channel clip (e.g. an automation
	// clip) on a track. Exactly one of Pattern and Channel is set.
	//
	// Range selects the part of the source that is played. Pattern items use a
	// TickRange and channel items use a ClipRange; the two share the same bits
	// in the file.
	PlaylistItem struct {
		Tick     uint32
		Duration uint32
		Pattern  *Pattern
		Channel  ChannelRef
		Range    ItemRange
		Track    *PlaylistTrack
		Flags    ItemFlags
		// Fades holds the audio clip fields of the extended item layout; nil
		// means the defaults.
		Fades *AudioFades
	}

	// ItemRange is either a TickRange or a ClipRange.
	ItemRange interface {
		// Bits returns the start and end fields as stored in the file.
		Bits() (start, end uint32)
	}

	// TickRange bounds a pattern item in ticks relative to the pattern start.
	// NoTick in both fields means the item plays the whole pattern.
	TickRange struct {
		Start, End uint32
	}

	// ClipRange bounds a channel clip item. -1 means unset.
	ClipRange struct {
		Start, End float32
	}

	// AudioFades are the audio clip fields that only the extended playlist
	// item layout stores.
	AudioFades struct {
		FadeIn         float32
		FadeOut        float32
		FadeInTension  float32
		FadeOutTension float32
		Gain           float32
		Flags          [2]uint8
	}

	// ItemFlags are the per item flags of a playlist item.
	ItemFlags uint8

	// PlaylistTrack is one row of an arrangement. Index is fixed at
	// construction; ID is Index+1.
	PlaylistTrack struct {
		index uint16

		Size           float32
		GroupWithAbove bool
		// Collapsed only has an effect on the parent of a group.
		Collapsed bool
		Name      string
		Color     Color
		Icon      uint32
	}
)

const (
	ItemDisabled ItemFlags = 1 << 5
	ItemSelected ItemFlags = 1 << 7
)

const (
	// NoTick marks an unset tick bound.
	NoTick = math.MaxUint32
	// NoClipBound marks an unset clip bound.
	NoClipBound = -1
)

const (
	MinTrackSize     = 0
	DefaultTrackSize = 1
	MaxTrackSize     = 25.9249992370605
)

var (
	WholePattern = TickRange{Start: NoTick, End: NoTick}
	WholeClip    = ClipRange{Start: NoClipBound, End: NoClipBound}
)

// NewArrangement returns an arrangement with all its tracks at their
// defaults.
func NewArrangement(index uint16, name string) *Arrangement {
	a := &Arrangement{Index: index, Name: name}
	for i := range a.Tracks {
		a.Tracks[i] = PlaylistTrack{index: uint16(i), Size: DefaultTrackSize, Color: DefaultTrackColor}
	}
	return a
}

// Track returns the track with the given 1-based ID, or nil.
func (a *Arrangement) Track(id uint16) *PlaylistTrack {
	if id < 1 || id > NumPlaylistTracks {
		return nil
	}
	return &a.Tracks[id-1]
}

// AddPattern places the whole of p at tick on track.
func (a *Arrangement) AddPattern(p *Pattern, tick, duration uint32, track *PlaylistTrack) *PlaylistItem {
	item := &PlaylistItem{Tick: tick, Duration: duration, Pattern: p, Range: WholePattern, Track: track}
	a.Items = append(a.Items, item)
	return item
}

// AddAutomation places the clip of an automation channel at tick on track.
func (a *Arrangement) AddAutomation(auto *Automation, tick, duration uint32, track *PlaylistTrack) *PlaylistItem {
	item := &PlaylistItem{Tick: tick, Duration: duration, Channel: auto, Range: WholeClip, Track: track}
	a.Items = append(a.Items, item)
	return item
}

// AddTimeSigMarker adds a time signature change at tick.
func (a *Arrangement) AddTimeSigMarker(tick uint32, num, denom uint8) (*PlaylistMarker, error) {
	m, err := NewTimeSigMarker(tick, num, denom)
	if err != nil {
		return nil, err
	}
	a.Markers = append(a.Markers, m)
	return m, nil
}

// SortItems orders the items by tick, keeping items that start together in
// their current order.
func (a *Arrangement) SortItems() {
	sort.SliceStable(a.Items, func(i, j int) bool { return a.Items[i].Tick < a.Items[j].Tick })
}

func (a *Arrangement) String() string {
	return a.Name
}

// IsPattern reports whether the item is backed by a pattern.
func (i *PlaylistItem) IsPattern() bool {
	return i.Pattern != nil
}

func (r TickRange) Bits() (uint32, uint32) {
	return r.Start, r.End
}

func (r ClipRange) Bits() (uint32, uint32) {
	return math.Float32bits(r.Start), math.Float32bits(r.End)
}

// DefaultAudioFades are the values written when an item has no fades.
func DefaultAudioFades() AudioFades {
	return AudioFades{Gain: 1}
}

func (t *PlaylistTrack) Index() uint16 { return t.index }

func (t *PlaylistTrack) ID() uint16 { return t.index + 1 }

func (t *PlaylistTrack) String() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("#%d", t.ID())
}
