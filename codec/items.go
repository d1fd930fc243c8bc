package codec

import (
	"encoding/binary"
	"math"

	"github.com/flpkit/flp"
)

const (
	itemSize         = 32
	extendedItemSize = 60
	fadesCount       = 3
)

// rawItem holds the numeric references of a decoded playlist item until the
// resolver binds them. Exactly one of hasPattern and hasChannel is set.
type rawItem struct {
	hasPattern bool
	patternID  uint16
	hasChannel bool
	channel    uint16
	trackID    int
}

func itemRecordSize(extended bool) int {
	if extended {
		return extendedItemSize
	}
	return itemSize
}

// readItems decodes a PlaylistItems payload. Sources and tracks are left
// unset; the matching raw references are returned in the same order.
func readItems(b []byte, extended bool) ([]*flp.PlaylistItem, []rawItem, error) {
	size := itemRecordSize(extended)
	if len(b)%size != 0 {
		return nil, nil, flp.Formatf("playlist items: %d bytes is not a multiple of %d", len(b), size)
	}
	n := len(b) / size
	items := make([]*flp.PlaylistItem, n)
	raws := make([]rawItem, n)
	for i := range items {
		r := b[i*size:]
		item := &flp.PlaylistItem{
			Tick:     binary.LittleEndian.Uint32(r),
			Duration: binary.LittleEndian.Uint32(r[8:]),
			Flags:    flp.ItemFlags(r[19]),
		}
		raw := rawItem{trackID: flp.NumPlaylistTracks - int(binary.LittleEndian.Uint16(r[12:]))}
		start := binary.LittleEndian.Uint32(r[24:])
		end := binary.LittleEndian.Uint32(r[28:])
		if ident := binary.LittleEndian.Uint16(r[6:]); ident > flp.PatternItemBase {
			raw.hasPattern, raw.patternID = true, ident-flp.PatternItemBase
			item.Range = flp.TickRange{Start: start, End: end}
		} else {
			raw.hasChannel, raw.channel = true, ident
			item.Range = flp.ClipRange{Start: math.Float32frombits(start), End: math.Float32frombits(end)}
		}
		if extended {
			item.Fades = readFades(r[itemSize:extendedItemSize])
		}
		items[i], raws[i] = item, raw
	}
	return items, raws, nil
}

func readFades(r []byte) *flp.AudioFades {
	f32 := func(o int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(r[o:])) }
	f := flp.AudioFades{
		FadeIn:         f32(4),
		FadeOut:        f32(8),
		FadeInTension:  f32(12),
		FadeOutTension: f32(16),
		Gain:           f32(20),
		Flags:          [2]uint8{r[24], r[25]},
	}
	if f == flp.DefaultAudioFades() {
		return nil
	}
	return &f
}

// appendItem encodes one item. trackID is the ID of the item's track within
// its arrangement, already checked by the caller.
func appendItem(dst []byte, item *flp.PlaylistItem, trackID uint16, extended bool) ([]byte, error) {
	var ident uint16
	var rng flp.ItemRange
	switch {
	case item.Pattern != nil && item.Channel != nil:
		return nil, flp.InvalidStatef("playlist item at tick %d has both a pattern and a channel", item.Tick)
	case item.Pattern != nil:
		ident = flp.PatternItemBase + item.Pattern.ID()
		rng = flp.WholePattern
		if item.Range != nil {
			if _, ok := item.Range.(flp.TickRange); !ok {
				return nil, flp.Schemaf("pattern item at tick %d has a %T range", item.Tick, item.Range)
			}
			rng = item.Range
		}
	case item.Channel != nil:
		ident = item.Channel.ChannelIndex()
		if ident > flp.PatternItemBase {
			return nil, flp.InvalidStatef("channel index %d cannot be placed on a playlist", ident)
		}
		rng = flp.WholeClip
		if item.Range != nil {
			if _, ok := item.Range.(flp.ClipRange); !ok {
				return nil, flp.Schemaf("channel item at tick %d has a %T range", item.Tick, item.Range)
			}
			rng = item.Range
		}
	default:
		return nil, flp.InvalidStatef("playlist item at tick %d has neither a pattern nor a channel", item.Tick)
	}
	start, end := rng.Bits()
	dst = binary.LittleEndian.AppendUint32(dst, item.Tick)
	dst = binary.LittleEndian.AppendUint16(dst, flp.PatternItemBase)
	dst = binary.LittleEndian.AppendUint16(dst, ident)
	dst = binary.LittleEndian.AppendUint32(dst, item.Duration)
	dst = binary.LittleEndian.AppendUint16(dst, flp.NumPlaylistTracks-trackID)
	dst = binary.LittleEndian.AppendUint16(dst, 0)
	dst = append(dst, 120, 0, 64, byte(item.Flags), 64, 100)
	dst = binary.LittleEndian.AppendUint16(dst, 0x8080)
	dst = binary.LittleEndian.AppendUint32(dst, start)
	dst = binary.LittleEndian.AppendUint32(dst, end)
	if !extended {
		return dst, nil
	}
	f := flp.DefaultAudioFades()
	if item.Fades != nil {
		f = *item.Fades
	}
	dst = binary.LittleEndian.AppendUint32(dst, fadesCount)
	for _, v := range []float32{f.FadeIn, f.FadeOut, f.FadeInTension, f.FadeOutTension, f.Gain} {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return append(dst, f.Flags[0], f.Flags[1], 0, 0), nil
}
