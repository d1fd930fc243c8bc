// Package flp holds the in-memory entity graph of a project file: patterns
// and their notes, instrument and automation channels, playlist arrangements
// with their items, markers and tracks, and automation curves.
//
// Decoding produces a Project, whose channels are lightweight ReadChannels.
// Encoding consumes a Song, whose channels are fully configured WriteChannels
// and Automations. The binary codec itself lives in the codec package.
package flp

import (
	"fmt"
	"strconv"
	"strings"
)

// Version selects the byte layout the writer produces. The two supported
// revisions differ in the size of playlist item records and in a few theme
// related events.
type Version int

const (
	V20_9_2 Version = iota // 20.9.2 build 2963, 32 byte playlist items
	V21_0_3                // 21.0.3 build 3517, 60 byte playlist items
)

const (
	// NumPlaylistTracks is the fixed number of tracks every arrangement has.
	NumPlaylistTracks = 500
	// PatternItemBase is added to a pattern ID in the identity field of a
	// playlist item; values at or below it are channel indices.
	PatternItemBase = 0x5000
	// MaxMarkerTick is the largest tick a marker can be placed at; the top
	// byte of the packed marker value holds its type.
	MaxMarkerTick = 0xFFFFFF
)

// String returns the version text the writer stores in the project.
func (v Version) String() string {
	switch v {
	case V20_9_2:
		return "20.9.2.2963"
	case V21_0_3:
		return "21.0.3.3517"
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// ExtendedItems reports whether playlist items use the 60 byte layout.
func (v Version) ExtendedItems() bool {
	return v >= V21_0_3
}

// ParseVersion maps the version text found in a project to the layout it
// implies. Anything from major version 21 on uses the extended layout.
func ParseVersion(s string) Version {
	major, _, _ := strings.Cut(s, ".")
	if n, err := strconv.Atoi(major); err == nil && n >= 21 {
		return V21_0_3
	}
	return V20_9_2
}
