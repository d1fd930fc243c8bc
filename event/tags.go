// Package event reads and writes the low level record stream of a project
// file: the two top level chunks, the 8-bit tags with their implied payload
// widths, the length prefix of array payloads and the text encodings.
package event

import "fmt"

// Tag identifies an event. Its numeric range alone decides how wide the
// payload is, see Width.
type Tag uint8

// Width is the payload class of a tag.
type Width int

const (
	Byte  Width = iota // 1 byte
	Word               // 2 bytes, little endian
	DWord              // 4 bytes, little endian
	Data               // length prefixed byte array
)

// Width thresholds: the first tag of each wider class.
const (
	WordBase  Tag = NewChannel
	DWordBase Tag = PluginColor
	DataBase  Tag = ChannelName
)

const (
	ChannelIsEnabled          Tag = 0
	NoteOn                    Tag = 1
	ChannelVolume             Tag = 2
	ChannelPanpot             Tag = 3
	MIDIChannel               Tag = 4
	MIDINote                  Tag = 5
	MIDIPatch                 Tag = 6
	MIDIBank                  Tag = 7
	LoopActive                Tag = 9
	ShowInfo                  Tag = 10
	Shuffle                   Tag = 11
	MainVolume                Tag = 12
	FitToSteps                Tag = 13
	Pitchable                 Tag = 14
	Zipped                    Tag = 15
	DelayFlags                Tag = 16
	TimeSigNumerator          Tag = 17
	TimeSigBeat               Tag = 18
	UseLoopPoints             Tag = 19
	ChannelLoopType           Tag = 20
	ChannelType               Tag = 21
	TargetFXTrack             Tag = 22
	PanVolTab                 Tag = 23
	NStepsShown               Tag = 24
	SSLength                  Tag = 25
	SSLoop                    Tag = 26
	FXProps                   Tag = 27
	IsRegistered              Tag = 28
	APDC                      Tag = 29
	PlayTruncatedNotes        Tag = 30
	EEAutoMode                Tag = 31
	Unk32                     Tag = 32
	TimeSigMarkerNumerator    Tag = 33
	TimeSigMarkerDenominator  Tag = 34
	Unk35                     Tag = 35
	Unk36                     Tag = 36
	PluginIgnoresTheme        Tag = 39
	PlaylistTrackIgnoresTheme Tag = 40

	NewChannel         Tag = 64
	NewPattern         Tag = 65
	Tempo              Tag = 66
	CurrentPatternNum  Tag = 67
	PatternData        Tag = 68
	FX                 Tag = 69
	FadeStereo         Tag = 70
	CutOff             Tag = 71
	DotVol             Tag = 72
	DotPan             Tag = 73
	PreAmp             Tag = 74
	Decay              Tag = 75
	Attack             Tag = 76
	DotNote            Tag = 77
	DotPitch           Tag = 78
	DotMix             Tag = 79
	MainPitch          Tag = 80
	RandChan           Tag = 81
	MixChan            Tag = 82
	Resonance          Tag = 83
	OldSongLoopPos     Tag = 84
	StDel              Tag = 85
	FX3                Tag = 86
	DotFRes            Tag = 87
	DotFCut            Tag = 88
	ShiftDelay         Tag = 89
	LoopEndBar         Tag = 90
	Dot                Tag = 91
	DotShift           Tag = 92
	TempoFine          Tag = 93
	LayerChan          Tag = 94
	InsertIcon         Tag = 95
	DotRel             Tag = 96
	SwingMix           Tag = 97
	NewInsertSlot      Tag = 98
	NewArrangement     Tag = 99
	CurrentArrangement Tag = 100

	PluginColor        Tag = 128
	PlaylistItem       Tag = 129
	DelayReso          Tag = 130
	FXSine             Tag = 131
	CutCutBy           Tag = 132
	WindowHeight       Tag = 133
	MiddleNote         Tag = 135
	Reserved           Tag = 136
	MainResoCutOff     Tag = 137
	DelayModXY         Tag = 138
	Reverb             Tag = 139
	StretchTime        Tag = 140
	SSNote             Tag = 141
	FineTune           Tag = 142
	ChannelSampleFlags Tag = 143
	ChannelLayerFlags  Tag = 144
	ChanFilterNum      Tag = 145
	CurrentFilterNum   Tag = 146
	InsertOutChanNum   Tag = 147
	NewTimeMarker      Tag = 148
	InsertColor        Tag = 149
	PatternColor       Tag = 150
	PatternAutoMode    Tag = 151
	SongLoopPos        Tag = 152
	AUSampleRate       Tag = 153
	InsertInChanNum    Tag = 154
	PluginIcon         Tag = 155
	FineTempo          Tag = 156
	Unk157             Tag = 157
	Unk158             Tag = 158
	Unk164             Tag = 164

	ChannelName          Tag = 192
	PatternName          Tag = 193
	ProjectTitle         Tag = 194
	ProjectComment       Tag = 195
	SampleFileName       Tag = 196
	ProjectURL           Tag = 197
	CommentRTF           Tag = 198
	Version              Tag = 199
	RegistrationID       Tag = 200
	DefPluginName        Tag = 201
	ProjectDataPath      Tag = 202
	PluginName           Tag = 203
	InsertName           Tag = 204
	TimeMarkerName       Tag = 205
	ProjectGenre         Tag = 206
	ProjectAuthor        Tag = 207
	MIDICtrls            Tag = 208
	Delay                Tag = 209
	TS404Params          Tag = 210
	DelayLine            Tag = 211
	NewPlugin            Tag = 212
	PluginParams         Tag = 213
	Reserved2            Tag = 214
	ChannelParams        Tag = 215
	CtrlRecChan          Tag = 216
	PLSelection          Tag = 217
	ChannelEnvelope      Tag = 218
	BasicChannelParams   Tag = 219
	OldFilterParams      Tag = 220
	ChanPoly             Tag = 221
	PatternNotes         Tag = 224
	MixerParams          Tag = 225
	AutomationConnection Tag = 227
	ChannelTracking      Tag = 228
	ChanOfsLevels        Tag = 229
	RemoteCtrlFormula    Tag = 230
	ChanFilterName       Tag = 231
	PlaylistItems        Tag = 233
	AutomationData       Tag = 234
	InsertRouting        Tag = 235
	InsertParams         Tag = 236
	ProjectTime          Tag = 237
	NewPlaylistTrack     Tag = 238
	PlaylistTrackName    Tag = 239
	ArrangementName      Tag = 241
)

// TextEncoding says how the payload of a Data tag is to be read.
type TextEncoding int

const (
	Binary TextEncoding = iota
	UTF8
	UTF16
)

var names = map[Tag]string{
	ChannelIsEnabled: "ChannelIsEnabled", NoteOn: "NoteOn", ChannelVolume: "ChannelVolume",
	ChannelPanpot: "ChannelPanpot", MIDIChannel: "MIDIChannel", MIDINote: "MIDINote",
	MIDIPatch: "MIDIPatch", MIDIBank: "MIDIBank", LoopActive: "LoopActive", ShowInfo: "ShowInfo",
	Shuffle: "Shuffle", MainVolume: "MainVolume", FitToSteps: "FitToSteps", Pitchable: "Pitchable",
	Zipped: "Zipped", DelayFlags: "DelayFlags", TimeSigNumerator: "TimeSigNumerator",
	TimeSigBeat: "TimeSigBeat", UseLoopPoints: "UseLoopPoints", ChannelLoopType: "ChannelLoopType",
	ChannelType: "ChannelType", TargetFXTrack: "TargetFXTrack", PanVolTab: "PanVolTab",
	NStepsShown: "NStepsShown", SSLength: "SSLength", SSLoop: "SSLoop", FXProps: "FXProps",
	IsRegistered: "IsRegistered", APDC: "APDC", PlayTruncatedNotes: "PlayTruncatedNotes",
	EEAutoMode: "EEAutoMode", Unk32: "Unk_32", TimeSigMarkerNumerator: "TimeSigMarkerNumerator",
	TimeSigMarkerDenominator: "TimeSigMarkerDenominator", Unk35: "Unk_35", Unk36: "Unk_36",
	PluginIgnoresTheme: "PluginIgnoresTheme", PlaylistTrackIgnoresTheme: "PlaylistTrackIgnoresTheme",

	NewChannel: "NewChannel", NewPattern: "NewPattern", Tempo: "Tempo",
	CurrentPatternNum: "CurrentPatternNum", PatternData: "PatternData", FX: "FX",
	FadeStereo: "Fade_Stereo", CutOff: "CutOff", DotVol: "DotVol", DotPan: "DotPan",
	PreAmp: "PreAmp", Decay: "Decay", Attack: "Attack", DotNote: "DotNote", DotPitch: "DotPitch",
	DotMix: "DotMix", MainPitch: "MainPitch", RandChan: "RandChan", MixChan: "MixChan",
	Resonance: "Resonance", OldSongLoopPos: "OldSongLoopPos", StDel: "StDel", FX3: "FX3",
	DotFRes: "DotFRes", DotFCut: "DotFCut", ShiftDelay: "ShiftDelay", LoopEndBar: "LoopEndBar",
	Dot: "Dot", DotShift: "DotShift", TempoFine: "TempoFine", LayerChan: "LayerChan",
	InsertIcon: "InsertIcon", DotRel: "DotRel", SwingMix: "SwingMix", NewInsertSlot: "NewInsertSlot",
	NewArrangement: "NewArrangement", CurrentArrangement: "CurrentArrangement",

	PluginColor: "PluginColor", PlaylistItem: "PlaylistItem", DelayReso: "DelayReso",
	FXSine: "FXSine", CutCutBy: "CutCutBy", WindowHeight: "WindowHeight", MiddleNote: "MiddleNote",
	Reserved: "Reserved", MainResoCutOff: "MainResoCutOff", DelayModXY: "DelayModXY",
	Reverb: "Reverb", StretchTime: "StretchTime", SSNote: "SSNote", FineTune: "FineTune",
	ChannelSampleFlags: "ChannelSampleFlags", ChannelLayerFlags: "ChannelLayerFlags",
	ChanFilterNum: "ChanFilterNum", CurrentFilterNum: "CurrentFilterNum",
	InsertOutChanNum: "InsertOutChanNum", NewTimeMarker: "NewTimeMarker", InsertColor: "InsertColor",
	PatternColor: "PatternColor", PatternAutoMode: "PatternAutoMode", SongLoopPos: "SongLoopPos",
	AUSampleRate: "AUSampleRate", InsertInChanNum: "InsertInChanNum", PluginIcon: "PluginIcon",
	FineTempo: "FineTempo", Unk157: "Unk_157", Unk158: "Unk_158", Unk164: "Unk_164",

	ChannelName: "ChannelName", PatternName: "PatternName", ProjectTitle: "ProjectTitle",
	ProjectComment: "ProjectComment", SampleFileName: "SampleFileName", ProjectURL: "ProjectURL",
	CommentRTF: "CommentRTF", Version: "Version", RegistrationID: "RegistrationID",
	DefPluginName: "DefPluginName", ProjectDataPath: "ProjectDataPath", PluginName: "PluginName",
	InsertName: "InsertName", TimeMarkerName: "TimeMarkerName", ProjectGenre: "ProjectGenre",
	ProjectAuthor: "ProjectAuthor", MIDICtrls: "MIDICtrls", Delay: "Delay",
	TS404Params: "TS404Params", DelayLine: "DelayLine", NewPlugin: "NewPlugin",
	PluginParams: "PluginParams", Reserved2: "Reserved2", ChannelParams: "ChannelParams",
	CtrlRecChan: "CtrlRecChan", PLSelection: "PLSelection", ChannelEnvelope: "ChannelEnvelope",
	BasicChannelParams: "BasicChannelParams", OldFilterParams: "OldFilterParams",
	ChanPoly: "ChanPoly", PatternNotes: "PatternNotes", MixerParams: "MixerParams",
	AutomationConnection: "AutomationConnection", ChannelTracking: "ChannelTracking",
	ChanOfsLevels: "ChanOfsLevels", RemoteCtrlFormula: "RemoteCtrlFormula",
	ChanFilterName: "ChanFilterName", PlaylistItems: "PlaylistItems",
	AutomationData: "AutomationData", InsertRouting: "InsertRouting", InsertParams: "InsertParams",
	ProjectTime: "ProjectTime", NewPlaylistTrack: "NewPlaylistTrack",
	PlaylistTrackName: "PlaylistTrackName", ArrangementName: "ArrangementName",
}

// Width classifies t. Every tag has a width, known or not.
func (t Tag) Width() Width {
	switch {
	case t < WordBase:
		return Byte
	case t < DWordBase:
		return Word
	case t < DataBase:
		return DWord
	}
	return Data
}

// Known reports whether t is a tag this package has a name for.
func (t Tag) Known() bool {
	_, ok := names[t]
	return ok
}

// Obsolete reports whether t has been replaced by a newer event and is only
// found in old files.
func (t Tag) Obsolete() bool {
	switch t {
	case ChannelVolume, ChannelPanpot, MainVolume, FitToSteps, Pitchable, DelayFlags, NStepsShown,
		Tempo, RandChan, MixChan, OldSongLoopPos, TempoFine,
		PlaylistItem, MainResoCutOff, SSNote, PatternAutoMode,
		ChannelName, DelayLine, OldFilterParams:
		return true
	}
	return false
}

// Text returns the text encoding of a Data tag; non text tags are Binary.
func (t Tag) Text() TextEncoding {
	switch t {
	case Version:
		return UTF8
	case ProjectTitle, ProjectComment, ProjectURL, RegistrationID, DefPluginName, ProjectDataPath,
		PluginName, InsertName, TimeMarkerName, ProjectGenre, ProjectAuthor, RemoteCtrlFormula,
		ChanFilterName, PlaylistTrackName, ArrangementName, PatternName:
		return UTF16
	}
	return Binary
}

func (t Tag) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

func (w Width) String() string {
	switch w {
	case Byte:
		return "Byte"
	case Word:
		return "Word"
	case DWord:
		return "DWord"
	case Data:
		return "Data"
	}
	return fmt.Sprintf("Width(%d)", int(w))
}

// Size returns the payload size of a fixed width, or 0 for Data.
func (w Width) Size() int {
	switch w {
	case Byte:
		return 1
	case Word:
		return 2
	case DWord:
		return 4
	}
	return 0
}
