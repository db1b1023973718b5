// Package command defines the controller->engine and engine->controller
// message taxonomies and the lock-free queues that carry them, so the
// audio thread never blocks on or allocates for control-plane traffic.
package command

import (
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
	"github.com/justyntemme/lightningbeam-daw/pkg/ringbuf"
)

// TrackKind distinguishes audio tracks (sample playback, recording) from
// MIDI tracks (clip playback into a graph's MIDI targets).
type TrackKind int

const (
	TrackAudio TrackKind = iota
	TrackMIDI
)

// Kind tags a Command's active field, avoiding a type switch with a large
// interface set on the hot drain path.
type Kind int

const (
	Play Kind = iota
	Stop
	Pause
	Seek
	SetTrackVolume
	SetTrackMute
	SetTrackSolo
	MoveClip
	CreateTrack
	AddClip
	GraphConnect
	GraphDisconnect
	GraphAddNode
	GraphRemoveNode
	GraphSetParameter
	GraphLoadPreset
	StartRecording
	StopRecording
	SetBpm
	SetTimeSignature
	SetMetronome
	SetLoopRegion
)

// LoopRegion is a half-open [Start, End) region in seconds. SetLoopRegion
// carries a nil *LoopRegion to disable looping.
type LoopRegion struct {
	Start, End float64
}

// Command is a tagged union of every controller->engine message. Only the
// fields relevant to Kind are populated; the rest hold zero values. A flat
// struct (rather than an interface per command) keeps Command a plain
// value so it can be pushed through ringbuf.Ring[Command] without an
// allocation per Push.
type Command struct {
	Kind Kind

	Seconds float64 // Seek, SetBpm (as float beats-per-minute), SetTrackVolume.v reuses Value

	TrackID int
	Value   float64 // SetTrackVolume
	Bool    bool    // SetTrackMute, SetTrackSolo, SetMetronome

	ClipID int

	TrackKind TrackKind
	Name      string

	Clip AddClipParams

	NodeID      int
	SrcNode     int
	SrcPort     int
	DstNode     int
	DstPort     int
	NodeType    string
	ParamID     int
	ParamValue  float64
	PresetPath  string

	// Graph carries a fully-built graph for GraphLoadPreset, constructed
	// off the audio thread by internal/preset.Load; the engine only swaps
	// the pointer into the target track, never parses on the audio side.
	Graph *graph.Graph

	RecordingFile string

	TimeSigNum   int
	TimeSigDenom int

	Loop *LoopRegion
}

// AddClipParams carries the fields specific to AddClip, kept as its own
// struct so Command doesn't grow a field per clip attribute.
type AddClipParams struct {
	TrackID     int
	StartSecs   float64
	PoolIndex   int // audio clip: index into the audio pool
	MidiClipID  int // MIDI clip: id into the MIDI clip pool
	LengthSecs  float64
}

// Queue is the pair of SPSC rings used to cross the controller/audio
// boundary: Commands flows controller->engine, Events flows engine->
// controller.
type Queue struct {
	Commands *ringbuf.Ring[Command]
	Events   *ringbuf.Ring[Event]
}

// NewQueue builds a Queue with the given per-ring capacity (rounded up to
// a power of two by ringbuf.New).
func NewQueue(capacity int) *Queue {
	return &Queue{
		Commands: ringbuf.New[Command](capacity),
		Events:   ringbuf.New[Event](capacity),
	}
}
