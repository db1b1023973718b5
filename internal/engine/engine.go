// Package engine implements the realtime audio-context core: transport,
// per-block track mixing, metronome and recording taps, and the
// command/event boundary. Everything in this package runs on the audio
// callback's thread except the constructor; Process must never allocate,
// lock, or perform blocking I/O.
package engine

import (
	"math"
	"strings"

	"github.com/justyntemme/lightningbeam-daw/internal/audiopool"
	"github.com/justyntemme/lightningbeam-daw/internal/bufferpool"
	"github.com/justyntemme/lightningbeam-daw/internal/metronome"
	"github.com/justyntemme/lightningbeam-daw/internal/midiclip"
	"github.com/justyntemme/lightningbeam-daw/internal/recording"
	"github.com/justyntemme/lightningbeam-daw/internal/track"
	"github.com/justyntemme/lightningbeam-daw/pkg/audiodiag"
	"github.com/justyntemme/lightningbeam-daw/pkg/command"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph/nodes"
)

// positionEventIntervalSeconds throttles PlaybackPosition events to avoid
// flooding the event ring; spec calls for "at most once per ~20ms".
const positionEventIntervalSeconds = 0.020

// maxCommandsPerBlock bounds the amount of control-plane work one block can
// absorb, so a command flood never turns an audio block into an unbounded
// one.
const maxCommandsPerBlock = 64

// Engine owns all realtime engine state: tracks, pools, transport, and the
// command/event queue. Construct with New on the controller thread, then
// hand Process to the device callback.
type Engine struct {
	SampleRate int
	BlockSize  int
	Channels   int

	tracks      map[int]*track.Track
	nextTrackID int

	AudioPool *audiopool.Pool
	MidiPool  *midiclip.Pool

	bufPool    *bufferpool.Pool
	metronome  *metronome.Metronome
	recordings map[int]*recording.Session // keyed by track ID

	playing         bool
	playheadSamples uint64
	loopEnabled     bool
	loopStart       uint64
	loopEnd         uint64

	bpm          float64
	timeSigNum   int
	timeSigDenom int

	lastPositionEventSamples uint64

	Queue *command.Queue

	master []float32 // scratch master-bus accumulator, sized to BlockSize*Channels
}

// New constructs an engine at the given sample rate, block size, and
// channel count (always 2 per spec's native stereo layout), with a queue
// of the given per-ring capacity.
func New(sampleRate, blockSize, channels, queueCapacity, bufferPoolSize int) *Engine {
	return &Engine{
		SampleRate:   sampleRate,
		BlockSize:    blockSize,
		Channels:     channels,
		tracks:       make(map[int]*track.Track),
		nextTrackID:  1,
		AudioPool:    audiopool.New(),
		MidiPool:     midiclip.New(),
		bufPool:      bufferpool.New(bufferPoolSize, blockSize*channels),
		metronome:    metronome.New(sampleRate),
		recordings:   make(map[int]*recording.Session),
		bpm:          120,
		timeSigNum:   4,
		timeSigDenom: 4,
		Queue:        command.NewQueue(queueCapacity),
		master:       make([]float32, blockSize*channels),
	}
}

// CreateTrack is a controller-thread convenience that builds a track with
// its boundary graph pre-wired (AudioInput/MidiInput -> Output), matching
// what a GraphLoadPreset would otherwise build. Not used from the audio
// thread.
func (e *Engine) CreateTrack(kind command.TrackKind, name string) int {
	id := e.nextTrackID
	e.nextTrackID++

	tk := track.Audio
	if kind == command.TrackMIDI {
		tk = track.MIDI
	}
	t := track.New(id, name, tk)

	g := graph.New()
	g.SetBlockSize(e.BlockSize)
	if tk == track.Audio {
		in := g.AddNode(nodes.NewAudioInput())
		out := g.AddNode(nodes.NewOutput())
		_ = g.Connect(in, 0, out, 0)
		g.SetOutputNode(out)
	} else {
		in := g.AddNode(nodes.NewMidiInput())
		out := g.AddNode(nodes.NewOutput())
		g.SetMIDITarget(in, true)
		g.SetOutputNode(out)
	}
	t.Graph = g

	e.tracks[id] = t
	return id
}

// TrackGraph returns trackID's live signal graph, for preset serialisation.
// Reading node/connection topology off the controller thread is safe: only
// graph *swaps* (GraphLoadPreset) happen via command, never in-place node
// mutation the audio thread wouldn't also see.
func (e *Engine) TrackGraph(trackID int) (*graph.Graph, bool) {
	t, ok := e.tracks[trackID]
	if !ok || t.Graph == nil {
		return nil, false
	}
	return t.Graph, true
}

// Process renders exactly one duplex block: drains commands, advances the
// transport (splitting at loop boundaries), mixes every active track plus
// the metronome into output, and taps input into any active recording.
// input and output are both BlockSize*Channels interleaved floats.
func (e *Engine) Process(input, output []float32) {
	e.drainCommands()

	for i := range e.master {
		e.master[i] = 0
	}

	if e.playing {
		e.renderPlaying(input, output)
	} else {
		for i := range output {
			output[i] = 0
		}
	}

	e.metronome.Process(output, e.playheadSamples, e.playing, e.SampleRate, e.Channels)
	e.tapRecording(input)
}

func (e *Engine) renderPlaying(input, output []float32) {
	frames := len(output) / e.Channels
	blockEnd := e.playheadSamples + uint64(frames)

	if e.loopEnabled && e.playheadSamples < e.loopEnd && blockEnd > e.loopEnd {
		firstFrames := int(e.loopEnd - e.playheadSamples)
		e.renderSpan(output[:firstFrames*e.Channels], firstFrames)
		e.playheadSamples = e.loopStart
		e.allNotesOff()
		e.emitEvent(command.Event{Kind: command.PlaybackPosition, Seconds: e.secondsAt(e.playheadSamples)})

		remaining := frames - firstFrames
		e.renderSpan(output[firstFrames*e.Channels:], remaining)
		e.playheadSamples += uint64(remaining)
	} else {
		e.renderSpan(output, frames)
		e.playheadSamples = blockEnd
	}

	if e.playheadSamples-e.lastPositionEventSamples >= uint64(positionEventIntervalSeconds*float64(e.SampleRate)) {
		e.lastPositionEventSamples = e.playheadSamples
		e.emitEvent(command.Event{Kind: command.PlaybackPosition, Seconds: e.secondsAt(e.playheadSamples)})
	}
}

// renderSpan mixes every active track's render of `frames` frames starting
// at the engine's current playhead into output, which must be exactly
// frames*Channels long.
func (e *Engine) renderSpan(output []float32, frames int) {
	anySolo := false
	for _, t := range e.tracks {
		if t.Solo {
			anySolo = true
			break
		}
	}

	playheadSeconds := e.secondsAt(e.playheadSamples)
	blockSeconds := float64(frames) / float64(e.SampleRate)

	for _, t := range e.tracks {
		if !t.IsActive(anySolo) {
			continue
		}
		buf := e.bufPool.Acquire()
		scratch := buf[:frames*e.Channels]

		// A track's own signal graph processes exactly BlockSize frames
		// per call (graph.Graph.Process has no partial-block mode), so it
		// only runs when this span covers the full block. In a loop-wrap's
		// short first/second sub-span an audio track mixes its raw clip
		// content straight to the master bus instead of through its graph,
		// and a MIDI track contributes silence; both are confined to the
		// single block a loop wraps in.
		fullBlock := frames == e.BlockSize

		switch t.Kind {
		case track.Audio:
			t.Render(scratch, e.AudioPool, playheadSeconds, e.SampleRate, e.Channels)
			if fullBlock && t.Graph != nil {
				if in := findAudioInput(t.Graph); in != nil {
					in.InjectAudio(scratch)
					rendered := t.Graph.Process(float64(e.SampleRate), nil)
					copy(scratch, rendered)
				}
			}
		case track.MIDI:
			if fullBlock && t.Graph != nil {
				ext := make(map[int][]graph.MIDIEvent, len(t.Graph.MIDITargets()))
				for _, target := range t.Graph.MIDITargets() {
					t.ScheduleMIDI(ext, e.MidiPool, playheadSeconds, blockSeconds, e.SampleRate, target)
				}
				rendered := t.Graph.Process(float64(e.SampleRate), ext)
				copy(scratch, rendered)
			}
		}

		volume := t.Volume
		for i := range scratch {
			e.master[i] += scratch[i] * volume
		}
		e.bufPool.Release(buf)
	}

	copy(output, e.master[:frames*e.Channels])
}

func findAudioInput(g *graph.Graph) *nodes.AudioInput {
	for _, id := range g.NodeIDs() {
		if in, ok := g.Node(id).(*nodes.AudioInput); ok {
			return in
		}
	}
	return nil
}

func (e *Engine) secondsAt(samples uint64) float64 {
	return float64(samples) / float64(e.SampleRate)
}

// BufferPoolStats returns a point-in-time snapshot of the per-track render
// buffer pool, for the metrics layer to poll off the audio thread.
func (e *Engine) BufferPoolStats() bufferpool.Stats {
	return e.bufPool.Stats()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// allNotesOff synthesises an all-notes-off (0xB0 + channel, CC 123) to
// every MIDI target of every track's graph, per the stuck-note policy: on
// stop, seek, or loop-wrap, pending note-ons must never leak across a
// transport discontinuity.
func (e *Engine) allNotesOff() {
	for _, t := range e.tracks {
		if t.Graph == nil {
			continue
		}
		for _, id := range t.Graph.NodeIDs() {
			h, ok := t.Graph.Node(id).(graph.MIDIHandler)
			if !ok {
				continue
			}
			for ch := byte(0); ch < 16; ch++ {
				h.HandleMIDI(graph.MIDIEvent{Status: 0xB0 | ch, Data1: 123, Data2: 0})
			}
		}
	}
}

func (e *Engine) tapRecording(input []float32) {
	for trackID, s := range e.recordings {
		if s.State != recording.Recording {
			continue
		}
		if _, err := s.AddSamples(input); err != nil {
			e.emitEvent(command.Event{Kind: command.IOError, Message: err.Error()})
			delete(e.recordings, trackID)
		}
	}
}

func (e *Engine) finishRecording(trackID int, s *recording.Session) {
	path, _, audioData, err := s.Finalize()
	if err != nil {
		e.emitEvent(command.Event{Kind: command.IOError, Message: err.Error()})
		delete(e.recordings, trackID)
		return
	}
	var peakL, peakR float32
	for i := 0; i+1 < len(audioData); i += e.Channels {
		if abs32(audioData[i]) > peakL {
			peakL = abs32(audioData[i])
		}
		if e.Channels > 1 && abs32(audioData[i+1]) > peakR {
			peakR = abs32(audioData[i+1])
		}
	}
	if e.Channels == 1 {
		peakR = peakL
	}
	e.emitEvent(command.Event{
		Kind: command.RecordingStopped,
		Recording: command.RecordingMeta{
			TrackID:   trackID,
			File:      path,
			Frames:    int64(s.Duration() * float64(e.SampleRate)),
			PeakLeft:  peakL,
			PeakRight: peakR,
		},
	})
	if issues := audiodiag.Check(audioData, path); len(issues) > 0 {
		e.emitEvent(command.Event{Kind: command.InvariantViolation, Message: strings.Join(issues, "; ")})
	}
	delete(e.recordings, trackID)
}

func (e *Engine) emitEvent(ev command.Event) {
	if !e.Queue.Events.Push(ev) {
		// ring full; there is nothing else to do from the audio thread
		// but drop it, the dropped-count itself is visible via Ring.Dropped
	}
}

func (e *Engine) drainCommands() {
	for i := 0; i < maxCommandsPerBlock; i++ {
		c, ok := e.Queue.Commands.Pop()
		if !ok {
			return
		}
		e.apply(c)
	}
}

func (e *Engine) apply(c command.Command) {
	switch c.Kind {
	case command.Play:
		e.playing = true
	case command.Stop:
		e.playing = false
		e.playheadSamples = 0
		e.allNotesOff()
	case command.Pause:
		e.playing = false
		e.allNotesOff()
	case command.Seek:
		e.playheadSamples = uint64(math.Max(0, c.Seconds) * float64(e.SampleRate))
		e.allNotesOff()
	case command.SetLoopRegion:
		if c.Loop == nil {
			e.loopEnabled = false
		} else {
			e.loopEnabled = true
			e.loopStart = uint64(c.Loop.Start * float64(e.SampleRate))
			e.loopEnd = uint64(c.Loop.End * float64(e.SampleRate))
		}
	case command.SetTrackVolume:
		if t, ok := e.tracks[c.TrackID]; ok {
			t.SetVolume(float32(c.Value))
		}
	case command.SetTrackMute:
		if t, ok := e.tracks[c.TrackID]; ok {
			t.Muted = c.Bool
		}
	case command.SetTrackSolo:
		if t, ok := e.tracks[c.TrackID]; ok {
			t.Solo = c.Bool
		}
	case command.MoveClip:
		if t, ok := e.tracks[c.TrackID]; ok {
			t.MoveClip(c.ClipID, c.Seconds)
		}
	case command.AddClip:
		if t, ok := e.tracks[c.Clip.TrackID]; ok {
			if t.Kind == track.MIDI {
				t.AddMidiClip(midiclip.ID(c.Clip.MidiClipID), c.Clip.StartSecs)
			} else {
				t.AddClip(c.Clip.PoolIndex, c.Clip.StartSecs, c.Clip.LengthSecs, 0)
			}
		}
	case command.GraphConnect:
		if t, ok := e.tracks[c.TrackID]; ok && t.Graph != nil {
			if err := t.Graph.Connect(c.SrcNode, c.SrcPort, c.DstNode, c.DstPort); err != nil {
				e.emitEvent(command.Event{Kind: command.GraphError, Message: err.Error()})
			}
		}
	case command.GraphDisconnect:
		if t, ok := e.tracks[c.TrackID]; ok && t.Graph != nil {
			t.Graph.Disconnect(c.SrcNode, c.SrcPort, c.DstNode, c.DstPort)
		}
	case command.GraphAddNode:
		if t, ok := e.tracks[c.TrackID]; ok && t.Graph != nil {
			if n, found := nodes.New(c.NodeType, float64(e.SampleRate)); found {
				t.Graph.AddNode(n)
			} else {
				e.emitEvent(command.Event{Kind: command.GraphError, Message: "unknown node type: " + c.NodeType})
			}
		}
	case command.GraphRemoveNode:
		if t, ok := e.tracks[c.TrackID]; ok && t.Graph != nil {
			t.Graph.RemoveNode(c.NodeID)
		}
	case command.GraphSetParameter:
		if t, ok := e.tracks[c.TrackID]; ok && t.Graph != nil {
			if n := t.Graph.Node(c.NodeID); n != nil {
				n.Params().Set(c.ParamID, c.ParamValue)
			}
		}
	case command.GraphLoadPreset:
		if t, ok := e.tracks[c.TrackID]; ok && c.Graph != nil {
			t.Graph = c.Graph
		}
	case command.StartRecording:
		if _, ok := e.tracks[c.TrackID]; ok {
			s := recording.Arm(c.TrackID, c.ClipID, c.RecordingFile, e.secondsAt(e.playheadSamples))
			if err := s.Start(e.SampleRate, e.Channels, 1.0); err != nil {
				e.emitEvent(command.Event{Kind: command.IOError, Message: err.Error()})
				return
			}
			s.SkipSamples(e.BlockSize)
			e.recordings[c.TrackID] = s
		}
	case command.StopRecording:
		if s, ok := e.recordings[c.TrackID]; ok {
			e.finishRecording(c.TrackID, s)
		}
	case command.SetBpm:
		e.bpm = c.Seconds
		e.metronome.UpdateTiming(e.bpm, uint32(e.timeSigNum), uint32(e.timeSigDenom))
	case command.SetTimeSignature:
		e.timeSigNum = c.TimeSigNum
		e.timeSigDenom = c.TimeSigDenom
		e.metronome.UpdateTiming(e.bpm, uint32(e.timeSigNum), uint32(e.timeSigDenom))
	case command.SetMetronome:
		e.metronome.SetEnabled(c.Bool)
	}
}
