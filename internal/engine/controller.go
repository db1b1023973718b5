package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/justyntemme/lightningbeam-daw/internal/audiopool"
	"github.com/justyntemme/lightningbeam-daw/internal/bufferpool"
	"github.com/justyntemme/lightningbeam-daw/internal/device"
	"github.com/justyntemme/lightningbeam-daw/internal/midiclip"
	"github.com/justyntemme/lightningbeam-daw/internal/preset"
	"github.com/justyntemme/lightningbeam-daw/pkg/command"
)

// TrackShadow mirrors a track's controller-visible state, updated
// optimistically on every command submission so the UI doesn't need to
// wait for an event round-trip to reflect a volume/mute/solo change.
type TrackShadow struct {
	ID     int
	Name   string
	Kind   command.TrackKind
	Volume float32
	Muted  bool
	Solo   bool
}

// Controller is the ergonomic, non-realtime-side façade over an Engine: it
// translates method calls into Commands pushed onto the shared queue, and
// exposes the Engine's state plus a shadow track list and the last known
// playhead position (updated by draining Events).
type Controller struct {
	engine *Engine
	device *device.Device
	log    *log.Logger

	tracks       map[int]*TrackShadow
	lastPlayhead float64
}

// NewController wraps an already-constructed Engine. logger may be nil.
func NewController(e *Engine, logger *log.Logger) *Controller {
	return &Controller{
		engine: e,
		log:    logger,
		tracks: make(map[int]*TrackShadow),
	}
}

// AttachDevice records the live audio device so the controller can poll
// its underrun counter alongside the engine's own drop counters.
func (c *Controller) AttachDevice(d *device.Device) { c.device = d }

func (c *Controller) push(cmd command.Command) {
	if !c.engine.Queue.Commands.Push(cmd) {
		if c.log != nil {
			c.log.Warn("command queue full, dropped command", "kind", cmd.Kind)
		}
	}
}

// CreateTrack creates a track directly on the engine (controller-thread
// graph construction, see Engine.CreateTrack) and adds it to the shadow.
func (c *Controller) CreateTrack(kind command.TrackKind, name string) int {
	id := c.engine.CreateTrack(kind, name)
	c.tracks[id] = &TrackShadow{ID: id, Name: name, Kind: kind, Volume: 1.0}
	return id
}

// Play, Stop, Pause, Seek control the transport.
func (c *Controller) Play()             { c.push(command.Command{Kind: command.Play}) }
func (c *Controller) Stop()             { c.push(command.Command{Kind: command.Stop}) }
func (c *Controller) Pause()            { c.push(command.Command{Kind: command.Pause}) }
func (c *Controller) Seek(seconds float64) {
	c.push(command.Command{Kind: command.Seek, Seconds: seconds})
}

// SetLoopRegion enables looping over [start,end) seconds, or disables
// looping when region is nil.
func (c *Controller) SetLoopRegion(region *command.LoopRegion) {
	c.push(command.Command{Kind: command.SetLoopRegion, Loop: region})
}

// SetTrackVolume clamps to non-negative (matching Track.SetVolume) and
// updates the shadow immediately.
func (c *Controller) SetTrackVolume(trackID int, v float32) {
	if v < 0 {
		v = 0
	}
	c.push(command.Command{Kind: command.SetTrackVolume, TrackID: trackID, Value: float64(v)})
	if t, ok := c.tracks[trackID]; ok {
		t.Volume = v
	}
}

func (c *Controller) SetTrackMute(trackID int, muted bool) {
	c.push(command.Command{Kind: command.SetTrackMute, TrackID: trackID, Bool: muted})
	if t, ok := c.tracks[trackID]; ok {
		t.Muted = muted
	}
}

func (c *Controller) SetTrackSolo(trackID int, solo bool) {
	c.push(command.Command{Kind: command.SetTrackSolo, TrackID: trackID, Bool: solo})
	if t, ok := c.tracks[trackID]; ok {
		t.Solo = solo
	}
}

// MoveClip relocates an audio or MIDI clip on trackID's timeline.
func (c *Controller) MoveClip(trackID, clipID int, newStartSeconds float64) {
	c.push(command.Command{Kind: command.MoveClip, TrackID: trackID, ClipID: clipID, Seconds: newStartSeconds})
}

// AddAudioClip submits an AddClip command placing the audio pool entry at
// poolIndex on trackID's timeline. The sample must already be in the pool
// (see AddSample).
func (c *Controller) AddAudioClip(trackID int, poolIndex int, startSecs, lengthSecs float64) {
	c.push(command.Command{
		Kind: command.AddClip,
		Clip: command.AddClipParams{
			TrackID: trackID, StartSecs: startSecs, PoolIndex: poolIndex, LengthSecs: lengthSecs,
		},
	})
}

// AddMidiClip places a pooled MIDI clip on trackID's timeline at startSecs.
func (c *Controller) AddMidiClip(trackID int, clipID midiclip.ID, startSecs float64) {
	c.push(command.Command{
		Kind: command.AddClip,
		Clip: command.AddClipParams{TrackID: trackID, StartSecs: startSecs, MidiClipID: int(clipID)},
	})
}

// AddSample registers a decoded sample in the shared audio pool (a
// controller-thread operation; the audio thread only ever reads pool
// entries by stable index) and returns its index.
func (c *Controller) AddSample(s *audiopool.Sample) int {
	return c.engine.AudioPool.Add(s)
}

// GraphConnect/GraphDisconnect/GraphAddNode/GraphRemoveNode/
// GraphSetParameter mutate trackID's signal graph via the command queue so
// the audio thread only ever observes a consistent topology between
// blocks.
func (c *Controller) GraphConnect(trackID, srcNode, srcPort, dstNode, dstPort int) {
	c.push(command.Command{Kind: command.GraphConnect, TrackID: trackID,
		SrcNode: srcNode, SrcPort: srcPort, DstNode: dstNode, DstPort: dstPort})
}

func (c *Controller) GraphDisconnect(trackID, srcNode, srcPort, dstNode, dstPort int) {
	c.push(command.Command{Kind: command.GraphDisconnect, TrackID: trackID,
		SrcNode: srcNode, SrcPort: srcPort, DstNode: dstNode, DstPort: dstPort})
}

func (c *Controller) GraphAddNode(trackID int, nodeType string) {
	c.push(command.Command{Kind: command.GraphAddNode, TrackID: trackID, NodeType: nodeType})
}

func (c *Controller) GraphRemoveNode(trackID, nodeID int) {
	c.push(command.Command{Kind: command.GraphRemoveNode, TrackID: trackID, NodeID: nodeID})
}

func (c *Controller) GraphSetParameter(trackID, nodeID, paramID int, value float64) {
	c.push(command.Command{Kind: command.GraphSetParameter, TrackID: trackID,
		NodeID: nodeID, ParamID: paramID, ParamValue: value})
}

// LoadPreset reads and parses path via internal/preset (off the audio
// thread) and submits the resulting graph as a single pointer-swap
// command, so the audio thread only ever swaps a pointer.
func (c *Controller) LoadPreset(trackID int, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("controller: load preset: %w", err)
	}
	g, err := preset.Load(data, float64(c.engine.SampleRate))
	if err != nil {
		return fmt.Errorf("controller: load preset: %w", err)
	}
	g.SetBlockSize(c.engine.BlockSize)
	c.push(command.Command{Kind: command.GraphLoadPreset, TrackID: trackID, PresetPath: path, Graph: g})
	return nil
}

// SavePreset dehydrates trackID's current signal graph and writes it to
// path as a preset document.
func (c *Controller) SavePreset(trackID int, path string) error {
	g, ok := c.engine.TrackGraph(trackID)
	if !ok {
		return fmt.Errorf("controller: save preset: unknown track %d", trackID)
	}
	data, err := preset.Save(g)
	if err != nil {
		return fmt.Errorf("controller: save preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("controller: save preset: %w", err)
	}
	return nil
}

// StartRecording arms trackID for recording into file. An empty file gets a
// fresh temp path under os.TempDir so concurrent recordings across tracks
// never collide.
func (c *Controller) StartRecording(trackID, clipID int, file string) {
	if file == "" {
		file = filepath.Join(os.TempDir(), "rec-"+uuid.NewString()+".wav")
	}
	c.push(command.Command{Kind: command.StartRecording, TrackID: trackID, ClipID: clipID, RecordingFile: file})
}

func (c *Controller) StopRecording(trackID int) {
	c.push(command.Command{Kind: command.StopRecording, TrackID: trackID})
}

// SetBpm/SetTimeSignature/SetMetronome configure the transport clock.
func (c *Controller) SetBpm(bpm float64) {
	c.push(command.Command{Kind: command.SetBpm, Seconds: bpm})
}

func (c *Controller) SetTimeSignature(num, denom int) {
	c.push(command.Command{Kind: command.SetTimeSignature, TimeSigNum: num, TimeSigDenom: denom})
}

func (c *Controller) SetMetronome(enabled bool) {
	c.push(command.Command{Kind: command.SetMetronome, Bool: enabled})
}

// Playhead returns the last PlaybackPosition reported by the engine.
func (c *Controller) Playhead() float64 { return c.lastPlayhead }

// DrainEvents pops every pending event from the engine and invokes handle
// for each, updating the controller's own shadow state (playhead) first.
// Call this periodically from a non-realtime goroutine (e.g. a UI tick or
// the CLI's polling loop).
func (c *Controller) DrainEvents(handle func(command.Event)) {
	for {
		ev, ok := c.engine.Queue.Events.Pop()
		if !ok {
			return
		}
		switch ev.Kind {
		case command.PlaybackPosition:
			c.lastPlayhead = ev.Seconds
		case command.GraphError, command.IOError, command.InvariantViolation:
			if c.log != nil {
				c.log.Error("engine reported error", "kind", ev.Kind, "message", ev.Message)
			}
		}
		if handle != nil {
			handle(ev)
		}
	}
}

// Tracks returns the current shadow track list.
func (c *Controller) Tracks() []*TrackShadow {
	out := make([]*TrackShadow, 0, len(c.tracks))
	for _, t := range c.tracks {
		out = append(out, t)
	}
	return out
}

// DroppedCommands and DroppedEvents surface ring-overflow counters for the
// metrics layer; Underruns surfaces the device's, when attached.
func (c *Controller) DroppedCommands() uint64 { return c.engine.Queue.Commands.Dropped() }
func (c *Controller) DroppedEvents() uint64   { return c.engine.Queue.Events.Dropped() }
func (c *Controller) Underruns() uint64 {
	if c.device == nil {
		return 0
	}
	return c.device.Underruns()
}

// BufferPoolStats surfaces the engine's render buffer pool usage for the
// metrics layer.
func (c *Controller) BufferPoolStats() bufferpool.Stats {
	return c.engine.BufferPoolStats()
}
