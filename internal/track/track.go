// Package track implements timeline tracks: audio tracks render clips
// from the audio pool with gain/volume/mute/solo logic, and MIDI tracks
// schedule clip events into a graph's MIDI targets. Both are grounded on
// the same clip-intersection-and-render shape.
package track

import (
	"github.com/justyntemme/lightningbeam-daw/internal/audiopool"
	"github.com/justyntemme/lightningbeam-daw/internal/midiclip"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

// Kind distinguishes the two track flavours.
type Kind int

const (
	Audio Kind = iota
	MIDI
)

// Clip is one audio clip placed on an audio track's timeline.
type Clip struct {
	ID             int
	AudioPoolIndex int
	StartTime      float64 // seconds
	Duration       float64 // seconds
	Offset         float64 // seconds into the source file
	Gain           float32
}

// EndTime returns the clip's end position on the timeline.
func (c *Clip) EndTime() float64 { return c.StartTime + c.Duration }

// MidiClipRef is one MIDI clip placed on a MIDI track's timeline.
type MidiClipRef struct {
	ID        int
	ClipID    midiclip.ID
	StartTime float64
}

// Track is one timeline track: either an audio track with Clips, or a
// MIDI track with MidiClips feeding a graph.
type Track struct {
	ID    int
	Name  string
	Kind  Kind
	Volume float32
	Muted  bool
	Solo   bool

	Clips     []Clip
	MidiClips []MidiClipRef

	// Graph is the per-track signal graph: for an audio track it may be
	// nil (raw clip playback to the master bus) or an effect chain fed
	// by AudioInput; for a MIDI track it is the instrument graph whose
	// MIDI targets receive scheduled clip events.
	Graph *graph.Graph

	nextClipID int
}

// New creates an empty track with unity volume.
func New(id int, name string, kind Kind) *Track {
	return &Track{ID: id, Name: name, Kind: kind, Volume: 1.0, nextClipID: 1}
}

// SetVolume clamps volume to non-negative.
func (t *Track) SetVolume(v float32) {
	if v < 0 {
		v = 0
	}
	t.Volume = v
}

// IsActive reports whether this track should be heard given whether any
// track in the project is soloed.
func (t *Track) IsActive(anySolo bool) bool {
	return !t.Muted && (!anySolo || t.Solo)
}

// AddClip appends an audio clip and assigns it a track-local ID.
func (t *Track) AddClip(poolIndex int, startTime, duration, offset float64) int {
	id := t.nextClipID
	t.nextClipID++
	t.Clips = append(t.Clips, Clip{
		ID: id, AudioPoolIndex: poolIndex, StartTime: startTime,
		Duration: duration, Offset: offset, Gain: 1.0,
	})
	return id
}

// AddMidiClip places a reference to a pooled MIDI clip on the timeline and
// assigns it a track-local ID.
func (t *Track) AddMidiClip(clipID midiclip.ID, startTime float64) int {
	id := t.nextClipID
	t.nextClipID++
	t.MidiClips = append(t.MidiClips, MidiClipRef{ID: id, ClipID: clipID, StartTime: startTime})
	return id
}

// MoveClip relocates clip id (audio or MIDI) to a new start time.
func (t *Track) MoveClip(id int, newStart float64) {
	for i := range t.Clips {
		if t.Clips[i].ID == id {
			t.Clips[i].StartTime = newStart
			return
		}
	}
	for i := range t.MidiClips {
		if t.MidiClips[i].ID == id {
			t.MidiClips[i].StartTime = newStart
			return
		}
	}
}

// Render mixes every overlapping clip on this track into output
// (interleaved, channels-wide) for the block starting at playheadSeconds,
// reading sample content from pool. Returns the number of frames actually
// produced by the underlying pool reads (for diagnostics; callers treat
// the whole block as rendered regardless).
func (t *Track) Render(output []float32, pool *audiopool.Pool, playheadSeconds float64, sampleRate, channels int) int {
	bufferDuration := float64(len(output)) / (float64(sampleRate) * float64(channels))
	bufferEnd := playheadSeconds + bufferDuration

	rendered := 0
	for i := range t.Clips {
		c := &t.Clips[i]
		if c.StartTime < bufferEnd && c.EndTime() > playheadSeconds {
			rendered += t.renderClip(c, output, pool, playheadSeconds, sampleRate, channels)
		}
	}
	return rendered
}

func (t *Track) renderClip(c *Clip, output []float32, pool *audiopool.Pool, playheadSeconds float64, sampleRate, channels int) int {
	bufferDuration := float64(len(output)) / (float64(sampleRate) * float64(channels))
	bufferEnd := playheadSeconds + bufferDuration

	renderStart := max(playheadSeconds, c.StartTime)
	renderEnd := min(bufferEnd, c.EndTime())
	if renderStart >= renderEnd {
		return 0
	}

	outputOffsetSeconds := renderStart - playheadSeconds
	outputOffsetSamples := int(outputOffsetSeconds * float64(sampleRate) * float64(channels))

	clipPosition := renderStart - c.StartTime + c.Offset

	renderDuration := renderEnd - renderStart
	samplesToRender := int(renderDuration * float64(sampleRate) * float64(channels))
	if outputOffsetSamples+samplesToRender > len(output) {
		samplesToRender = len(output) - outputOffsetSamples
	}
	if samplesToRender <= 0 || outputOffsetSamples < 0 {
		return 0
	}

	slice := output[outputOffsetSamples : outputOffsetSamples+samplesToRender]
	gain := c.Gain * t.Volume
	return pool.RenderFromFile(c.AudioPoolIndex, slice, clipPosition, gain, sampleRate, channels)
}

// ScheduleMIDI appends every event from this track's overlapping MIDI
// clips that falls within [playheadSeconds, playheadSeconds+blockSeconds)
// to ext[targetNode], stamped with its in-block sample offset, for
// delivery into the track's Graph this block.
func (t *Track) ScheduleMIDI(ext map[int][]graph.MIDIEvent, clips *midiclip.Pool, playheadSeconds, blockSeconds float64, sampleRate int, targetNode int) {
	blockEnd := playheadSeconds + blockSeconds
	for _, ref := range t.MidiClips {
		clip := clips.Get(ref.ClipID)
		if clip == nil {
			continue
		}
		clipEnd := ref.StartTime + clip.Duration
		if ref.StartTime >= blockEnd || clipEnd <= playheadSeconds {
			continue
		}
		for _, ev := range clip.Events {
			absTime := ref.StartTime + ev.OffsetSecs
			if absTime < playheadSeconds || absTime >= blockEnd {
				continue
			}
			offset := int((absTime - playheadSeconds) * float64(sampleRate))
			ext[targetNode] = append(ext[targetNode], graph.MIDIEvent{
				Offset: offset, Status: ev.Status, Data1: ev.Data1, Data2: ev.Data2,
			})
		}
	}
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
