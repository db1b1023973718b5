package track

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/internal/audiopool"
	"github.com/justyntemme/lightningbeam-daw/internal/midiclip"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

func TestNewTrackHasUnityVolume(t *testing.T) {
	tr := New(1, "drums", Audio)
	require.Equal(t, float32(1.0), tr.Volume)
	require.False(t, tr.Muted)
	require.False(t, tr.Solo)
}

func TestSetVolumeClampsNegative(t *testing.T) {
	tr := New(1, "drums", Audio)
	tr.SetVolume(-1)
	require.Equal(t, float32(0), tr.Volume)
}

func TestIsActiveRespectsMuteAndSolo(t *testing.T) {
	tr := New(1, "drums", Audio)
	require.True(t, tr.IsActive(false))

	tr.Muted = true
	require.False(t, tr.IsActive(false))
	tr.Muted = false

	other := New(2, "bass", Audio)
	other.Solo = true
	require.False(t, tr.IsActive(true), "non-soloed track must be silent when another track is soloed")
	require.True(t, other.IsActive(true))
}

func TestAddClipAssignsSequentialIDs(t *testing.T) {
	tr := New(1, "drums", Audio)
	id1 := tr.AddClip(0, 0, 1, 0)
	id2 := tr.AddClip(0, 1, 1, 0)
	require.Equal(t, 1, id1)
	require.Equal(t, 2, id2)
	require.Len(t, tr.Clips, 2)
}

func TestAddMidiClipAssignsSequentialIDsSharedWithAudioClips(t *testing.T) {
	tr := New(1, "lead", MIDI)
	audioID := tr.AddClip(0, 0, 1, 0)
	midiID := tr.AddMidiClip(midiclip.ID(5), 1.0)
	require.Equal(t, 1, audioID)
	require.Equal(t, 2, midiID, "clip IDs share a single counter across clip kinds")
}

func TestMoveClipRelocatesAudioClip(t *testing.T) {
	tr := New(1, "drums", Audio)
	id := tr.AddClip(0, 0, 1, 0)
	tr.MoveClip(id, 5.0)
	require.Equal(t, 5.0, tr.Clips[0].StartTime)
}

func TestMoveClipRelocatesMidiClip(t *testing.T) {
	tr := New(1, "lead", MIDI)
	id := tr.AddMidiClip(midiclip.ID(1), 0)
	tr.MoveClip(id, 3.0)
	require.Equal(t, 3.0, tr.MidiClips[0].StartTime)
}

func TestRenderMixesOverlappingClip(t *testing.T) {
	tr := New(1, "drums", Audio)
	pool := audiopool.New()
	idx := pool.Add(&audiopool.Sample{Data: []float32{1, 1, 1, 1}, Channels: 1, SampleRate: 48000})
	tr.AddClip(idx, 0, 1.0, 0)

	out := make([]float32, 48*1)
	rendered := tr.Render(out, pool, 0, 48000, 1)
	require.Greater(t, rendered, 0)
}

func TestRenderSkipsClipOutsideBlock(t *testing.T) {
	tr := New(1, "drums", Audio)
	pool := audiopool.New()
	idx := pool.Add(&audiopool.Sample{Data: []float32{1, 1}, Channels: 1, SampleRate: 48000})
	tr.AddClip(idx, 10.0, 1.0, 0)

	out := make([]float32, 48*1)
	rendered := tr.Render(out, pool, 0, 48000, 1)
	require.Equal(t, 0, rendered)
}

func TestScheduleMIDIStampsInBlockOffsets(t *testing.T) {
	tr := New(1, "lead", MIDI)
	clips := midiclip.New()
	clipID := clips.Add([]midiclip.Event{
		{OffsetSecs: 0.01, Status: 0x90, Data1: 60, Data2: 100},
	}, 1.0, "phrase")
	tr.AddMidiClip(clipID, 0)

	ext := make(map[int][]graph.MIDIEvent)
	tr.ScheduleMIDI(ext, clips, 0, 0.1, 48000, 7)

	require.Len(t, ext[7], 1)
	require.Equal(t, int(0.01*48000), ext[7][0].Offset)
	require.Equal(t, byte(0x90), ext[7][0].Status)
}

func TestScheduleMIDISkipsEventsOutsideBlock(t *testing.T) {
	tr := New(1, "lead", MIDI)
	clips := midiclip.New()
	clipID := clips.Add([]midiclip.Event{
		{OffsetSecs: 5.0, Status: 0x90, Data1: 60, Data2: 100},
	}, 6.0, "phrase")
	tr.AddMidiClip(clipID, 0)

	ext := make(map[int][]graph.MIDIEvent)
	tr.ScheduleMIDI(ext, clips, 0, 0.1, 48000, 7)
	require.Empty(t, ext[7])
}
