package nodes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

func buildVoice(sampleRate float64) (*graph.Graph, *TemplateIn, *TemplateOut) {
	g := graph.New()
	g.SetBlockSize(4)
	in := NewTemplateIn()
	out := NewTemplateOut()
	inID := g.AddNode(in)
	outID := g.AddNode(out)
	g.Connect(inID, 0, outID, 0)
	g.SetOutputNode(outID)
	return g, in, out
}

func noteOn(n *VoiceAllocator, note, velocity byte) {
	n.HandleMIDI(graph.MIDIEvent{Status: 0x90, Data1: note, Data2: velocity})
}

func noteOff(n *VoiceAllocator, note byte) {
	n.HandleMIDI(graph.MIDIEvent{Status: 0x80, Data1: note, Data2: 0})
}

func TestVoiceAllocatorAssignsDistinctNeverTriggeredVoicesFirst(t *testing.T) {
	va := NewVoiceAllocator(48000, 2, buildVoice)
	noteOn(va, 60, 100)
	noteOn(va, 64, 100)

	require.Equal(t, 0, va.noteVoice[60])
	require.Equal(t, 1, va.noteVoice[64])
}

func TestVoiceAllocatorNoteOffReleasesVoiceWithoutReallocating(t *testing.T) {
	va := NewVoiceAllocator(48000, 2, buildVoice)
	noteOn(va, 60, 100)
	noteOff(va, 60)

	require.NotContains(t, va.noteVoice, byte(60))
	require.False(t, va.voices[0].held)
	require.NotZero(t, va.voices[0].releasedAt)
}

func TestVoiceAllocatorReusesOldestReleasedVoiceBeforeStealing(t *testing.T) {
	va := NewVoiceAllocator(48000, 2, buildVoice)
	noteOn(va, 60, 100)
	noteOn(va, 64, 100)
	noteOff(va, 60)
	noteOff(va, 64)

	// voice 0 (note 60) released first, so it must be reused first.
	noteOn(va, 67, 100)
	require.Equal(t, 0, va.noteVoice[67])
}

func TestVoiceAllocatorStealsOldestHeldVoiceWhenAllBusy(t *testing.T) {
	va := NewVoiceAllocator(48000, 2, buildVoice)
	noteOn(va, 60, 100) // voice 0, triggered at clock 1
	noteOn(va, 64, 100) // voice 1, triggered at clock 2

	noteOn(va, 67, 100) // both held, must steal voice 0 (oldest triggered)

	require.Equal(t, 0, va.noteVoice[67])
	require.NotContains(t, va.noteVoice, byte(60), "stolen note must be dropped from the lookup table")
	require.Contains(t, va.noteVoice, byte(64))
}

func TestVoiceAllocatorRetriggeringHeldNoteReusesItsVoice(t *testing.T) {
	va := NewVoiceAllocator(48000, 2, buildVoice)
	noteOn(va, 60, 100)
	firstVoice := va.noteVoice[60]

	noteOn(va, 60, 80)
	require.Equal(t, firstVoice, va.noteVoice[60])
}

func TestVoiceAllocatorAllNotesOffClearsHeldStateAndLookup(t *testing.T) {
	va := NewVoiceAllocator(48000, 2, buildVoice)
	noteOn(va, 60, 100)
	noteOn(va, 64, 100)

	va.AllNotesOff()

	require.Empty(t, va.noteVoice)
	for _, v := range va.voices {
		require.False(t, v.held)
	}
}

func TestVoiceAllocatorProcessSumsVoiceOutputs(t *testing.T) {
	va := NewVoiceAllocator(48000, 2, buildVoice)
	noteOn(va, 69, 127) // pitch 0 semitones from A4 -> TemplateIn outputs pitch 0, gate 1
	noteOn(va, 69, 127)

	out := make(graph.Buffer, 8)
	va.Process(nil, []graph.Buffer{out}, nil, nil, 48000)

	// the second note-on for 69 retriggers the voice already holding it;
	// only the summed buffer's interleaved length is checked here.
	require.Len(t, out, 8)
}

func TestVoiceAllocatorResetClearsTimingAndHeldNotes(t *testing.T) {
	va := NewVoiceAllocator(48000, 2, buildVoice)
	noteOn(va, 60, 100)

	va.Reset()

	require.Empty(t, va.noteVoice)
	require.Equal(t, uint64(0), va.clock)
	for _, v := range va.voices {
		require.False(t, v.held)
		require.Equal(t, uint64(0), v.triggeredAt)
		require.Equal(t, uint64(0), v.releasedAt)
	}
}

func TestVoiceAllocatorCloneProducesIndependentVoicePool(t *testing.T) {
	va := NewVoiceAllocator(48000, 3, buildVoice)
	clone := va.Clone().(*VoiceAllocator)

	require.Len(t, clone.voices, 3)
	require.NotSame(t, va.voices[0], clone.voices[0])
}
