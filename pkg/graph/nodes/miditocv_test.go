package nodes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

func TestMidiToCVNoteOnSetsVOctConvention(t *testing.T) {
	n := NewMidiToCV()
	midiIn := [][]graph.MIDIEvent{{{Status: 0x90, Data1: 69, Data2: 100}}}
	pitch := make(graph.Buffer, 1)
	gate := make(graph.Buffer, 1)
	vel := make(graph.Buffer, 1)

	n.Process(nil, []graph.Buffer{pitch, gate, vel}, midiIn, nil, 48000)

	require.Equal(t, float32(0), pitch[0], "A4 (note 69) must read as 0V in the V/Oct convention")
	require.Equal(t, float32(1), gate[0])
}

func TestMidiToCVNoteOffWithNoOtherHeldNotesDropsGate(t *testing.T) {
	n := NewMidiToCV()
	on := [][]graph.MIDIEvent{{{Status: 0x90, Data1: 69, Data2: 100}}}
	buf := make(graph.Buffer, 1)
	gate := make(graph.Buffer, 1)
	vel := make(graph.Buffer, 1)
	n.Process(nil, []graph.Buffer{buf, gate, vel}, on, nil, 48000)

	off := [][]graph.MIDIEvent{{{Status: 0x80, Data1: 69, Data2: 0}}}
	n.Process(nil, []graph.Buffer{buf, gate, vel}, off, nil, 48000)

	require.Equal(t, float32(0), gate[0])
}

func TestMidiToCVNoteOffFallsBackToEarlierHeldNote(t *testing.T) {
	n := NewMidiToCV()
	buf := make(graph.Buffer, 1)
	gate := make(graph.Buffer, 1)
	vel := make(graph.Buffer, 1)

	n.Process(nil, []graph.Buffer{buf, gate, vel}, [][]graph.MIDIEvent{{{Status: 0x90, Data1: 60, Data2: 100}}}, nil, 48000)
	n.Process(nil, []graph.Buffer{buf, gate, vel}, [][]graph.MIDIEvent{{{Status: 0x90, Data1: 72, Data2: 100}}}, nil, 48000)
	n.Process(nil, []graph.Buffer{buf, gate, vel}, [][]graph.MIDIEvent{{{Status: 0x80, Data1: 72, Data2: 0}}}, nil, 48000)

	require.Equal(t, float32(1), gate[0], "releasing the top note must fall back to the still-held note 60")
	require.InDelta(t, float32(60-69)/12.0, buf[0], 1e-6)
}

func TestMidiToCVResetClearsHeldNotesAndOutputs(t *testing.T) {
	n := NewMidiToCV()
	buf := make(graph.Buffer, 1)
	gate := make(graph.Buffer, 1)
	vel := make(graph.Buffer, 1)
	n.Process(nil, []graph.Buffer{buf, gate, vel}, [][]graph.MIDIEvent{{{Status: 0x90, Data1: 69, Data2: 100}}}, nil, 48000)

	n.Reset()
	require.Empty(t, n.heldNotes)
	require.Equal(t, float32(0), n.gate)
}

func TestAudioToCVTracksAbsolutePeakWithSmoothing(t *testing.T) {
	n := NewAudioToCV()
	n.Params().Set(audioCVParamSmoothing, 0)
	in := graph.Buffer{0.5, -0.8}
	out := make(graph.Buffer, 1)

	n.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)

	require.InDelta(t, 0.8, out[0], 1e-6, "with zero smoothing the output must equal the current magnitude")
}

func TestAudioToCVResetZeroesEnvelope(t *testing.T) {
	n := NewAudioToCV()
	in := graph.Buffer{1, 1}
	out := make(graph.Buffer, 1)
	n.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)
	require.NotZero(t, n.env)

	n.Reset()
	require.Equal(t, float32(0), n.env)
}
