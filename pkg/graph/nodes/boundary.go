package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

// Output is the designated sink node of a track's graph: whatever audio
// reaches it is the track's rendered block.
type Output struct {
	Base
}

func NewOutput() *Output {
	return &Output{Base: newBase("output", graph.CategoryIO,
		[]graph.Port{{Name: "in", Kind: graph.Audio}},
		[]graph.Port{{Name: "out", Kind: graph.Audio}},
		nil)}
}

func (n *Output) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	copy(outputs[0], inputs[0])
}
func (n *Output) Reset()            {}
func (n *Output) Clone() graph.Node { return NewOutput() }

// AudioInput is the boundary node a track injects its rendered clip audio
// into before running the graph. InjectAudio must be called once per
// block, before Graph.Process, by the track's renderer — it is not
// connected to by any other node's output.
type AudioInput struct {
	Base
	pending graph.Buffer
}

func NewAudioInput() *AudioInput {
	return &AudioInput{Base: newBase("audio_input", graph.CategoryIO,
		nil,
		[]graph.Port{{Name: "out", Kind: graph.Audio}},
		nil)}
}

// InjectAudio stages this block's track audio. buf must be 2*frames long
// interleaved stereo; it is copied, not retained.
func (n *AudioInput) InjectAudio(buf graph.Buffer) {
	if cap(n.pending) < len(buf) {
		n.pending = make(graph.Buffer, len(buf))
	}
	n.pending = n.pending[:len(buf)]
	copy(n.pending, buf)
}

func (n *AudioInput) Process(_ []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	copy(outputs[0], n.pending)
}
func (n *AudioInput) Reset() {
	for i := range n.pending {
		n.pending[i] = 0
	}
}
func (n *AudioInput) Clone() graph.Node { return NewAudioInput() }

// MidiInput is the boundary node a MIDI track delivers its clip events to
// for the current block (via the graph's MIDI-target mechanism, which
// calls HandleMIDI). It republishes them on its MIDI output port so
// downstream nodes (e.g. MidiToCV, a voice allocator) can consume them.
type MidiInput struct {
	Base
	pending []graph.MIDIEvent
}

func NewMidiInput() *MidiInput {
	return &MidiInput{Base: newBase("midi_input", graph.CategoryIO,
		nil,
		[]graph.Port{{Name: "out", Kind: graph.MIDI}},
		nil)}
}

func (n *MidiInput) HandleMIDI(ev graph.MIDIEvent) {
	n.pending = append(n.pending, ev)
}

func (n *MidiInput) Process(_ []graph.Buffer, _ []graph.Buffer, _ [][]graph.MIDIEvent, midiOutputs [][]graph.MIDIEvent, _ float64) {
	midiOutputs[0] = append(midiOutputs[0], n.pending...)
	n.pending = n.pending[:0]
}
func (n *MidiInput) Reset()            { n.pending = n.pending[:0] }
func (n *MidiInput) Clone() graph.Node { return NewMidiInput() }
