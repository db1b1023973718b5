package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

// TemplateIn is the note-driven source inside a voice-allocator template
// sub-graph: it has no real input connections; VoiceAllocator calls
// Trigger/Release on it directly instead of routing MIDI through a port.
type TemplateIn struct {
	Base
	pitch, gate, velocity float32
}

func NewTemplateIn() *TemplateIn {
	return &TemplateIn{Base: newBase("template_in", graph.CategoryCompound, nil,
		[]graph.Port{
			{Name: "pitch", Kind: graph.CV},
			{Name: "gate", Kind: graph.CV},
			{Name: "velocity", Kind: graph.CV},
		}, nil)}
}

// Trigger sets this voice's pitch/gate/velocity outputs for a note-on.
func (n *TemplateIn) Trigger(note, velocity byte) {
	n.pitch = float32(int(note)-69) / 12.0
	n.velocity = float32(velocity) / 127.0
	n.gate = 1
}

// Release drops the gate for a note-off; pitch and velocity hold their
// last value so a release-stage envelope still reads the correct note.
func (n *TemplateIn) Release() { n.gate = 0 }

func (n *TemplateIn) Process(_ []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	for i := range outputs[0] {
		outputs[0][i] = n.pitch
	}
	for i := range outputs[1] {
		outputs[1][i] = n.gate
	}
	for i := range outputs[2] {
		outputs[2][i] = n.velocity
	}
}

func (n *TemplateIn) Reset() { n.pitch, n.gate, n.velocity = 0, 0, 0 }
func (n *TemplateIn) Clone() graph.Node { return NewTemplateIn() }

// TemplateOut is the audio tap inside a voice-allocator template
// sub-graph: a passthrough that additionally tracks the block's peak
// amplitude for per-voice metering.
type TemplateOut struct {
	Base
	peak float32
}

func NewTemplateOut() *TemplateOut {
	return &TemplateOut{Base: newBase("template_out", graph.CategoryCompound,
		[]graph.Port{{Name: "in", Kind: graph.Audio}},
		[]graph.Port{{Name: "out", Kind: graph.Audio}}, nil)}
}

func (n *TemplateOut) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	copy(outputs[0], inputs[0])
	var peak float32
	for _, s := range inputs[0] {
		a := s
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	n.peak = peak
}

// Peak returns the absolute peak sample value of the most recent block.
func (n *TemplateOut) Peak() float32 { return n.peak }

func (n *TemplateOut) Reset() { n.peak = 0 }
func (n *TemplateOut) Clone() graph.Node { return NewTemplateOut() }
