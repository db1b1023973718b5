package graph

// Node is the uniform processing contract every leaf processor and every
// compound processor (voice allocator, effect chain) implements. The
// graph schedules and buffer-routes nodes without knowing their concrete
// kind; see node_trait.rs in the source this was ported from for the
// original shape of this contract.
type Node interface {
	// NodeType is a stable string identifying the concrete kind, used by
	// preset serialisation (e.g. "oscillator", "biquad_filter").
	NodeType() string
	Category() Category

	InputPorts() []Port
	OutputPorts() []Port
	Params() *ParamSet

	// Process runs exactly once per block. inputs[i] and midiInputs[i]
	// correspond to InputPorts()[i]; outputs[i] corresponds to
	// OutputPorts()[i]. Implementations must not allocate, block, or
	// synchronise with other threads.
	Process(inputs []Buffer, outputs []Buffer, midiInputs [][]MIDIEvent, midiOutputs [][]MIDIEvent, sampleRate float64)

	// Reset clears all internal state: envelopes, filter delay lines,
	// oscillator phase, held notes.
	Reset()

	// Clone produces an independent instance with the same parameter
	// values but fresh state. Used by the voice allocator to spawn voices
	// from a template sub-graph.
	Clone() Node
}

// MIDIHandler is implemented by nodes that accept MIDI routed to them
// directly rather than through a typed MIDI input port — the MIDI-input
// boundary node and voice-allocator voice targets.
type MIDIHandler interface {
	HandleMIDI(ev MIDIEvent)
}

// Buffer is the raw per-edge sample storage for one port. For Audio ports
// it holds 2*frames interleaved samples; for CV ports it holds frames
// mono samples; for MIDI ports it is unused (events travel via the
// midiInputs/midiOutputs slices instead).
type Buffer []float32

// FramesFor returns the expected buffer length for one block of the given
// kind.
func FramesFor(kind Kind, frames int) int {
	if kind == Audio {
		return frames * 2
	}
	return frames
}
