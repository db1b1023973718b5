package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

// Factory builds a fresh, default-parameter instance of one node kind at
// the given sample rate. Registered under the node's NodeType() string so
// preset loading and the UI's "add node" picker can construct by name.
type Factory func(sampleRate float64) graph.Node

var registry = map[string]Factory{
	"oscillator":        func(sr float64) graph.Node { return NewOscillator(sr) },
	"gain":              func(sr float64) graph.Node { return NewGain() },
	"output":            func(sr float64) graph.Node { return NewOutput() },
	"audio_input":       func(sr float64) graph.Node { return NewAudioInput() },
	"midi_input":        func(sr float64) graph.Node { return NewMidiInput() },
	"midi_to_cv":        func(sr float64) graph.Node { return NewMidiToCV() },
	"audio_to_cv":       func(sr float64) graph.Node { return NewAudioToCV() },
	"biquad_filter":     func(sr float64) graph.Node { return NewFilter(sr) },
	"mixer":             func(sr float64) graph.Node { return NewMixer(2) },
	"splitter":          func(sr float64) graph.Node { return NewSplitter(2) },
	"constant":          func(sr float64) graph.Node { return NewConstant() },
	"pan":               func(sr float64) graph.Node { return NewPan() },
	"noise":             func(sr float64) graph.Node { return NewNoise(1) },
	"adsr":              func(sr float64) graph.Node { return NewADSR(sr) },
	"envelope_follower":  func(sr float64) graph.Node { return NewEnvelopeFollower(sr) },
	"lfo":               func(sr float64) graph.Node { return NewLFO(sr) },
	"sample_and_hold":   func(sr float64) graph.Node { return NewSampleAndHold(1) },
	"slew_limiter":      func(sr float64) graph.Node { return NewSlewLimiter(sr) },
	"math":              func(sr float64) graph.Node { return NewMath() },
	"ring_modulator":    func(sr float64) graph.Node { return NewRingModulator(sr) },
	"bit_crusher":       func(sr float64) graph.Node { return NewBitCrusher(sr) },
	"limiter":           func(sr float64) graph.Node { return NewLimiter(sr) },
	"tape_saturation":   func(sr float64) graph.Node { return NewTapeSaturation(sr) },
	"delay":             func(sr float64) graph.Node { return NewDelay(sr) },
	"chorus":            func(sr float64) graph.Node { return NewChorus(sr) },
	"flanger":           func(sr float64) graph.Node { return NewFlanger(sr) },
	"phaser":            func(sr float64) graph.Node { return NewPhaser(sr) },
	"tremolo":           func(sr float64) graph.Node { return NewTremolo(sr) },
	"compressor":        func(sr float64) graph.Node { return NewCompressor(sr) },
	"expander":          func(sr float64) graph.Node { return NewExpander(sr) },
	"gate":              func(sr float64) graph.Node { return NewGate(sr) },
	"reverb":            func(sr float64) graph.Node { return NewReverb(sr) },
	"dc_blocker":        func(sr float64) graph.Node { return NewDCBlocker(sr) },
	"template_in":       func(sr float64) graph.Node { return NewTemplateIn() },
	"template_out":      func(sr float64) graph.Node { return NewTemplateOut() },
	"simple_sampler":    func(sr float64) graph.Node { return NewSimpleSampler(nil) },
	"multi_sampler":     func(sr float64) graph.Node { return NewMultiSampler(nil) },
	"bpm_detector":      func(sr float64) graph.Node { return NewBpmDetector(sr) },
	"click":             func(sr float64) graph.Node { return NewClick(sr) },
}

// New constructs a fresh node of the given type, or (nil, false) if the
// type is unknown (compound nodes like voice_allocator and effect_chain
// are built directly by the preset loader since they need nested graphs
// or sub-node lists rather than a single sample rate).
func New(nodeType string, sampleRate float64) (graph.Node, bool) {
	f, ok := registry[nodeType]
	if !ok {
		return nil, false
	}
	return f(sampleRate), true
}

// Register adds or overrides a factory entry. Exists so a composite node
// built elsewhere (samplers, future enrichment nodes) can participate in
// preset loading without this package knowing about it directly.
func Register(nodeType string, f Factory) {
	registry[nodeType] = f
}

// Types returns every registered node type name, for the UI's node
// picker and for preset-validation error messages.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	return types
}
