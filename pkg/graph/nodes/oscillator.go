package nodes

import (
	"math"

	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/oscillator"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const (
	oscParamWaveform = iota
	oscParamFrequency
	oscParamAmplitude
	oscParamPulseWidth
)

// Waveform selectors for the waveform parameter.
const (
	WaveSine = iota
	WaveSaw
	WaveSquare
	WaveTriangle
	WavePulse
)

// Oscillator is a free-running tone generator with a V/Oct CV pitch input
// and an FM CV input, both summed into the base frequency parameter.
// V/Oct follows the (note-69)/12 convention (0V = A4 = 440Hz) uniformly
// with the MIDI-to-CV node; there is no separate, inconsistent scaling
// here.
type Oscillator struct {
	Base
	osc        *oscillator.Oscillator
	sampleRate float64
}

func NewOscillator(sampleRate float64) *Oscillator {
	n := &Oscillator{
		Base: newBase("oscillator", graph.CategoryGenerator,
			[]graph.Port{{Name: "v_oct", Kind: graph.CV}, {Name: "fm", Kind: graph.CV}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: oscParamWaveform, Name: "waveform", Min: 0, Max: 4, Default: WaveSine, Unit: graph.UnitRaw},
				{ID: oscParamFrequency, Name: "frequency", Min: 0.01, Max: 20000, Default: 440, Unit: graph.UnitHz},
				{ID: oscParamAmplitude, Name: "amplitude", Min: 0, Max: 1, Default: 0.5, Unit: graph.UnitPercent},
				{ID: oscParamPulseWidth, Name: "pulse_width", Min: 0.01, Max: 0.99, Default: 0.5, Unit: graph.UnitPercent},
			}),
		osc:        oscillator.New(sampleRate),
		sampleRate: sampleRate,
	}
	return n
}

func (n *Oscillator) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, sampleRate float64) {
	voct := inputs[0]
	fm := inputs[1]
	out := outputs[0]

	baseFreq := n.params.Get(oscParamFrequency)
	amp := float32(n.params.Get(oscParamAmplitude))
	wave := int(n.params.Get(oscParamWaveform))
	pw := n.params.Get(oscParamPulseWidth)

	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		cv := 0.0
		if len(voct) > i {
			cv += float64(voct[i])
		}
		if len(fm) > i {
			cv += float64(fm[i])
		}
		freq := baseFreq * math.Pow(2.0, cv)
		n.osc.SetFrequency(freq)

		var s float32
		switch wave {
		case WaveSaw:
			s = n.osc.Saw()
		case WaveSquare:
			s = n.osc.Square()
		case WaveTriangle:
			s = n.osc.Triangle()
		case WavePulse:
			s = n.osc.Pulse(pw)
		default:
			s = n.osc.Sine()
		}
		s *= amp
		out[i*2] = s
		out[i*2+1] = s
	}
}

func (n *Oscillator) Reset() { n.osc.Reset() }

func (n *Oscillator) Clone() graph.Node {
	clone := NewOscillator(n.sampleRate)
	for _, info := range n.params.List() {
		clone.params.Set(info.ID, n.params.Get(info.ID))
	}
	return clone
}
