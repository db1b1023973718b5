package nodes

import (
	"math"
	"math/rand"

	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/envelope"
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/modulation"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const (
	envFollowerParamAttack = iota
	envFollowerParamRelease
)

// EnvelopeFollower extracts an amplitude envelope from an audio-rate
// signal, the mirror image of AudioToCV but grounded on the dedicated
// envelope.Follower primitive (attack/release coefficients rather than a
// single smoothing factor).
type EnvelopeFollower struct {
	Base
	follower *envelope.Follower
}

func NewEnvelopeFollower(sampleRate float64) *EnvelopeFollower {
	return &EnvelopeFollower{
		Base: newBase("envelope_follower", graph.CategoryModulation,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.CV}},
			[]graph.ParamInfo{
				{ID: envFollowerParamAttack, Name: "attack", Min: 0.0001, Max: 1, Default: 0.01, Unit: graph.UnitSeconds},
				{ID: envFollowerParamRelease, Name: "release", Min: 0.0001, Max: 2, Default: 0.1, Unit: graph.UnitSeconds},
			}),
		follower: envelope.NewFollower(sampleRate),
	}
}

func (n *EnvelopeFollower) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.follower.SetAttack(n.params.Get(envFollowerParamAttack))
	n.follower.SetRelease(n.params.Get(envFollowerParamRelease))

	in := inputs[0]
	out := outputs[0]
	for i := range out {
		mono := (in[i*2] + in[i*2+1]) * 0.5
		out[i] = n.follower.Follow(mono)
	}
}

func (n *EnvelopeFollower) Reset() {}
func (n *EnvelopeFollower) Clone() graph.Node {
	c := NewEnvelopeFollower(44100)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	lfoParamFrequency = iota
	lfoParamDepth
	lfoParamWaveform
)

// LFO is a free-running low-frequency CV source.
type LFO struct {
	Base
	lfo *modulation.LFO
}

func NewLFO(sampleRate float64) *LFO {
	return &LFO{
		Base: newBase("lfo", graph.CategoryModulation, nil,
			[]graph.Port{{Name: "out", Kind: graph.CV}},
			[]graph.ParamInfo{
				{ID: lfoParamFrequency, Name: "frequency", Min: 0.01, Max: 50, Default: 2, Unit: graph.UnitHz},
				{ID: lfoParamDepth, Name: "depth", Min: 0, Max: 1, Default: 1, Unit: graph.UnitPercent},
				{ID: lfoParamWaveform, Name: "waveform", Min: 0, Max: 4, Default: float64(modulation.WaveformSine), Unit: graph.UnitRaw},
			}),
		lfo: modulation.NewLFO(sampleRate),
	}
}

func (n *LFO) Process(_ []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.lfo.SetFrequency(n.params.Get(lfoParamFrequency))
	n.lfo.SetDepth(n.params.Get(lfoParamDepth))
	n.lfo.SetWaveform(modulation.Waveform(int(n.params.Get(lfoParamWaveform))))

	out := outputs[0]
	for i := range out {
		out[i] = float32(n.lfo.Process())
	}
}

func (n *LFO) Reset() { n.lfo.Reset() }
func (n *LFO) Clone() graph.Node {
	c := NewLFO(44100)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

// SampleAndHold samples its input CV each time the trigger CV crosses
// above 0.5 and holds that value until the next trigger.
type SampleAndHold struct {
	Base
	held      float32
	trigHigh  bool
	rng       *rand.Rand
}

func NewSampleAndHold(seed int64) *SampleAndHold {
	return &SampleAndHold{
		Base: newBase("sample_and_hold", graph.CategoryModulation,
			[]graph.Port{{Name: "in", Kind: graph.CV}, {Name: "trigger", Kind: graph.CV}},
			[]graph.Port{{Name: "out", Kind: graph.CV}}, nil),
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (n *SampleAndHold) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	in := inputs[0]
	trig := inputs[1]
	out := outputs[0]
	for i := range out {
		high := trig[i] > 0.5
		if high && !n.trigHigh {
			if len(in) > i {
				n.held = in[i]
			} else {
				n.held = float32(n.rng.Float64()*2 - 1)
			}
		}
		n.trigHigh = high
		out[i] = n.held
	}
}

func (n *SampleAndHold) Reset() { n.held, n.trigHigh = 0, false }
func (n *SampleAndHold) Clone() graph.Node { return NewSampleAndHold(1) }

const slewParamRate = iota

// SlewLimiter smooths step changes in a CV signal to at most Rate units
// per second, preventing zipper noise on discrete modulation sources.
type SlewLimiter struct {
	Base
	value      float32
	sampleRate float64
}

func NewSlewLimiter(sampleRate float64) *SlewLimiter {
	return &SlewLimiter{
		Base: newBase("slew_limiter", graph.CategoryUtility,
			[]graph.Port{{Name: "in", Kind: graph.CV}},
			[]graph.Port{{Name: "out", Kind: graph.CV}},
			[]graph.ParamInfo{{ID: slewParamRate, Name: "rate", Min: 0.001, Max: 1000, Default: 10, Unit: graph.UnitRaw}}),
		sampleRate: sampleRate,
	}
}

func (n *SlewLimiter) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	maxStep := float32(n.params.Get(slewParamRate) / n.sampleRate)
	in := inputs[0]
	out := outputs[0]
	for i := range out {
		delta := in[i] - n.value
		if delta > maxStep {
			delta = maxStep
		} else if delta < -maxStep {
			delta = -maxStep
		}
		n.value += delta
		out[i] = n.value
	}
}

func (n *SlewLimiter) Reset() { n.value = 0 }
func (n *SlewLimiter) Clone() graph.Node {
	c := NewSlewLimiter(n.sampleRate)
	c.params.Set(slewParamRate, n.params.Get(slewParamRate))
	return c
}

// Math operator selectors.
const (
	MathAdd = iota
	MathSub
	MathMul
	MathDiv
	MathMin
	MathMax
)

const mathParamOp = iota

// Math applies a per-sample binary operator to two CV inputs.
type Math struct {
	Base
}

func NewMath() *Math {
	return &Math{Base: newBase("math", graph.CategoryUtility,
		[]graph.Port{{Name: "a", Kind: graph.CV}, {Name: "b", Kind: graph.CV}},
		[]graph.Port{{Name: "out", Kind: graph.CV}},
		[]graph.ParamInfo{{ID: mathParamOp, Name: "op", Min: 0, Max: 5, Default: MathAdd, Unit: graph.UnitRaw}})}
}

func (n *Math) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	op := int(n.params.Get(mathParamOp))
	a, b, out := inputs[0], inputs[1], outputs[0]
	for i := range out {
		x, y := a[i], b[i]
		switch op {
		case MathSub:
			out[i] = x - y
		case MathMul:
			out[i] = x * y
		case MathDiv:
			if y == 0 {
				out[i] = 0
			} else {
				out[i] = x / y
			}
		case MathMin:
			out[i] = float32(math.Min(float64(x), float64(y)))
		case MathMax:
			out[i] = float32(math.Max(float64(x), float64(y)))
		default:
			out[i] = x + y
		}
	}
}

func (n *Math) Reset() {}
func (n *Math) Clone() graph.Node {
	c := NewMath()
	c.params.Set(mathParamOp, n.params.Get(mathParamOp))
	return c
}
