package nodes

import (
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/distortion"
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/dynamics"
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/modulation"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const (
	ringModParamFrequency = iota
	ringModParamMix
)

// RingModulator multiplies its audio input by an internal carrier,
// producing sum/difference sidebands.
type RingModulator struct {
	Base
	mod        *modulation.RingModulator
	sampleRate float64
}

func NewRingModulator(sampleRate float64) *RingModulator {
	return &RingModulator{
		Base: newBase("ring_modulator", graph.CategoryModulation,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: ringModParamFrequency, Name: "frequency", Min: 1, Max: 5000, Default: 30, Unit: graph.UnitHz},
				{ID: ringModParamMix, Name: "mix", Min: 0, Max: 1, Default: 1, Unit: graph.UnitPercent},
			}),
		mod:        modulation.NewRingModulator(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *RingModulator) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.mod.SetFrequency(n.params.Get(ringModParamFrequency))
	n.mod.SetMix(n.params.Get(ringModParamMix))
	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		l, r := n.mod.ProcessStereo(in[i*2], in[i*2+1])
		out[i*2] = l
		out[i*2+1] = r
	}
}

func (n *RingModulator) Reset() { n.mod.Reset() }
func (n *RingModulator) Clone() graph.Node {
	c := NewRingModulator(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	crusherParamBits   = iota
	crusherParamRatio
)

// BitCrusher wraps the lo-fi digital distortion effect (bit-depth and
// sample-rate reduction with anti-aliasing and DC blocking already built
// into the underlying primitive).
type BitCrusher struct {
	Base
	left, right *distortion.BitCrusher
	sampleRate  float64
}

func NewBitCrusher(sampleRate float64) *BitCrusher {
	return &BitCrusher{
		Base: newBase("bit_crusher", graph.CategoryModulation,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: crusherParamBits, Name: "bits", Min: 1, Max: 24, Default: 8, Unit: graph.UnitRaw},
				{ID: crusherParamRatio, Name: "sample_rate_ratio", Min: 0.01, Max: 1, Default: 0.25, Unit: graph.UnitPercent},
			}),
		left:       distortion.NewBitCrusher(sampleRate),
		right:      distortion.NewBitCrusher(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *BitCrusher) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	bits := int(n.params.Get(crusherParamBits))
	ratio := n.params.Get(crusherParamRatio)
	n.left.SetBitDepth(bits)
	n.left.SetSampleRateRatio(ratio)
	n.right.SetBitDepth(bits)
	n.right.SetSampleRateRatio(ratio)

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		out[i*2] = float32(n.left.Process(float64(in[i*2])))
		out[i*2+1] = float32(n.right.Process(float64(in[i*2+1])))
	}
}

func (n *BitCrusher) Reset() {
	n.left = distortion.NewBitCrusher(n.sampleRate)
	n.right = distortion.NewBitCrusher(n.sampleRate)
}

func (n *BitCrusher) Clone() graph.Node {
	c := NewBitCrusher(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	limiterParamThreshold = iota
	limiterParamRelease
)

// Limiter is the master-bus safety node: guarantees |sample| <=
// 10^(threshold/20).
type Limiter struct {
	Base
	left, right *dynamics.Limiter
}

func NewLimiter(sampleRate float64) *Limiter {
	return &Limiter{
		Base: newBase("limiter", graph.CategoryDynamics,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: limiterParamThreshold, Name: "threshold_db", Min: -24, Max: 0, Default: -0.3, Unit: graph.UnitDB},
				{ID: limiterParamRelease, Name: "release", Min: 0.001, Max: 1, Default: 0.05, Unit: graph.UnitSeconds},
			}),
		left:  dynamics.NewLimiter(sampleRate),
		right: dynamics.NewLimiter(sampleRate),
	}
}

func (n *Limiter) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	threshold := n.params.Get(limiterParamThreshold)
	release := n.params.Get(limiterParamRelease)
	n.left.SetThreshold(threshold)
	n.left.SetRelease(release)
	n.right.SetThreshold(threshold)
	n.right.SetRelease(release)

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		out[i*2] = n.left.Process(in[i*2])
		out[i*2+1] = n.right.Process(in[i*2+1])
	}
}

func (n *Limiter) Reset() { n.left.Reset(); n.right.Reset() }
func (n *Limiter) Clone() graph.Node {
	c := NewLimiter(44100)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	tapeParamSaturation = iota
	tapeParamMix
)

// TapeSaturation is a supplemental distortion node (beyond the spec's
// minimal node list) exercising pkg/dsp/distortion directly.
type TapeSaturation struct {
	Base
	left, right *distortion.TapeSaturation
}

func NewTapeSaturation(sampleRate float64) *TapeSaturation {
	return &TapeSaturation{
		Base: newBase("tape_saturation", graph.CategoryDynamics,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: tapeParamSaturation, Name: "saturation", Min: 0, Max: 1, Default: 0.3, Unit: graph.UnitPercent},
				{ID: tapeParamMix, Name: "mix", Min: 0, Max: 1, Default: 1, Unit: graph.UnitPercent},
			}),
		left:  distortion.NewTapeSaturation(sampleRate),
		right: distortion.NewTapeSaturation(sampleRate),
	}
}

func (n *TapeSaturation) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	sat := n.params.Get(tapeParamSaturation)
	mix := n.params.Get(tapeParamMix)
	n.left.SetSaturation(sat)
	n.left.SetMix(mix)
	n.right.SetSaturation(sat)
	n.right.SetMix(mix)

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		out[i*2] = float32(n.left.Process(float64(in[i*2])))
		out[i*2+1] = float32(n.right.Process(float64(in[i*2+1])))
	}
}

func (n *TapeSaturation) Reset() { n.left.Reset(); n.right.Reset() }
func (n *TapeSaturation) Clone() graph.Node {
	c := NewTapeSaturation(44100)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}
