package nodes

import (
	dspgain "github.com/justyntemme/lightningbeam-daw/pkg/dsp/gain"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const gainParamGain = iota

// Gain scales its stereo input by a linear gain factor.
type Gain struct {
	Base
}

func NewGain() *Gain {
	return &Gain{Base: newBase("gain", graph.CategoryUtility,
		[]graph.Port{{Name: "in", Kind: graph.Audio}},
		[]graph.Port{{Name: "out", Kind: graph.Audio}},
		[]graph.ParamInfo{{ID: gainParamGain, Name: "gain", Min: 0, Max: 4, Default: 1, Unit: graph.UnitRaw}})}
}

func (n *Gain) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	g := float32(n.params.Get(gainParamGain))
	dspgain.ApplyBufferTo(inputs[0], g, outputs[0])
}

func (n *Gain) Reset() {}
func (n *Gain) Clone() graph.Node {
	c := NewGain()
	c.params.Set(gainParamGain, n.params.Get(gainParamGain))
	return c
}
