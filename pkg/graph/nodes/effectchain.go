package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

const chainParamBypass = iota

// EffectChain runs a fixed sequence of audio nodes back-to-back, passing
// the previous stage's output as the next stage's input. Setting bypass
// turns the chain into a passthrough without touching any stage's state.
type EffectChain struct {
	Base
	stages []graph.Node
	scratch []graph.Buffer
}

func NewEffectChain(stages ...graph.Node) *EffectChain {
	c := &EffectChain{
		Base: newBase("effect_chain", graph.CategoryCompound,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{{ID: chainParamBypass, Name: "bypass", Min: 0, Max: 1, Default: 0, Unit: graph.UnitRaw}}),
		stages: stages,
	}
	c.scratch = make([]graph.Buffer, len(stages))
	return c
}

func (n *EffectChain) Process(inputs []graph.Buffer, outputs []graph.Buffer, midiInputs, midiOutputs [][]graph.MIDIEvent, sampleRate float64) {
	if n.params.Get(chainParamBypass) != 0 || len(n.stages) == 0 {
		copy(outputs[0], inputs[0])
		return
	}

	cur := inputs[0]
	for i, stage := range n.stages {
		if cap(n.scratch[i]) < len(outputs[0]) {
			n.scratch[i] = make(graph.Buffer, len(outputs[0]))
		}
		dst := n.scratch[i][:len(outputs[0])]
		stage.Process([]graph.Buffer{cur}, []graph.Buffer{dst}, nil, nil, sampleRate)
		cur = dst
	}
	copy(outputs[0], cur)
}

func (n *EffectChain) Reset() {
	for _, s := range n.stages {
		s.Reset()
	}
}

// Stages returns the chain's sequence of wrapped nodes, for preset
// serialisation.
func (n *EffectChain) Stages() []graph.Node {
	return n.stages
}

func (n *EffectChain) Clone() graph.Node {
	cloned := make([]graph.Node, len(n.stages))
	for i, s := range n.stages {
		cloned[i] = s.Clone()
	}
	c := NewEffectChain(cloned...)
	c.params.Set(chainParamBypass, n.params.Get(chainParamBypass))
	return c
}
