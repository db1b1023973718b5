package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

// Mixer sums a fixed number of stereo audio inputs, each scaled by its
// own gain parameter, into one stereo output.
type Mixer struct {
	Base
	numInputs int
}

func NewMixer(numInputs int) *Mixer {
	ports := make([]graph.Port, numInputs)
	infos := make([]graph.ParamInfo, numInputs)
	for i := 0; i < numInputs; i++ {
		ports[i] = graph.Port{Name: "in", Kind: graph.Audio}
		infos[i] = graph.ParamInfo{ID: i, Name: "gain", Min: 0, Max: 2, Default: 1, Unit: graph.UnitRaw}
	}
	return &Mixer{
		Base:      newBase("mixer", graph.CategoryUtility, ports, []graph.Port{{Name: "out", Kind: graph.Audio}}, infos),
		numInputs: numInputs,
	}
}

func (n *Mixer) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	out := outputs[0]
	for i := range out {
		out[i] = 0
	}
	for in := 0; in < n.numInputs; in++ {
		g := float32(n.params.Get(in))
		buf := inputs[in]
		for i := range out {
			out[i] += buf[i] * g
		}
	}
}

func (n *Mixer) Reset() {}
func (n *Mixer) Clone() graph.Node {
	c := NewMixer(n.numInputs)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

// Splitter copies one stereo input to a fixed number of outputs.
type Splitter struct {
	Base
	numOutputs int
}

func NewSplitter(numOutputs int) *Splitter {
	ports := make([]graph.Port, numOutputs)
	for i := range ports {
		ports[i] = graph.Port{Name: "out", Kind: graph.Audio}
	}
	return &Splitter{
		Base:       newBase("splitter", graph.CategoryUtility, []graph.Port{{Name: "in", Kind: graph.Audio}}, ports, nil),
		numOutputs: numOutputs,
	}
}

func (n *Splitter) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	for _, out := range outputs {
		copy(out, inputs[0])
	}
}
func (n *Splitter) Reset() {}
func (n *Splitter) Clone() graph.Node { return NewSplitter(n.numOutputs) }

const constantParamValue = iota

// Constant outputs a fixed CV value every sample, useful for patching a
// literal into a modulation input.
type Constant struct {
	Base
}

func NewConstant() *Constant {
	return &Constant{Base: newBase("constant", graph.CategoryUtility, nil,
		[]graph.Port{{Name: "out", Kind: graph.CV}},
		[]graph.ParamInfo{{ID: constantParamValue, Name: "value", Min: -10, Max: 10, Default: 0, Unit: graph.UnitRaw}})}
}

func (n *Constant) Process(_ []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	v := float32(n.params.Get(constantParamValue))
	out := outputs[0]
	for i := range out {
		out[i] = v
	}
}
func (n *Constant) Reset()            {}
func (n *Constant) Clone() graph.Node { return NewConstant() }
