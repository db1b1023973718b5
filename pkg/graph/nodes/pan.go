package nodes

import (
	dsppan "github.com/justyntemme/lightningbeam-daw/pkg/dsp/pan"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const panParamPosition = iota

// Pan applies constant-power stereo panning to an incoming stereo signal
// (the left/right channels are treated independently as in ProcessStereo).
type Pan struct {
	Base
	left, right, outL, outR []float32
}

func NewPan() *Pan {
	return &Pan{Base: newBase("pan", graph.CategoryUtility,
		[]graph.Port{{Name: "in", Kind: graph.Audio}},
		[]graph.Port{{Name: "out", Kind: graph.Audio}},
		[]graph.ParamInfo{{ID: panParamPosition, Name: "pan", Min: -1, Max: 1, Default: 0, Unit: graph.UnitRaw}})}
}

func (n *Pan) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	frames := len(inputs[0]) / 2
	if cap(n.left) < frames {
		n.left = make([]float32, frames)
		n.right = make([]float32, frames)
		n.outL = make([]float32, frames)
		n.outR = make([]float32, frames)
	}
	n.left, n.right, n.outL, n.outR = n.left[:frames], n.right[:frames], n.outL[:frames], n.outR[:frames]
	deinterleave(inputs[0], n.left, n.right)
	pos := float32(n.params.Get(panParamPosition))
	dsppan.ProcessStereo(n.left, n.right, pos, dsppan.ConstantPower, n.outL, n.outR)
	interleave(n.outL, n.outR, outputs[0])
}

func (n *Pan) Reset()            {}
func (n *Pan) Clone() graph.Node { return NewPan() }
