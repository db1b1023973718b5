package nodes

import (
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/envelope"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const (
	adsrParamAttack = iota
	adsrParamDecay
	adsrParamSustain
	adsrParamRelease
)

// ADSR tracks a CV gate input and outputs a linear attack/decay/sustain/
// release envelope, per-sample increments of 1/(t*sampleRate) per stage.
type ADSR struct {
	Base
	env        *envelope.ADSR
	gateHigh   bool
	sampleRate float64
}

func NewADSR(sampleRate float64) *ADSR {
	return &ADSR{
		Base: newBase("adsr", graph.CategoryModulation,
			[]graph.Port{{Name: "gate", Kind: graph.CV}},
			[]graph.Port{{Name: "out", Kind: graph.CV}},
			[]graph.ParamInfo{
				{ID: adsrParamAttack, Name: "attack", Min: 0.001, Max: 10, Default: 0.01, Unit: graph.UnitSeconds},
				{ID: adsrParamDecay, Name: "decay", Min: 0.001, Max: 10, Default: 0.1, Unit: graph.UnitSeconds},
				{ID: adsrParamSustain, Name: "sustain", Min: 0, Max: 1, Default: 0.7, Unit: graph.UnitPercent},
				{ID: adsrParamRelease, Name: "release", Min: 0.001, Max: 10, Default: 0.3, Unit: graph.UnitSeconds},
			}),
		env:        envelope.New(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *ADSR) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.env.SetADSR(
		n.params.Get(adsrParamAttack),
		n.params.Get(adsrParamDecay),
		n.params.Get(adsrParamSustain),
		n.params.Get(adsrParamRelease),
	)

	gate := inputs[0]
	out := outputs[0]
	for i := range out {
		high := gate[i] > 0.5
		if high && !n.gateHigh {
			n.env.Trigger()
		} else if !high && n.gateHigh {
			n.env.Release()
		}
		n.gateHigh = high
		out[i] = n.env.Next()
	}
}

func (n *ADSR) Reset() {
	n.env.Reset()
	n.gateHigh = false
}

func (n *ADSR) Clone() graph.Node {
	c := NewADSR(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

// Stage exposes the envelope's current stage for tests and UI.
func (n *ADSR) Stage() envelope.Stage { return n.env.GetStage() }
