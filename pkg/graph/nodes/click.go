package nodes

import (
	"math"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const (
	clickParamFreq1 = iota
	clickParamFreq2
	clickParamDecayMs
)

// Click is a metronome-free click generator node: a gate-rise on its CV
// input retriggers a short two-tone percussive envelope, the same
// woodblock shape internal/metronome uses for the master-bus click, but
// exposed as an ordinary graph node so presets can route their own beat
// clock into a custom click voice instead of the engine's built-in one.
type Click struct {
	Base
	sampleRate float64
	lastGate   float32
	pos        int
	active     bool
}

func NewClick(sampleRate float64) *Click {
	return &Click{
		Base: newBase("click", graph.CategoryUtility,
			[]graph.Port{{Name: "gate", Kind: graph.CV}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: clickParamFreq1, Name: "frequency_1", Min: 100, Max: 5000, Default: 1200, Unit: graph.UnitHz},
				{ID: clickParamFreq2, Name: "frequency_2", Min: 100, Max: 8000, Default: 2400, Unit: graph.UnitHz},
				{ID: clickParamDecayMs, Name: "decay_ms", Min: 1, Max: 100, Default: 10, Unit: graph.UnitRaw},
			}),
		sampleRate: sampleRate,
	}
}

func (n *Click) Process(inputs []graph.Buffer, outputs []graph.Buffer, _, _ [][]graph.MIDIEvent, sampleRate float64) {
	gate := inputs[0]
	out := outputs[0]
	f1 := n.params.Get(clickParamFreq1)
	f2 := n.params.Get(clickParamFreq2)
	clickSamples := int(sampleRate * n.params.Get(clickParamDecayMs) / 1000.0)
	if clickSamples < 1 {
		clickSamples = 1
	}

	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		g := gate[i]
		if g > 0 && n.lastGate <= 0 {
			n.active = true
			n.pos = 0
		}
		n.lastGate = g

		var s float32
		if n.active && n.pos < clickSamples {
			t := float64(n.pos) / sampleRate
			env := 1.0 - float64(n.pos)/float64(clickSamples)
			env *= env
			noise := math.Sin(float64(n.pos)*0.1) * 0.1
			v := 0.3*math.Sin(2*math.Pi*f1*t) + 0.2*math.Sin(2*math.Pi*f2*t)
			s = float32((v + noise) * env * 0.5)
			n.pos++
			if n.pos >= clickSamples {
				n.active = false
			}
		}
		out[i*2] = s
		out[i*2+1] = s
	}
}

func (n *Click) Reset() { n.lastGate = 0; n.pos = 0; n.active = false }
func (n *Click) Clone() graph.Node {
	c := NewClick(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}
