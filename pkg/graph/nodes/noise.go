package nodes

import (
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/utility"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const (
	noiseParamType = iota
	noiseParamAmplitude
)

// Noise colours, matching utility.NoiseType.
const (
	NoiseWhite = iota
	NoisePink
	NoiseBrown
	NoiseBlue
	NoiseViolet
)

// Noise generates a colored noise signal seeded at construction time so
// output is reproducible across runs, rather than reading a thread-local
// global RNG.
type Noise struct {
	Base
	gen *utility.NoiseGenerator
}

func NewNoise(seed int64) *Noise {
	gen := utility.NewNoiseGenerator(utility.WhiteNoise)
	gen.SetSeed(seed)
	return &Noise{
		Base: newBase("noise", graph.CategoryGenerator, nil,
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: noiseParamType, Name: "type", Min: 0, Max: 4, Default: NoiseWhite, Unit: graph.UnitRaw},
				{ID: noiseParamAmplitude, Name: "amplitude", Min: 0, Max: 1, Default: 0.3, Unit: graph.UnitPercent},
			}),
		gen: gen,
	}
}

func (n *Noise) Process(_ []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.gen.SetType(utility.NoiseType(int(n.params.Get(noiseParamType))))
	amp := float32(n.params.Get(noiseParamAmplitude))
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		s := n.gen.Next() * amp
		out[i*2] = s
		out[i*2+1] = s
	}
}

func (n *Noise) Reset() { n.gen.Reset() }
func (n *Noise) Clone() graph.Node {
	c := NewNoise(1)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}
