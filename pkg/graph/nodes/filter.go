package nodes

import (
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/filter"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const (
	filterParamType = iota
	filterParamFrequency
	filterParamQ
	filterParamGainDB
)

// Filter type selectors.
const (
	FilterLowpass = iota
	FilterHighpass
	FilterBandpass
	FilterNotch
	FilterAllpass
	FilterPeakingEQ
	FilterLowShelf
	FilterHighShelf
)

// Filter is a stereo biquad (Direct Form II Transposed) node. Coefficient
// arguments are always passed in cookbook order (sampleRate, frequency,
// q[, gainDB]) — never with sampleRate and frequency swapped.
type Filter struct {
	Base
	biquad     *filter.Biquad
	sampleRate float64
	lastType   int
	lastFreq   float64
	lastQ      float64
	lastGain   float64
	left       []float32
	right      []float32
}

func NewFilter(sampleRate float64) *Filter {
	return &Filter{
		Base: newBase("biquad_filter", graph.CategoryFilter,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: filterParamType, Name: "type", Min: 0, Max: 7, Default: FilterLowpass, Unit: graph.UnitRaw},
				{ID: filterParamFrequency, Name: "frequency", Min: 20, Max: 20000, Default: 1000, Unit: graph.UnitHz},
				{ID: filterParamQ, Name: "q", Min: 0.1, Max: 20, Default: 0.707, Unit: graph.UnitRaw},
				{ID: filterParamGainDB, Name: "gain_db", Min: -24, Max: 24, Default: 0, Unit: graph.UnitDB},
			}),
		biquad:     filter.NewBiquad(2),
		sampleRate: sampleRate,
	}
}

func (n *Filter) refreshCoefficients() {
	t := int(n.params.Get(filterParamType))
	freq := n.params.Get(filterParamFrequency)
	q := n.params.Get(filterParamQ)
	gain := n.params.Get(filterParamGainDB)
	if t == n.lastType && freq == n.lastFreq && q == n.lastQ && gain == n.lastGain {
		return
	}
	n.lastType, n.lastFreq, n.lastQ, n.lastGain = t, freq, q, gain

	switch t {
	case FilterHighpass:
		n.biquad.SetHighpass(n.sampleRate, freq, q)
	case FilterBandpass:
		n.biquad.SetBandpass(n.sampleRate, freq, q)
	case FilterNotch:
		n.biquad.SetNotch(n.sampleRate, freq, q)
	case FilterAllpass:
		n.biquad.SetAllpass(n.sampleRate, freq, q)
	case FilterPeakingEQ:
		n.biquad.SetPeakingEQ(n.sampleRate, freq, q, gain)
	case FilterLowShelf:
		n.biquad.SetLowShelf(n.sampleRate, freq, q, gain)
	case FilterHighShelf:
		n.biquad.SetHighShelf(n.sampleRate, freq, q, gain)
	default:
		n.biquad.SetLowpass(n.sampleRate, freq, q)
	}
}

func (n *Filter) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.refreshCoefficients()
	copy(outputs[0], inputs[0])
	frames := len(outputs[0]) / 2
	if cap(n.left) < frames {
		n.left = make([]float32, frames)
		n.right = make([]float32, frames)
	}
	n.left = n.left[:frames]
	n.right = n.right[:frames]
	deinterleave(outputs[0], n.left, n.right)
	n.biquad.Process(n.left, 0)
	n.biquad.Process(n.right, 1)
	interleave(n.left, n.right, outputs[0])
}

func (n *Filter) Reset() { n.biquad.Reset() }
func (n *Filter) Clone() graph.Node {
	c := NewFilter(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

func deinterleave(stereo, left, right []float32) {
	for i := range left {
		left[i] = stereo[i*2]
		right[i] = stereo[i*2+1]
	}
}

func interleave(left, right, stereo []float32) {
	for i := range left {
		stereo[i*2] = left[i]
		stereo[i*2+1] = right[i]
	}
}
