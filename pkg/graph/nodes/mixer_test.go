package nodes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

func TestMixerSumsInputsAtUnityGain(t *testing.T) {
	m := NewMixer(2)
	a := graph.Buffer{0.25, 0.25}
	b := graph.Buffer{0.25, 0.25}
	out := make(graph.Buffer, 2)

	m.Process([]graph.Buffer{a, b}, []graph.Buffer{out}, nil, nil, 48000)

	require.InDelta(t, 0.5, out[0], 1e-6)
	require.InDelta(t, 0.5, out[1], 1e-6)
}

func TestMixerAppliesPerInputGain(t *testing.T) {
	m := NewMixer(2)
	m.Params().Set(0, 0) // mute first input
	a := graph.Buffer{1, 1}
	b := graph.Buffer{1, 1}
	out := make(graph.Buffer, 2)

	m.Process([]graph.Buffer{a, b}, []graph.Buffer{out}, nil, nil, 48000)

	require.InDelta(t, 1.0, out[0], 1e-6)
}

func TestMixerCloneCopiesGains(t *testing.T) {
	m := NewMixer(2)
	m.Params().Set(0, 0.3)
	clone := m.Clone().(*Mixer)
	require.Equal(t, 0.3, clone.Params().Get(0))
}

func TestSplitterCopiesInputToEveryOutput(t *testing.T) {
	s := NewSplitter(3)
	in := graph.Buffer{0.1, -0.1}
	outs := []graph.Buffer{make(graph.Buffer, 2), make(graph.Buffer, 2), make(graph.Buffer, 2)}

	s.Process([]graph.Buffer{in}, outs, nil, nil, 48000)

	for _, out := range outs {
		require.Equal(t, in, out)
	}
}

func TestConstantOutputsConfiguredValueEverySample(t *testing.T) {
	c := NewConstant()
	c.Params().Set(constantParamValue, 5)
	out := make(graph.Buffer, 4)

	c.Process(nil, []graph.Buffer{out}, nil, nil, 48000)

	for _, s := range out {
		require.Equal(t, float32(5), s)
	}
}

func TestConstantClampsOutOfRangeValue(t *testing.T) {
	c := NewConstant()
	c.Params().Set(constantParamValue, 100)
	require.Equal(t, 10.0, c.Params().Get(constantParamValue))
}
