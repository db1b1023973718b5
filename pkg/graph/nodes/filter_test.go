package nodes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

func TestFilterDefaultsToLowpassAt1kHz(t *testing.T) {
	f := NewFilter(48000)
	require.Equal(t, float64(FilterLowpass), f.Params().Get(filterParamType))
	require.Equal(t, 1000.0, f.Params().Get(filterParamFrequency))
}

func TestFilterProcessPreservesBufferLength(t *testing.T) {
	f := NewFilter(48000)
	in := graph.Buffer{1, 1, 0.5, 0.5, -1, -1, 0, 0}
	out := make(graph.Buffer, 8)
	f.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)
	require.Len(t, out, 8)
}

func TestFilterRecomputesCoefficientsOnlyOnParamChange(t *testing.T) {
	f := NewFilter(48000)
	in := make(graph.Buffer, 8)
	out := make(graph.Buffer, 8)

	f.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)
	require.Equal(t, 1000.0, f.lastFreq)

	f.Params().Set(filterParamFrequency, 5000)
	f.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)
	require.Equal(t, 5000.0, f.lastFreq)
}

func TestFilterCloneCopiesParameters(t *testing.T) {
	f := NewFilter(48000)
	f.Params().Set(filterParamType, FilterHighpass)
	f.Params().Set(filterParamFrequency, 2000)

	clone := f.Clone().(*Filter)
	require.Equal(t, float64(FilterHighpass), clone.Params().Get(filterParamType))
	require.Equal(t, 2000.0, clone.Params().Get(filterParamFrequency))
}

func TestDeinterleaveInterleaveRoundTrip(t *testing.T) {
	stereo := []float32{1, 2, 3, 4, 5, 6}
	left := make([]float32, 3)
	right := make([]float32, 3)
	deinterleave(stereo, left, right)
	require.Equal(t, []float32{1, 3, 5}, left)
	require.Equal(t, []float32{2, 4, 6}, right)

	roundTrip := make([]float32, 6)
	interleave(left, right, roundTrip)
	require.Equal(t, stereo, roundTrip)
}
