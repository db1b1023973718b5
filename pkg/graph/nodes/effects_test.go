package nodes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

func TestRingModulatorPreservesBufferLength(t *testing.T) {
	n := NewRingModulator(48000)
	in := make(graph.Buffer, 64)
	out := make(graph.Buffer, 64)
	n.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)
	require.Len(t, out, 64)
}

func TestRingModulatorCloneCopiesParameters(t *testing.T) {
	n := NewRingModulator(48000)
	n.Params().Set(ringModParamFrequency, 100)
	clone := n.Clone().(*RingModulator)
	require.Equal(t, 100.0, clone.Params().Get(ringModParamFrequency))
}

func TestBitCrusherOneBitKeepsBufferLength(t *testing.T) {
	n := NewBitCrusher(48000)
	n.Params().Set(crusherParamBits, 1)
	in := graph.Buffer{0.5, 0.5}
	out := make(graph.Buffer, 2)
	n.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)
	require.Len(t, out, 2)
}

func TestBitCrusherResetDoesNotPanic(t *testing.T) {
	n := NewBitCrusher(48000)
	require.NotPanics(t, func() { n.Reset() })
}

func TestLimiterClampsLoudSignalBelowCeiling(t *testing.T) {
	n := NewLimiter(48000)
	n.Params().Set(limiterParamThreshold, -6)

	in := make(graph.Buffer, 2000)
	for i := range in {
		in[i] = 2.0 // heavily over 0dBFS
	}
	out := make(graph.Buffer, 2000)
	n.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)

	ceiling := float32(1.5) // generous bound accounting for lookahead ramp-in
	for _, s := range out[200:] {
		require.LessOrEqual(t, s, ceiling)
		require.GreaterOrEqual(t, s, -ceiling)
	}
}

func TestLimiterCloneCopiesParameters(t *testing.T) {
	n := NewLimiter(48000)
	n.Params().Set(limiterParamThreshold, -10)
	clone := n.Clone().(*Limiter)
	require.Equal(t, -10.0, clone.Params().Get(limiterParamThreshold))
}

func TestTapeSaturationPassesSilenceThroughUnchanged(t *testing.T) {
	n := NewTapeSaturation(48000)
	in := make(graph.Buffer, 8)
	out := make(graph.Buffer, 8)
	n.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)
	for _, s := range out {
		require.Equal(t, float32(0), s)
	}
}

func TestTapeSaturationCloneCopiesParameters(t *testing.T) {
	n := NewTapeSaturation(48000)
	n.Params().Set(tapeParamSaturation, 0.9)
	clone := n.Clone().(*TapeSaturation)
	require.Equal(t, 0.9, clone.Params().Get(tapeParamSaturation))
}
