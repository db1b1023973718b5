package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownMixMonoDuplicatesIntoStereo(t *testing.T) {
	src := []float32{0.5, 0.25}
	dst := make([]float32, 4)
	DownMix(src, 1, dst)
	require.Equal(t, []float32{0.5, 0.5, 0.25, 0.25}, dst)
}

func TestDownMixStereoPassesThroughFirstTwoChannels(t *testing.T) {
	src := []float32{0.1, 0.2, 0.3, 0.4}
	dst := make([]float32, 4)
	DownMix(src, 2, dst)
	require.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, dst)
}

func TestDownMixMultichannelKeepsOnlyFirstTwo(t *testing.T) {
	src := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6} // one 6-channel frame, then a second
	dst := make([]float32, 2)
	DownMix(src[:6], 6, dst)
	require.Equal(t, []float32{0.1, 0.2}, dst)
}

func TestUpMixMonoAveragesLeftAndRight(t *testing.T) {
	src := []float32{0.5, 1.5}
	dst := make([]float32, 1)
	UpMix(src, 1, dst)
	require.Equal(t, []float32{1.0}, dst)
}

func TestUpMixStereoPassesThrough(t *testing.T) {
	src := []float32{0.1, 0.2}
	dst := make([]float32, 2)
	UpMix(src, 2, dst)
	require.Equal(t, []float32{0.1, 0.2}, dst)
}

func TestUpMixMultichannelSilencesExtraChannels(t *testing.T) {
	src := []float32{0.1, 0.2}
	dst := make([]float32, 6)
	for i := range dst {
		dst[i] = 9
	}
	UpMix(src, 6, dst)
	require.Equal(t, []float32{0.1, 0.2, 0, 0, 0, 0}, dst)
}

func TestDownMixUpMixRoundTripStereo(t *testing.T) {
	original := []float32{0.3, -0.4, 0.9, -0.2}
	hw := make([]float32, 4)
	UpMix(original, 2, hw)
	back := make([]float32, 4)
	DownMix(hw, 2, back)
	require.Equal(t, original, back)
}
