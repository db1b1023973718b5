package metronome

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStartsDisabled(t *testing.T) {
	m := New(48000)
	require.False(t, m.Enabled())
}

func TestProcessSilentWhenDisabled(t *testing.T) {
	m := New(48000)
	out := make([]float32, 256*2)
	m.Process(out, 0, true, 48000, 2)
	for _, s := range out {
		require.Equal(t, float32(0), s)
	}
}

func TestProcessSilentWhenNotPlaying(t *testing.T) {
	m := New(48000)
	m.SetEnabled(true)
	out := make([]float32, 256*2)
	m.Process(out, 0, false, 48000, 2)
	for _, s := range out {
		require.Equal(t, float32(0), s)
	}
}

func TestEnablingMidTransportSuppressesImmediateClick(t *testing.T) {
	m := New(48000)
	m.SetEnabled(true)

	out := make([]float32, 64*2)
	m.Process(out, 1000, true, 48000, 2)
	for _, s := range out {
		require.Equal(t, float32(0), s, "click must not fire immediately on enable, only at the next beat boundary")
	}
}

func TestProcessMixesAdditivelyIntoExistingContent(t *testing.T) {
	m := New(48000)
	m.SetEnabled(true)

	out := make([]float32, 480*2)
	for i := range out {
		out[i] = 0.1
	}
	m.Process(out, 0, true, 48000, 2)

	foundAboveBaseline := false
	for _, s := range out {
		if s != 0.1 {
			foundAboveBaseline = true
			break
		}
	}
	require.True(t, foundAboveBaseline, "click samples must add onto, not overwrite, existing buffer content")
}

func TestClickTrackIsDeterministicAcrossRuns(t *testing.T) {
	m1 := New(48000)
	m1.SetEnabled(true)
	out1 := make([]float32, 960*2)
	m1.Process(out1, 0, true, 48000, 2)

	m2 := New(48000)
	m2.SetEnabled(true)
	out2 := make([]float32, 960*2)
	m2.Process(out2, 0, true, 48000, 2)

	require.Equal(t, out1, out2)
}

func TestSetEnabledFalseResetsBeatTracking(t *testing.T) {
	m := New(48000)
	m.SetEnabled(true)
	out := make([]float32, 4800*2)
	m.Process(out, 0, true, 48000, 2)

	m.SetEnabled(false)
	require.False(t, m.Enabled())
}
