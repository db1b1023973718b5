package recording

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s := Arm(1, 1, filepath.Join(t.TempDir(), "take.wav"), 0)
	require.NoError(t, s.Start(48000, 2, 1.0))
	return s
}

func TestArmStartsInArmedState(t *testing.T) {
	s := Arm(1, 1, filepath.Join(t.TempDir(), "take.wav"), 2.5)
	require.Equal(t, Armed, s.State)
	require.Equal(t, 2.5, s.StartTime)
}

func TestStartTransitionsToRecording(t *testing.T) {
	s := newSession(t)
	require.Equal(t, Recording, s.State)
}

func TestSkipSamplesDiscardsStaleContent(t *testing.T) {
	s := newSession(t)
	s.SkipSamples(4)

	done, err := s.AddSamples([]float32{1, 2, 3, 4})
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, 0.0, s.Duration())
}

func TestAddSamplesAccumulatesDuration(t *testing.T) {
	s := newSession(t)
	frames := 480
	samples := make([]float32, frames*2)
	_, err := s.AddSamples(samples)
	require.NoError(t, err)
	require.InDelta(t, float64(frames)/48000.0, s.Duration(), 1e-9)
}

func TestAddSamplesFlushesAtInterval(t *testing.T) {
	s := newSession(t)
	// flushIntervalFrames = 48000 frames (1 second); feed exactly that many.
	samples := make([]float32, 48000*2)
	flushed, err := s.AddSamples(samples)
	require.NoError(t, err)
	require.True(t, flushed)
}

func TestPauseSuspendsAccumulation(t *testing.T) {
	s := newSession(t)
	s.Pause()
	require.Equal(t, Paused, s.State)

	done, err := s.AddSamples([]float32{1, 1, 1, 1})
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, 0.0, s.Duration())

	s.Resume()
	require.Equal(t, Recording, s.State)
}

func TestFinalizeReturnsAccumulatedAudioAndResetsState(t *testing.T) {
	s := newSession(t)
	samples := []float32{0.5, -0.5, 0.25, -0.25}
	_, err := s.AddSamples(samples)
	require.NoError(t, err)

	path, waveform, audioData, err := s.Finalize()
	require.NoError(t, err)
	require.NotEmpty(t, path)
	require.NotEmpty(t, waveform)
	require.Equal(t, samples, audioData)
	require.Equal(t, Idle, s.State)
}

func TestQuantizeI16ClampsOutOfRangeSamples(t *testing.T) {
	require.Equal(t, int16(32767), quantizeI16(2.0))
	require.Equal(t, int16(-32767), quantizeI16(-2.0))
	require.Equal(t, int16(0), quantizeI16(0))
}
