package audiopool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddReturnsStableInsertionOrderIndices(t *testing.T) {
	p := New()
	a := p.Add(&Sample{Channels: 2, SampleRate: 48000})
	b := p.Add(&Sample{Channels: 1, SampleRate: 44100})
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)
}

func TestRemoveLeavesIndexStableButNil(t *testing.T) {
	p := New()
	idx := p.Add(&Sample{Channels: 2, SampleRate: 48000})
	p.Remove(idx)
	require.Nil(t, p.Get(idx))
	require.Equal(t, 1, p.Len(), "the slot must remain, not shift later indices")
}

func TestGetOutOfRangeReturnsNil(t *testing.T) {
	p := New()
	require.Nil(t, p.Get(5))
	require.Nil(t, p.Get(-1))
}

func TestSampleFramesDividesByChannels(t *testing.T) {
	s := &Sample{Data: make([]float32, 8), Channels: 2}
	require.Equal(t, 4, s.Frames())
}

func TestSampleFramesZeroChannelsIsZero(t *testing.T) {
	s := &Sample{Data: make([]float32, 8), Channels: 0}
	require.Equal(t, 0, s.Frames())
}

func TestRenderFromFileMonoToStereoDuplicatesChannel(t *testing.T) {
	p := New()
	idx := p.Add(&Sample{Data: []float32{1.0, 1.0}, Channels: 1, SampleRate: 48000})

	out := make([]float32, 2)
	produced := p.RenderFromFile(idx, out, 0, 1.0, 48000, 2)
	require.Equal(t, 1, produced)
	require.InDelta(t, 1.0, out[0], 1e-6)
	require.InDelta(t, 1.0, out[1], 1e-6)
}

func TestRenderFromFileAppliesGainAndAccumulates(t *testing.T) {
	p := New()
	idx := p.Add(&Sample{Data: []float32{1.0, 1.0, 1.0, 1.0}, Channels: 1, SampleRate: 48000})

	out := []float32{0.5, 0.5}
	p.RenderFromFile(idx, out, 0, 0.5, 48000, 1)
	require.InDelta(t, 1.0, out[0], 1e-6)
}

func TestRenderFromFileRemovedIndexProducesNothing(t *testing.T) {
	p := New()
	idx := p.Add(&Sample{Data: []float32{1, 1}, Channels: 1, SampleRate: 48000})
	p.Remove(idx)

	out := make([]float32, 2)
	produced := p.RenderFromFile(idx, out, 0, 1.0, 48000, 1)
	require.Equal(t, 0, produced)
	require.Equal(t, []float32{0, 0}, out)
}

func TestRenderFromFileStopsAtSourceEnd(t *testing.T) {
	p := New()
	idx := p.Add(&Sample{Data: []float32{1, 1}, Channels: 1, SampleRate: 48000})

	out := make([]float32, 10)
	produced := p.RenderFromFile(idx, out, 0, 1.0, 48000, 1)
	require.Less(t, produced, 10)
}
