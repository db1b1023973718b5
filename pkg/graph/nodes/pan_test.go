package nodes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

func TestPanCenterPassesThrough(t *testing.T) {
	p := NewPan()
	in := graph.Buffer{1, 0.5, -1, -0.5}
	out := make(graph.Buffer, 4)

	p.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)

	require.Equal(t, in, out)
}

func TestPanHardLeftAttenuatesRightChannel(t *testing.T) {
	p := NewPan()
	p.Params().Set(panParamPosition, -1)
	in := graph.Buffer{1, 1}
	out := make(graph.Buffer, 2)

	p.Process([]graph.Buffer{in}, []graph.Buffer{out}, nil, nil, 48000)

	require.Equal(t, float32(1), out[0])
	require.Less(t, out[1], float32(1))
}

func TestPanClampsOutOfRangePosition(t *testing.T) {
	p := NewPan()
	p.Params().Set(panParamPosition, 5)
	require.Equal(t, 1.0, p.Params().Get(panParamPosition))
}
