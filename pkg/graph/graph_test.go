package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph/nodes"
)

func buildGainChain(t *testing.T) (*graph.Graph, int, int, int) {
	t.Helper()
	g := graph.New()
	g.SetBlockSize(4)
	in := g.AddNode(nodes.NewAudioInput())
	gain := g.AddNode(nodes.NewGain())
	out := g.AddNode(nodes.NewOutput())
	require.NoError(t, g.Connect(in, 0, gain, 0))
	require.NoError(t, g.Connect(gain, 0, out, 0))
	g.SetOutputNode(out)
	return g, in, gain, out
}

func TestConnectRejectsOutOfRangePort(t *testing.T) {
	g, in, _, out := buildGainChain(t)
	err := g.Connect(in, 99, out, 0)
	require.Error(t, err)
}

func TestConnectRejectsCycle(t *testing.T) {
	g, in, gain, out := buildGainChain(t)
	err := g.Connect(out, 0, in, 0)
	require.Error(t, err)
	_ = gain
}

func TestConnectReplacesExistingInputConnection(t *testing.T) {
	g := graph.New()
	g.SetBlockSize(4)
	a := g.AddNode(nodes.NewAudioInput())
	b := g.AddNode(nodes.NewAudioInput())
	out := g.AddNode(nodes.NewOutput())
	require.NoError(t, g.Connect(a, 0, out, 0))
	require.NoError(t, g.Connect(b, 0, out, 0))

	conns := g.ConnectionList()
	require.Len(t, conns, 1, "a second connection into the same input port must replace the first")
	require.Equal(t, b, conns[0].SrcNode)
}

func TestRemoveNodeDropsItsConnections(t *testing.T) {
	g, in, gain, out := buildGainChain(t)
	g.RemoveNode(gain)
	require.Nil(t, g.Node(gain))
	for _, c := range g.ConnectionList() {
		require.NotEqual(t, gain, c.SrcNode)
		require.NotEqual(t, gain, c.DstNode)
	}
	_ = in
	_ = out
}

func TestOrderRespectsConnectionDependencies(t *testing.T) {
	g, in, gain, out := buildGainChain(t)
	order := g.Order()
	pos := map[int]int{}
	for i, id := range order {
		pos[id] = i
	}
	require.Less(t, pos[in], pos[gain])
	require.Less(t, pos[gain], pos[out])
}

func TestProcessPropagatesAudioToOutput(t *testing.T) {
	g, in, _, _ := buildGainChain(t)
	input := g.Node(in).(*nodes.AudioInput)
	input.InjectAudio(graph.Buffer{0.5, 0.5, 0.5, 0.5})

	out := g.Process(48000, nil)
	require.NotNil(t, out)
	require.Len(t, out, 4)
}

func TestProcessReturnsNilWithoutOutputNode(t *testing.T) {
	g := graph.New()
	g.SetBlockSize(4)
	g.AddNode(nodes.NewGain())
	out := g.Process(48000, nil)
	require.Nil(t, out)
}

func TestSetMIDITargetTracksMembership(t *testing.T) {
	g := graph.New()
	n := g.AddNode(nodes.NewMidiInput())
	g.SetMIDITarget(n, true)
	require.Contains(t, g.MIDITargets(), n)
	g.SetMIDITarget(n, false)
	require.NotContains(t, g.MIDITargets(), n)
}

func TestDisconnectRemovesConnection(t *testing.T) {
	g, in, gain, _ := buildGainChain(t)
	g.Disconnect(in, 0, gain, 0)
	for _, c := range g.ConnectionList() {
		require.False(t, c.SrcNode == in && c.DstNode == gain)
	}
}
