package nodes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

func TestNewBuildsRegisteredNodeType(t *testing.T) {
	n, ok := New("gain", 48000)
	require.True(t, ok)
	require.Equal(t, "gain", n.NodeType())
}

func TestNewUnknownTypeReturnsFalse(t *testing.T) {
	n, ok := New("does_not_exist", 48000)
	require.False(t, ok)
	require.Nil(t, n)
}

func TestNewPassesSampleRateToFactory(t *testing.T) {
	n, ok := New("oscillator", 44100)
	require.True(t, ok)
	require.Equal(t, "oscillator", n.NodeType())
}

func TestRegisterAddsNewFactory(t *testing.T) {
	Register("test_only_node", func(sr float64) graph.Node { return NewGain() })

	n, ok := New("test_only_node", 48000)
	require.True(t, ok)
	require.Equal(t, "gain", n.NodeType())
}

func TestTypesIncludesCoreBuiltins(t *testing.T) {
	types := Types()
	require.Contains(t, types, "gain")
	require.Contains(t, types, "oscillator")
	require.Contains(t, types, "output")
}
