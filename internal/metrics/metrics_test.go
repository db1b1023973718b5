package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	dropped, events, underruns uint64
}

func (f fakeSource) DroppedCommands() uint64 { return f.dropped }
func (f fakeSource) DroppedEvents() uint64   { return f.events }
func (f fakeSource) Underruns() uint64       { return f.underruns }

func TestPollSetsGaugesFromSource(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.Poll(fakeSource{dropped: 3, events: 7, underruns: 1})

	require.Equal(t, 3.0, testutil.ToFloat64(c.DroppedCommands))
	require.Equal(t, 7.0, testutil.ToFloat64(c.DroppedEvents))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Underruns))
}

func TestPollBufferPoolSetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.PollBufferPool(5, 12)

	require.Equal(t, 5.0, testutil.ToFloat64(c.BufferPoolAllocs))
	require.Equal(t, 12.0, testutil.ToFloat64(c.BufferPoolPeak))
}

func TestNewCollectorRegistersAgainstRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
