package midiclip

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAssignsIncreasingIDsStartingAtOne(t *testing.T) {
	p := New()
	id1 := p.Add(nil, 1.0, "a")
	id2 := p.Add(nil, 2.0, "b")
	require.Equal(t, ID(1), id1)
	require.Equal(t, ID(2), id2)
}

func TestGetMissingReturnsNil(t *testing.T) {
	p := New()
	require.Nil(t, p.Get(99))
}

func TestRemoveDeletesClip(t *testing.T) {
	p := New()
	id := p.Add(nil, 1.0, "a")
	p.Remove(id)
	require.Nil(t, p.Get(id))
	require.Equal(t, 0, p.Len())
}

func TestDuplicateClonesEventsIndependently(t *testing.T) {
	p := New()
	events := []Event{{OffsetSecs: 0, Status: 0x90, Data1: 60, Data2: 100}}
	id := p.Add(events, 1.0, "lead")

	copyID := p.Duplicate(id)
	require.NotEqual(t, ID(0), copyID)

	clip := p.Get(id)
	clone := p.Get(copyID)
	require.Equal(t, "lead (copy)", clone.Name)
	require.Equal(t, clip.Events, clone.Events)

	clone.Events[0].Data1 = 72
	require.Equal(t, byte(60), clip.Events[0].Data1, "duplicate must not alias the source events slice")
}

func TestDuplicateMissingReturnsZero(t *testing.T) {
	p := New()
	require.Equal(t, ID(0), p.Duplicate(42))
}

func TestAddExistingAdvancesNextIDPastCollisions(t *testing.T) {
	p := New()
	p.AddExisting(&Clip{ID: 10, Name: "loaded"})
	next := p.Add(nil, 1.0, "fresh")
	require.Equal(t, ID(11), next)
}
