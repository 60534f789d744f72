package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandia-netshield/netshield/internal/flow"
)

func makeRecords(n int) []flow.Record {
	out := make([]flow.Record, n)
	for i := range out {
		out[i] = flow.Record{SrcAddr: "10.0.0.1"}
	}
	return out
}

func TestPartition_EvenSplit(t *testing.T) {
	windows := Partition(makeRecords(20), 10)
	require.Len(t, windows, 2)
	assert.Equal(t, 0, windows[0].ID)
	assert.Equal(t, 0, windows[0].StartRow)
	assert.Equal(t, 9, windows[0].EndRow)
	assert.Equal(t, 1, windows[1].ID)
	assert.Equal(t, 10, windows[1].StartRow)
	assert.Equal(t, 19, windows[1].EndRow)
}

func TestPartition_ShortFinalWindow(t *testing.T) {
	windows := Partition(makeRecords(25), 10)
	require.Len(t, windows, 3)
	assert.Len(t, windows[2].Flows, 5)
	assert.Equal(t, 20, windows[2].StartRow)
	assert.Equal(t, 24, windows[2].EndRow)
}

func TestPartition_Empty(t *testing.T) {
	assert.Empty(t, Partition(nil, 10))
}

func TestPartition_FewerThanOneWindow(t *testing.T) {
	windows := Partition(makeRecords(3), 10)
	require.Len(t, windows, 1)
	assert.Len(t, windows[0].Flows, 3)
}
