package pca

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandia-netshield/netshield/internal/flow"
)

func flatWindow(id int, duration, bps, pps float64, fwd, bwd uint64, pktLen float64) flow.Window {
	return flow.Window{
		ID: id,
		Flows: []flow.Record{
			{Duration: duration, BytesPerS: bps, PktsPerS: pps, FwdPkts: fwd, BwdPkts: bwd, MeanPktLen: pktLen},
		},
	}
}

func TestDetect_WarmupNeverAlarms(t *testing.T) {
	d := New(2.5, 10)
	for i := 0; i < 9; i++ {
		res := d.Detect(flatWindow(i, 1, 1000, 10, 5, 5, 100))
		assert.Equal(t, 0, res.Prediction)
		assert.Equal(t, 0.0, res.Score)
		assert.False(t, d.Trained())
	}
}

func TestDetect_TrainsOnWthWindow(t *testing.T) {
	d := New(2.5, 10)
	for i := 0; i < 10; i++ {
		d.Detect(flatWindow(i, 1, 1000, 10, 5, 5, 100))
	}
	require.True(t, d.Trained())
	for _, s := range d.std {
		assert.Greater(t, s, 0.0)
	}
}

func TestDetect_IdenticalPostWarmupBelowThreshold(t *testing.T) {
	d := New(2.5, 10)
	for i := 0; i < 10; i++ {
		d.Detect(flatWindow(i, 1, 1000, 10, 5, 5, 100))
	}
	res := d.Detect(flatWindow(10, 1, 1000, 10, 5, 5, 100))
	assert.Equal(t, 0, res.Prediction)
}

func TestDetect_OutlierAfterWarmupAlarms(t *testing.T) {
	d := New(2.5, 10)
	for i := 0; i < 10; i++ {
		d.Detect(flatWindow(i, 1, 1000, 10, 5, 5, 100))
	}
	w := flatWindow(10, 1, 10000, 10, 5, 5, 100)
	w.Flows[0].SrcAddr = "9.9.9.9"
	res := d.Detect(w)
	assert.Equal(t, 1, res.Prediction)
	assert.Contains(t, res.Suspects, "9.9.9.9")
}

func TestFeatureVector_NegativeDurationExcluded(t *testing.T) {
	w := flow.Window{Flows: []flow.Record{
		{Duration: -1},
		{Duration: -1},
	}}
	_, ok := featureVector(w)
	assert.False(t, ok)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, -100.0, clamp(-500, -100, 100))
	assert.Equal(t, 100.0, clamp(500, -100, 100))
	assert.Equal(t, 5.0, clamp(5, -100, 100))
}
