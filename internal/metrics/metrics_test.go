package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandia-netshield/netshield/internal/flow"
)

func TestConfusion_Add(t *testing.T) {
	var c Confusion
	c.Add(1, 1)
	c.Add(0, 0)
	c.Add(1, 0)
	c.Add(0, 1)
	assert.Equal(t, Confusion{TP: 1, TN: 1, FP: 1, FN: 1}, c)
	assert.Equal(t, 4, c.Total())
}

func TestCompute_ZeroDenominatorsAreZero(t *testing.T) {
	r := Compute(Confusion{})
	assert.Zero(t, r.DetectionRate)
	assert.Zero(t, r.FalseAlarmRate)
	assert.Zero(t, r.Accuracy)
	assert.Zero(t, r.Precision)
}

func TestCompute_PerfectClassifier(t *testing.T) {
	c := Confusion{TP: 10, TN: 10}
	r := Compute(c)
	assert.Equal(t, 1.0, r.DetectionRate)
	assert.Equal(t, 1.0, r.Accuracy)
	assert.Equal(t, 1.0, r.Specificity)
	assert.Equal(t, 1.0, r.Precision)
	assert.Equal(t, 1.0, r.F1)
}

func TestComputeLatency_P95IndexRule(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	lat := ComputeLatency(samples)
	assert.Equal(t, 1.0, lat.Min)
	assert.Equal(t, 10.0, lat.Max)
	assert.Equal(t, 5.5, lat.Mean)
	// floor(10*0.95) = 9 -> sorted[9] = 10
	assert.Equal(t, 10.0, lat.P95)
}

func TestComputeLatency_Empty(t *testing.T) {
	assert.Equal(t, Latency{}, ComputeLatency(nil))
}

func TestComputeThroughput(t *testing.T) {
	tp := ComputeThroughput(1000, 2.0)
	assert.Equal(t, 500.0, tp.FlowsPerSec)
	assert.Equal(t, 10000.0, tp.EstPacketsPerSec)
	assert.InDelta(t, 120.0, tp.MbPerSec, 1e-9)
	assert.InDelta(t, 0.12, tp.GbPerSec, 1e-9)
}

func TestComputeThroughput_ZeroElapsed(t *testing.T) {
	assert.Equal(t, Throughput{}, ComputeThroughput(1000, 0))
}

func TestMemoryEstimateBytes(t *testing.T) {
	assert.Equal(t, int64(400*100+100*10+300*10), MemoryEstimateBytes(100, 10))
}

func TestDetectionLeadTimeMS(t *testing.T) {
	gt := []int{0, 0, 1, 1, 1}
	pred := []int{0, 0, 0, 1, 1}
	proc := []float64{1, 1, 1, 5, 1}
	// a* = 2, d* = 3 -> (3-2)*10000 + proc[3] = 10005
	assert.Equal(t, 10005.0, DetectionLeadTimeMS(gt, pred, proc))
}

func TestDetectionLeadTimeMS_NoDetection(t *testing.T) {
	gt := []int{0, 1, 1}
	pred := []int{0, 0, 0}
	proc := []float64{1, 1, 1}
	assert.Equal(t, 0.0, DetectionLeadTimeMS(gt, pred, proc))
}

func TestDetectionLeadTimeMS_DetectionBeforeTruth(t *testing.T) {
	gt := []int{0, 0, 1}
	pred := []int{1, 0, 0}
	proc := []float64{1, 1, 1}
	assert.Equal(t, 0.0, DetectionLeadTimeMS(gt, pred, proc))
}

func TestReduce_Idempotent(t *testing.T) {
	results := []flow.WindowResult{
		{WindowID: 0, GroundTruth: 0, CombinedPrediction: 0, FlowCount: 10, ProcessingTimeMS: 2},
		{WindowID: 1, GroundTruth: 1, CombinedPrediction: 1, FlowCount: 10, ProcessingTimeMS: 3,
			Entropy: flow.DetectorResult{Prediction: 1}},
	}

	r1 := Reduce(results, 1.0)
	r2 := Reduce(results, 1.0)
	assert.Equal(t, r1, r2)
	assert.Equal(t, Confusion{TP: 1, TN: 1}, r1.Combined)
	assert.Equal(t, Confusion{TP: 1, TN: 1}, r1.Entropy)
}

func TestReduce_ConfusionSumEqualsTotal(t *testing.T) {
	results := []flow.WindowResult{
		{GroundTruth: 0, CombinedPrediction: 0},
		{GroundTruth: 1, CombinedPrediction: 1},
		{GroundTruth: 1, CombinedPrediction: 0},
		{GroundTruth: 0, CombinedPrediction: 1},
	}
	rep := Reduce(results, 1.0)
	assert.Equal(t, len(results), rep.Combined.Total())
}
