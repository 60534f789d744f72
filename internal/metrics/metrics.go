// Package metrics implements the detection-quality and throughput reducer
// (C9 in SPEC_FULL.md), grounded on
// original_source/ddos_mpi_detector/src/core/metrics.c for its exact
// formulas: the P95 index rule, the lead-time formula, and the fixed
// packets-per-flow / bytes-per-packet throughput multipliers.
package metrics

import "sort"

// EstimatedPacketsPerFlow and EstimatedBytesPerPacket are the fixed,
// undocumented-but-preserved throughput multipliers from the source
// implementation (spec.md §9 Open Question): not measured, kept as named
// constants rather than inferred from a real capture.
const (
	EstimatedPacketsPerFlow = 20
	EstimatedBytesPerPacket = 1500
)

// Confusion is a binary confusion matrix over (prediction, ground_truth)
// pairs.
type Confusion struct {
	TP, TN, FP, FN int
}

// Add folds one (prediction, groundTruth) pair into the matrix.
func (c *Confusion) Add(prediction, groundTruth int) {
	switch {
	case prediction == 1 && groundTruth == 1:
		c.TP++
	case prediction == 0 && groundTruth == 0:
		c.TN++
	case prediction == 1 && groundTruth == 0:
		c.FP++
	default:
		c.FN++
	}
}

// Total is TP + TN + FP + FN.
func (c Confusion) Total() int { return c.TP + c.TN + c.FP + c.FN }

// Rates derives the ratio family from a confusion matrix. Every ratio is 0
// where its denominator is 0, per spec.md §4.8.
type Rates struct {
	DetectionRate     float64
	FalseAlarmRate    float64
	Accuracy          float64
	Specificity       float64
	BalancedAccuracy  float64
	Precision         float64
	Recall            float64
	F1                float64
}

// Compute derives Rates from c.
func Compute(c Confusion) Rates {
	var r Rates

	if c.TP+c.FN > 0 {
		r.DetectionRate = float64(c.TP) / float64(c.TP+c.FN)
	}
	if c.FP+c.TN > 0 {
		r.FalseAlarmRate = float64(c.FP) / float64(c.FP+c.TN)
		r.Specificity = float64(c.TN) / float64(c.FP+c.TN)
	}
	if c.Total() > 0 {
		r.Accuracy = float64(c.TP+c.TN) / float64(c.Total())
	}
	r.BalancedAccuracy = (r.DetectionRate + r.Specificity) / 2

	if c.TP+c.FP > 0 {
		r.Precision = float64(c.TP) / float64(c.TP+c.FP)
	}
	r.Recall = r.DetectionRate

	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}

	return r
}

// Latency is the min/max/mean/p95 of a processing-time series, in
// milliseconds.
type Latency struct {
	Min, Max, Mean, P95 float64
}

// ComputeLatency sorts a copy of samples and derives Latency. P95 is defined
// as the value at sorted index floor(n*0.95), clamped to the last index.
func ComputeLatency(samples []float64) Latency {
	if len(samples) == 0 {
		return Latency{}
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return Latency{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: sum / float64(len(sorted)),
		P95:  sorted[idx],
	}
}

// Throughput summarises flows/s, estimated packet rate, and bandwidth over a
// run of elapsed wall-clock seconds t.
type Throughput struct {
	FlowsPerSec      float64
	TotalEstPackets  float64
	EstPacketsPerSec float64
	MbPerSec         float64
	GbPerSec         float64
}

// ComputeThroughput derives Throughput from totalFlows processed over
// elapsedSeconds of wall time. Returns the zero value when elapsedSeconds is
// not positive.
func ComputeThroughput(totalFlows int, elapsedSeconds float64) Throughput {
	if elapsedSeconds <= 0 {
		return Throughput{}
	}

	flowsPerSec := float64(totalFlows) / elapsedSeconds
	totalPackets := float64(totalFlows) * EstimatedPacketsPerFlow
	packetsPerSec := totalPackets / elapsedSeconds
	mbPerSec := packetsPerSec * EstimatedBytesPerPacket * 8 / 1e6

	return Throughput{
		FlowsPerSec:      flowsPerSec,
		TotalEstPackets:  totalPackets,
		EstPacketsPerSec: packetsPerSec,
		MbPerSec:         mbPerSec,
		GbPerSec:         mbPerSec / 1000,
	}
}

// MemoryEstimateBytes approximates peak memory per spec.md §4.8's fixed
// per-flow / per-window coefficients.
func MemoryEstimateBytes(totalFlows, numWindows int) int64 {
	return 400*int64(totalFlows) + 100*int64(numWindows) + 300*int64(numWindows)
}

// DetectionLeadTimeMS implements spec.md §4.8: if both the first
// truth-attack window index and the first detected-attack window index
// exist and the detection is not earlier than the truth, the lead time is
// (d*-a*)*10000 plus the processing time of the detecting window;
// otherwise 0.
func DetectionLeadTimeMS(groundTruth, combinedPrediction []int, processingTimeMS []float64) float64 {
	aStar := firstIndex(groundTruth, 1)
	dStar := firstIndex(combinedPrediction, 1)

	if aStar < 0 || dStar < 0 || dStar < aStar {
		return 0
	}
	return float64(dStar-aStar)*10000 + processingTimeMS[dStar]
}

func firstIndex(vals []int, want int) int {
	for i, v := range vals {
		if v == want {
			return i
		}
	}
	return -1
}
