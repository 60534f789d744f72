// Package cusum implements the one-sided cumulative-sum change detector
// with an EWMA baseline (C4 in SPEC_FULL.md).
package cusum

import (
	"math"

	"github.com/sandia-netshield/netshield/internal/flow"
)

const (
	numFeatures = 4
	alpha       = 0.1 // EWMA smoothing constant
)

// Detector holds the EWMA baseline and cumulative sums. Not safe for
// concurrent use; each worker owns exactly one instance.
type Detector struct {
	Threshold float64
	Drift     float64 // k, default 0.5

	initialised bool
	mean        [numFeatures]float64
	std         [numFeatures]float64 // frozen at initialisation
	posSum      float64
	negSum      float64
}

// New returns a CUSUM Detector with the given alarm threshold and drift
// constant.
func New(threshold, drift float64) *Detector {
	return &Detector{Threshold: threshold, Drift: drift}
}

// Detect advances the detector by one window.
func (d *Detector) Detect(w flow.Window) flow.DetectorResult {
	features := featureVector(w)

	if !d.initialised {
		d.mean = features
		for i := range d.std {
			d.std[i] = math.Max(math.Abs(features[i])*0.1, 1.0)
		}
		d.initialised = true
		return flow.DetectorResult{}
	}

	for i := range d.mean {
		d.mean[i] = alpha*features[i] + (1-alpha)*d.mean[i]
	}

	var sumDev float64
	for i := range features {
		dev := (features[i] - d.mean[i]) / math.Max(d.std[i], 1e-6)
		dev = clamp(dev, -50, 50)
		sumDev += dev
	}
	avgDev := sumDev / numFeatures

	d.posSum = math.Max(0, d.posSum+avgDev-d.Drift)
	d.negSum = math.Max(0, d.negSum-avgDev-d.Drift)

	score := math.Max(d.posSum, d.negSum)
	res := flow.DetectorResult{Score: score}

	if score > d.Threshold {
		res.Prediction = 1
		d.posSum = 0
		d.negSum = 0
		res.Suspects = append(res.Suspects, w.SourceAddrs()...)
	}
	return res
}

// PosSum and NegSum expose the current cumulative sums, transported on the
// wire as cusum_pos / cusum_neg (spec.md §4.5).
func (d *Detector) PosSum() float64 { return d.posSum }
func (d *Detector) NegSum() float64 { return d.negSum }

// featureVector computes the 4-component feature vector: mean packets/s,
// mean bytes/s, distinct source address count, mean SYN count per flow. All
// divisors use flow_count+1 per spec.md §4.3.
func featureVector(w flow.Window) [numFeatures]float64 {
	n := float64(len(w.Flows)) + 1

	var sumPPS, sumBPS, sumSYN float64
	distinct := make(map[string]struct{}, len(w.Flows))
	for _, f := range w.Flows {
		sumPPS += f.PktsPerS
		sumBPS += f.BytesPerS
		sumSYN += float64(f.SYNCount)
		distinct[f.SrcAddr] = struct{}{}
	}

	return [numFeatures]float64{
		sumPPS / n,
		sumBPS / n,
		float64(len(distinct)),
		sumSYN / n,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
