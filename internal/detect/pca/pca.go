// Package pca implements the stateful, warm-up-then-freeze standardised
// deviation detector (C3 in SPEC_FULL.md).
package pca

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sandia-netshield/netshield/internal/flow"
)

const numFeatures = 6

// state is the detector's lifecycle, per spec.md §4.10.
type state int

const (
	stateInit state = iota
	stateWarming
	stateTrained
)

// Detector holds the running baseline. It is not safe for concurrent use;
// each worker owns exactly one instance (spec.md §4.7, §5).
type Detector struct {
	Threshold float64
	Warmup    int // W, default 10

	state state

	mean [numFeatures]float64 // running sum during warm-up, baseline after
	std  [numFeatures]float64

	warmupCount int
}

// New returns a PCA-style Detector with the given threshold and warm-up
// window count.
func New(threshold float64, warmup int) *Detector {
	if warmup < 1 {
		warmup = 1
	}
	return &Detector{Threshold: threshold, Warmup: warmup}
}

// Detect advances the detector by one window, mutating its baseline during
// warm-up and never afterward (the baseline is frozen once trained).
func (d *Detector) Detect(w flow.Window) flow.DetectorResult {
	features, ok := featureVector(w)
	if !ok {
		return flow.DetectorResult{}
	}

	switch d.state {
	case stateInit, stateWarming:
		for i := range d.mean {
			d.mean[i] += features[i]
		}
		d.warmupCount++
		d.state = stateWarming

		if d.warmupCount == d.Warmup {
			for i := range d.mean {
				mu := d.mean[i] / float64(d.Warmup)
				d.mean[i] = mu
				d.std[i] = math.Max(math.Abs(mu)*0.5, 10.0)
			}
			d.state = stateTrained
		}
		return flow.DetectorResult{}

	default: // stateTrained
		absZ := make([]float64, numFeatures)
		for i := range features {
			z := (features[i] - d.mean[i]) / math.Max(d.std[i], 1e-6)
			z = clamp(z, -100, 100)
			absZ[i] = math.Abs(z)
		}
		score := stat.Mean(absZ, nil)

		res := flow.DetectorResult{Score: score}
		if score > d.Threshold {
			res.Prediction = 1
			res.Suspects = append(res.Suspects, w.SourceAddrs()...)
		}
		return res
	}
}

// Trained reports whether the baseline has been frozen.
func (d *Detector) Trained() bool {
	return d.state == stateTrained
}

// featureVector computes the 6-component mean feature vector over flows
// with non-negative duration. ok is false when no flow qualifies (treated
// as benign, per spec.md §4.2).
func featureVector(w flow.Window) ([numFeatures]float64, bool) {
	var sums [numFeatures]float64
	n := 0
	for _, f := range w.Flows {
		if f.Duration < 0 {
			continue
		}
		sums[0] += f.Duration
		sums[1] += f.BytesPerS
		sums[2] += f.PktsPerS
		sums[3] += float64(f.FwdPkts)
		sums[4] += float64(f.BwdPkts)
		sums[5] += f.MeanPktLen
		n++
	}
	if n == 0 {
		return sums, false
	}
	for i := range sums {
		sums[i] /= float64(n)
	}
	return sums, true
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
