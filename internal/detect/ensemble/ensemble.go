// Package ensemble combines up to three independent per-detector results
// into one verdict (C5 in SPEC_FULL.md).
package ensemble

import "github.com/sandia-netshield/netshield/internal/flow"

// Enabled is a bitmask of which detectors ran for a given window.
type Enabled uint8

const (
	Entropy Enabled = 1 << iota
	PCA
	Cusum
)

// Has reports whether e includes d.
func (e Enabled) Has(d Enabled) bool { return e&d != 0 }

// Input carries the per-detector results that are enabled for this window,
// plus the window identity and ground truth they all agree on.
type Input struct {
	Enabled     Enabled
	WindowID    int
	StartRow    int
	EndRow      int
	FlowCount   int
	GroundTruth int

	Entropy flow.DetectorResult
	PCA     flow.DetectorResult
	Cusum   flow.DetectorResult
}

// Merge combines in.Entropy/PCA/Cusum (for those enabled) into a single
// WindowResult. The combined prediction is the boolean OR of the enabled
// detectors' predictions; the suspect list is the multiset union of the
// suspect lists of detectors that predicted 1.
func Merge(in Input) flow.WindowResult {
	res := flow.WindowResult{
		WindowID:    in.WindowID,
		StartRow:    in.StartRow,
		EndRow:      in.EndRow,
		FlowCount:   in.FlowCount,
		GroundTruth: in.GroundTruth,
	}

	if in.Enabled.Has(Entropy) {
		res.Entropy = in.Entropy
		if in.Entropy.Prediction == 1 {
			res.CombinedPrediction = 1
			res.Suspects = append(res.Suspects, in.Entropy.Suspects...)
		}
	}
	if in.Enabled.Has(PCA) {
		res.PCA = in.PCA
		if in.PCA.Prediction == 1 {
			res.CombinedPrediction = 1
			res.Suspects = append(res.Suspects, in.PCA.Suspects...)
		}
	}
	if in.Enabled.Has(Cusum) {
		res.Cusum = in.Cusum
		if in.Cusum.Prediction == 1 {
			res.CombinedPrediction = 1
			res.Suspects = append(res.Suspects, in.Cusum.Suspects...)
		}
	}

	return res
}
