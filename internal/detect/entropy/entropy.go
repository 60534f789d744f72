// Package entropy implements the stateless Shannon-entropy-deficit
// detector (C2 in SPEC_FULL.md).
package entropy

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sandia-netshield/netshield/internal/flow"
)

// Detector has no per-window state to carry between calls; it exists as a
// type so callers treat it uniformly with the stateful detectors.
type Detector struct {
	Threshold float64
}

// New returns an entropy Detector with the given alarm threshold.
func New(threshold float64) *Detector {
	return &Detector{Threshold: threshold}
}

// Detect computes the normalised entropy deficit over five categorical
// features of w and returns a DetectorResult. Detect never mutates state
// and is safe to call concurrently from multiple goroutines.
func (d *Detector) Detect(w flow.Window) flow.DetectorResult {
	n := len(w.Flows)
	if n == 0 {
		return flow.DetectorResult{}
	}

	srcIPs := make([]string, n)
	dstIPs := make([]string, n)
	srcPorts := make([]string, n)
	dstPorts := make([]string, n)
	sigs := make([]string, n)

	for i, f := range w.Flows {
		srcIPs[i] = f.SrcAddr
		dstIPs[i] = f.DstAddr
		srcPorts[i] = itoa(f.SrcPort)
		dstPorts[i] = itoa(f.DstPort)
		sigs[i] = f.Signature()
	}

	deficitSum := 0.0
	deficitSum += 1 - normalizedEntropy(srcIPs)
	deficitSum += 1 - normalizedEntropy(dstIPs)
	deficitSum += 1 - normalizedEntropy(srcPorts)
	deficitSum += 1 - normalizedEntropy(dstPorts)
	deficitSum += 1 - normalizedEntropy(sigs)

	score := deficitSum / 5

	res := flow.DetectorResult{Score: score}
	if score > d.Threshold {
		res.Prediction = 1
		res.Suspects = append(res.Suspects, w.SourceAddrs()...)
	}
	return res
}

// SrcIPEntropy and DstIPEntropy expose the two normalised entropies that
// are individually transported on the wire (spec.md §4.5 norm_H_src_ip /
// norm_H_dst_ip), independent of the combined deficit score.
func SrcIPEntropy(w flow.Window) float64 {
	n := len(w.Flows)
	if n == 0 {
		return 0
	}
	vals := make([]string, n)
	for i, f := range w.Flows {
		vals[i] = f.SrcAddr
	}
	return normalizedEntropy(vals)
}

func DstIPEntropy(w flow.Window) float64 {
	n := len(w.Flows)
	if n == 0 {
		return 0
	}
	vals := make([]string, n)
	for i, f := range w.Flows {
		vals[i] = f.DstAddr
	}
	return normalizedEntropy(vals)
}

func itoa(p uint16) string {
	if p == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for p > 0 {
		i--
		buf[i] = byte('0' + p%10)
		p /= 10
	}
	return string(buf[i:])
}

// normalizedEntropy computes H_norm(S) = -sum(p_i log2 p_i) / log2(U) over
// the relative frequencies of distinct tokens in vals, using gonum's
// frequency-based entropy helper. Returns 0 when there is at most one
// distinct token, per spec.md §4.1.
func normalizedEntropy(vals []string) float64 {
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	u := len(counts)
	if u <= 1 {
		return 0
	}

	probs := make([]float64, 0, u)
	total := float64(len(vals))
	for _, c := range counts {
		probs = append(probs, float64(c)/total)
	}

	h := stat.Entropy(probs) // natural-log Shannon entropy, sum(-p ln p)
	hBits := h / math.Ln2
	maxBits := math.Log2(float64(u))
	if maxBits == 0 {
		return 0
	}
	return hBits / maxBits
}
