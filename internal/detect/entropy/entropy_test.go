package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandia-netshield/netshield/internal/flow"
)

func benignWindow(n int, distinctSrc bool) flow.Window {
	w := flow.Window{ID: 0, StartRow: 0, EndRow: n - 1}
	for i := 0; i < n; i++ {
		src := "10.0.0.1"
		if distinctSrc {
			src = "10.0.0." + string(rune('1'+i))
		}
		w.Flows = append(w.Flows, flow.NewRecord(flow.Record{
			SrcAddr: src, DstAddr: "10.0.0.254",
			SrcPort: uint16(40000 + i), DstPort: 80,
			Label: "BENIGN",
		}))
	}
	return w
}

func TestDetect_DistinctAddressesLowScore(t *testing.T) {
	w := benignWindow(4, true)
	// Source address, source port and signature are all distinct (deficit 0),
	// but destination address and destination port are constant (deficit 1
	// each), so the score is 2/5 = 0.4.
	d := New(0.5)
	res := d.Detect(w)

	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 1.0)
	assert.Equal(t, 0, res.Prediction)
	assert.Empty(t, res.Suspects)
}

func TestDetect_ConstantFeaturesMaxDeficit(t *testing.T) {
	n := 10
	w := flow.Window{ID: 1}
	for i := 0; i < n; i++ {
		w.Flows = append(w.Flows, flow.NewRecord(flow.Record{
			SrcAddr: "1.2.3.4", DstAddr: "1.2.3.4",
			SrcPort: 1, DstPort: 1,
			Label: "DDoS_SYN",
		}))
	}
	d := New(0.2)
	res := d.Detect(w)

	require.InDelta(t, 1.0, res.Score, 1e-9)
	assert.Equal(t, 1, res.Prediction)
	require.Len(t, res.Suspects, n)
	for _, s := range res.Suspects {
		assert.Equal(t, "1.2.3.4", s)
	}
}

func TestDetect_EmptyWindow(t *testing.T) {
	d := New(0.2)
	res := d.Detect(flow.Window{})
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 0, res.Prediction)
}

func TestNormalizedEntropy_Bounds(t *testing.T) {
	vals := []string{"a", "a", "b", "c", "c", "c"}
	h := normalizedEntropy(vals)
	assert.GreaterOrEqual(t, h, 0.0)
	assert.LessOrEqual(t, h, 1.0)
}

func TestNormalizedEntropy_SingleToken(t *testing.T) {
	assert.Equal(t, 0.0, normalizedEntropy([]string{"x", "x", "x"}))
	assert.Equal(t, 0.0, normalizedEntropy(nil))
}
