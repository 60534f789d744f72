package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandia-netshield/netshield/internal/flow"
)

func TestMerge_ORRule(t *testing.T) {
	in := Input{
		Enabled:     Entropy | PCA | Cusum,
		WindowID:    3,
		GroundTruth: 1,
		Entropy:     flow.DetectorResult{Prediction: 0},
		PCA:         flow.DetectorResult{Prediction: 1, Suspects: []string{"a"}},
		Cusum:       flow.DetectorResult{Prediction: 0},
	}
	res := Merge(in)
	assert.Equal(t, 1, res.CombinedPrediction)
	assert.Equal(t, []string{"a"}, res.Suspects)
	assert.Equal(t, 3, res.WindowID)
}

func TestMerge_AllBenign(t *testing.T) {
	in := Input{Enabled: Entropy | PCA | Cusum}
	res := Merge(in)
	assert.Equal(t, 0, res.CombinedPrediction)
	assert.Empty(t, res.Suspects)
}

func TestMerge_UnionAcrossDetectors(t *testing.T) {
	in := Input{
		Enabled: Entropy | Cusum,
		Entropy: flow.DetectorResult{Prediction: 1, Suspects: []string{"a", "b"}},
		Cusum:   flow.DetectorResult{Prediction: 1, Suspects: []string{"b", "c"}},
	}
	res := Merge(in)
	assert.Equal(t, []string{"a", "b", "b", "c"}, res.Suspects)
}

func TestMerge_OnlyEnabledDetectorsCounted(t *testing.T) {
	in := Input{
		Enabled: Entropy,
		PCA:     flow.DetectorResult{Prediction: 1, Suspects: []string{"x"}},
	}
	res := Merge(in)
	assert.Equal(t, 0, res.CombinedPrediction)
	assert.Empty(t, res.Suspects)
}

func TestEnabled_Has(t *testing.T) {
	e := Entropy | Cusum
	assert.True(t, e.Has(Entropy))
	assert.False(t, e.Has(PCA))
	assert.True(t, e.Has(Cusum))
}
