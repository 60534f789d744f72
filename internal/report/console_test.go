package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandia-netshield/netshield/internal/flow"
	"github.com/sandia-netshield/netshield/internal/metrics"
)

func TestPrintSummaryTable_RendersWithoutPanicking(t *testing.T) {
	results := []flow.WindowResult{
		{WindowID: 0, CombinedPrediction: 0, GroundTruth: 0, FlowCount: 10},
		{WindowID: 1, CombinedPrediction: 1, GroundTruth: 1, FlowCount: 10},
	}
	rep := metrics.Reduce(results, 1.0)

	var buf bytes.Buffer
	PrintSummaryTable(&buf, rep)

	assert.Contains(t, buf.String(), "Detection rate")
}

func TestPrintConfusionTable_RendersAllDetectors(t *testing.T) {
	rep := metrics.Reduce(nil, 1.0)

	var buf bytes.Buffer
	PrintConfusionTable(&buf, rep)

	out := buf.String()
	assert.Contains(t, out, "combined")
	assert.Contains(t, out, "entropy")
	assert.Contains(t, out, "pca")
	assert.Contains(t, out, "cusum")
}
