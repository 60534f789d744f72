package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandia-netshield/netshield/internal/flow"
	"github.com/sandia-netshield/netshield/internal/metrics"
	"github.com/sandia-netshield/netshield/internal/suspects"
)

func TestWriteResultCSV_HeaderAndRows(t *testing.T) {
	results := []flow.WindowResult{
		{WindowID: 0, FlowCount: 10, CombinedPrediction: 0, GroundTruth: 0},
		{WindowID: 1, FlowCount: 10, CombinedPrediction: 1, GroundTruth: 1},
	}
	rep := metrics.Reduce(results, 1.0)

	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, results, rep))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "window_id,start_row,end_row,flow_count"))
	assert.Contains(t, out, "# summary")
	assert.Contains(t, out, "true_positive,1")
}

func TestWriteResultCSV_RowsParseBackCleanly(t *testing.T) {
	results := []flow.WindowResult{
		{WindowID: 0, StartRow: 0, EndRow: 9, FlowCount: 10,
			Entropy: flow.DetectorResult{Score: 0.5, Prediction: 1},
			CombinedPrediction: 1, GroundTruth: 1, ProcessingTimeMS: 2.5},
	}
	rep := metrics.Reduce(results, 1.0)

	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, results, rep))

	lines := strings.Split(buf.String(), "\n")
	cr := csv.NewReader(strings.NewReader(lines[0] + "\n" + lines[1] + "\n"))
	rows, err := cr.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[1][5]) // entropy_pred column
}

func TestWriteBlocklistCSV(t *testing.T) {
	entries := []suspects.Entry{
		{Addr: "1.2.3.4", Count: 10},
		{Addr: "5.6.7.8", Count: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBlocklistCSV(&buf, entries))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "ip,count,detector\n"))
	assert.Contains(t, out, "1.2.3.4,10,ensemble")
}

func TestWriteBlocklistCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBlocklistCSV(&buf, nil))
	assert.Equal(t, "ip,count,detector\n", buf.String())
}
