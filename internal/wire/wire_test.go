package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandia-netshield/netshield/internal/flow"
)

func sampleWindow() flow.Window {
	return flow.Window{
		ID:       7,
		StartRow: 100,
		EndRow:   199,
		Flows: []flow.Record{
			{
				SrcAddr:    "10.0.0.1",
				DstAddr:    "10.0.0.2",
				Label:      "BENIGN",
				Protocol:   6,
				SrcPort:    443,
				DstPort:    51000,
				Duration:   1.5,
				FwdPkts:    10,
				BwdPkts:    8,
				BytesPerS:  1234.5,
				PktsPerS:   12.3,
				MeanPktLen: 512.0,
				SYNCount:   1,
				IsAttack:   false,
			},
			{
				SrcAddr:  "192.168.1.1",
				DstAddr:  "192.168.1.255",
				Label:    "DDoS",
				Protocol: 17,
				IsAttack: true,
			},
		},
	}
}

func TestWindowRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	win := sampleWindow()

	require.NoError(t, WriteWindow(&buf, win))
	got, err := ReadWindow(&buf)
	require.NoError(t, err)

	assert.Equal(t, win, got)
}

func TestWindowRoundTrip_Empty(t *testing.T) {
	var buf bytes.Buffer
	win := flow.Window{ID: 2, StartRow: 0, EndRow: 0}

	require.NoError(t, WriteWindow(&buf, win))
	got, err := ReadWindow(&buf)
	require.NoError(t, err)

	assert.Equal(t, win.ID, got.ID)
	assert.Empty(t, got.Flows)
}

func TestWindowRoundTrip_TerminateID(t *testing.T) {
	var buf bytes.Buffer
	win := flow.Window{ID: flow.Terminate}

	require.NoError(t, WriteWindow(&buf, win))
	got, err := ReadWindow(&buf)
	require.NoError(t, err)

	assert.Equal(t, flow.Terminate, got.ID)
	assert.Empty(t, got.Flows)
}

func sampleResult() flow.WindowResult {
	return flow.WindowResult{
		WindowID:           4,
		StartRow:           400,
		EndRow:             499,
		FlowCount:          100,
		GroundTruth:        1,
		Entropy:            flow.DetectorResult{Score: 0.42, Prediction: 1},
		PCA:                flow.DetectorResult{Score: 3.14, Prediction: 0},
		Cusum:              flow.DetectorResult{Score: 9.9, Prediction: 1},
		EntropyNormSrcIP:   0.8,
		EntropyNormDstIP:   0.6,
		PCASPE:             1.1,
		PCAT2:              0,
		CusumPos:           2.2,
		CusumNeg:           0.0,
		CombinedPrediction: 1,
		Suspects:           []string{"10.0.0.9", "10.0.0.9", "10.0.0.8"},
		ProcessingTimeMS:   12.345,
	}
}

func TestResultRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()

	require.NoError(t, WriteResult(&buf, res))
	got, err := ReadResult(&buf)
	require.NoError(t, err)

	assert.Equal(t, res.WindowID, got.WindowID)
	assert.Equal(t, res.StartRow, got.StartRow)
	assert.Equal(t, res.EndRow, got.EndRow)
	assert.Equal(t, res.FlowCount, got.FlowCount)
	assert.Equal(t, res.GroundTruth, got.GroundTruth)
	assert.Equal(t, res.Entropy, got.Entropy)
	assert.Equal(t, res.PCA, got.PCA)
	assert.Equal(t, res.Cusum, got.Cusum)
	assert.Equal(t, res.EntropyNormSrcIP, got.EntropyNormSrcIP)
	assert.Equal(t, res.EntropyNormDstIP, got.EntropyNormDstIP)
	assert.Equal(t, res.PCASPE, got.PCASPE)
	assert.Equal(t, res.PCAT2, got.PCAT2)
	assert.Equal(t, res.CusumPos, got.CusumPos)
	assert.Equal(t, res.CusumNeg, got.CusumNeg)
	assert.Equal(t, res.CombinedPrediction, got.CombinedPrediction)
	assert.Equal(t, res.ProcessingTimeMS, got.ProcessingTimeMS)

	// Suspect multiset is preserved by count, not by original append order
	// across distinct addresses.
	assert.ElementsMatch(t, res.Suspects, got.Suspects)
}

func TestResultRoundTrip_NoSuspects(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()
	res.Suspects = nil

	require.NoError(t, WriteResult(&buf, res))
	got, err := ReadResult(&buf)
	require.NoError(t, err)

	assert.Empty(t, got.Suspects)
}

func TestTerminateRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteTerminate(&buf, flow.Terminate))
	got, err := ReadTerminate(&buf)
	require.NoError(t, err)

	assert.Equal(t, flow.Terminate, got)
}

func TestReadFrame_TagMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerminate(&buf, 0))

	_, err := ReadWindow(&buf)
	assert.Error(t, err)
}

func TestReadFrame_ChecksumCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerminate(&buf, 5))

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	_, err := ReadTerminate(bytes.NewReader(raw))
	assert.Error(t, err)
}

func TestAppendReadString_RoundTrip(t *testing.T) {
	buf := appendString(nil, "203.0.113.77")
	s, n, err := readString(buf)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.77", s)
	assert.Equal(t, len(buf), n)
}

func TestAppendReadString_Empty(t *testing.T) {
	buf := appendString(nil, "")
	s, n, err := readString(buf)
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, 4, n)
}
