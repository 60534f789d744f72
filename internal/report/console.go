package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/sandia-netshield/netshield/internal/metrics"
)

// PrintSummaryTable renders rep as an ASCII table, playing the role of the
// out-of-scope terminal pretty-printer collaborator (spec.md §1) behind the
// one concrete rendering this repository provides.
func PrintSummaryTable(writer io.Writer, rep metrics.Report) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Metric", "Value"})

	table.Append([]string{"Detection rate", fmt.Sprintf("%.4f", rep.Rates.DetectionRate)})
	table.Append([]string{"False alarm rate", fmt.Sprintf("%.4f", rep.Rates.FalseAlarmRate)})
	table.Append([]string{"Accuracy", fmt.Sprintf("%.4f", rep.Rates.Accuracy)})
	table.Append([]string{"Balanced accuracy", fmt.Sprintf("%.4f", rep.Rates.BalancedAccuracy)})
	table.Append([]string{"Precision", fmt.Sprintf("%.4f", rep.Rates.Precision)})
	table.Append([]string{"Recall", fmt.Sprintf("%.4f", rep.Rates.Recall)})
	table.Append([]string{"F1", fmt.Sprintf("%.4f", rep.Rates.F1)})
	table.Append([]string{"Latency p95 (ms)", fmt.Sprintf("%.3f", rep.Latency.P95)})
	table.Append([]string{"Throughput (flows/s)", fmt.Sprintf("%.1f", rep.Throughput.FlowsPerSec)})
	table.Append([]string{"Bandwidth (Mb/s)", fmt.Sprintf("%.2f", rep.Throughput.MbPerSec)})
	table.Append([]string{"Detection lead time (ms)", fmt.Sprintf("%.1f", rep.LeadTimeMS)})
	table.Append([]string{"Memory estimate (bytes)", fmt.Sprintf("%d", rep.MemoryEstimateB)})

	table.Render()
}

// PrintConfusionTable renders the combined and per-detector confusion
// matrices side by side.
func PrintConfusionTable(writer io.Writer, rep metrics.Report) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Detector", "TP", "TN", "FP", "FN"})

	rows := []struct {
		name string
		c    metrics.Confusion
	}{
		{"combined", rep.Combined},
		{"entropy", rep.Entropy},
		{"pca", rep.PCA},
		{"cusum", rep.Cusum},
	}
	for _, r := range rows {
		table.Append([]string{
			r.name,
			fmt.Sprintf("%d", r.c.TP),
			fmt.Sprintf("%d", r.c.TN),
			fmt.Sprintf("%d", r.c.FP),
			fmt.Sprintf("%d", r.c.FN),
		})
	}

	table.Render()
}
