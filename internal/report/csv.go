// Package report writes the run's CSV outputs (result and blocklist) and a
// console summary table, grounded on
// original_source/ddos_mpi_detector/src/core/orchestrator.c's
// print_final_report and the teacher's phenix/util.PrintTableOf* family for
// the console rendering.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sandia-netshield/netshield/internal/flow"
	"github.com/sandia-netshield/netshield/internal/metrics"
	"github.com/sandia-netshield/netshield/internal/suspects"
)

var resultHeader = []string{
	"window_id", "start_row", "end_row", "flow_count",
	"entropy_score", "entropy_pred", "pca_score", "pca_pred",
	"cusum_score", "cusum_pred", "combined_pred", "ground_truth",
	"processing_time_ms",
}

// WriteResultCSV writes results as one row per window (in window-id order,
// as internal/master guarantees) followed by a "# summary" block of
// key,value pairs derived from rep, per spec.md §6.
func WriteResultCSV(w io.Writer, results []flow.WindowResult, rep metrics.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			strconv.Itoa(r.WindowID),
			strconv.Itoa(r.StartRow),
			strconv.Itoa(r.EndRow),
			strconv.Itoa(r.FlowCount),
			formatFloat(r.Entropy.Score),
			strconv.Itoa(r.Entropy.Prediction),
			formatFloat(r.PCA.Score),
			strconv.Itoa(r.PCA.Prediction),
			formatFloat(r.Cusum.Score),
			strconv.Itoa(r.Cusum.Prediction),
			strconv.Itoa(r.CombinedPrediction),
			strconv.Itoa(r.GroundTruth),
			formatFloat(r.ProcessingTimeMS),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "# summary"); err != nil {
		return err
	}
	return writeSummary(w, rep)
}

func writeSummary(w io.Writer, rep metrics.Report) error {
	kv := [][2]string{
		{"true_positive", strconv.Itoa(rep.Combined.TP)},
		{"true_negative", strconv.Itoa(rep.Combined.TN)},
		{"false_positive", strconv.Itoa(rep.Combined.FP)},
		{"false_negative", strconv.Itoa(rep.Combined.FN)},
		{"detection_rate", formatFloat(rep.Rates.DetectionRate)},
		{"false_alarm_rate", formatFloat(rep.Rates.FalseAlarmRate)},
		{"accuracy", formatFloat(rep.Rates.Accuracy)},
		{"specificity", formatFloat(rep.Rates.Specificity)},
		{"balanced_accuracy", formatFloat(rep.Rates.BalancedAccuracy)},
		{"precision", formatFloat(rep.Rates.Precision)},
		{"recall", formatFloat(rep.Rates.Recall)},
		{"f1", formatFloat(rep.Rates.F1)},
		{"latency_min_ms", formatFloat(rep.Latency.Min)},
		{"latency_max_ms", formatFloat(rep.Latency.Max)},
		{"latency_mean_ms", formatFloat(rep.Latency.Mean)},
		{"latency_p95_ms", formatFloat(rep.Latency.P95)},
		{"flows_per_sec", formatFloat(rep.Throughput.FlowsPerSec)},
		{"estimated_packets_per_sec", formatFloat(rep.Throughput.EstPacketsPerSec)},
		{"bandwidth_mbps", formatFloat(rep.Throughput.MbPerSec)},
		{"bandwidth_gbps", formatFloat(rep.Throughput.GbPerSec)},
		{"detection_lead_time_ms", formatFloat(rep.LeadTimeMS)},
		{"memory_estimate_bytes", strconv.FormatInt(rep.MemoryEstimateB, 10)},
	}

	for _, pair := range kv {
		if _, err := fmt.Fprintf(w, "%s,%s\n", pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}

var blocklistHeader = []string{"ip", "count", "detector"}

// WriteBlocklistCSV writes the exported suspect entries with header
// ip,count,detector, preserving insertion order. detector is a fixed label
// since the ensemble does not track which detector(s) flagged each address
// individually on the wire (spec.md §4.5's suspect list is a plain
// multiset); it is always "ensemble" here.
func WriteBlocklistCSV(w io.Writer, entries []suspects.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(blocklistHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{e.Addr, strconv.Itoa(e.Count), "ensemble"}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
