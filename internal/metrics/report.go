package metrics

import "github.com/sandia-netshield/netshield/internal/flow"

// Report is the full reduction over a run's WindowResults: the combined
// confusion matrix and rates, one confusion matrix per detector, latency,
// throughput, lead time, and a memory estimate.
type Report struct {
	Combined Confusion
	Rates    Rates

	Entropy Confusion
	PCA     Confusion
	Cusum   Confusion

	Latency         Latency
	Throughput      Throughput
	LeadTimeMS      float64
	MemoryEstimateB int64
}

// Reduce computes a Report from results (assumed ordered by window ID, as
// internal/master guarantees) and elapsedSeconds of wall time for the run.
// Reduce is a pure function of its inputs: calling it twice on the same
// results produces an identical Report, per spec.md §8's idempotence
// property.
func Reduce(results []flow.WindowResult, elapsedSeconds float64) Report {
	var rep Report

	totalFlows := 0
	latencies := make([]float64, 0, len(results))
	groundTruth := make([]int, 0, len(results))
	combined := make([]int, 0, len(results))

	for _, r := range results {
		rep.Combined.Add(r.CombinedPrediction, r.GroundTruth)
		rep.Entropy.Add(r.Entropy.Prediction, r.GroundTruth)
		rep.PCA.Add(r.PCA.Prediction, r.GroundTruth)
		rep.Cusum.Add(r.Cusum.Prediction, r.GroundTruth)

		totalFlows += r.FlowCount
		latencies = append(latencies, r.ProcessingTimeMS)
		groundTruth = append(groundTruth, r.GroundTruth)
		combined = append(combined, r.CombinedPrediction)
	}

	rep.Rates = Compute(rep.Combined)
	rep.Latency = ComputeLatency(latencies)
	rep.Throughput = ComputeThroughput(totalFlows, elapsedSeconds)
	rep.LeadTimeMS = DetectionLeadTimeMS(groundTruth, combined, latencies)
	rep.MemoryEstimateB = MemoryEstimateBytes(totalFlows, len(results))

	return rep
}
