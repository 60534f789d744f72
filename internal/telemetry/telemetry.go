// Package telemetry exposes run metrics as Prometheus counters and a
// processing-time histogram,
// purely observational and optional (spec.md's §1 out-of-scope metrics
// layer carried as ambient stack regardless): it changes no detection
// semantics, grounded on the Prometheus+Redis pairing in
// other_examples/manifests/etalazz-vsa and the histogram/registry
// conventions in other_examples/manifests/ClusterCockpit-cc-backend.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Recorder wraps the counters and histogram this repository exports.
type Recorder struct {
	WindowsProcessed  prometheus.Counter
	ProcessingSeconds prometheus.Histogram
	Predictions       *prometheus.CounterVec
}

// New registers every metric on reg and returns a Recorder. Callers that
// want metrics disabled simply never construct or use one.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		WindowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netshield_windows_processed_total",
			Help: "Total number of windows processed across all workers.",
		}),
		ProcessingSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "netshield_window_processing_seconds",
			Help:    "Per-window detector processing time.",
			Buckets: prometheus.DefBuckets,
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netshield_detector_predictions_total",
			Help: "Per-detector prediction counts.",
		}, []string{"detector", "prediction"}),
	}

	reg.MustRegister(r.WindowsProcessed, r.ProcessingSeconds, r.Predictions)
	return r
}

// Observe folds one WindowResult into the recorder's series. Called by the
// orchestrate driver once per result, after the master has returned the
// whole batch ordered by window ID — telemetry never gates or reorders
// detection.
func (r *Recorder) Observe(entropyPred, pcaPred, cusumPred int, processingTimeMS float64) {
	r.WindowsProcessed.Inc()
	r.ProcessingSeconds.Observe(processingTimeMS / 1000.0)
	r.Predictions.WithLabelValues("entropy", predLabel(entropyPred)).Inc()
	r.Predictions.WithLabelValues("pca", predLabel(pcaPred)).Inc()
	r.Predictions.WithLabelValues("cusum", predLabel(cusumPred)).Inc()
}

func predLabel(p int) string {
	if p == 1 {
		return "1"
	}
	return "0"
}
