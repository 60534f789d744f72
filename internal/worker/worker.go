// Package worker implements the per-worker detection loop (C8 in
// SPEC_FULL.md): receive a window, run the enabled detectors, merge their
// verdicts, send the result, repeat until terminated. Modeled on the
// teacher's ron client command loop (src/ron/client.go), which pulls one
// unit of work at a time from its master rather than being pushed a batch.
package worker

import (
	"time"

	"github.com/sandia-netshield/netshield/internal/detect/cusum"
	"github.com/sandia-netshield/netshield/internal/detect/entropy"
	"github.com/sandia-netshield/netshield/internal/detect/ensemble"
	"github.com/sandia-netshield/netshield/internal/detect/pca"
	"github.com/sandia-netshield/netshield/internal/flow"
)

// Conn is the transport surface a Worker needs; satisfied by
// *transport.Conn. Declared locally so this package does not import
// transport, avoiding a dependency cycle with anything transport later
// grows to depend on in the worker domain.
type Conn interface {
	RecvDispatch() (flow.Window, bool, error)
	SendResult(flow.WindowResult) error
}

// Config selects which detectors a Worker runs and their tuning parameters,
// as an ensemble.Enabled bitmask built by the orchestrate driver from the
// run's configuration (every worker in a run shares the same enabled set).
type Config struct {
	Enabled ensemble.Enabled

	EntropyThreshold float64

	PCAThreshold float64
	PCAWarmup    int

	CusumThreshold float64
	CusumDrift     float64
}

// Worker owns one set of detector instances and runs the receive-detect-send
// loop against a single Conn. Detector state (PCA baseline, CUSUM sums) is
// private to this Worker, per spec.md §5's no-shared-mutable-state
// invariant: two Workers never observe each other's baseline.
type Worker struct {
	id   int
	conn Conn
	cfg  Config

	entropy *entropy.Detector
	pca     *pca.Detector
	cusum   *cusum.Detector
}

// New constructs a Worker with fresh, independent detector state.
func New(id int, conn Conn, cfg Config) *Worker {
	w := &Worker{id: id, conn: conn, cfg: cfg}
	if cfg.Enabled.Has(ensemble.Entropy) {
		w.entropy = entropy.New(cfg.EntropyThreshold)
	}
	if cfg.Enabled.Has(ensemble.PCA) {
		w.pca = pca.New(cfg.PCAThreshold, cfg.PCAWarmup)
	}
	if cfg.Enabled.Has(ensemble.Cusum) {
		w.cusum = cusum.New(cfg.CusumThreshold, cfg.CusumDrift)
	}
	return w
}

// Run blocks, processing windows until the master sends TERMINATE or the
// connection errors. It returns nil on a clean terminate.
func (w *Worker) Run() error {
	for {
		win, terminated, err := w.conn.RecvDispatch()
		if err != nil {
			return err
		}
		if terminated {
			return nil
		}

		res := w.process(win)
		if err := w.conn.SendResult(res); err != nil {
			return err
		}
	}
}

// process runs every enabled detector over win and merges the results. The
// window's flow slice is not retained past this call so the worker's memory
// footprint stays bounded by one window, per spec.md §5.
func (w *Worker) process(win flow.Window) flow.WindowResult {
	start := time.Now()

	in := ensemble.Input{
		Enabled:     w.cfg.Enabled,
		WindowID:    win.ID,
		StartRow:    win.StartRow,
		EndRow:      win.EndRow,
		FlowCount:   win.FlowCount(),
		GroundTruth: win.GroundTruth(),
	}

	if w.entropy != nil {
		in.Entropy = w.entropy.Detect(win)
	}
	if w.pca != nil {
		in.PCA = w.pca.Detect(win)
	}
	if w.cusum != nil {
		in.Cusum = w.cusum.Detect(win)
	}

	res := ensemble.Merge(in)

	if w.entropy != nil {
		res.EntropyNormSrcIP = entropy.SrcIPEntropy(win)
		res.EntropyNormDstIP = entropy.DstIPEntropy(win)
	}
	if w.pca != nil {
		res.PCASPE = in.PCA.Score
		res.PCAT2 = 0 // never computed; spec.md §9 Open Question
	}
	if w.cusum != nil {
		res.CusumPos = w.cusum.PosSum()
		res.CusumNeg = w.cusum.NegSum()
	}

	res.ProcessingTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
	return res
}
