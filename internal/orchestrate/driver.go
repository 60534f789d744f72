package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandia-netshield/netshield/internal/config"
	"github.com/sandia-netshield/netshield/internal/flow"
	"github.com/sandia-netshield/netshield/internal/ingest"
	"github.com/sandia-netshield/netshield/internal/metrics"
	"github.com/sandia-netshield/netshield/internal/mitigation"
	"github.com/sandia-netshield/netshield/internal/report"
	"github.com/sandia-netshield/netshield/internal/signalctx"
	"github.com/sandia-netshield/netshield/internal/store"
	"github.com/sandia-netshield/netshield/internal/suspects"
	"github.com/sandia-netshield/netshield/internal/telemetry"
	"github.com/sandia-netshield/netshield/internal/watch"
	"github.com/sandia-netshield/netshield/internal/worker"
)

// Driver ties one run's configuration to its collaborators. Every field
// except cfg and logger is optional and nil-safe: a nil Recorder, Engine,
// or Mirror simply means that collaborator is disabled for this run.
type Driver struct {
	cfg        config.Config
	logger     zerolog.Logger
	numWorkers int

	rec    *telemetry.Recorder
	mit    *mitigation.Engine
	mirror *store.Mirror
}

// New constructs a Driver. numWorkers is the size of the worker pool
// (P-1 in spec.md §4.6's terms); callers typically size it to the host's
// core count.
func New(cfg config.Config, logger zerolog.Logger, numWorkers int, rec *telemetry.Recorder, mit *mitigation.Engine, mirror *store.Mirror) *Driver {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Driver{cfg: cfg, logger: logger, numWorkers: numWorkers, rec: rec, mit: mit, mirror: mirror}
}

func (d *Driver) workerConfig() worker.Config {
	return worker.Config{
		Enabled:          d.cfg.Enabled(),
		EntropyThreshold: d.cfg.EntropyThreshold,
		PCAThreshold:     d.cfg.PCAThreshold,
		PCAWarmup:        d.cfg.PCAWarmup,
		CusumThreshold:   d.cfg.CusumThreshold,
		CusumDrift:       d.cfg.CusumDrift,
	}
}

// RunOnce executes one LOAD->SEED->PUMP->DRAIN_IDLE_WORKERS->REPORT batch
// (spec.md §4.10) against inputPath, writing its result and blocklist CSVs
// into outputDir, and returns the reduced metrics report.
func (d *Driver) RunOnce(ctx context.Context, inputPath, outputDir string) (metrics.Report, error) {
	p := newPool(d.numWorkers, d.workerConfig())
	rep, err := d.runOnPool(ctx, p, inputPath, outputDir, true)
	p.close()
	if werr := p.wait(); werr != nil && err == nil {
		err = werr
	}
	return rep, err
}

// RunLive implements the WAIT_SYMLINK->ANALYSE_BATCH loop (spec.md §4.10,
// §4.11): the worker pool is created once and reused across every batch,
// since the master never terminates workers between live-mode polls. The
// loop exits when token trips (SIGINT), at which point every worker
// receives exactly one TERMINATE (spec.md §8 end-to-end scenario 6).
func (d *Driver) RunLive(ctx context.Context, watchDir, outputDir string, token *signalctx.Token) error {
	p := newPool(d.numWorkers, d.workerConfig())
	w := watch.New(watchDir, token)

	runErr := w.Run(
		func(path string) error {
			if _, err := d.runOnPool(ctx, p, path, outputDir, false); err != nil {
				d.logger.Error().Err(err).Str("file", path).Msg("batch failed")
			}
			return nil
		},
		func() {
			d.logger.Warn().Str("dir", watchDir).Msg("latest_capture.csv symlink not found")
		},
	)

	if err := p.master.BroadcastTerminate(); err != nil {
		d.logger.Error().Err(err).Msg("broadcasting terminate")
	}
	p.close()
	if werr := p.wait(); werr != nil && runErr == nil {
		runErr = werr
	}
	return runErr
}

// runOnPool performs ingest, dispatch, reduction, reporting, and
// mitigation for a single file against an already-running pool. terminateIdle
// governs whether idle/exhausted workers are terminated at the end of this
// batch (true for a one-shot run, false so live mode can reuse the pool).
func (d *Driver) runOnPool(ctx context.Context, p *pool, inputPath, outputDir string, terminateIdle bool) (metrics.Report, error) {
	log := d.logger.With().Str("component", "orchestrate").Str("input", inputPath).Logger()

	f, err := os.Open(inputPath)
	if err != nil {
		return metrics.Report{}, fmt.Errorf("orchestrate: open %s: %w", inputPath, err)
	}
	records, stats, err := ingest.ReadAll(f)
	f.Close()
	if err != nil {
		return metrics.Report{}, err
	}
	if stats.RowsSkipped > 0 {
		log.Warn().Int("rows_skipped", stats.RowsSkipped).Int("rows_read", stats.RowsRead).Msg("skipped malformed rows")
	}

	windows := ingest.Partition(records, d.cfg.WindowSize)
	log.Info().Int("windows", len(windows)).Int("flows", len(records)).Msg("batch loaded")

	start := time.Now()
	results, err := p.master.RunBatch(ctx, windows, terminateIdle)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return metrics.Report{}, err
	}

	if d.rec != nil {
		for _, r := range results {
			d.rec.Observe(r.Entropy.Prediction, r.PCA.Prediction, r.Cusum.Prediction, r.ProcessingTimeMS)
		}
	}

	agg := suspects.New()
	for _, r := range results {
		if r.CombinedPrediction == 1 {
			agg.AddAll(r.Suspects)
		}
	}
	entries := agg.Export(d.cfg.MinIPCount)

	if err := d.mitigate(ctx, entries); err != nil {
		log.Warn().Err(err).Msg("mitigation error")
	}
	if d.mirror != nil {
		if err := d.mirror.AddAll(ctx, entries); err != nil {
			log.Warn().Err(err).Msg("redis mirror error")
		}
	}

	rep := metrics.Reduce(results, elapsed)

	if err := d.writeReports(inputPath, outputDir, results, rep, entries); err != nil {
		return rep, err
	}

	report.PrintSummaryTable(os.Stdout, rep)
	report.PrintConfusionTable(os.Stdout, rep)

	return rep, nil
}

func (d *Driver) mitigate(ctx context.Context, entries []suspects.Entry) error {
	if d.mit == nil || !d.cfg.EnableMitigation {
		return nil
	}
	ratePerSec, burst := parseRateLimit(d.cfg.RateLimit)

	var firstErr error
	for _, e := range entries {
		if err := d.mit.Block(ctx, e.Addr); err != nil && firstErr == nil {
			firstErr = err
		}
		if d.cfg.Interface != "" {
			if err := d.mit.RateLimitAddr(ctx, d.cfg.Interface, e.Addr, ratePerSec, burst); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if d.mit.Disabled() {
			break
		}
	}
	return firstErr
}

// writeReports creates <outputDir>/<base>_results.csv and
// <outputDir>/<base>_blocklist.csv, where base is inputPath's file name
// without extension. Using the input's base name keeps successive
// live-mode batches from overwriting each other's reports.
func (d *Driver) writeReports(inputPath, outputDir string, results []flow.WindowResult, rep metrics.Report, entries []suspects.Entry) error {
	base := baseName(inputPath)

	resultFile, err := os.Create(filepath.Join(outputDir, base+"_results.csv"))
	if err != nil {
		return fmt.Errorf("orchestrate: create results csv: %w", err)
	}
	defer resultFile.Close()
	if err := report.WriteResultCSV(resultFile, results, rep); err != nil {
		return fmt.Errorf("orchestrate: write results csv: %w", err)
	}

	blocklistFile, err := os.Create(filepath.Join(outputDir, base+"_blocklist.csv"))
	if err != nil {
		return fmt.Errorf("orchestrate: create blocklist csv: %w", err)
	}
	defer blocklistFile.Close()
	if err := report.WriteBlocklistCSV(blocklistFile, entries); err != nil {
		return fmt.Errorf("orchestrate: write blocklist csv: %w", err)
	}

	return nil
}

// parseRateLimit parses the "<rate_kbps>:<burst_kb>" format documented on
// --rate-limit in internal/config, falling back to the configured defaults
// on any malformed input rather than failing a run over a cosmetic flag.
func parseRateLimit(spec string) (ratePerSec, burst int) {
	ratePerSec, burst = config.DefaultRateLimitKbps, config.DefaultRateLimitBurstKb
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return
	}
	if r, err := strconv.Atoi(parts[0]); err == nil {
		ratePerSec = r
	}
	if b, err := strconv.Atoi(parts[1]); err == nil {
		burst = b
	}
	return
}

func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
