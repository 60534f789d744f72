// Package orchestrate drives the batch and live state machines from
// spec.md §4.10, wiring ingest, transport, master/worker, metrics, report,
// mitigation, telemetry, and the optional Redis mirror into the two
// top-level flows: a single LOAD->SEED->PUMP->DRAIN_IDLE_WORKERS->REPORT
// batch run, and a WAIT_SYMLINK->ANALYSE_BATCH loop for live mode.
// Modeled on the teacher's ron server, which also owns a pool of
// goroutine-backed peers connected over an in-process transport rather
// than a literal second OS process.
package orchestrate

import (
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/sandia-netshield/netshield/internal/master"
	"github.com/sandia-netshield/netshield/internal/transport"
	"github.com/sandia-netshield/netshield/internal/worker"
)

// pool owns one run's worker goroutines, each connected to the Master over
// its own net.Pipe, standing in for the MPI ranks 1..P-1 of the distilled
// design (spec.md §4.6) without requiring separate OS processes.
type pool struct {
	master  *master.Master
	group   *errgroup.Group
	closers []func() error
}

func newPool(numWorkers int, wc worker.Config) *pool {
	g := new(errgroup.Group)
	workers := make([]master.Worker, 0, numWorkers)
	closers := make([]func() error, 0, numWorkers)

	for i := 0; i < numWorkers; i++ {
		masterSide, workerSide := net.Pipe()
		mConn := transport.New(masterSide)
		wConn := transport.New(workerSide)

		w := worker.New(i, wConn, wc)
		g.Go(w.Run)

		workers = append(workers, mConn)
		closers = append(closers, masterSide.Close)
	}

	return &pool{master: master.New(workers), group: g, closers: closers}
}

// close closes the master's end of every worker's pipe, which also ends any
// read still pending on the worker's end. Safe to call after every worker
// has already exited on its own via TERMINATE.
func (p *pool) close() {
	for _, c := range p.closers {
		_ = c()
	}
}

// wait blocks until every worker goroutine has returned, surfacing the
// first error any of them hit.
func (p *pool) wait() error {
	return p.group.Wait()
}
