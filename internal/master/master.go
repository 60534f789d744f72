// Package master implements the work-pull coordinator (C7 in SPEC_FULL.md):
// seed every worker with one window, then as each worker reports a result,
// hand it the next unsent window or a terminator. Modeled on the teacher's
// ron server dispatch loop (src/ron/server.go), adapted from minimega's
// command-broadcast model to per-window work-stealing.
package master

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sandia-netshield/netshield/internal/flow"
)

// Worker is the transport surface the master needs from each connected
// worker; satisfied by *transport.Conn. Declared locally, mirroring
// internal/worker's Conn interface, to keep this package's dependency
// surface to flow + errgroup.
type Worker interface {
	SendWindow(flow.Window) error
	RecvResult() (flow.WindowResult, error)
	SendTerminate(code int) error
}

// Master holds the set of connected workers for one run. The same Master
// instance is reused across successive live-mode batches (spec.md §4.6
// point 4: the master does not terminate workers between batches).
type Master struct {
	workers []Worker
}

// New constructs a Master over an already-connected set of workers. Workers
// are addressed by their index in this slice, playing the role of MPI ranks
// 1..P-1 in the distilled design.
func New(workers []Worker) *Master {
	return &Master{workers: workers}
}

// NumWorkers returns P-1, the size of the worker pool.
func (m *Master) NumWorkers() int { return len(m.workers) }

// RunBatch dispatches windows across the worker pool using work-pull
// scheduling and returns results ordered by window ID, regardless of
// completion order (spec.md §4.6's ordering guarantee). When terminateIdle
// is true (batch mode), every worker is sent exactly one terminator before
// RunBatch returns: a worker never seeded (fewer windows than workers) right
// after seeding, and every other worker once it reports a result and no
// unsent window remains. Live mode
// passes terminateIdle=false so the same worker pool can be reused for the
// next poll cycle.
func (m *Master) RunBatch(ctx context.Context, windows []flow.Window, terminateIdle bool) ([]flow.WindowResult, error) {
	n := len(windows)
	numWorkers := len(m.workers)
	if numWorkers == 0 {
		return nil, nil
	}

	seeded := n
	if numWorkers < seeded {
		seeded = numWorkers
	}

	g, ctx := errgroup.WithContext(ctx)

	type resultMsg struct {
		workerIdx int
		res       flow.WindowResult
	}
	results := make(chan resultMsg, numWorkers)

	recv := func(idx int) {
		g.Go(func() error {
			res, err := m.workers[idx].RecvResult()
			if err != nil {
				return err
			}
			results <- resultMsg{idx, res}
			return nil
		})
	}

	for i := 0; i < seeded; i++ {
		if err := m.workers[i].SendWindow(windows[i]); err != nil {
			return nil, err
		}
		recv(i)
	}

	// Any worker not needed for the initial seed (fewer windows than
	// workers) is idle for the whole batch.
	if terminateIdle {
		for i := seeded; i < numWorkers; i++ {
			if err := m.workers[i].SendTerminate(flow.Terminate); err != nil {
				return nil, err
			}
		}
	}

	gathered := make(map[int]flow.WindowResult, n)
	next := seeded

	for len(gathered) < n {
		select {
		case <-ctx.Done():
			// A receive goroutine failed; g.Wait returns its error.
			if err := g.Wait(); err != nil {
				return nil, err
			}
			return nil, ctx.Err()
		case msg := <-results:
			gathered[msg.res.WindowID] = msg.res

			if next < n {
				w := windows[next]
				next++
				if err := m.workers[msg.workerIdx].SendWindow(w); err != nil {
					return nil, err
				}
				recv(msg.workerIdx)
				continue
			}

			if terminateIdle {
				if err := m.workers[msg.workerIdx].SendTerminate(flow.Terminate); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]flow.WindowResult, 0, n)
	for id := 0; id < n; id++ {
		if r, ok := gathered[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// BroadcastTerminate sends TERMINATE to every worker, used on SIGINT in live
// mode (spec.md §4.10 Master (live): EXIT via BROADCAST_TERMINATE).
func (m *Master) BroadcastTerminate() error {
	for _, w := range m.workers {
		if err := w.SendTerminate(flow.Terminate); err != nil {
			return err
		}
	}
	return nil
}
