// Package signalctx provides the single-producer/single-consumer
// cancellation token spec.md §4.11/§9 describes as a process-wide signal
// flag: one os/signal handler sets it, and the master's live-mode poll loop
// checks it before each poll. Workers do not see the token; they stop on the
// TERMINATE the master broadcasts after the loop exits.
package signalctx

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Token is a one-shot cancellation flag. The zero value is ready to use.
type Token struct {
	stopped atomic.Bool
}

// Stopped reports whether the token has been tripped.
func (t *Token) Stopped() bool { return t.stopped.Load() }

// Trip sets the token, idempotently.
func (t *Token) Trip() { t.stopped.Store(true) }

// WatchSignals installs an os/signal handler that trips t exactly once on
// SIGINT or SIGTERM and returns a stop function that removes the handler.
// It is the single producer for t; no other code path may call Trip.
func WatchSignals(t *Token) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			t.Trip()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
