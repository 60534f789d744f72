// Package watch implements the live-directory poll loop (C11 in
// SPEC_FULL.md): a 2-second ticker reads a well-known symlink and reports
// when it resolves to a new file, modeled on the original
// orchestrator.c's ANALYSE_BATCH polling and on the teacher's own
// ticker-driven heartbeat loop (src/ron/heartbeat.go).
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sandia-netshield/netshield/internal/signalctx"
)

// PollInterval is the fixed symlink poll interval spec.md §4.11 specifies.
const PollInterval = 2 * time.Second

// SymlinkName is the well-known live-capture symlink name within the
// watched directory.
const SymlinkName = "latest_capture.csv"

// Watcher polls dir/latest_capture.csv and reports each time it resolves to
// a file different from the last one seen.
type Watcher struct {
	dir   string
	token *signalctx.Token

	lastTarget      string
	missingReported bool
}

// New returns a Watcher over dir, stopping when token trips.
func New(dir string, token *signalctx.Token) *Watcher {
	return &Watcher{dir: dir, token: token}
}

// OnNewFile is called with the resolved file path each time it changes.
type OnNewFile func(path string) error

// OnMissing is called once, the first time the symlink target cannot be
// resolved.
type OnMissing func()

// Run blocks, polling every PollInterval until the token trips, invoking
// onNewFile whenever the symlink resolves to a path it has not already
// reported and onMissing the first time the symlink is absent or broken.
func (w *Watcher) Run(onNewFile OnNewFile, onMissing OnMissing) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		if w.token.Stopped() {
			return nil
		}

		if err := w.pollOnce(onNewFile, onMissing); err != nil {
			return err
		}

		<-ticker.C
	}
}

func (w *Watcher) pollOnce(onNewFile OnNewFile, onMissing OnMissing) error {
	link := filepath.Join(w.dir, SymlinkName)

	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		if !w.missingReported {
			w.missingReported = true
			onMissing()
		}
		return nil
	}

	if _, err := os.Stat(target); err != nil {
		if !w.missingReported {
			w.missingReported = true
			onMissing()
		}
		return nil
	}

	if target == w.lastTarget {
		return nil
	}
	w.lastTarget = target

	return onNewFile(target)
}
