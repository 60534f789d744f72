package flow

import "fmt"

// Window is a contiguous batch of Records forming one analysis unit.
// Invariant: 1 <= len(Flows) <= windowSize, except the final window of a
// stream, which may be shorter.
type Window struct {
	ID       int
	StartRow int
	EndRow   int
	Flows    []Record
}

// FlowCount is the number of flows carried by the window.
func (w Window) FlowCount() int {
	return len(w.Flows)
}

// Validate checks the structural invariants from spec.md §3. last reports
// whether w is permitted to be shorter than windowSize (the final window of
// a stream).
func (w Window) Validate(windowSize int, last bool) error {
	if w.ID < 0 {
		return fmt.Errorf("flow: window id must be non-negative, got %d", w.ID)
	}
	if w.EndRow < w.StartRow {
		return fmt.Errorf("flow: window %d has end_row %d before start_row %d", w.ID, w.EndRow, w.StartRow)
	}
	n := len(w.Flows)
	if n < 1 {
		return fmt.Errorf("flow: window %d has zero flows", w.ID)
	}
	if n > windowSize {
		return fmt.Errorf("flow: window %d has %d flows, exceeds window size %d", w.ID, n, windowSize)
	}
	if !last && n != windowSize {
		return fmt.Errorf("flow: non-final window %d has %d flows, want %d", w.ID, n, windowSize)
	}
	return nil
}

// GroundTruth is the majority vote of Record.IsAttack across the window's
// flows, strictly greater than half; ties resolve to benign (0).
func (w Window) GroundTruth() int {
	if len(w.Flows) == 0 {
		return 0
	}
	attacks := 0
	for _, f := range w.Flows {
		if f.IsAttack {
			attacks++
		}
	}
	if attacks*2 > len(w.Flows) {
		return 1
	}
	return 0
}

// SourceAddrs returns every source address present in the window, with
// multiplicity, in flow order.
func (w Window) SourceAddrs() []string {
	out := make([]string, 0, len(w.Flows))
	for _, f := range w.Flows {
		out = append(out, f.SrcAddr)
	}
	return out
}

// Terminate is the sentinel window ID that encodes an in-band "stop" signal
// on the transport (spec.md §4.5).
const Terminate = -1
