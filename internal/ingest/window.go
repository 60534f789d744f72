package ingest

import "github.com/sandia-netshield/netshield/internal/flow"

// Partition splits records into contiguous windows of windowSize, with the
// final window permitted to be shorter (spec.md §3's window invariant).
// Window IDs and row ranges are assigned in input order, starting at 0.
func Partition(records []flow.Record, windowSize int) []flow.Window {
	if windowSize < 1 {
		windowSize = 1
	}
	if len(records) == 0 {
		return nil
	}

	n := (len(records) + windowSize - 1) / windowSize
	windows := make([]flow.Window, 0, n)

	for id := 0; id*windowSize < len(records); id++ {
		start := id * windowSize
		end := start + windowSize
		if end > len(records) {
			end = len(records)
		}
		windows = append(windows, flow.Window{
			ID:       id,
			StartRow: start,
			EndRow:   end - 1,
			Flows:    records[start:end],
		})
	}
	return windows
}
