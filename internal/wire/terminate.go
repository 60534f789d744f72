package wire

import (
	"io"

	"github.com/sandia-netshield/netshield/internal/errs"
)

// WriteTerminate sends the single-integer TERMINATE message spec.md §4.5
// defines to signal a worker to exit its receive loop. The integer carries
// no payload semantics beyond its presence; it is conventionally
// flow.Terminate.
func WriteTerminate(w io.Writer, code int) error {
	buf := make([]byte, 8)
	putInt64(buf, int64(code))
	return writeFrame(w, TagTerminate, buf)
}

// ReadTerminate receives a message sent by WriteTerminate.
func ReadTerminate(r io.Reader) (int, error) {
	data, err := readFrame(r, TagTerminate)
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, errs.New(errs.KindTransport, "malformed terminate frame")
	}
	return int(getInt64(data)), nil
}
