package wire

import (
	"io"

	"github.com/sandia-netshield/netshield/internal/errs"
	"github.com/sandia-netshield/netshield/internal/flow"
)

// ReadDispatch reads the next master->worker message, which is either a
// window (WINDOW_META, optionally followed by WINDOW_DATA) or a TERMINATE.
// It returns exactly one of win/terminated set, letting the worker's receive
// loop probe for either without knowing in advance which is coming.
func ReadDispatch(r io.Reader) (win flow.Window, terminated bool, err error) {
	tag, payload, err := readAnyFrame(r)
	if err != nil {
		return flow.Window{}, false, err
	}

	switch tag {
	case TagTerminate:
		if len(payload) != 8 {
			return flow.Window{}, false, errs.New(errs.KindTransport, "malformed terminate frame")
		}
		return flow.Window{}, true, nil

	case TagWindowMeta:
		if len(payload) != 32 {
			return flow.Window{}, false, errs.New(errs.KindTransport, "malformed window meta frame")
		}
		win = flow.Window{
			ID:       int(getInt64(payload[0:8])),
			StartRow: int(getInt64(payload[8:16])),
			EndRow:   int(getInt64(payload[16:24])),
		}
		count := int(getInt64(payload[24:32]))
		if win.ID == flow.Terminate {
			return flow.Window{}, true, nil
		}
		if count == 0 {
			return win, false, nil
		}

		data, err := readFrame(r, TagWindowData)
		if err != nil {
			return flow.Window{}, false, err
		}
		win.Flows = make([]flow.Record, 0, count)
		off := 0
		for i := 0; i < count; i++ {
			rec, n, err := readRecord(data[off:])
			if err != nil {
				return flow.Window{}, false, err
			}
			win.Flows = append(win.Flows, rec)
			off += n
		}
		return win, false, nil

	default:
		return flow.Window{}, false, errs.New(errs.KindTransport, "unexpected tag in dispatch frame")
	}
}
