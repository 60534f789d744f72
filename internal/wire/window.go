package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/sandia-netshield/netshield/internal/errs"
	"github.com/sandia-netshield/netshield/internal/flow"
)

// recordFixedLen is the size of the fixed-width block encoded per
// flow.Record after its three length-prefixed strings (source address,
// destination address, label): an 8-byte slot holding protocol and both
// ports, seven float64/uint64 fields, and one is-attack byte.
const recordFixedLen = 8*8 + 1

// WriteWindow sends a window as WINDOW_META followed by WINDOW_DATA (when
// non-empty), per spec.md §4.5. A window with ID flow.Terminate encodes an
// in-band terminate and carries no flow data.
func WriteWindow(w io.Writer, win flow.Window) error {
	meta := make([]byte, 32)
	putInt64(meta[0:8], int64(win.ID))
	putInt64(meta[8:16], int64(win.StartRow))
	putInt64(meta[16:24], int64(win.EndRow))
	putInt64(meta[24:32], int64(len(win.Flows)))
	if err := writeFrame(w, TagWindowMeta, meta); err != nil {
		return err
	}

	if len(win.Flows) == 0 {
		return nil
	}

	var buf []byte
	for _, f := range win.Flows {
		buf = appendRecord(buf, f)
	}
	return writeFrame(w, TagWindowData, buf)
}

// ReadWindow receives a window sent by WriteWindow.
func ReadWindow(r io.Reader) (flow.Window, error) {
	meta, err := readFrame(r, TagWindowMeta)
	if err != nil {
		return flow.Window{}, err
	}
	if len(meta) != 32 {
		return flow.Window{}, errs.New(errs.KindTransport, "malformed window meta frame")
	}

	win := flow.Window{
		ID:       int(getInt64(meta[0:8])),
		StartRow: int(getInt64(meta[8:16])),
		EndRow:   int(getInt64(meta[16:24])),
	}
	count := int(getInt64(meta[24:32]))

	if win.ID == flow.Terminate || count == 0 {
		return win, nil
	}

	data, err := readFrame(r, TagWindowData)
	if err != nil {
		return flow.Window{}, err
	}

	win.Flows = make([]flow.Record, 0, count)
	off := 0
	for i := 0; i < count; i++ {
		rec, n, err := readRecord(data[off:])
		if err != nil {
			return flow.Window{}, err
		}
		win.Flows = append(win.Flows, rec)
		off += n
	}
	return win, nil
}

func appendRecord(buf []byte, r flow.Record) []byte {
	buf = appendString(buf, r.SrcAddr)
	buf = appendString(buf, r.DstAddr)
	buf = appendString(buf, r.Label)

	var fixed [recordFixedLen]byte
	fixed[0] = r.Protocol
	binary.BigEndian.PutUint16(fixed[1:3], r.SrcPort)
	binary.BigEndian.PutUint16(fixed[3:5], r.DstPort)
	binary.BigEndian.PutUint64(fixed[8:16], math.Float64bits(r.Duration))
	binary.BigEndian.PutUint64(fixed[16:24], r.FwdPkts)
	binary.BigEndian.PutUint64(fixed[24:32], r.BwdPkts)
	binary.BigEndian.PutUint64(fixed[32:40], math.Float64bits(r.BytesPerS))
	binary.BigEndian.PutUint64(fixed[40:48], math.Float64bits(r.PktsPerS))
	binary.BigEndian.PutUint64(fixed[48:56], math.Float64bits(r.MeanPktLen))
	binary.BigEndian.PutUint64(fixed[56:64], r.SYNCount)
	if r.IsAttack {
		fixed[64] = 1
	}
	return append(buf, fixed[:]...)
}

func readRecord(buf []byte) (flow.Record, int, error) {
	var r flow.Record
	off := 0

	s, n, err := readString(buf[off:])
	if err != nil {
		return r, 0, err
	}
	r.SrcAddr = s
	off += n

	s, n, err = readString(buf[off:])
	if err != nil {
		return r, 0, err
	}
	r.DstAddr = s
	off += n

	s, n, err = readString(buf[off:])
	if err != nil {
		return r, 0, err
	}
	r.Label = s
	off += n

	if len(buf[off:]) < recordFixedLen {
		return r, 0, errs.New(errs.KindTransport, "truncated flow record")
	}
	fixed := buf[off : off+recordFixedLen]
	r.Protocol = fixed[0]
	r.SrcPort = binary.BigEndian.Uint16(fixed[1:3])
	r.DstPort = binary.BigEndian.Uint16(fixed[3:5])
	r.Duration = math.Float64frombits(binary.BigEndian.Uint64(fixed[8:16]))
	r.FwdPkts = binary.BigEndian.Uint64(fixed[16:24])
	r.BwdPkts = binary.BigEndian.Uint64(fixed[24:32])
	r.BytesPerS = math.Float64frombits(binary.BigEndian.Uint64(fixed[32:40]))
	r.PktsPerS = math.Float64frombits(binary.BigEndian.Uint64(fixed[40:48]))
	r.MeanPktLen = math.Float64frombits(binary.BigEndian.Uint64(fixed[48:56]))
	r.SYNCount = binary.BigEndian.Uint64(fixed[56:64])
	r.IsAttack = fixed[64] != 0
	off += recordFixedLen

	return r, off, nil
}

func appendString(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

func readString(buf []byte) (string, int, error) {
	if len(buf) < 4 {
		return "", 0, errs.New(errs.KindTransport, "truncated string length")
	}
	n := int(binary.BigEndian.Uint32(buf[:4]))
	if len(buf) < 4+n {
		return "", 0, errs.New(errs.KindTransport, "truncated string data")
	}
	return string(buf[4 : 4+n]), 4 + n, nil
}
