// Package wire defines the fixed-width binary frame layout used on the
// master/worker transport (C6 in SPEC_FULL.md), replacing the source
// implementation's raw "sizeof(struct)" memory dump with an explicit,
// byte-order-pinned encoding (spec.md §9's "Shared binary struct on the
// wire" design note).
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/sandia-netshield/netshield/internal/errs"
)

// Tag identifies one of the four logical channels plus terminate, per
// spec.md §4.5.
type Tag uint8

const (
	TagWindowMeta Tag = iota
	TagWindowData
	TagResultMeta
	TagResultData
	TagTerminate
)

var order = binary.BigEndian

// writeFrame writes a length-prefixed, checksummed frame: tag (1 byte),
// payload length (4 bytes), payload, and a 16-byte BLAKE2b-128 checksum of
// tag+length+payload. The checksum lets the receiver detect a corrupted or
// truncated frame (errs.KindTransport) instead of silently misparsing it.
func writeFrame(w io.Writer, tag Tag, payload []byte) error {
	var header [5]byte
	header[0] = byte(tag)
	order.PutUint32(header[1:], uint32(len(payload)))

	sum := checksum(header[:], payload)

	if _, err := w.Write(header[:]); err != nil {
		return errs.Wrap(errs.KindTransport, err, "write frame header")
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return errs.Wrap(errs.KindTransport, err, "write frame payload")
		}
	}
	if _, err := w.Write(sum[:]); err != nil {
		return errs.Wrap(errs.KindTransport, err, "write frame checksum")
	}
	return nil
}

// readFrame reads one frame written by writeFrame and verifies its tag
// matches want and its checksum is intact.
func readFrame(r io.Reader, want Tag) ([]byte, error) {
	got, payload, err := readAnyFrame(r)
	if err != nil {
		return nil, err
	}
	if got != want {
		return nil, errs.New(errs.KindTransport, fmt.Sprintf("frame tag mismatch: want %d, got %d", want, got))
	}
	return payload, nil
}

// readAnyFrame reads one frame without constraining its tag, for call sites
// (the dispatch loop between master and worker) that must accept either a
// WINDOW_META or a TERMINATE as the next message.
func readAnyFrame(r io.Reader) (Tag, []byte, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, errs.Wrap(errs.KindTransport, err, "read frame header")
	}

	got := Tag(header[0])
	n := order.Uint32(header[1:])
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, errs.Wrap(errs.KindTransport, err, "read frame payload")
		}
	}

	var sum [16]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return 0, nil, errs.Wrap(errs.KindTransport, err, "read frame checksum")
	}

	want2 := checksum(header[:], payload)
	if sum != want2 {
		return 0, nil, errs.New(errs.KindTransport, "frame checksum mismatch: corrupted or truncated message")
	}

	return got, payload, nil
}

func checksum(header, payload []byte) [16]byte {
	h, _ := blake2b.New(16, nil)
	h.Write(header)
	h.Write(payload)
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

func putInt64(b []byte, v int64)     { order.PutUint64(b, uint64(v)) }
func getInt64(b []byte) int64        { return int64(order.Uint64(b)) }
func putFloat64(b []byte, v float64) { order.PutUint64(b, math.Float64bits(v)) }
func getFloat64(b []byte) float64    { return math.Float64frombits(order.Uint64(b)) }
