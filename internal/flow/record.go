// Package flow holds the in-memory representation of a parsed network flow
// and the contiguous window of flows analysed as one unit.
package flow

import "strings"

// MaxAddressLen is the longest printable address kept in any address field;
// NewRecord truncates longer values.
const MaxAddressLen = 63

// Record is a single network flow summary, as described in spec.md §3.
type Record struct {
	SrcAddr   string
	DstAddr   string
	SrcPort   uint16
	DstPort   uint16
	Protocol  uint8
	Duration  float64 // seconds
	FwdPkts   uint64
	BwdPkts   uint64
	BytesPerS float64
	PktsPerS  float64
	MeanPktLen float64
	SYNCount  uint64
	Label     string
	IsAttack  bool
}

// NewRecord fills in the derived IsAttack field from Label and truncates
// address fields to MaxAddressLen bytes.
func NewRecord(r Record) Record {
	r.SrcAddr = truncate(r.SrcAddr)
	r.DstAddr = truncate(r.DstAddr)
	r.IsAttack = labelIsAttack(r.Label)
	return r
}

func truncate(s string) string {
	if len(s) > MaxAddressLen {
		return s[:MaxAddressLen]
	}
	return s
}

// labelIsAttack reports whether a textual label denotes an attack flow: the
// lowercased label is non-empty and does not contain "benign".
func labelIsAttack(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return false
	}
	return !strings.Contains(l, "benign")
}

// Signature is the flow 5-tuple-ish token used by the entropy detector:
// src|dst|sport|dport.
func (r Record) Signature() string {
	var b strings.Builder
	b.Grow(len(r.SrcAddr) + len(r.DstAddr) + 16)
	b.WriteString(r.SrcAddr)
	b.WriteByte('|')
	b.WriteString(r.DstAddr)
	b.WriteByte('|')
	b.WriteString(portString(r.SrcPort))
	b.WriteByte('|')
	b.WriteString(portString(r.DstPort))
	return b.String()
}

func portString(p uint16) string {
	// small, allocation-light itoa for 16-bit values
	if p == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for p > 0 {
		i--
		buf[i] = byte('0' + p%10)
		p /= 10
	}
	return string(buf[i:])
}
