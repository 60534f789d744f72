// Package ingest implements the CSV input adapter named as an out-of-scope
// collaborator in spec.md §1/§6: header-driven column discovery by
// case-insensitive substring alias, mandatory address columns, and
// per-row skip-on-parse-failure. Grounded on
// original_source/ddos_mpi_detector/src/core/csv_parser.c's
// parse_csv_schema/parse_flow_record pair, expressed with
// encoding/csv instead of hand-rolled line splitting.
package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/sandia-netshield/netshield/internal/errs"
	"github.com/sandia-netshield/netshield/internal/flow"
)

// column names a Record field reachable from the header by substring alias.
type column int

const (
	colSrcAddr column = iota
	colDstAddr
	colSrcPort
	colDstPort
	colProtocol
	colDuration
	colFwdPkts
	colBwdPkts
	colBytesPerS
	colPktsPerS
	colMeanPktLen
	colSYNCount
	colLabel
)

// aliases lists the case-insensitive substrings recognised for each column,
// tried in order; the first header cell containing any of them is bound.
// Non-exhaustive per spec.md §6; timestamp and forward-IAT-mean are
// recognised by the original format but have no destination field in
// flow.Record and are intentionally not bound to anything here.
var aliases = map[column][]string{
	colSrcAddr:    {"source ip", "src ip", "ip.src", "source address", "srcaddr"},
	colDstAddr:    {"destination ip", "dst ip", "ip.dst", "destination address", "dstaddr"},
	colSrcPort:    {"source port", "src port", "port.src", "srcport"},
	colDstPort:    {"destination port", "dst port", "port.dst", "dstport"},
	colProtocol:   {"protocol"},
	colDuration:   {"flow duration", "duration"},
	colFwdPkts:    {"forward packet", "fwd packet", "total fwd packet"},
	colBwdPkts:    {"backward packet", "bwd packet", "total backward packet"},
	colBytesPerS:  {"bytes/s", "bytes per second", "flow bytes/s"},
	colPktsPerS:   {"packets/s", "packets per second", "flow packets/s"},
	colMeanPktLen: {"packet length mean", "avg packet size", "packet length"},
	colSYNCount:   {"syn flag", "syn count"},
	colLabel:      {"label"},
}

// Stats counts rows skipped for parse failure, for diagnostics alongside the
// returned records (spec.md §4 "per-row field-count mismatch is a skip").
type Stats struct {
	RowsRead    int
	RowsSkipped int
}

// ReadAll parses every data row of r as flow.Records. It returns an
// InputFormatError immediately if either mandatory address column is
// absent from the header; individual row parse failures increment
// Stats.RowsSkipped and do not abort the read.
func ReadAll(r io.Reader) ([]flow.Record, Stats, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, Stats{}, errs.Wrap(errs.KindInputFormat, err, "read CSV header")
	}

	cols, err := bindColumns(header)
	if err != nil {
		return nil, Stats{}, err
	}

	var stats Stats
	var records []flow.Record
	fieldCount := len(header)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.RowsSkipped++
			continue
		}
		stats.RowsRead++

		if len(row) != fieldCount {
			stats.RowsSkipped++
			continue
		}

		rec, ok := parseRow(row, cols)
		if !ok {
			stats.RowsSkipped++
			continue
		}
		records = append(records, flow.NewRecord(rec))
	}

	return records, stats, nil
}

// bindColumns maps each recognised column to a header index. Absence of
// either address column is a fatal InputFormatError per spec.md §6.
func bindColumns(header []string) (map[column]int, error) {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(map[column]int)
	for col, names := range aliases {
		for i, h := range lower {
			matched := false
			for _, alias := range names {
				if strings.Contains(h, alias) {
					matched = true
					break
				}
			}
			if matched {
				cols[col] = i
				break
			}
		}
	}

	if _, ok := cols[colSrcAddr]; !ok {
		return nil, errs.New(errs.KindInputFormat, "CSV header is missing a source address column")
	}
	if _, ok := cols[colDstAddr]; !ok {
		return nil, errs.New(errs.KindInputFormat, "CSV header is missing a destination address column")
	}
	return cols, nil
}

func parseRow(row []string, cols map[column]int) (flow.Record, bool) {
	var rec flow.Record

	rec.SrcAddr = strings.TrimSpace(row[cols[colSrcAddr]])
	rec.DstAddr = strings.TrimSpace(row[cols[colDstAddr]])
	if rec.SrcAddr == "" || rec.DstAddr == "" {
		return rec, false
	}

	if i, ok := cols[colSrcPort]; ok {
		v, ok := parseUint16(row[i])
		if !ok {
			return rec, false
		}
		rec.SrcPort = v
	}
	if i, ok := cols[colDstPort]; ok {
		v, ok := parseUint16(row[i])
		if !ok {
			return rec, false
		}
		rec.DstPort = v
	}
	if i, ok := cols[colProtocol]; ok {
		v, ok := parseUint8(row[i])
		if !ok {
			return rec, false
		}
		rec.Protocol = v
	}
	if i, ok := cols[colDuration]; ok {
		v, ok := parseFloat(row[i])
		if !ok {
			return rec, false
		}
		rec.Duration = v
	}
	if i, ok := cols[colFwdPkts]; ok {
		v, ok := parseUint64(row[i])
		if !ok {
			return rec, false
		}
		rec.FwdPkts = v
	}
	if i, ok := cols[colBwdPkts]; ok {
		v, ok := parseUint64(row[i])
		if !ok {
			return rec, false
		}
		rec.BwdPkts = v
	}
	if i, ok := cols[colBytesPerS]; ok {
		v, ok := parseFloat(row[i])
		if !ok {
			return rec, false
		}
		rec.BytesPerS = v
	}
	if i, ok := cols[colPktsPerS]; ok {
		v, ok := parseFloat(row[i])
		if !ok {
			return rec, false
		}
		rec.PktsPerS = v
	}
	if i, ok := cols[colMeanPktLen]; ok {
		v, ok := parseFloat(row[i])
		if !ok {
			return rec, false
		}
		rec.MeanPktLen = v
	}
	if i, ok := cols[colSYNCount]; ok {
		v, ok := parseUint64(row[i])
		if !ok {
			return rec, false
		}
		rec.SYNCount = v
	}
	if i, ok := cols[colLabel]; ok {
		rec.Label = strings.TrimSpace(row[i])
	}

	return rec, true
}

func parseUint16(s string) (uint16, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	return uint16(v), err == nil
}

func parseUint8(s string) (uint8, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	return uint8(v), err == nil
}

func parseUint64(s string) (uint64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return uint64(v), true
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}
