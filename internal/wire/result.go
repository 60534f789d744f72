package wire

import (
	"io"

	"github.com/sandia-netshield/netshield/internal/errs"
	"github.com/sandia-netshield/netshield/internal/flow"
)

// WriteResult sends a WindowResult as RESULT_META, RESULT_DATA (scores),
// and the suspect-address list, per spec.md §4.5's nine-integer /
// ten-real / (count, (addr,count)*) layout.
func WriteResult(w io.Writer, res flow.WindowResult) error {
	meta := make([]byte, 9*8)
	ints := []int64{
		int64(res.WindowID),
		int64(res.StartRow),
		int64(res.EndRow),
		int64(res.FlowCount),
		int64(res.Entropy.Prediction),
		int64(res.PCA.Prediction),
		int64(res.Cusum.Prediction),
		int64(res.CombinedPrediction),
		int64(res.GroundTruth),
	}
	for i, v := range ints {
		putInt64(meta[i*8:(i+1)*8], v)
	}
	if err := writeFrame(w, TagResultMeta, meta); err != nil {
		return err
	}

	reals := []float64{
		res.Entropy.Score,
		res.PCA.Score,
		res.Cusum.Score,
		res.EntropyNormSrcIP,
		res.EntropyNormDstIP,
		res.PCASPE,
		res.PCAT2,
		res.CusumPos,
		res.CusumNeg,
		res.ProcessingTimeMS,
	}
	scoreBuf := make([]byte, len(reals)*8)
	for i, v := range reals {
		putFloat64(scoreBuf[i*8:(i+1)*8], v)
	}

	// Suspect list is appended to the same RESULT_DATA channel, after the
	// ten reals, per spec.md §4.5: one integer ip_count followed by
	// ip_count pairs of (address string, multiplicity).
	counts := countSuspects(res.Suspects)
	buf := scoreBuf
	countBuf := make([]byte, 8)
	putInt64(countBuf, int64(len(counts)))
	buf = append(buf, countBuf...)
	for _, sc := range counts {
		buf = appendString(buf, sc.addr)
		n := make([]byte, 8)
		putInt64(n, int64(sc.count))
		buf = append(buf, n...)
	}

	return writeFrame(w, TagResultData, buf)
}

// ReadResult receives a WindowResult sent by WriteResult.
func ReadResult(r io.Reader) (flow.WindowResult, error) {
	var res flow.WindowResult

	meta, err := readFrame(r, TagResultMeta)
	if err != nil {
		return res, err
	}
	if len(meta) != 9*8 {
		return res, errs.New(errs.KindTransport, "malformed result meta frame")
	}

	res.WindowID = int(getInt64(meta[0:8]))
	res.StartRow = int(getInt64(meta[8:16]))
	res.EndRow = int(getInt64(meta[16:24]))
	res.FlowCount = int(getInt64(meta[24:32]))
	res.Entropy.Prediction = int(getInt64(meta[32:40]))
	res.PCA.Prediction = int(getInt64(meta[40:48]))
	res.Cusum.Prediction = int(getInt64(meta[48:56]))
	res.CombinedPrediction = int(getInt64(meta[56:64]))
	res.GroundTruth = int(getInt64(meta[64:72]))

	data, err := readFrame(r, TagResultData)
	if err != nil {
		return res, err
	}
	if len(data) < 10*8+8 {
		return res, errs.New(errs.KindTransport, "truncated result data frame")
	}

	res.Entropy.Score = getFloat64(data[0:8])
	res.PCA.Score = getFloat64(data[8:16])
	res.Cusum.Score = getFloat64(data[16:24])
	res.EntropyNormSrcIP = getFloat64(data[24:32])
	res.EntropyNormDstIP = getFloat64(data[32:40])
	res.PCASPE = getFloat64(data[40:48])
	res.PCAT2 = getFloat64(data[48:56])
	res.CusumPos = getFloat64(data[56:64])
	res.CusumNeg = getFloat64(data[64:72])
	res.ProcessingTimeMS = getFloat64(data[72:80])

	off := 80
	ipCount := int(getInt64(data[off : off+8]))
	off += 8

	for i := 0; i < ipCount; i++ {
		addr, n, err := readString(data[off:])
		if err != nil {
			return res, err
		}
		off += n
		if len(data[off:]) < 8 {
			return res, errs.New(errs.KindTransport, "truncated suspect count")
		}
		count := int(getInt64(data[off : off+8]))
		off += 8
		for j := 0; j < count; j++ {
			res.Suspects = append(res.Suspects, addr)
		}
	}

	return res, nil
}

type suspectCount struct {
	addr  string
	count int
}

// countSuspects collapses a multiset of addresses (as appended by the
// ensemble merge) into (address, multiplicity) pairs, preserving first-seen
// order, for compact wire transport.
func countSuspects(addrs []string) []suspectCount {
	order := make([]string, 0, len(addrs))
	counts := make(map[string]int, len(addrs))
	for _, a := range addrs {
		if _, ok := counts[a]; !ok {
			order = append(order, a)
		}
		counts[a]++
	}
	out := make([]suspectCount, len(order))
	for i, a := range order {
		out[i] = suspectCount{addr: a, count: counts[a]}
	}
	return out
}
