package flow

// DetectorResult is the score/prediction pair and suspect list produced by
// a single detector for a single window.
type DetectorResult struct {
	Score      float64
	Prediction int
	Suspects   []string
}

// WindowResult is the per-window output gathered by the master, combining
// window identity, per-detector results, the ensemble verdict, ground
// truth, and timing, per spec.md §3.
type WindowResult struct {
	WindowID    int
	StartRow    int
	EndRow      int
	FlowCount   int
	GroundTruth int

	Entropy DetectorResult
	PCA     DetectorResult
	Cusum   DetectorResult

	// EntropyNormSrcIP/EntropyNormDstIP are transported alongside the
	// scores (RESULT_DATA in spec.md §4.5) though they are diagnostic only
	// and are not consumed by the ensemble merge.
	EntropyNormSrcIP float64
	EntropyNormDstIP float64

	// PCASPE carries the PCA detector's score. PCAT2 is a reserved wire
	// field that is never computed (spec.md §9 Open Question) and is
	// always 0.
	PCASPE float64
	PCAT2  float64

	CusumPos float64
	CusumNeg float64

	CombinedPrediction int
	Suspects           []string

	ProcessingTimeMS float64
}
