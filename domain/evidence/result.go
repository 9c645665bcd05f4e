package evidence

import (
	"encoding/json"
	"sort"

	"trustlens/domain/core"
)

// MethodResult is the per-detector input contract and, after aggregation, the
// per-method entry of the breakdown. Invariant: Contribution == Weight*Score
// when the method is available, else 0.
type MethodResult struct {
	Available    bool         `json:"available"`
	Score        Score        `json:"score"`
	Weight       float64      `json:"weight"`
	Contribution float64      `json:"contribution"`
	Status       MethodStatus `json:"status"`
}

// Usable reports whether this result carries a consumable score.
func (r MethodResult) Usable() bool {
	return r.Status.Usable() && !r.Score.IsMissing()
}

// ConfidenceFlag marks a specific concern raised during aggregation.
type ConfidenceFlag string

const (
	FlagPrimarySignalFailed       ConfidenceFlag = "primary_signal_failed"
	FlagScreenDetected            ConfidenceFlag = "screen_detected"
	FlagPrintDetected             ConfidenceFlag = "print_detected"
	FlagMethodsDisagree           ConfidenceFlag = "methods_disagree"
	FlagPrimarySupportingDisagree ConfidenceFlag = "primary_supporting_disagree"
	FlagPartialAnalysis           ConfidenceFlag = "partial_analysis"
	FlagLowConfidencePrimary      ConfidenceFlag = "low_confidence_primary"
	FlagAmbiguousResults          ConfidenceFlag = "ambiguous_results"
	// FlagChainPartial surfaces an incomplete-but-intact hash chain as a
	// limiting factor without capping the level.
	FlagChainPartial ConfidenceFlag = "chain_partial"
)

// FlagSet is an order-independent set of confidence flags that serializes as
// a sorted JSON array.
type FlagSet map[ConfidenceFlag]struct{}

// NewFlagSet creates a flag set from the given flags.
func NewFlagSet(flags ...ConfidenceFlag) FlagSet {
	fs := make(FlagSet, len(flags))
	for _, f := range flags {
		fs.Add(f)
	}
	return fs
}

// Add inserts a flag.
func (fs FlagSet) Add(f ConfidenceFlag) {
	fs[f] = struct{}{}
}

// Has reports whether the flag is set.
func (fs FlagSet) Has(f ConfidenceFlag) bool {
	_, ok := fs[f]
	return ok
}

// Slice returns the flags in sorted order.
func (fs FlagSet) Slice() []ConfidenceFlag {
	out := make([]ConfidenceFlag, 0, len(fs))
	for f := range fs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (fs FlagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Slice())
}

// UnmarshalJSON decodes an array of flags.
func (fs *FlagSet) UnmarshalJSON(data []byte) error {
	var flags []ConfidenceFlag
	if err := json.Unmarshal(data, &flags); err != nil {
		return err
	}
	*fs = NewFlagSet(flags...)
	return nil
}

// ConfidenceLevel is the user-facing confidence classification.
type ConfidenceLevel string

const (
	LevelVeryHigh   ConfidenceLevel = "very_high"
	LevelHigh       ConfidenceLevel = "high"
	LevelMedium     ConfidenceLevel = "medium"
	LevelLow        ConfidenceLevel = "low"
	LevelSuspicious ConfidenceLevel = "suspicious"
)

// rank orders levels from weakest to strongest for cap comparisons.
var levelRank = map[ConfidenceLevel]int{
	LevelSuspicious: 0,
	LevelLow:        1,
	LevelMedium:     2,
	LevelHigh:       3,
	LevelVeryHigh:   4,
}

// AtMost returns the weaker of l and cap.
func (l ConfidenceLevel) AtMost(cap ConfidenceLevel) ConfidenceLevel {
	if levelRank[l] > levelRank[cap] {
		return cap
	}
	return l
}

// AnalysisStatus describes how complete an aggregation pass was.
type AnalysisStatus string

const (
	AnalysisSuccess     AnalysisStatus = "success"
	AnalysisPartial     AnalysisStatus = "partial"
	AnalysisUnavailable AnalysisStatus = "unavailable"
	AnalysisError       AnalysisStatus = "error"
)

// AggregatedConfidenceResult is the single defensible confidence score
// produced from all available detector outputs. Immutable once created.
type AggregatedConfidenceResult struct {
	OverallConfidence      float64                        `json:"overall_confidence"`
	ConfidenceLevel        ConfidenceLevel                `json:"confidence_level"`
	MethodBreakdown        map[DetectionMethod]MethodResult `json:"method_breakdown"`
	PrimarySignalValid     bool                           `json:"primary_signal_valid"`
	SupportingSignalsAgree bool                           `json:"supporting_signals_agree"`
	Flags                  FlagSet                        `json:"flags"`
	AnalysisTimeMs         int64                          `json:"analysis_time_ms"`
	ComputedAt             core.Timestamp                 `json:"computed_at"`
	AlgorithmVersion       string                         `json:"algorithm_version"`
	Status                 AnalysisStatus                 `json:"status"`
}
