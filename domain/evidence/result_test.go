package evidence

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"trustlens/domain/core"
)

func TestFlagSetJSONSorted(t *testing.T) {
	fs := NewFlagSet(FlagPartialAnalysis, FlagAmbiguousResults)
	data, err := json.Marshal(fs)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `["ambiguous_results","partial_analysis"]` {
		t.Errorf("Expected sorted array, got %s", data)
	}

	var back FlagSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Has(FlagPartialAnalysis) || !back.Has(FlagAmbiguousResults) {
		t.Errorf("Round trip lost flags: %v", back)
	}
}

func TestConfidenceLevelAtMost(t *testing.T) {
	if got := LevelVeryHigh.AtMost(LevelMedium); got != LevelMedium {
		t.Errorf("Expected medium cap, got %s", got)
	}
	if got := LevelLow.AtMost(LevelMedium); got != LevelLow {
		t.Errorf("Expected low to pass through medium cap, got %s", got)
	}
	if got := LevelSuspicious.AtMost(LevelSuspicious); got != LevelSuspicious {
		t.Errorf("Expected suspicious, got %s", got)
	}
}

func TestConfidenceIntervalInvariant(t *testing.T) {
	ci := NewConfidenceInterval(0.97, 0.15)
	if !ci.Valid() {
		t.Errorf("Expected valid interval, got %+v", ci)
	}
	if ci.UpperBound != 1.0 {
		t.Errorf("Expected upper bound clamped to 1.0, got %f", ci.UpperBound)
	}
	if ci.LowerBound >= ci.PointEstimate {
		t.Errorf("Expected lower < point, got %+v", ci)
	}

	ci = NewConfidenceInterval(0.02, 0.05)
	if ci.LowerBound != 0.0 {
		t.Errorf("Expected lower bound clamped to 0.0, got %f", ci.LowerBound)
	}
}

// TestAggregatedResultJSONRoundTrip checks that serialize-then-deserialize
// recovers identical field values.
func TestAggregatedResultJSONRoundTrip(t *testing.T) {
	original := AggregatedConfidenceResult{
		OverallConfidence: 0.87,
		ConfidenceLevel:   LevelHigh,
		MethodBreakdown: map[DetectionMethod]MethodResult{
			MethodLidarDepth: {Available: true, Score: NewScore(0.9), Weight: 0.55, Contribution: 0.495, Status: StatusPass},
			MethodMoire:      {Available: false, Score: MissingScore(), Status: StatusUnavailable},
		},
		PrimarySignalValid:     true,
		SupportingSignalsAgree: true,
		Flags:                  NewFlagSet(FlagPartialAnalysis),
		AnalysisTimeMs:         3,
		ComputedAt:             core.Now(),
		AlgorithmVersion:       "aggregate/1.2.0",
		Status:                 AnalysisPartial,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back AggregatedConfidenceResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if back.ConfidenceLevel != original.ConfidenceLevel ||
		math.Abs(back.OverallConfidence-original.OverallConfidence) > 1e-9 ||
		back.Status != original.Status {
		t.Errorf("Round trip changed scalar fields: %+v", back)
	}
	if !reflect.DeepEqual(back.MethodBreakdown, original.MethodBreakdown) {
		t.Errorf("Round trip changed breakdown: %+v", back.MethodBreakdown)
	}
	if !back.Flags.Has(FlagPartialAnalysis) {
		t.Error("Round trip lost flags")
	}
}

func TestHashChainStateJSONRoundTrip(t *testing.T) {
	idx := 1
	reason := "checkpoint_attestation"
	original := HashChainState{
		Status:             ChainPartial,
		VerifiedFrames:     300,
		TotalFrames:        450,
		ChainIntact:        true,
		CheckpointVerified: true,
		CheckpointIndex:    &idx,
		PartialReason:      &reason,
		VerifiedDurationMs: 10000,
	}
	if !original.Valid() {
		t.Fatal("Fixture violates frame invariant")
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back HashChainState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(back, original) {
		t.Errorf("Round trip changed state: %+v", back)
	}
}
