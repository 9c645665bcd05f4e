package crossval

import (
	"math"
	"testing"

	"trustlens/domain/evidence"
)

func pass(score float64) evidence.MethodResult {
	return evidence.MethodResult{Score: evidence.NewScore(score), Status: evidence.StatusPass}
}

func TestValidateConsistentSignals(t *testing.T) {
	v := New(DefaultConfig())
	result := v.Validate(map[evidence.DetectionMethod]evidence.MethodResult{
		evidence.MethodLidarDepth: pass(0.90),
		evidence.MethodTexture:    pass(0.88),
		evidence.MethodArtifacts:  pass(0.92),
	}, nil)

	if result.ValidationStatus != evidence.ValidationPass {
		t.Errorf("Expected pass, got %s", result.ValidationStatus)
	}
	if len(result.Anomalies) != 0 {
		t.Errorf("Expected no anomalies, got %+v", result.Anomalies)
	}
	if result.OverallPenalty != 0 {
		t.Errorf("Expected zero penalty, got %f", result.OverallPenalty)
	}
	// Three available methods yield three unordered pairs.
	if len(result.PairwiseConsistencies) != 3 {
		t.Errorf("Expected 3 pairs, got %d", len(result.PairwiseConsistencies))
	}
	if result.AlgorithmVersion != AlgorithmVersion {
		t.Errorf("Expected algorithm version stamp, got %q", result.AlgorithmVersion)
	}
}

// TestValidateContradictorySignals covers a strong primary pass against a
// strongly failing supporting score: one high-severity pairwise anomaly plus
// the contradictory-signals pattern, with the penalty capped at 0.5.
func TestValidateContradictorySignals(t *testing.T) {
	v := New(DefaultConfig())
	result := v.Validate(map[evidence.DetectionMethod]evidence.MethodResult{
		evidence.MethodLidarDepth: pass(0.95),
		evidence.MethodTexture:    pass(0.10),
	}, nil)

	if result.ValidationStatus != evidence.ValidationFail {
		t.Errorf("Expected fail, got %s", result.ValidationStatus)
	}
	if math.Abs(result.OverallPenalty-0.50) > 1e-9 {
		t.Errorf("Expected penalty capped at 0.50, got %f", result.OverallPenalty)
	}

	var pairwise, contradictory *evidence.AnomalyReport
	for i := range result.Anomalies {
		switch result.Anomalies[i].AnomalyType {
		case "pairwise_inconsistency":
			pairwise = &result.Anomalies[i]
		case "contradictory_signals":
			contradictory = &result.Anomalies[i]
		}
	}
	if pairwise == nil {
		t.Fatal("Expected a pairwise_inconsistency anomaly")
	}
	if pairwise.Severity != evidence.SeverityHigh {
		t.Errorf("Expected high severity at anomaly score 0.85, got %s", pairwise.Severity)
	}
	if contradictory == nil {
		t.Fatal("Expected a contradictory_signals anomaly")
	}
	if contradictory.Severity != evidence.SeverityHigh {
		t.Errorf("Expected high severity contradiction, got %s", contradictory.Severity)
	}
}

// TestValidateNeutralPairNeverAlarms verifies the neutral baseline keeps
// screen-artifact detector pairs below the anomaly threshold no matter how
// far apart their scores are.
func TestValidateNeutralPairNeverAlarms(t *testing.T) {
	v := New(DefaultConfig())
	result := v.Validate(map[evidence.DetectionMethod]evidence.MethodResult{
		evidence.MethodMoire:   pass(0.95),
		evidence.MethodTexture: pass(0.05),
	}, nil)

	if result.ValidationStatus != evidence.ValidationPass {
		t.Errorf("Expected pass for neutral pair, got %s", result.ValidationStatus)
	}
	if len(result.PairwiseConsistencies) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(result.PairwiseConsistencies))
	}
	p := result.PairwiseConsistencies[0]
	if p.ExpectedRelationship != evidence.RelationshipNeutral {
		t.Errorf("Expected neutral relationship, got %s", p.ExpectedRelationship)
	}
	if p.ActualAgreement != 0.75 {
		t.Errorf("Expected neutral baseline agreement 0.75, got %f", p.ActualAgreement)
	}
	if p.IsAnomaly {
		t.Error("Neutral pair should not be anomalous")
	}
}

// TestValidateWarnBand covers a single low-severity anomaly whose penalty
// stays below the fail boundary.
func TestValidateWarnBand(t *testing.T) {
	v := New(DefaultConfig())
	// texture/artifacts expect positive movement; a 0.70 gap at 0.8 table
	// confidence gives anomaly score 0.56, inside the low severity band.
	result := v.Validate(map[evidence.DetectionMethod]evidence.MethodResult{
		evidence.MethodTexture:   pass(0.90),
		evidence.MethodArtifacts: pass(0.20),
	}, nil)

	if result.ValidationStatus != evidence.ValidationWarn {
		t.Errorf("Expected warn, got %s", result.ValidationStatus)
	}
	if len(result.Anomalies) != 1 {
		t.Fatalf("Expected 1 anomaly, got %d", len(result.Anomalies))
	}
	if result.Anomalies[0].Severity != evidence.SeverityLow {
		t.Errorf("Expected low severity, got %s", result.Anomalies[0].Severity)
	}
	if math.Abs(result.OverallPenalty-0.05) > 1e-9 {
		t.Errorf("Expected penalty 0.05, got %f", result.OverallPenalty)
	}
}

func TestValidateNegativeRelationship(t *testing.T) {
	v := New(DefaultConfig())
	// Depth and moire are expected to move oppositely: 0.9 against 0.1 is
	// perfect agreement under the negative relationship.
	result := v.Validate(map[evidence.DetectionMethod]evidence.MethodResult{
		evidence.MethodLidarDepth: pass(0.90),
		evidence.MethodMoire:      pass(0.10),
	}, nil)

	if len(result.PairwiseConsistencies) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(result.PairwiseConsistencies))
	}
	p := result.PairwiseConsistencies[0]
	if p.ExpectedRelationship != evidence.RelationshipNegative {
		t.Errorf("Expected negative relationship, got %s", p.ExpectedRelationship)
	}
	if math.Abs(p.ActualAgreement-1.0) > 1e-9 {
		t.Errorf("Expected full agreement, got %f", p.ActualAgreement)
	}
}

func TestValidateConfidenceIntervals(t *testing.T) {
	v := New(DefaultConfig())
	result := v.Validate(map[evidence.DetectionMethod]evidence.MethodResult{
		evidence.MethodLidarDepth: pass(0.90),
	}, nil)

	ci, ok := result.ConfidenceIntervals[evidence.MethodLidarDepth]
	if !ok {
		t.Fatal("Expected lidar interval")
	}
	if math.Abs(ci.LowerBound-0.85) > 1e-9 || math.Abs(ci.UpperBound-0.95) > 1e-9 {
		t.Errorf("Expected [0.85, 0.95] for the hardware signal, got %+v", ci)
	}
	// A single method carries weight 1.0, so the aggregated interval matches.
	if result.AggregatedInterval != ci {
		t.Errorf("Expected aggregated interval %+v, got %+v", ci, result.AggregatedInterval)
	}
}

func TestValidateSkipsUnusableMethods(t *testing.T) {
	v := New(DefaultConfig())
	result := v.Validate(map[evidence.DetectionMethod]evidence.MethodResult{
		evidence.MethodLidarDepth: pass(0.90),
		evidence.MethodMoire:      {Score: evidence.MissingScore(), Status: evidence.StatusUnavailable},
	}, nil)

	if len(result.PairwiseConsistencies) != 0 {
		t.Errorf("Expected no pairs with one usable method, got %d", len(result.PairwiseConsistencies))
	}
	if _, ok := result.ConfidenceIntervals[evidence.MethodMoire]; ok {
		t.Error("Unexpected interval for unavailable method")
	}
}
