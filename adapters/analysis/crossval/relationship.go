package crossval

import (
	"trustlens/domain/evidence"
)

// MethodPair is an unordered pair of detection methods, stored in canonical
// order (AllMethods order).
type MethodPair struct {
	A evidence.DetectionMethod
	B evidence.DetectionMethod
}

// RelationshipSpec fixes the expected direction of agreement for one pair and
// how much trust the engine places in that expectation. Anomaly scores are
// scaled by Confidence, so low-confidence expectations raise softer alarms.
type RelationshipSpec struct {
	Relationship evidence.Relationship
	Confidence   float64
}

// defaultRelationships is the documented relationship table. Real hardware
// depth and moire screen detection should move oppositely; the remaining
// authenticity signals should move together, with no strong expectation
// between the two screen-artifact detectors.
func defaultRelationships() map[MethodPair]RelationshipSpec {
	return map[MethodPair]RelationshipSpec{
		{evidence.MethodLidarDepth, evidence.MethodMoire}:   {evidence.RelationshipNegative, 1.0},
		{evidence.MethodLidarDepth, evidence.MethodTexture}: {evidence.RelationshipPositive, 1.0},
		{evidence.MethodLidarDepth, evidence.MethodArtifacts}: {evidence.RelationshipPositive, 1.0},
		{evidence.MethodMoire, evidence.MethodTexture}:     {evidence.RelationshipNeutral, 0.5},
		{evidence.MethodMoire, evidence.MethodArtifacts}:   {evidence.RelationshipNeutral, 0.5},
		{evidence.MethodTexture, evidence.MethodArtifacts}: {evidence.RelationshipPositive, 0.8},
	}
}

// pairOf returns the canonical pair for two methods.
func pairOf(a, b evidence.DetectionMethod) MethodPair {
	for _, m := range evidence.AllMethods {
		if m == a {
			return MethodPair{a, b}
		}
		if m == b {
			return MethodPair{b, a}
		}
	}
	return MethodPair{a, b}
}

// agreement computes actual_agreement for two scores under a relationship.
func agreement(rel evidence.Relationship, scoreA, scoreB, neutralBaseline float64) float64 {
	switch rel {
	case evidence.RelationshipPositive:
		return evidence.Clamp01(1 - abs(scoreA-scoreB))
	case evidence.RelationshipNegative:
		return evidence.Clamp01(1 - abs(scoreA-(1-scoreB)))
	default:
		// No strong expectation either way.
		return neutralBaseline
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
