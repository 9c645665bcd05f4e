package evidence

import (
	"trustlens/domain/core"
)

// Relationship is the expected direction of agreement between two detection
// methods.
type Relationship string

const (
	RelationshipPositive Relationship = "positive"
	RelationshipNegative Relationship = "negative"
	RelationshipNeutral  Relationship = "neutral"
)

// PairwiseConsistency records how well one unordered method pair matched its
// expected relationship.
type PairwiseConsistency struct {
	MethodA              DetectionMethod `json:"method_a"`
	MethodB              DetectionMethod `json:"method_b"`
	ExpectedRelationship Relationship    `json:"expected_relationship"`
	ActualAgreement      float64         `json:"actual_agreement"`
	AnomalyScore         float64         `json:"anomaly_score"`
	IsAnomaly            bool            `json:"is_anomaly"`
}

// Involves reports whether the pair covers both given methods, in either order.
func (p PairwiseConsistency) Involves(a, b DetectionMethod) bool {
	return (p.MethodA == a && p.MethodB == b) || (p.MethodA == b && p.MethodB == a)
}

// ConfidenceInterval is a heuristic uncertainty band around a point estimate,
// not a statistical sampling interval. Invariant: lower <= point <= upper,
// all within [0,1].
type ConfidenceInterval struct {
	LowerBound    float64 `json:"lower_bound"`
	PointEstimate float64 `json:"point_estimate"`
	UpperBound    float64 `json:"upper_bound"`
}

// NewConfidenceInterval builds an interval around a point estimate with the
// given uncertainty band, clamped into [0,1].
func NewConfidenceInterval(point, band float64) ConfidenceInterval {
	point = Clamp01(point)
	return ConfidenceInterval{
		LowerBound:    Clamp01(point - band),
		PointEstimate: point,
		UpperBound:    Clamp01(point + band),
	}
}

// Valid checks the ordering invariant.
func (ci ConfidenceInterval) Valid() bool {
	return ci.LowerBound >= 0 && ci.UpperBound <= 1 &&
		ci.LowerBound <= ci.PointEstimate && ci.PointEstimate <= ci.UpperBound
}

// Width returns the band width of the interval.
func (ci ConfidenceInterval) Width() float64 {
	return ci.UpperBound - ci.LowerBound
}

// Severity grades an anomaly.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AnomalyReport describes one detected inconsistency between detectors.
// ConfidenceImpact is always <= 0.
type AnomalyReport struct {
	AnomalyType      string            `json:"anomaly_type"`
	Severity         Severity          `json:"severity"`
	AffectedMethods  []DetectionMethod `json:"affected_methods"`
	Details          string            `json:"details"`
	ConfidenceImpact float64           `json:"confidence_impact"`
}

// TemporalAnomalyType classifies a per-frame score discontinuity.
type TemporalAnomalyType string

const (
	TemporalSuddenJump  TemporalAnomalyType = "sudden_jump"
	TemporalOscillation TemporalAnomalyType = "oscillation"
)

// TemporalAnomaly marks a single suspicious score transition in a video.
type TemporalAnomaly struct {
	FrameIndex  int                 `json:"frame_index"`
	Method      DetectionMethod     `json:"method"`
	DeltaScore  float64             `json:"delta_score"`
	AnomalyType TemporalAnomalyType `json:"anomaly_type"`
}

// TemporalConsistency summarizes per-method score stability across sampled
// frame windows of a video capture.
type TemporalConsistency struct {
	FrameCount       int                         `json:"frame_count"`
	StabilityScores  map[DetectionMethod]float64 `json:"stability_scores"`
	Anomalies        []TemporalAnomaly           `json:"anomalies"`
	OverallStability float64                     `json:"overall_stability"`
}

// ValidationStatus is the cross-validator's overall judgment.
type ValidationStatus string

const (
	ValidationPass ValidationStatus = "pass"
	ValidationWarn ValidationStatus = "warn"
	ValidationFail ValidationStatus = "fail"
)

// CrossValidationResult carries pairwise consistency, anomalies, confidence
// intervals, and the penalty fed back into aggregation. Immutable once
// created.
type CrossValidationResult struct {
	ValidationStatus      ValidationStatus                       `json:"validation_status"`
	PairwiseConsistencies []PairwiseConsistency                  `json:"pairwise_consistencies"`
	ConfidenceIntervals   map[DetectionMethod]ConfidenceInterval `json:"confidence_intervals"`
	AggregatedInterval    ConfidenceInterval                     `json:"aggregated_interval"`
	Anomalies             []AnomalyReport                        `json:"anomalies"`
	OverallPenalty        float64                                `json:"overall_penalty"`
	TemporalConsistency   *TemporalConsistency                   `json:"temporal_consistency,omitempty"`
	AnalysisTimeMs        int64                                  `json:"analysis_time_ms"`
	AlgorithmVersion      string                                 `json:"algorithm_version"`
	ComputedAt            core.Timestamp                         `json:"computed_at"`
}
