package crossval

import (
	"fmt"
	"time"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
)

// AlgorithmVersion is stamped into every cross-validation result.
const AlgorithmVersion = "crossval/1.2.0"

// Config holds every cross-validation constant. Immutable once constructed.
type Config struct {
	// NeutralBaseline is the agreement assigned to neutral-relationship pairs.
	NeutralBaseline float64
	// AnomalyThreshold is the anomaly score above which a pair is anomalous.
	AnomalyThreshold float64
	// Severity bands over anomaly score: below MediumSeverityFloor is low,
	// below HighSeverityFloor is medium, else high.
	MediumSeverityFloor float64
	HighSeverityFloor   float64
	// Per-severity confidence impacts (negative).
	LowImpact    float64
	MediumImpact float64
	HighImpact   float64
	// PenaltyCap bounds the summed penalty.
	PenaltyCap float64
	// WarnPenaltyCeiling separates warn from fail when anomalies exist.
	WarnPenaltyCeiling float64
	// UncertaintyBands are the per-method confidence interval half-widths.
	// The hardware signal gets the tightest band.
	UncertaintyBands map[evidence.DetectionMethod]float64
	// Contradiction thresholds for the primary-vs-supporting pattern.
	StrongPassFloor  float64
	StrongFailCeiling float64
	// Temporal thresholds.
	JumpThreshold      float64
	OscillationMinRuns int
	OscillationMinDelta float64
	// Relationships is the fixed pairwise expectation table.
	Relationships map[MethodPair]RelationshipSpec
}

// DefaultConfig returns the documented constants.
func DefaultConfig() Config {
	return Config{
		NeutralBaseline:     0.75,
		AnomalyThreshold:    0.50,
		MediumSeverityFloor: 0.60,
		HighSeverityFloor:   0.85,
		LowImpact:           -0.05,
		MediumImpact:        -0.15,
		HighImpact:          -0.30,
		PenaltyCap:          0.50,
		WarnPenaltyCeiling:  0.15,
		UncertaintyBands: map[evidence.DetectionMethod]float64{
			evidence.MethodLidarDepth: 0.05,
			evidence.MethodMoire:      0.15,
			evidence.MethodTexture:    0.15,
			evidence.MethodArtifacts:  0.15,
		},
		StrongPassFloor:     0.70,
		StrongFailCeiling:   0.20,
		JumpThreshold:       0.25,
		OscillationMinRuns:  3,
		OscillationMinDelta: 0.05,
		Relationships:       defaultRelationships(),
	}
}

// Validator checks pairwise and temporal consistency between detectors.
// Pure computation; never blocks.
type Validator struct {
	cfg Config
}

// New creates a validator with the given config.
func New(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// Validate evaluates every unordered pair of available methods once,
// derives confidence intervals, collects anomalies, and produces the penalty
// fed back into aggregation. Frames may be nil for photo captures.
func (v *Validator) Validate(methods map[evidence.DetectionMethod]evidence.MethodResult, frames []FrameWindow) evidence.CrossValidationResult {
	start := time.Now()

	available := make([]evidence.DetectionMethod, 0, len(evidence.AllMethods))
	scores := make(map[evidence.DetectionMethod]float64, len(evidence.AllMethods))
	for _, m := range evidence.AllMethods {
		if r, ok := methods[m]; ok && r.Usable() {
			available = append(available, m)
			scores[m] = r.Score.OrZero()
		}
	}

	weights := evidence.RedistributeWeights(available)

	pairwise := v.evaluatePairs(available, scores)
	anomalies := v.collectAnomalies(pairwise, methods, scores)

	penalty := 0.0
	for _, a := range anomalies {
		penalty += -a.ConfidenceImpact
	}
	if penalty > v.cfg.PenaltyCap {
		penalty = v.cfg.PenaltyCap
	}

	status := evidence.ValidationPass
	if len(anomalies) > 0 {
		status = evidence.ValidationWarn
		if penalty >= v.cfg.WarnPenaltyCeiling {
			status = evidence.ValidationFail
		}
	}

	intervals := make(map[evidence.DetectionMethod]evidence.ConfidenceInterval, len(available))
	for _, m := range available {
		intervals[m] = evidence.NewConfidenceInterval(scores[m], v.cfg.UncertaintyBands[m])
	}

	result := evidence.CrossValidationResult{
		ValidationStatus:      status,
		PairwiseConsistencies: pairwise,
		ConfidenceIntervals:   intervals,
		AggregatedInterval:    v.combineIntervals(available, weights, intervals),
		Anomalies:             anomalies,
		OverallPenalty:        penalty,
		AlgorithmVersion:      AlgorithmVersion,
		ComputedAt:            core.Now(),
	}

	if frames != nil {
		tc := v.analyzeTemporal(frames, weights)
		result.TemporalConsistency = &tc
	}

	result.AnalysisTimeMs = time.Since(start).Milliseconds()
	return result
}

// evaluatePairs scores every unordered pair of available methods exactly once.
func (v *Validator) evaluatePairs(available []evidence.DetectionMethod, scores map[evidence.DetectionMethod]float64) []evidence.PairwiseConsistency {
	out := make([]evidence.PairwiseConsistency, 0, len(available)*(len(available)-1)/2)
	for i := 0; i < len(available); i++ {
		for j := i + 1; j < len(available); j++ {
			pair := pairOf(available[i], available[j])
			spec, ok := v.cfg.Relationships[pair]
			if !ok {
				spec = RelationshipSpec{evidence.RelationshipNeutral, 0.5}
			}

			actual := agreement(spec.Relationship, scores[pair.A], scores[pair.B], v.cfg.NeutralBaseline)
			anomalyScore := evidence.Clamp01((1 - actual) * spec.Confidence)

			out = append(out, evidence.PairwiseConsistency{
				MethodA:              pair.A,
				MethodB:              pair.B,
				ExpectedRelationship: spec.Relationship,
				ActualAgreement:      actual,
				AnomalyScore:         anomalyScore,
				IsAnomaly:            anomalyScore > v.cfg.AnomalyThreshold,
			})
		}
	}
	return out
}

// collectAnomalies turns anomalous pairs and the contradictory
// primary-vs-supporting pattern into anomaly reports.
func (v *Validator) collectAnomalies(pairwise []evidence.PairwiseConsistency, methods map[evidence.DetectionMethod]evidence.MethodResult, scores map[evidence.DetectionMethod]float64) []evidence.AnomalyReport {
	var anomalies []evidence.AnomalyReport

	for _, p := range pairwise {
		if !p.IsAnomaly {
			continue
		}
		sev, impact := v.grade(p.AnomalyScore)
		anomalies = append(anomalies, evidence.AnomalyReport{
			AnomalyType:     "pairwise_inconsistency",
			Severity:        sev,
			AffectedMethods: []evidence.DetectionMethod{p.MethodA, p.MethodB},
			Details: fmt.Sprintf("%s and %s violate expected %s relationship (agreement %.2f)",
				p.MethodA, p.MethodB, p.ExpectedRelationship, p.ActualAgreement),
			ConfidenceImpact: impact,
		})
	}

	// Contradictory pattern: the hardware signal strongly passes while a
	// supporting detector strongly fails, or vice versa.
	primary, ok := methods[evidence.MethodLidarDepth]
	if !ok || !primary.Usable() {
		return anomalies
	}
	primaryScore := scores[evidence.MethodLidarDepth]
	primaryStrongPass := primary.Status == evidence.StatusPass && primaryScore >= v.cfg.StrongPassFloor
	primaryStrongFail := primaryScore <= v.cfg.StrongFailCeiling

	for _, m := range evidence.AllMethods {
		if m.IsPrimary() {
			continue
		}
		r, ok := methods[m]
		if !ok || !r.Usable() {
			continue
		}
		supportScore := scores[m]
		contradiction := (primaryStrongPass && supportScore <= v.cfg.StrongFailCeiling) ||
			(primaryStrongFail && supportScore >= v.cfg.StrongPassFloor)
		if !contradiction {
			continue
		}
		anomalies = append(anomalies, evidence.AnomalyReport{
			AnomalyType:     "contradictory_signals",
			Severity:        evidence.SeverityHigh,
			AffectedMethods: []evidence.DetectionMethod{evidence.MethodLidarDepth, m},
			Details: fmt.Sprintf("primary signal at %.2f contradicts %s at %.2f",
				primaryScore, m, supportScore),
			ConfidenceImpact: v.cfg.HighImpact,
		})
	}

	return anomalies
}

// grade maps an anomaly score onto severity and confidence impact.
func (v *Validator) grade(anomalyScore float64) (evidence.Severity, float64) {
	switch {
	case anomalyScore < v.cfg.MediumSeverityFloor:
		return evidence.SeverityLow, v.cfg.LowImpact
	case anomalyScore < v.cfg.HighSeverityFloor:
		return evidence.SeverityMedium, v.cfg.MediumImpact
	default:
		return evidence.SeverityHigh, v.cfg.HighImpact
	}
}

// combineIntervals produces the weighted combination of per-method intervals
// using the same redistributed weights as aggregation.
func (v *Validator) combineIntervals(available []evidence.DetectionMethod, weights map[evidence.DetectionMethod]float64, intervals map[evidence.DetectionMethod]evidence.ConfidenceInterval) evidence.ConfidenceInterval {
	if len(available) == 0 {
		return evidence.ConfidenceInterval{}
	}
	var lower, point, upper float64
	for _, m := range available {
		w := weights[m]
		ci := intervals[m]
		lower += w * ci.LowerBound
		point += w * ci.PointEstimate
		upper += w * ci.UpperBound
	}
	return evidence.ConfidenceInterval{
		LowerBound:    evidence.Clamp01(lower),
		PointEstimate: evidence.Clamp01(point),
		UpperBound:    evidence.Clamp01(upper),
	}
}
