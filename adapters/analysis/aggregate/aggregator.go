package aggregate

import (
	"log"
	"time"

	"gonum.org/v1/gonum/stat"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
	"trustlens/domain/verdict"
)

// AlgorithmVersion is stamped into every aggregated result.
const AlgorithmVersion = "aggregate/1.2.0"

// Config holds the aggregation constants. Immutable; passed into the
// constructor so tests can override thresholds without mutating shared state.
type Config struct {
	// DisagreementThreshold is the max deviation a supporting score may have
	// from the primary before the methods are flagged as disagreeing.
	DisagreementThreshold float64
	// AgreementBoost is added when all four methods are available and the
	// cross-validator passes.
	AgreementBoost float64
	// PenaltyCutoff is the cross-validation penalty above which the level is
	// capped at DisagreementCap.
	PenaltyCutoff float64
	// DisagreementCap is the max level achievable under heavy disagreement.
	DisagreementCap evidence.ConfidenceLevel
	// AmbiguousLow/AmbiguousHigh bound the score band flagged as ambiguous.
	AmbiguousLow  float64
	AmbiguousHigh float64
	// LowPrimaryThreshold marks a weak primary signal.
	LowPrimaryThreshold float64
}

// DefaultConfig returns the PRD constants.
func DefaultConfig() Config {
	return Config{
		DisagreementThreshold: 0.35,
		AgreementBoost:        0.05,
		PenaltyCutoff:         0.15,
		DisagreementCap:       evidence.LevelMedium,
		AmbiguousLow:          0.40,
		AmbiguousHigh:         0.60,
		LowPrimaryThreshold:   0.50,
	}
}

// Request carries one aggregation pass's inputs. CrossValidation may be nil
// when the cross-validator was skipped; ChainStatus is nil for photos.
type Request struct {
	Methods         map[evidence.DetectionMethod]evidence.MethodResult
	CrossValidation *evidence.CrossValidationResult
	Attestation     evidence.Attestation
	ChainStatus     *evidence.ChainStatus
}

// Aggregator converts a set of detector results into a single
// AggregatedConfidenceResult using fixed weights and redistribution.
type Aggregator struct {
	cfg        Config
	classifier *verdict.Classifier
}

// New creates an aggregator with the given config and classifier.
func New(cfg Config, classifier *verdict.Classifier) *Aggregator {
	return &Aggregator{cfg: cfg, classifier: classifier}
}

// Aggregate never fails outward: every code path, including an internal
// panic, returns a fully populated result.
func (a *Aggregator) Aggregate(req Request) (result evidence.AggregatedConfidenceResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Aggregator] internal fault: %v", r)
			result = a.errorResult(start)
		}
	}()

	result = a.aggregate(req)
	result.AnalysisTimeMs = time.Since(start).Milliseconds()
	return result
}

func (a *Aggregator) aggregate(req Request) evidence.AggregatedConfidenceResult {
	flags := evidence.NewFlagSet()
	breakdown := make(map[evidence.DetectionMethod]evidence.MethodResult, len(evidence.AllMethods))

	// Partition into available and unavailable. Only known methods with a
	// usable status and a present score participate.
	available := make([]evidence.DetectionMethod, 0, len(evidence.AllMethods))
	for _, m := range evidence.AllMethods {
		in, ok := req.Methods[m]
		if ok && in.Usable() {
			available = append(available, m)
			continue
		}
		status := evidence.StatusUnavailable
		if ok && in.Status == evidence.StatusError {
			status = evidence.StatusError
		}
		breakdown[m] = evidence.MethodResult{Available: false, Score: evidence.MissingScore(), Status: status}
	}

	weights := evidence.RedistributeWeights(available)

	scores := make([]float64, 0, len(available))
	weightVals := make([]float64, 0, len(available))
	for _, m := range available {
		in := req.Methods[m]
		score := in.Score.OrZero()
		w := weights[m]
		breakdown[m] = evidence.MethodResult{
			Available:    true,
			Score:        in.Score,
			Weight:       w,
			Contribution: w * score,
			Status:       in.Status,
		}
		scores = append(scores, score)
		weightVals = append(weightVals, w)

		if score >= a.cfg.AmbiguousLow && score <= a.cfg.AmbiguousHigh {
			flags.Add(evidence.FlagAmbiguousResults)
		}
	}

	// Zero available methods: nothing to aggregate.
	if len(available) == 0 {
		flags.Add(evidence.FlagPartialAnalysis)
		return evidence.AggregatedConfidenceResult{
			OverallConfidence: 0,
			ConfidenceLevel:   evidence.LevelSuspicious,
			MethodBreakdown:   breakdown,
			Flags:             flags,
			ComputedAt:        core.Now(),
			AlgorithmVersion:  AlgorithmVersion,
			Status:            evidence.AnalysisUnavailable,
		}
	}

	if len(available) < len(evidence.AllMethods) {
		flags.Add(evidence.FlagPartialAnalysis)
	}

	// Redistributed weights sum to 1.0, so the weighted mean equals the
	// weighted sum of contributions.
	overall := evidence.Clamp01(stat.Mean(scores, weightVals))

	primary, primaryAvailable := breakdown[evidence.MethodLidarDepth], breakdown[evidence.MethodLidarDepth].Available
	primaryValid := primaryAvailable && primary.Status == evidence.StatusPass
	if in, ok := req.Methods[evidence.MethodLidarDepth]; ok && in.Status == evidence.StatusFail {
		flags.Add(evidence.FlagPrimarySignalFailed)
	}
	if primaryAvailable && primary.Score.OrZero() < a.cfg.LowPrimaryThreshold {
		flags.Add(evidence.FlagLowConfidencePrimary)
	}

	// Supporting detectors that explicitly failed are hard red flags.
	if in, ok := req.Methods[evidence.MethodMoire]; ok && in.Status == evidence.StatusFail {
		flags.Add(evidence.FlagScreenDetected)
	}
	if in, ok := req.Methods[evidence.MethodTexture]; ok && in.Status == evidence.StatusFail {
		flags.Add(evidence.FlagPrintDetected)
	}

	supportingAgree := a.checkSupportingAgreement(breakdown, flags)

	// Cross-validation feedback: penalty first, then the unanimous-agreement
	// boost (which only applies when the penalty is zero anyway).
	if cv := req.CrossValidation; cv != nil {
		overall = evidence.Clamp01(overall - cv.OverallPenalty)
		if len(available) == len(evidence.AllMethods) && cv.ValidationStatus == evidence.ValidationPass {
			overall = evidence.Clamp01(overall + a.cfg.AgreementBoost)
		}
	}

	status := evidence.AnalysisSuccess
	if len(available) < len(evidence.AllMethods) {
		status = evidence.AnalysisPartial
	}

	validationStatus := evidence.ValidationPass
	if req.CrossValidation != nil {
		validationStatus = req.CrossValidation.ValidationStatus
	}

	if req.ChainStatus != nil && *req.ChainStatus == evidence.ChainPartial {
		flags.Add(evidence.FlagChainPartial)
	}

	level := a.classifier.Classify(verdict.Input{
		OverallConfidence:   overall,
		AllMethodsAvailable: len(available) == len(evidence.AllMethods),
		ValidationStatus:    validationStatus,
		Flags:               flags,
		Attestation:         req.Attestation,
		ChainStatus:         req.ChainStatus,
	})

	// Heavy cross-validator disagreement caps the level regardless of the
	// raw score.
	if cv := req.CrossValidation; cv != nil {
		if cv.ValidationStatus == evidence.ValidationFail || cv.OverallPenalty > a.cfg.PenaltyCutoff {
			level = level.AtMost(a.cfg.DisagreementCap)
		}
	}

	return evidence.AggregatedConfidenceResult{
		OverallConfidence:      overall,
		ConfidenceLevel:        level,
		MethodBreakdown:        breakdown,
		PrimarySignalValid:     primaryValid,
		SupportingSignalsAgree: supportingAgree,
		Flags:                  flags,
		ComputedAt:             core.Now(),
		AlgorithmVersion:       AlgorithmVersion,
		Status:                 status,
	}
}

// checkSupportingAgreement compares each available supporting score against
// the primary. Without an available primary there is nothing to disagree with.
func (a *Aggregator) checkSupportingAgreement(breakdown map[evidence.DetectionMethod]evidence.MethodResult, flags evidence.FlagSet) bool {
	primary, ok := breakdown[evidence.MethodLidarDepth]
	if !ok || !primary.Available {
		return true
	}
	primaryScore := primary.Score.OrZero()

	agree := true
	for _, m := range evidence.AllMethods {
		if m.IsPrimary() {
			continue
		}
		r := breakdown[m]
		if !r.Available {
			continue
		}
		deviation := r.Score.OrZero() - primaryScore
		if deviation < 0 {
			deviation = -deviation
		}
		if deviation > a.cfg.DisagreementThreshold {
			agree = false
			flags.Add(evidence.FlagMethodsDisagree)
			flags.Add(evidence.FlagPrimarySupportingDisagree)
		}
	}
	return agree
}

func (a *Aggregator) errorResult(start time.Time) evidence.AggregatedConfidenceResult {
	breakdown := make(map[evidence.DetectionMethod]evidence.MethodResult, len(evidence.AllMethods))
	for _, m := range evidence.AllMethods {
		breakdown[m] = evidence.MethodResult{Available: false, Score: evidence.MissingScore(), Status: evidence.StatusError}
	}
	return evidence.AggregatedConfidenceResult{
		OverallConfidence: 0,
		ConfidenceLevel:   evidence.LevelSuspicious,
		MethodBreakdown:   breakdown,
		Flags:             evidence.NewFlagSet(),
		AnalysisTimeMs:    time.Since(start).Milliseconds(),
		ComputedAt:        core.Now(),
		AlgorithmVersion:  AlgorithmVersion,
		Status:            evidence.AnalysisError,
	}
}
