package verdict

import (
	"trustlens/domain/evidence"
)

// Config holds the classification thresholds. Passed explicitly into the
// classifier so tests can override cut points without shared global state.
type Config struct {
	VeryHighThreshold float64
	HighThreshold     float64
	MediumThreshold   float64
	LowThreshold      float64
	// UnattestedCap bounds the level achievable without verified hardware
	// attestation.
	UnattestedCap evidence.ConfidenceLevel
}

// DefaultConfig returns the PRD thresholds.
func DefaultConfig() Config {
	return Config{
		VeryHighThreshold: 0.90,
		HighThreshold:     0.75,
		MediumThreshold:   0.50,
		LowThreshold:      0.25,
		UnattestedCap:     evidence.LevelHigh,
	}
}

// Input carries everything the decision table consumes.
type Input struct {
	OverallConfidence   float64
	AllMethodsAvailable bool
	ValidationStatus    evidence.ValidationStatus
	Flags               evidence.FlagSet
	Attestation         evidence.Attestation
	// ChainStatus is nil for photo captures.
	ChainStatus *evidence.ChainStatus
}

// Classifier is a pure decision table mapping aggregate score, attestation
// level, and validation status into a user-facing level.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify evaluates the decision table in precedence order; the first match
// wins.
func (c *Classifier) Classify(in Input) evidence.ConfidenceLevel {
	// 1. Hard red flag: a detector explicitly reported screen/print recapture.
	if in.Flags.Has(evidence.FlagScreenDetected) || in.Flags.Has(evidence.FlagPrintDetected) {
		return evidence.LevelSuspicious
	}

	// 2. A broken hash chain caps a video at suspicious regardless of other
	// signals. A partial chain is surfaced as a flag, never a cap.
	if in.ChainStatus != nil && *in.ChainStatus == evidence.ChainFail {
		return evidence.LevelSuspicious
	}

	level := c.scoreBand(in)

	// Missing hardware attestation bounds how far software signals alone can
	// carry the capture.
	if !in.Attestation.Verified || !in.Attestation.Level.HardwareBacked() {
		level = level.AtMost(c.cfg.UnattestedCap)
	}

	return level
}

func (c *Classifier) scoreBand(in Input) evidence.ConfidenceLevel {
	switch {
	case in.OverallConfidence >= c.cfg.VeryHighThreshold &&
		in.AllMethodsAvailable &&
		in.ValidationStatus == evidence.ValidationPass:
		return evidence.LevelVeryHigh
	case in.OverallConfidence >= c.cfg.HighThreshold:
		return evidence.LevelHigh
	case in.OverallConfidence >= c.cfg.MediumThreshold:
		return evidence.LevelMedium
	case in.OverallConfidence >= c.cfg.LowThreshold:
		return evidence.LevelLow
	default:
		return evidence.LevelSuspicious
	}
}
