package verdict

import (
	"testing"

	"trustlens/domain/evidence"
)

func verifiedHardware() evidence.Attestation {
	return evidence.Attestation{Level: evidence.AttestationSecureEnclave, Verified: true}
}

func TestClassifyScoreBands(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	cases := []struct {
		name     string
		score    float64
		expected evidence.ConfidenceLevel
	}{
		{"very high", 0.95, evidence.LevelVeryHigh},
		{"very high boundary", 0.90, evidence.LevelVeryHigh},
		{"high", 0.80, evidence.LevelHigh},
		{"medium", 0.60, evidence.LevelMedium},
		{"low", 0.30, evidence.LevelLow},
		{"suspicious", 0.10, evidence.LevelSuspicious},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(Input{
				OverallConfidence:   tc.score,
				AllMethodsAvailable: true,
				ValidationStatus:    evidence.ValidationPass,
				Flags:               evidence.NewFlagSet(),
				Attestation:         verifiedHardware(),
			})
			if got != tc.expected {
				t.Errorf("Expected %s for score %f, got %s", tc.expected, tc.score, got)
			}
		})
	}
}

// TestClassifyVeryHighRequiresAllMethods verifies a 0.90+ score with a method
// missing lands at high, not very high.
func TestClassifyVeryHighRequiresAllMethods(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	got := c.Classify(Input{
		OverallConfidence:   0.95,
		AllMethodsAvailable: false,
		ValidationStatus:    evidence.ValidationPass,
		Flags:               evidence.NewFlagSet(),
		Attestation:         verifiedHardware(),
	})
	if got != evidence.LevelHigh {
		t.Errorf("Expected high, got %s", got)
	}
}

func TestClassifyVeryHighRequiresValidationPass(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	got := c.Classify(Input{
		OverallConfidence:   0.95,
		AllMethodsAvailable: true,
		ValidationStatus:    evidence.ValidationWarn,
		Flags:               evidence.NewFlagSet(),
		Attestation:         verifiedHardware(),
	})
	if got != evidence.LevelHigh {
		t.Errorf("Expected high, got %s", got)
	}
}

func TestClassifyHardRedFlagWins(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	got := c.Classify(Input{
		OverallConfidence:   0.95,
		AllMethodsAvailable: true,
		ValidationStatus:    evidence.ValidationPass,
		Flags:               evidence.NewFlagSet(evidence.FlagScreenDetected),
		Attestation:         verifiedHardware(),
	})
	if got != evidence.LevelSuspicious {
		t.Errorf("Expected suspicious on screen detection, got %s", got)
	}
}

func TestClassifyBrokenChainIsSuspicious(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	fail := evidence.ChainFail
	got := c.Classify(Input{
		OverallConfidence:   0.95,
		AllMethodsAvailable: true,
		ValidationStatus:    evidence.ValidationPass,
		Flags:               evidence.NewFlagSet(),
		Attestation:         verifiedHardware(),
		ChainStatus:         &fail,
	})
	if got != evidence.LevelSuspicious {
		t.Errorf("Expected suspicious on broken chain, got %s", got)
	}
}

func TestClassifyPartialChainDoesNotCap(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	partial := evidence.ChainPartial
	got := c.Classify(Input{
		OverallConfidence:   0.95,
		AllMethodsAvailable: true,
		ValidationStatus:    evidence.ValidationPass,
		Flags:               evidence.NewFlagSet(),
		Attestation:         verifiedHardware(),
		ChainStatus:         &partial,
	})
	if got != evidence.LevelVeryHigh {
		t.Errorf("Expected very high with partial chain, got %s", got)
	}
}

func TestClassifyUnattestedCap(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	got := c.Classify(Input{
		OverallConfidence:   0.95,
		AllMethodsAvailable: true,
		ValidationStatus:    evidence.ValidationPass,
		Flags:               evidence.NewFlagSet(),
		Attestation:         evidence.Attestation{Level: evidence.AttestationSecureEnclave, Verified: false},
	})
	if got != evidence.LevelHigh {
		t.Errorf("Expected unattested cap at high, got %s", got)
	}

	got = c.Classify(Input{
		OverallConfidence:   0.30,
		AllMethodsAvailable: false,
		ValidationStatus:    evidence.ValidationWarn,
		Flags:               evidence.NewFlagSet(),
		Attestation:         evidence.Attestation{Level: evidence.AttestationUnverified, Verified: false},
	})
	if got != evidence.LevelLow {
		t.Errorf("Expected low to pass through cap unchanged, got %s", got)
	}
}
