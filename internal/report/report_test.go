package report

import (
	"strings"
	"testing"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
)

func samplePackage() *evidence.EvidencePackage {
	idx := 1
	reason := "checkpoint_attestation"
	return &evidence.EvidencePackage{
		CaptureID: core.CaptureID(core.NewID()),
		MediaType: evidence.MediaVideo,
		Aggregated: evidence.AggregatedConfidenceResult{
			OverallConfidence: 0.87,
			ConfidenceLevel:   evidence.LevelHigh,
			MethodBreakdown: map[evidence.DetectionMethod]evidence.MethodResult{
				evidence.MethodLidarDepth: {Available: true, Score: evidence.NewScore(0.9), Weight: 0.55, Contribution: 0.495, Status: evidence.StatusPass},
				evidence.MethodMoire:      {Available: false, Score: evidence.MissingScore(), Status: evidence.StatusUnavailable},
			},
			Flags:            evidence.NewFlagSet(evidence.FlagPartialAnalysis),
			ComputedAt:       core.Now(),
			AlgorithmVersion: "aggregate/1.2.0",
			Status:           evidence.AnalysisPartial,
		},
		CrossValidation: evidence.CrossValidationResult{
			ValidationStatus: evidence.ValidationWarn,
			Anomalies: []evidence.AnomalyReport{{
				AnomalyType:      "pairwise_inconsistency",
				Severity:         evidence.SeverityLow,
				AffectedMethods:  []evidence.DetectionMethod{evidence.MethodTexture, evidence.MethodArtifacts},
				Details:          "texture and artifacts violate expected positive relationship (agreement 0.30)",
				ConfidenceImpact: -0.05,
			}},
			OverallPenalty: 0.05,
			TemporalConsistency: &evidence.TemporalConsistency{
				FrameCount:       4,
				OverallStability: 0.97,
			},
		},
		ChainState: &evidence.HashChainState{
			Status:          evidence.ChainPartial,
			VerifiedFrames:  300,
			TotalFrames:     450,
			ChainIntact:     true,
			CheckpointIndex: &idx,
			PartialReason:   &reason,
		},
		Attestation: evidence.Attestation{Level: evidence.AttestationSecureEnclave, Verified: true},
		CreatedAt:   core.Now(),
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(samplePackage())

	for _, want := range []string{
		"# Capture Evidence Report",
		"## Method Breakdown",
		"| lidar_depth | true | 0.900 |",
		"partial_analysis",
		"## Cross-Validation",
		"pairwise_inconsistency",
		"### Temporal Consistency",
		"## Hash Chain",
		"**Verified frames**: 300 / 450",
		"checkpoint_attestation",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q\nGot:\n%s", want, md)
		}
	}

	// Missing scores render as a dash, never as 0.000.
	if !strings.Contains(md, "| moire | false | - |") {
		t.Errorf("Expected dash for missing moire score, got:\n%s", md)
	}
}

func TestRenderMarkdownPhotoOmitsChain(t *testing.T) {
	pkg := samplePackage()
	pkg.MediaType = evidence.MediaPhoto
	pkg.ChainState = nil

	md := RenderMarkdown(pkg)
	if strings.Contains(md, "## Hash Chain") {
		t.Error("Expected no hash chain section for photos")
	}
}

func TestRenderHTML(t *testing.T) {
	out := string(RenderHTML(samplePackage()))

	if !strings.Contains(out, "<h1>") {
		t.Errorf("Expected rendered heading, got:\n%s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("Expected rendered table, got:\n%s", out)
	}
}
