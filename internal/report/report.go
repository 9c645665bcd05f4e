// Package report renders evidence packages into human-readable summaries for
// auditors and the verification UI.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"trustlens/domain/evidence"
)

// RenderMarkdown produces the auditor-facing markdown summary of one
// evidence package.
func RenderMarkdown(pkg *evidence.EvidencePackage) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Capture Evidence Report\n\n")
	fmt.Fprintf(&b, "- **Capture**: %s\n", pkg.CaptureID)
	fmt.Fprintf(&b, "- **Media type**: %s\n", pkg.MediaType)
	fmt.Fprintf(&b, "- **Confidence**: %.3f (%s)\n", pkg.Aggregated.OverallConfidence, pkg.Aggregated.ConfidenceLevel)
	fmt.Fprintf(&b, "- **Attestation**: %s (verified=%t)\n", pkg.Attestation.Level, pkg.Attestation.Verified)
	fmt.Fprintf(&b, "- **Computed at**: %s\n\n", pkg.Aggregated.ComputedAt)

	b.WriteString("## Method Breakdown\n\n")
	b.WriteString("| Method | Available | Score | Weight | Contribution | Status |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, m := range evidence.AllMethods {
		r, ok := pkg.Aggregated.MethodBreakdown[m]
		if !ok {
			continue
		}
		score := "-"
		if v, present := r.Score.Value(); present {
			score = fmt.Sprintf("%.3f", v)
		}
		fmt.Fprintf(&b, "| %s | %t | %s | %.3f | %.3f | %s |\n",
			m, r.Available, score, r.Weight, r.Contribution, r.Status)
	}
	b.WriteString("\n")

	if flags := pkg.Aggregated.Flags.Slice(); len(flags) > 0 {
		b.WriteString("## Flags\n\n")
		for _, f := range flags {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Cross-Validation\n\n")
	fmt.Fprintf(&b, "- **Status**: %s\n", pkg.CrossValidation.ValidationStatus)
	fmt.Fprintf(&b, "- **Penalty**: %.3f\n", pkg.CrossValidation.OverallPenalty)
	ci := pkg.CrossValidation.AggregatedInterval
	fmt.Fprintf(&b, "- **Aggregated interval**: [%.3f, %.3f, %.3f]\n\n", ci.LowerBound, ci.PointEstimate, ci.UpperBound)

	if len(pkg.CrossValidation.Anomalies) > 0 {
		b.WriteString("### Anomalies\n\n")
		for _, a := range pkg.CrossValidation.Anomalies {
			fmt.Fprintf(&b, "- **%s** (%s, impact %.2f): %s\n", a.AnomalyType, a.Severity, a.ConfidenceImpact, a.Details)
		}
		b.WriteString("\n")
	}

	if tc := pkg.CrossValidation.TemporalConsistency; tc != nil {
		b.WriteString("### Temporal Consistency\n\n")
		fmt.Fprintf(&b, "- **Windows**: %d\n", tc.FrameCount)
		fmt.Fprintf(&b, "- **Overall stability**: %.3f\n", tc.OverallStability)
		for _, a := range tc.Anomalies {
			fmt.Fprintf(&b, "- %s at frame %d (%s, delta %.2f)\n", a.AnomalyType, a.FrameIndex, a.Method, a.DeltaScore)
		}
		b.WriteString("\n")
	}

	if cs := pkg.ChainState; cs != nil {
		b.WriteString("## Hash Chain\n\n")
		fmt.Fprintf(&b, "- **Status**: %s\n", cs.Status)
		fmt.Fprintf(&b, "- **Intact**: %t\n", cs.ChainIntact)
		fmt.Fprintf(&b, "- **Verified frames**: %d / %d\n", cs.VerifiedFrames, cs.TotalFrames)
		if cs.CheckpointIndex != nil {
			fmt.Fprintf(&b, "- **Last verified checkpoint**: %d\n", *cs.CheckpointIndex)
		}
		if cs.PartialReason != nil {
			fmt.Fprintf(&b, "- **Partial reason**: %s\n", *cs.PartialReason)
		}
	}

	return b.String()
}

// RenderHTML converts the markdown summary to HTML for the verification UI.
func RenderHTML(pkg *evidence.EvidencePackage) []byte {
	md := RenderMarkdown(pkg)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
