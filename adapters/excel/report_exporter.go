package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"trustlens/domain/evidence"
)

// ReportExporter writes an auditor-facing workbook for one evidence package:
// one sheet for the method breakdown, one for anomalies, one for the chain
// summary.
type ReportExporter struct{}

// NewReportExporter creates a new report exporter
func NewReportExporter() *ReportExporter {
	return &ReportExporter{}
}

// Export writes the workbook to path.
func (e *ReportExporter) Export(pkg *evidence.EvidencePackage, path string) error {
	f, err := e.build(pkg)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save evidence workbook: %w", err)
	}
	return nil
}

// WriteTo streams the workbook to w, for serving exports over HTTP.
func (e *ReportExporter) WriteTo(pkg *evidence.EvidencePackage, w io.Writer) error {
	f, err := e.build(pkg)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to stream evidence workbook: %w", err)
	}
	return nil
}

func (e *ReportExporter) build(pkg *evidence.EvidencePackage) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := e.writeSummary(f, pkg); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeAnomalies(f, pkg); err != nil {
		f.Close()
		return nil, err
	}
	if pkg.ChainState != nil {
		if err := e.writeChain(f, pkg.ChainState); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func (e *ReportExporter) writeSummary(f *excelize.File, pkg *evidence.EvidencePackage) error {
	const sheet = "Summary"
	f.SetSheetName("Sheet1", sheet)

	rows := [][]interface{}{
		{"Capture ID", pkg.CaptureID.String()},
		{"Media Type", string(pkg.MediaType)},
		{"Overall Confidence", pkg.Aggregated.OverallConfidence},
		{"Confidence Level", string(pkg.Aggregated.ConfidenceLevel)},
		{"Primary Signal Valid", pkg.Aggregated.PrimarySignalValid},
		{"Supporting Signals Agree", pkg.Aggregated.SupportingSignalsAgree},
		{"Validation Status", string(pkg.CrossValidation.ValidationStatus)},
		{"Overall Penalty", pkg.CrossValidation.OverallPenalty},
		{"Attestation Level", string(pkg.Attestation.Level)},
		{"Attestation Verified", pkg.Attestation.Verified},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	// Method breakdown table below the summary block.
	header := []interface{}{"Method", "Available", "Score", "Weight", "Contribution", "Status"}
	start := len(rows) + 2
	cell, err := excelize.CoordinatesToCellName(1, start)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return err
	}
	for i, m := range evidence.AllMethods {
		r, ok := pkg.Aggregated.MethodBreakdown[m]
		if !ok {
			continue
		}
		var score interface{} = "missing"
		if v, present := r.Score.Value(); present {
			score = v
		}
		row := []interface{}{string(m), r.Available, score, r.Weight, r.Contribution, string(r.Status)}
		cell, err := excelize.CoordinatesToCellName(1, start+1+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write breakdown row: %w", err)
		}
	}
	return nil
}

func (e *ReportExporter) writeAnomalies(f *excelize.File, pkg *evidence.EvidencePackage) error {
	const sheet = "Anomalies"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Type", "Severity", "Affected Methods", "Impact", "Details"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, a := range pkg.CrossValidation.Anomalies {
		methods := ""
		for j, m := range a.AffectedMethods {
			if j > 0 {
				methods += ", "
			}
			methods += string(m)
		}
		row := []interface{}{a.AnomalyType, string(a.Severity), methods, a.ConfidenceImpact, a.Details}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write anomaly row: %w", err)
		}
	}
	return nil
}

func (e *ReportExporter) writeChain(f *excelize.File, cs *evidence.HashChainState) error {
	const sheet = "Hash Chain"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Status", string(cs.Status)},
		{"Chain Intact", cs.ChainIntact},
		{"Verified Frames", cs.VerifiedFrames},
		{"Total Frames", cs.TotalFrames},
		{"Checkpoint Verified", cs.CheckpointVerified},
		{"Verified Duration (ms)", cs.VerifiedDurationMs},
	}
	if cs.CheckpointIndex != nil {
		rows = append(rows, []interface{}{"Checkpoint Index", *cs.CheckpointIndex})
	}
	if cs.PartialReason != nil {
		rows = append(rows, []interface{}{"Partial Reason", *cs.PartialReason})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write chain row: %w", err)
		}
	}
	return nil
}
