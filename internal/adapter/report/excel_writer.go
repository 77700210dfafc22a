package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/iho/gorecon/internal/domain"
)

const (
	summarySheet  = "Summary"
	findingsSheet = "Findings"
	dateLayout    = "2006-01-02"
)

// ExcelWriter renders run reports as xlsx workbooks with a summary sheet
// and one row per finding.
type ExcelWriter struct {
	dir string
}

// NewExcelWriter creates a writer that stores reports under dir.
func NewExcelWriter(dir string) *ExcelWriter {
	return &ExcelWriter{dir: dir}
}

// WriteRunReport writes the workbook for one run and returns its path.
func (w *ExcelWriter) WriteRunReport(summary *domain.ReconciliationSummary, findings []domain.Finding) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummarySheet(f, summary); err != nil {
		return "", err
	}
	if err := w.writeFindingsSheet(f, findings); err != nil {
		return "", err
	}

	// Drop the default sheet so the workbook opens on the summary.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("delete default sheet: %w", err)
	}

	path := filepath.Join(w.dir, summary.BatchID+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	return path, nil
}

func (w *ExcelWriter) writeSummarySheet(f *excelize.File, s *domain.ReconciliationSummary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][2]any{
		{"Batch ID", s.BatchID},
		{"Period Start", s.Range.Start.Format(dateLayout)},
		{"Period End", s.Range.End.Format(dateLayout)},
		{"Started At", s.StartedAt.Format("2006-01-02 15:04:05")},
		{"Processing Time", s.ProcessingTime.String()},
		{"", ""},
		{"POS Records", s.Sources.POS},
		{"TRM Records", s.Sources.TRM},
		{"MPR UPI Records", s.Sources.MPRUPI},
		{"MPR Card Records", s.Sources.MPRCard},
		{"Bank Credits", s.Sources.Bank},
		{"", ""},
		{"TRM-MPR UPI Matches", s.Matches.TRMMPRUPI},
		{"TRM-MPR Card Matches", s.Matches.TRMMPRCard},
		{"MPR-Bank Matches", s.Matches.MPRBank},
		{"Full Chain Matches", s.Matches.FullChain},
		{"Unmatched TRM", s.Unmatched.TRMOnly},
		{"Partial Pairs", s.Unmatched.PartialPairs},
		{"", ""},
		{"Total POS Amount", s.Financial.TotalPOSAmount.StringFixed(2)},
		{"Matched Amount", s.Financial.TotalMatchedAmount.StringFixed(2)},
		{"Unmatched Amount", s.Financial.TotalUnmatchedAmount.StringFixed(2)},
		{"Amount At Risk", s.Financial.TotalAmountAtRisk.StringFixed(2)},
		{"Match Rate %", s.Financial.MatchRatePercentage},
		{"", ""},
		{"Total Findings", s.Findings.Total},
	}

	// Iterate the fixed kind order so repeated runs produce identical sheets.
	for _, kind := range domain.FindingKinds {
		rows = append(rows, [2]any{string(kind), s.Findings.ByKind[kind]})
	}

	for i, row := range rows {
		cellA, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary cell: %w", err)
		}
		cellB, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return fmt.Errorf("summary cell: %w", err)
		}
		if err := f.SetCellValue(summarySheet, cellA, row[0]); err != nil {
			return fmt.Errorf("set summary cell: %w", err)
		}
		if err := f.SetCellValue(summarySheet, cellB, row[1]); err != nil {
			return fmt.Errorf("set summary cell: %w", err)
		}
	}

	return nil
}

func (w *ExcelWriter) writeFindingsSheet(f *excelize.File, findings []domain.Finding) error {
	if _, err := f.NewSheet(findingsSheet); err != nil {
		return fmt.Errorf("create findings sheet: %w", err)
	}

	headers := []string{
		"Exception Type", "Severity", "Transaction Date", "Store",
		"Source System", "Record ID", "Reference", "Amount",
		"Description", "Recommended Action",
	}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("findings header cell: %w", err)
		}
		if err := f.SetCellValue(findingsSheet, cell, h); err != nil {
			return fmt.Errorf("set findings header: %w", err)
		}
	}

	for i, finding := range findings {
		txnDate := ""
		if finding.TransactionDate != nil {
			txnDate = finding.TransactionDate.Format(dateLayout)
		}
		values := []any{
			string(finding.Kind),
			string(finding.Severity),
			txnDate,
			finding.StoreName,
			finding.SourceSystem,
			finding.SourceRecordID,
			finding.TransactionRef,
			finding.Amount.StringFixed(2),
			finding.Description,
			finding.RecommendedAction,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("findings cell: %w", err)
			}
			if err := f.SetCellValue(findingsSheet, cell, v); err != nil {
				return fmt.Errorf("set findings cell: %w", err)
			}
		}
	}

	return nil
}
