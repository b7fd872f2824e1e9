// Package export produces XLSX reports of stored verifications.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gexlabs/docverify/internal/audit"
)

// Service is a tiny façade over the audit store that produces XLSX bytes.
type Service struct {
	store  *audit.Store
	logger *slog.Logger
}

func NewService(store *audit.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// VerificationsXLSX returns a workbook listing the most recent
// verifications, one row per stored verdict with a column per check.
func (s *Service) VerificationsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	recs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query verifications: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Verifications"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Verified At",
		"Plant ID",
		"Valid",
		"Seal Hash",
		"Invoice Expiry",
		"Parties Match",
		"CI Compliance",
		"Certification Scheme",
		"Invoice Quantity",
		"Unit Price",
		"Date Validity",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.Format("2006-01-02 15:04:05"))
		write(2, r.PlantID)
		write(3, passMark(r.IsValid))
		if r.SealHash != nil {
			write(4, *r.SealHash)
		}
		if r.Verdict != nil && r.Verdict.InvoiceExpiryDate != nil {
			write(5, *r.Verdict.InvoiceExpiryDate)
		}

		// One column per check, keyed by name so order changes in the
		// verdict never misplace a column.
		if r.Verdict != nil {
			byName := make(map[string]bool, len(r.Verdict.Checks))
			for _, c := range r.Verdict.Checks {
				byName[c.CheckName] = c.Passed
			}
			checkCols := []string{
				"Parties Match", "CI Compliance", "Certification Scheme",
				"Invoice Quantity", "Unit Price", "Date Validity",
			}
			for i, name := range checkCols {
				if passed, ok := byName[name]; ok {
					write(6+i, passMark(passed))
				}
			}
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 14)
	_ = f.SetColWidth(sheet, "C", "C", 8)
	_ = f.SetColWidth(sheet, "D", "D", 66)
	_ = f.SetColWidth(sheet, "E", "E", 16)
	_ = f.SetColWidth(sheet, "F", "K", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func passMark(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
