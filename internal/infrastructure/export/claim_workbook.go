package export

import (
	"context"
	"fmt"
	"io"

	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SheetName is the worksheet holding the claim list
const SheetName = "Claims"

// Header is the first row of the sheet
var Header = []interface{}{"#", "Lecturer", "Hours", "Rate", "Total", "Status", "Notes", "Document", "Submitted"}

// ClaimWorkbook implements port.ClaimWorkbook with excelize
type ClaimWorkbook struct {
	logger *zap.Logger
}

// NewClaimWorkbook creates a new ClaimWorkbook
func NewClaimWorkbook(logger *zap.Logger) *ClaimWorkbook {
	return &ClaimWorkbook{logger: logger}
}

// Write renders one row per claim in list order followed by a totals row
func (wb *ClaimWorkbook) Write(ctx context.Context, claims []*entity.Claim, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}

	if err := wb.setRow(f, 1, Header); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, claim := range claims {
		if err := ctx.Err(); err != nil {
			return err
		}

		row := []interface{}{
			claim.Position + 1,
			claim.LecturerName,
			claim.HoursWorked,
			claim.HourlyRate,
			claim.TotalAmount,
			claim.StatusLabel(),
			claim.Notes,
			claim.DocumentPath,
			claim.SubmittedAt.Format("2006-01-02 15:04"),
		}
		if err := wb.setRow(f, i+2, row); err != nil {
			return err
		}
	}

	summary := entity.Summarize(claims)
	totalsRow := len(claims) + 2
	if err := wb.setRow(f, totalsRow, []interface{}{"Total", fmt.Sprintf("%d claims", summary.Count), nil, nil, summary.Total}); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, totalsRow, totalsRow, headerStyle); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}

	if err := f.SetColStyle(SheetName, "D:E", moneyStyle); err != nil {
		return fmt.Errorf("failed to style money columns: %w", err)
	}
	for col, width := range map[string]float64{"B": 24, "G": 32, "H": 48, "I": 18} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			wb.logger.Warn("Failed to set column width", zap.String("column", col), zap.Error(err))
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	wb.logger.Info("Claim workbook written", zap.Int("claims", len(claims)))
	return nil
}

func (wb *ClaimWorkbook) setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

var _ port.ClaimWorkbook = (*ClaimWorkbook)(nil)
