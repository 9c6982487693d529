package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/domain/entity"
)

// ExportService renders the claim list as a spreadsheet
type ExportService interface {
	// Export writes the workbook for every claim to w
	Export(ctx context.Context, w io.Writer) error

	// ExportToFile saves the workbook into export storage and returns its path
	ExportToFile(ctx context.Context) (string, error)
}

type exportServiceImpl struct {
	claimRepo port.ClaimRepository
	workbook  port.ClaimWorkbook
	storage   port.ExportStorage
	logger    Logger
	now       func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(
	claimRepo port.ClaimRepository,
	workbook port.ClaimWorkbook,
	storage port.ExportStorage,
	logger Logger,
) ExportService {
	return &exportServiceImpl{
		claimRepo: claimRepo,
		workbook:  workbook,
		storage:   storage,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *exportServiceImpl) Export(ctx context.Context, w io.Writer) error {
	claims, err := s.claimRepo.List(ctx, entity.ClaimFilter{})
	if err != nil {
		s.logger.Error("Failed to list claims for export", "error", err)
		return fmt.Errorf("list claims: %w", err)
	}

	if err := s.workbook.Write(ctx, claims, w); err != nil {
		s.logger.Error("Failed to write workbook", "error", err)
		return fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("Claims exported", "count", len(claims))
	return nil
}

func (s *exportServiceImpl) ExportToFile(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := s.Export(ctx, &buf); err != nil {
		return "", err
	}

	name := ExportFileName(s.now())
	path, err := s.storage.Save(ctx, name, buf.Bytes())
	if err != nil {
		s.logger.Error("Failed to save export", "error", err, "name", name)
		return "", fmt.Errorf("save export: %w", err)
	}

	s.logger.Info("Export saved", "path", path)
	return path, nil
}

// ExportFileName names an export by its creation time
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("claims-%s.xlsx", t.Format("20060102-150405"))
}
