package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService_Export(t *testing.T) {
	ctx := context.Background()
	repo := &mockClaimRepo{}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, entity.NewClaim("A", 1, 2, "", "/a.pdf", now)))
	require.NoError(t, repo.Append(ctx, entity.NewClaim("B", 3, 4, "", "/b.pdf", now)))

	t.Run("writes every claim", func(t *testing.T) {
		workbook := &mockWorkbook{}
		svc := NewExportService(repo, workbook, &mockExportStorage{}, &mockLogger{})

		var buf bytes.Buffer
		require.NoError(t, svc.Export(ctx, &buf))

		require.Len(t, workbook.written, 2)
		assert.Equal(t, "A", workbook.written[0].LecturerName)
		assert.Equal(t, "xlsx", buf.String())
	})

	t.Run("workbook failure is wrapped", func(t *testing.T) {
		svc := NewExportService(repo, &mockWorkbook{err: errors.New("broken")}, &mockExportStorage{}, &mockLogger{})

		err := svc.Export(ctx, &bytes.Buffer{})
		assert.ErrorContains(t, err, "write workbook: broken")
	})

	t.Run("saves to storage with timestamped name", func(t *testing.T) {
		storage := &mockExportStorage{}
		svc := NewExportService(repo, &mockWorkbook{}, storage, &mockLogger{}).(*exportServiceImpl)
		svc.now = func() time.Time { return now }

		path, err := svc.ExportToFile(ctx)

		require.NoError(t, err)
		assert.Equal(t, "/exports/claims-20240301-090000.xlsx", path)
		assert.Equal(t, []byte("xlsx"), storage.saved["claims-20240301-090000.xlsx"])
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := NewExportService(repo, &mockWorkbook{}, &mockExportStorage{err: errors.New("read-only")}, &mockLogger{})

		_, err := svc.ExportToFile(ctx)
		assert.ErrorContains(t, err, "read-only")
	})
}
