package service

import (
	"context"
	"io"
	"time"

	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
)

// mockClaimRepo keeps claims in a slice unless a func override is set
type mockClaimRepo struct {
	claims []*entity.Claim

	appendFunc       func(ctx context.Context, claim *entity.Claim) error
	getByIDFunc      func(ctx context.Context, id string) (*entity.Claim, error)
	listFunc         func(ctx context.Context, filter entity.ClaimFilter) ([]*entity.Claim, error)
	updateStatusFunc func(ctx context.Context, id string, status workflow.State, updatedAt time.Time) error
}

func (m *mockClaimRepo) Append(ctx context.Context, claim *entity.Claim) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, claim)
	}
	claim.Position = len(m.claims)
	m.claims = append(m.claims, claim.Clone())
	return nil
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	for _, c := range m.claims {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return nil, nil
}

func (m *mockClaimRepo) GetByPosition(ctx context.Context, position int) (*entity.Claim, error) {
	if position < 0 || position >= len(m.claims) {
		return nil, nil
	}
	return m.claims[position].Clone(), nil
}

func (m *mockClaimRepo) List(ctx context.Context, filter entity.ClaimFilter) ([]*entity.Claim, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	var out []*entity.Claim
	for _, c := range m.claims {
		if filter.Matches(c) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (m *mockClaimRepo) UpdateStatus(ctx context.Context, id string, status workflow.State, updatedAt time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, updatedAt)
	}
	for _, c := range m.claims {
		if c.ID == id {
			c.Status = status
			c.UpdatedAt = updatedAt
		}
	}
	return nil
}

func (m *mockClaimRepo) Count(ctx context.Context) (int, error) {
	return len(m.claims), nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockInspector struct {
	inspectFunc func(ctx context.Context, path string) (*entity.Document, error)
	calls       int
}

func (m *mockInspector) Inspect(ctx context.Context, path string) (*entity.Document, error) {
	m.calls++
	return m.inspectFunc(ctx, path)
}

type mockWorkbook struct {
	written []*entity.Claim
	err     error
}

func (m *mockWorkbook) Write(ctx context.Context, claims []*entity.Claim, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	m.written = claims
	_, err := w.Write([]byte("xlsx"))
	return err
}

type mockExportStorage struct {
	saved map[string][]byte
	err   error
}

func (m *mockExportStorage) Save(ctx context.Context, name string, content []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[name] = content
	return m.GetFullPath(name), nil
}

func (m *mockExportStorage) GetFullPath(name string) string {
	return "/exports/" + name
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
