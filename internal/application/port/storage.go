package port

import (
	"context"

	"github.com/garyjia/claimdesk/internal/domain/entity"
)

// DocumentInspector reports on a supporting document without reading its content
type DocumentInspector interface {
	Inspect(ctx context.Context, path string) (*entity.Document, error)
}

// ExportStorage writes generated files under a base directory
type ExportStorage interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
	GetFullPath(name string) string
}
