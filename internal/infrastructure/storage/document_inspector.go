package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/domain/entity"
	"go.uber.org/zap"
)

// LocalDocumentInspector implements port.DocumentInspector with os.Stat
type LocalDocumentInspector struct {
	logger *zap.Logger
}

// NewLocalDocumentInspector creates a new LocalDocumentInspector
func NewLocalDocumentInspector(logger *zap.Logger) *LocalDocumentInspector {
	return &LocalDocumentInspector{logger: logger}
}

// Inspect reports the absolute path and size of a regular file
func (i *LocalDocumentInspector) Inspect(ctx context.Context, path string) (*entity.Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", absPath)
	}

	i.logger.Debug("Document inspected",
		zap.String("path", absPath),
		zap.Int64("size", info.Size()))

	return &entity.Document{
		Path:      absPath,
		Name:      info.Name(),
		Extension: entity.DocumentExtension(absPath),
		Size:      info.Size(),
	}, nil
}

var _ port.DocumentInspector = (*LocalDocumentInspector)(nil)
