// internal/infrastructure/storage/file_storage.go
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/garyjia/claimdesk/internal/application/port"
	"go.uber.org/zap"
)

// LocalExportStorage implements port.ExportStorage for the local filesystem
type LocalExportStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalExportStorage creates a new LocalExportStorage
func NewLocalExportStorage(baseDir string, logger *zap.Logger) *LocalExportStorage {
	return &LocalExportStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes content to name under the base directory and returns the full path
func (s *LocalExportStorage) Save(ctx context.Context, name string, content []byte) (string, error) {
	fullPath := s.GetFullPath(name)

	// Validate path security
	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved successfully",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return fullPath, nil
}

// GetFullPath joins name onto the base directory
func (s *LocalExportStorage) GetFullPath(name string) string {
	return filepath.Join(s.baseDir, name)
}

// validatePath checks that the path stays within baseDir
func (s *LocalExportStorage) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}

var _ port.ExportStorage = (*LocalExportStorage)(nil)
