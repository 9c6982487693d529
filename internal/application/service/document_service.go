package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/event"
)

// DocumentService checks supporting documents picked for a claim
type DocumentService interface {
	// Accept resolves path to an absolute path and checks its extension and size.
	// The file content is never read.
	Accept(ctx context.Context, path string) (*entity.Document, error)
	AllowedExtensions() []string
	MaxSize() int64
}

// DocumentPolicy holds the upload limits
type DocumentPolicy struct {
	MaxSize           int64
	AllowedExtensions []string
}

type documentServiceImpl struct {
	inspector port.DocumentInspector
	policy    DocumentPolicy
	events    dispatcher.Dispatcher
	logger    Logger
}

// NewDocumentService creates a new DocumentService; zero policy values fall back to the defaults
func NewDocumentService(
	inspector port.DocumentInspector,
	policy DocumentPolicy,
	events dispatcher.Dispatcher,
	logger Logger,
) DocumentService {
	if policy.MaxSize <= 0 {
		policy.MaxSize = entity.MaxDocumentSize
	}
	if len(policy.AllowedExtensions) == 0 {
		policy.AllowedExtensions = entity.DefaultDocumentExtensions()
	}

	return &documentServiceImpl{
		inspector: inspector,
		policy:    policy,
		events:    events,
		logger:    logger,
	}
}

func (s *documentServiceImpl) Accept(ctx context.Context, path string) (*entity.Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: document path", ErrMissingFields)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve document path: %w", err)
	}

	if !entity.HasAllowedExtension(absPath, s.policy.AllowedExtensions) {
		err := fmt.Errorf("%w: %s", ErrUnsupportedDocument, entity.DocumentExtension(absPath))
		s.reject(ctx, absPath, 0, err)
		return nil, err
	}

	doc, err := s.inspector.Inspect(ctx, absPath)
	if err != nil {
		s.logger.Error("Failed to inspect document", "error", err, "path", absPath)
		s.reject(ctx, absPath, 0, err)
		return nil, err
	}

	if doc.Size > s.policy.MaxSize {
		err := fmt.Errorf("%w: %d bytes > %d bytes", ErrFileTooLarge, doc.Size, s.policy.MaxSize)
		s.reject(ctx, absPath, doc.Size, err)
		return nil, err
	}

	s.logger.Info("Document accepted", "path", doc.Path, "size", doc.Size)
	s.publish(ctx, event.NewEvent(event.TypeDocumentAccepted, "", map[string]interface{}{
		event.KeyDocumentPath: doc.Path,
		event.KeyDocumentSize: doc.Size,
	}))

	return doc, nil
}

func (s *documentServiceImpl) AllowedExtensions() []string {
	out := make([]string, len(s.policy.AllowedExtensions))
	copy(out, s.policy.AllowedExtensions)
	return out
}

func (s *documentServiceImpl) MaxSize() int64 {
	return s.policy.MaxSize
}

func (s *documentServiceImpl) reject(ctx context.Context, path string, size int64, reason error) {
	s.logger.Info("Document rejected", "path", path, "size", size, "reason", reason.Error())
	s.publish(ctx, event.NewEvent(event.TypeDocumentRejected, "", map[string]interface{}{
		event.KeyDocumentPath: path,
		event.KeyDocumentSize: size,
		event.KeyReason:       reason.Error(),
	}))
}

func (s *documentServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Event delivery failed", "error", err, "event_type", evt.Type)
	}
}
