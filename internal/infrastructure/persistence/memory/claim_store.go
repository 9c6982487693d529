package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"go.uber.org/zap"
)

// ClaimStore implements port.ClaimRepository over a slice held for the
// process lifetime. Callers receive copies; the stored claims only change
// through UpdateStatus.
type ClaimStore struct {
	mu     sync.RWMutex
	claims []*entity.Claim
	byID   map[string]int
	logger *zap.Logger
}

// NewClaimStore creates an empty store
func NewClaimStore(logger *zap.Logger) *ClaimStore {
	return &ClaimStore{
		byID:   make(map[string]int),
		logger: logger,
	}
}

// Append stores a copy of claim and sets claim.Position
func (s *ClaimStore) Append(ctx context.Context, claim *entity.Claim) error {
	if claim == nil {
		return fmt.Errorf("claim cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[claim.ID]; exists {
		return fmt.Errorf("claim %s already stored", claim.ID)
	}

	claim.Position = len(s.claims)
	s.claims = append(s.claims, claim.Clone())
	s.byID[claim.ID] = claim.Position

	s.logger.Debug("Claim stored", zap.String("id", claim.ID), zap.Int("position", claim.Position))
	return nil
}

// GetByID returns a copy of the claim or nil when absent
func (s *ClaimStore) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return s.claims[pos].Clone(), nil
}

// GetByPosition returns a copy of the claim at position or nil when out of range
func (s *ClaimStore) GetByPosition(ctx context.Context, position int) (*entity.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if position < 0 || position >= len(s.claims) {
		return nil, nil
	}
	return s.claims[position].Clone(), nil
}

// List returns copies of matching claims in insertion order
func (s *ClaimStore) List(ctx context.Context, filter entity.ClaimFilter) ([]*entity.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entity.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		if filter.Matches(c) {
			result = append(result, c.Clone())
		}
	}
	return result, nil
}

// UpdateStatus mutates the stored claim in place
func (s *ClaimStore) UpdateStatus(ctx context.Context, id string, status workflow.State, updatedAt time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", workflow.ErrInvalidState, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("claim %s not found", id)
	}
	s.claims[pos].Status = status
	s.claims[pos].UpdatedAt = updatedAt
	return nil
}

// Count returns the number of stored claims
func (s *ClaimStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims), nil
}

// WithTransaction runs fn directly; each store call is already atomic and the
// desk runs one handler at a time
func (s *ClaimStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Verify interface compliance
var (
	_ port.ClaimRepository    = (*ClaimStore)(nil)
	_ port.TransactionManager = (*ClaimStore)(nil)
)
