package port

import (
	"context"
	"time"

	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
)

// ClaimRepository defines the session claim store. Claims keep insertion
// order and are never deleted; lookups of a missing claim return (nil, nil).
type ClaimRepository interface {
	// Append stores claim at the end of the list and sets its Position
	Append(ctx context.Context, claim *entity.Claim) error

	// GetByID retrieves a claim by its ID
	GetByID(ctx context.Context, id string) (*entity.Claim, error)

	// GetByPosition retrieves the claim at a zero-based list position
	GetByPosition(ctx context.Context, position int) (*entity.Claim, error)

	// List returns claims matching filter in insertion order
	List(ctx context.Context, filter entity.ClaimFilter) ([]*entity.Claim, error)

	// UpdateStatus sets a claim's status in place
	UpdateStatus(ctx context.Context, id string, status workflow.State, updatedAt time.Time) error

	// Count returns the number of stored claims
	Count(ctx context.Context) (int, error)
}

// TransactionManager handles store transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
