package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"go.uber.org/zap"
)

const claimColumns = `id, position, lecturer_name, hours_worked, hourly_rate, total_amount,
	notes, document_path, status, submitted_at, updated_at`

// ClaimRepository implements port.ClaimRepository on the session database
type ClaimRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *DB, logger *zap.Logger) *ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts claim at the next position
func (r *ClaimRepository) Append(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			id, position, lecturer_name, hours_worked, hourly_rate, total_amount,
			notes, document_path, status, submitted_at, updated_at
		) VALUES (?, (SELECT COUNT(*) FROM claims), ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING position
	`

	var position int
	err := r.db.getExecutor(ctx).QueryRowContext(ctx, query,
		claim.ID,
		claim.LecturerName,
		claim.HoursWorked,
		claim.HourlyRate,
		claim.TotalAmount,
		claim.Notes,
		claim.DocumentPath,
		claim.Status,
		claim.SubmittedAt,
		claim.UpdatedAt,
	).Scan(&position)
	if err != nil {
		r.logger.Error("Failed to insert claim", zap.String("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to insert claim: %w", err)
	}

	claim.Position = position
	return nil
}

// GetByID retrieves a claim by ID
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	claim, err := scanClaim(r.db.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

// GetByPosition retrieves the claim at position
func (r *ClaimRepository) GetByPosition(ctx context.Context, position int) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE position = ?`

	claim, err := scanClaim(r.db.getExecutor(ctx).QueryRowContext(ctx, query, position))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim by position", zap.Int("position", position), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

// List returns claims matching filter ordered by position
func (r *ClaimRepository) List(ctx context.Context, filter entity.ClaimFilter) ([]*entity.Claim, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + claimColumns + ` FROM claims`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY position`

	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	claims := make([]*entity.Claim, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

// UpdateStatus sets a claim's status
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id string, status workflow.State, updatedAt time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", workflow.ErrInvalidState, status)
	}

	query := `UPDATE claims SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		r.logger.Error("Failed to update claim status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("claim %s not found", id)
	}
	return nil
}

// Count returns the number of claims
func (r *ClaimRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.getExecutor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM claims`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}
	return count, nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*entity.Claim, error) {
	var claim entity.Claim
	err := row.Scan(
		&claim.ID,
		&claim.Position,
		&claim.LecturerName,
		&claim.HoursWorked,
		&claim.HourlyRate,
		&claim.TotalAmount,
		&claim.Notes,
		&claim.DocumentPath,
		&claim.Status,
		&claim.SubmittedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
