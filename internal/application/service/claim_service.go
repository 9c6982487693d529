package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/event"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"github.com/garyjia/claimdesk/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SubmitRequest carries the submission form exactly as typed
type SubmitRequest struct {
	LecturerName string `json:"lecturer_name" validate:"required"`
	HoursWorked  string `json:"hours_worked" validate:"required"`
	HourlyRate   string `json:"hourly_rate" validate:"required"`
	DocumentPath string `json:"document_path" validate:"required"`
	Notes        string `json:"notes"`
}

// ClaimService manages the session's claims
type ClaimService interface {
	Submit(ctx context.Context, req SubmitRequest) (*entity.Claim, error)
	Get(ctx context.Context, id string) (*entity.Claim, error)
	At(ctx context.Context, position int) (*entity.Claim, error)
	List(ctx context.Context, filter entity.ClaimFilter) ([]*entity.Claim, error)
	Summary(ctx context.Context) (entity.ClaimSummary, error)
	Approve(ctx context.Context, id string) (*entity.Claim, error)
	Reject(ctx context.Context, id string) (*entity.Claim, error)
}

type claimServiceImpl struct {
	claimRepo    port.ClaimRepository
	txManager    port.TransactionManager
	transitioner *workflow.Transitioner
	events       dispatcher.Dispatcher
	logger       Logger
	now          func() time.Time
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claimRepo port.ClaimRepository,
	txManager port.TransactionManager,
	transitioner *workflow.Transitioner,
	events dispatcher.Dispatcher,
	logger Logger,
) ClaimService {
	return &claimServiceImpl{
		claimRepo:    claimRepo,
		txManager:    txManager,
		transitioner: transitioner,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit validates the form and appends a new pending claim
func (s *claimServiceImpl) Submit(ctx context.Context, req SubmitRequest) (*entity.Claim, error) {
	if err := utils.ValidateStruct(req); err != nil {
		s.logger.Info("Submission rejected", "missing_fields", utils.FailedFields(err))
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, utils.FailedFields(err))
	}

	hours, err := utils.ParseAmount(req.HoursWorked)
	if err != nil {
		return nil, &NumberError{Field: "hours worked", Input: req.HoursWorked, Err: err}
	}
	rate, err := utils.ParseAmount(req.HourlyRate)
	if err != nil {
		return nil, &NumberError{Field: "hourly rate", Input: req.HourlyRate, Err: err}
	}

	claim := entity.NewClaim(
		utils.SanitizeString(req.LecturerName),
		hours,
		rate,
		req.Notes,
		req.DocumentPath,
		s.now(),
	)

	if err := s.claimRepo.Append(ctx, claim); err != nil {
		s.logger.Error("Failed to append claim", "error", err, "lecturer", claim.LecturerName)
		return nil, fmt.Errorf("append claim: %w", err)
	}

	s.logger.Info("Claim submitted",
		"id", claim.ID,
		"position", claim.Position,
		"total", claim.TotalAmount,
	)

	s.publish(ctx, event.NewEvent(event.TypeClaimSubmitted, claim.ID, map[string]interface{}{
		event.KeyPosition:     claim.Position,
		event.KeyLecturer:     claim.LecturerName,
		event.KeyTotal:        claim.TotalAmount,
		event.KeyStatus:       claim.Status,
		event.KeyDocumentPath: claim.DocumentPath,
	}))

	return claim, nil
}

// Get retrieves a claim by ID
func (s *claimServiceImpl) Get(ctx context.Context, id string) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get claim", "error", err, "id", id)
		return nil, err
	}
	if claim == nil {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}
	return claim, nil
}

// At retrieves the claim at a list position
func (s *claimServiceImpl) At(ctx context.Context, position int) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByPosition(ctx, position)
	if err != nil {
		s.logger.Error("Failed to get claim by position", "error", err, "position", position)
		return nil, err
	}
	if claim == nil {
		return nil, fmt.Errorf("%w: position %d", ErrClaimNotFound, position)
	}
	return claim, nil
}

// List returns claims in insertion order
func (s *claimServiceImpl) List(ctx context.Context, filter entity.ClaimFilter) ([]*entity.Claim, error) {
	claims, err := s.claimRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list claims", "error", err, "status", filter.Status)
		return nil, err
	}
	return claims, nil
}

// Summary returns counts and totals per status
func (s *claimServiceImpl) Summary(ctx context.Context) (entity.ClaimSummary, error) {
	claims, err := s.List(ctx, entity.ClaimFilter{})
	if err != nil {
		return entity.ClaimSummary{}, err
	}
	return entity.Summarize(claims), nil
}

// Approve moves a claim to Approved
func (s *claimServiceImpl) Approve(ctx context.Context, id string) (*entity.Claim, error) {
	return s.transition(ctx, id, workflow.TriggerApprove)
}

// Reject moves a claim to Rejected
func (s *claimServiceImpl) Reject(ctx context.Context, id string) (*entity.Claim, error) {
	return s.transition(ctx, id, workflow.TriggerReject)
}

func (s *claimServiceImpl) transition(ctx context.Context, id string, trigger workflow.Trigger) (*entity.Claim, error) {
	var (
		updated  *entity.Claim
		previous workflow.State
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		claim, err := s.claimRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("get claim: %w", err)
		}
		if claim == nil {
			return fmt.Errorf("%w: %s", ErrClaimNotFound, id)
		}

		next, err := s.transitioner.Next(txCtx, claim.Status, trigger)
		if err != nil {
			if errors.Is(err, workflow.ErrInvalidTransition) || errors.Is(err, workflow.ErrGuardFailed) {
				return &TransitionError{Current: claim.Status, Trigger: trigger, Err: err}
			}
			return err
		}

		now := s.now()
		if err := s.claimRepo.UpdateStatus(txCtx, id, next, now); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		previous = claim.Status
		claim.Status = next
		claim.UpdatedAt = now
		updated = claim
		return nil
	})

	if err != nil {
		s.logger.Error("Failed to change claim status", "error", err, "id", id, "trigger", trigger)
		return nil, err
	}

	s.logger.Info("Claim status changed",
		"id", id,
		"previous", previous,
		"status", updated.Status,
	)

	payload := map[string]interface{}{
		event.KeyPrevious: previous,
		event.KeyStatus:   updated.Status,
		event.KeyPosition: updated.Position,
	}
	decision := event.TypeClaimApproved
	if trigger == workflow.TriggerReject {
		decision = event.TypeClaimRejected
	}
	s.publish(ctx, event.NewEvent(decision, id, payload))
	s.publish(ctx, event.NewEvent(event.TypeClaimStatusChanged, id, payload))

	return updated, nil
}

// publish delivers evt; subscriber failures are logged and never undo the change
func (s *claimServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Event delivery failed", "error", err, "event_type", evt.Type, "claim_id", evt.ClaimID)
	}
}
