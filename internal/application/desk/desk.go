package desk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/internal/application/service"
	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/event"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
)

// NoSelection is the selected position when no claim is selected
const NoSelection = -1

// ErrNoSelection is reported when approve or reject runs with nothing selected
var ErrNoSelection = errors.New("no claim selected")

// Form is the submission form as typed
type Form struct {
	LecturerName string `json:"lecturer_name"`
	HoursWorked  string `json:"hours_worked"`
	HourlyRate   string `json:"hourly_rate"`
	Notes        string `json:"notes"`
	DocumentPath string `json:"document_path"`
}

// Detail is the read-only panel for the selected claim
type Detail struct {
	ClaimID      string  `json:"claim_id"`
	Position     int     `json:"position"`
	LecturerName string  `json:"lecturer_name"`
	HoursWorked  string  `json:"hours_worked"`
	HourlyRate   string  `json:"hourly_rate"`
	Total        string  `json:"total"`
	TotalAmount  float64 `json:"total_amount"`
	Notes        string  `json:"notes"`
	DocumentPath string  `json:"document_path"`
	Status       string  `json:"status"`
}

// Snapshot is a consistent copy of every region
type Snapshot struct {
	Form      Form            `json:"form"`
	Claims    []*entity.Claim `json:"claims"`
	Selected  int             `json:"selected"`
	Detail    *Detail         `json:"detail,omitempty"`
	Indicator string          `json:"status_indicator"`
	Message   string          `json:"message"`
}

// Outcome is the result of one handler run. Message is empty for silent no-ops.
type Outcome struct {
	Message  string
	Err      error
	Claim    *entity.Claim
	Document *entity.Document
	Path     string
}

// OK reports whether the handler succeeded or did nothing
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Desk mediates between the submission form, the claim list and the detail
// panel. Handlers run one at a time. The detail panel has its own lock so a
// status binding may update it while a handler is running.
type Desk struct {
	mu        sync.Mutex
	claims    service.ClaimService
	documents service.DocumentService
	exports   service.ExportService
	events    dispatcher.Dispatcher
	money     port.MoneyFormatter
	logger    service.Logger

	form     Form
	list     []*entity.Claim
	selected int
	message  string

	panelMu   sync.Mutex
	detail    *Detail
	indicator string
	unbind    func()
}

// New creates a desk with an empty form and no selection
func New(
	claims service.ClaimService,
	documents service.DocumentService,
	exports service.ExportService,
	events dispatcher.Dispatcher,
	money port.MoneyFormatter,
	logger service.Logger,
) *Desk {
	return &Desk{
		claims:    claims,
		documents: documents,
		exports:   exports,
		events:    events,
		money:     money,
		logger:    logger,
		selected:  NoSelection,
	}
}

// Refresh reloads the claim list from the store
func (d *Desk) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refresh(ctx)
}

// SetForm replaces the typed fields. The document field only changes through UploadDocument.
func (d *Desk) SetForm(form Form) {
	d.mu.Lock()
	defer d.mu.Unlock()

	form.DocumentPath = d.form.DocumentPath
	d.form = form
}

// Form returns the current form
func (d *Desk) Form() Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

// UploadDocument handles a picker result. An empty path means the picker was cancelled.
func (d *Desk) UploadDocument(ctx context.Context, path string) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	if path == "" {
		return Outcome{}
	}

	doc, err := d.documents.Accept(ctx, path)
	if err != nil {
		return d.fail(err)
	}

	d.form.DocumentPath = doc.Path
	return d.succeed(Outcome{Message: MsgDocumentUploaded, Document: doc, Path: doc.Path})
}

// Submit appends a claim built from the form
func (d *Desk) Submit(ctx context.Context) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	claim, err := d.claims.Submit(ctx, service.SubmitRequest{
		LecturerName: d.form.LecturerName,
		HoursWorked:  d.form.HoursWorked,
		HourlyRate:   d.form.HourlyRate,
		DocumentPath: d.form.DocumentPath,
		Notes:        d.form.Notes,
	})
	if err != nil {
		return d.fail(err)
	}

	if err := d.refresh(ctx); err != nil {
		d.logger.Error("Failed to refresh claim list", "error", err)
	}
	d.setIndicator(workflow.StatePending.Label())

	return d.succeed(Outcome{Message: MsgClaimSubmitted, Claim: claim})
}

// Select shows the claim at position in the detail panel and binds its status.
// A position outside the list clears the selection.
func (d *Desk) Select(ctx context.Context, position int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if position < 0 || position >= len(d.list) {
		d.selected = NoSelection
		d.clearPanel()
		return nil
	}

	claim, err := d.claims.Get(ctx, d.list[position].ID)
	if err != nil {
		return err
	}

	d.selected = position
	d.bindPanel(claim)
	return nil
}

// Approve sets the selected claim to Approved; without a selection it does nothing
func (d *Desk) Approve(ctx context.Context) Outcome {
	return d.decide(ctx, workflow.TriggerApprove)
}

// Reject sets the selected claim to Rejected; without a selection it does nothing
func (d *Desk) Reject(ctx context.Context) Outcome {
	return d.decide(ctx, workflow.TriggerReject)
}

// Export writes the claim list into the export directory
func (d *Desk) Export(ctx context.Context) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, err := d.exports.ExportToFile(ctx)
	if err != nil {
		return d.fail(err)
	}
	return d.succeed(Outcome{Message: fmt.Sprintf(msgExportedFormat, path), Path: path})
}

// Snapshot returns a copy of every region
func (d *Desk) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	claims := make([]*entity.Claim, len(d.list))
	for i, c := range d.list {
		claims[i] = c.Clone()
	}

	d.panelMu.Lock()
	defer d.panelMu.Unlock()

	var detail *Detail
	if d.detail != nil {
		copied := *d.detail
		detail = &copied
	}

	return Snapshot{
		Form:      d.form,
		Claims:    claims,
		Selected:  d.selected,
		Detail:    detail,
		Indicator: d.indicator,
		Message:   d.message,
	}
}

// Close releases the status binding
func (d *Desk) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearPanel()
}

func (d *Desk) decide(ctx context.Context, trigger workflow.Trigger) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.selected == NoSelection {
		d.logger.Info("Decision ignored", "trigger", trigger, "reason", ErrNoSelection.Error())
		return Outcome{}
	}
	id := d.list[d.selected].ID

	var (
		claim *entity.Claim
		err   error
		msg   string
	)
	switch trigger {
	case workflow.TriggerApprove:
		claim, err = d.claims.Approve(ctx, id)
		msg = MsgClaimApproved
	default:
		claim, err = d.claims.Reject(ctx, id)
		msg = MsgClaimRejected
	}
	if err != nil {
		return d.fail(err)
	}

	if err := d.refresh(ctx); err != nil {
		d.logger.Error("Failed to refresh claim list", "error", err)
	}

	return d.succeed(Outcome{Message: msg, Claim: claim})
}

// refresh reloads the list; the selected position survives when still in range
func (d *Desk) refresh(ctx context.Context) error {
	list, err := d.claims.List(ctx, entity.ClaimFilter{})
	if err != nil {
		return err
	}
	d.list = list
	if d.selected >= len(d.list) {
		d.selected = NoSelection
		d.clearPanel()
	}
	return nil
}

func (d *Desk) bindPanel(claim *entity.Claim) {
	d.clearPanel()

	detail := &Detail{
		ClaimID:      claim.ID,
		Position:     claim.Position,
		LecturerName: claim.LecturerName,
		HoursWorked:  strconv.FormatFloat(claim.HoursWorked, 'f', -1, 64),
		HourlyRate:   strconv.FormatFloat(claim.HourlyRate, 'f', -1, 64),
		Total:        d.formatMoney(claim.TotalAmount),
		TotalAmount:  claim.TotalAmount,
		Notes:        claim.Notes,
		DocumentPath: claim.DocumentPath,
		Status:       claim.Status.Label(),
	}

	d.panelMu.Lock()
	d.detail = detail
	d.indicator = detail.Status
	d.panelMu.Unlock()

	if d.events == nil {
		return
	}

	claimID := claim.ID
	unbind := d.events.Bind(event.TypeClaimStatusChanged, func(ctx context.Context, evt *event.Event) error {
		if evt.ClaimID != claimID {
			return nil
		}
		state, err := workflow.ParseState(evt.GetPayloadString(event.KeyStatus))
		if err != nil {
			return err
		}

		d.panelMu.Lock()
		defer d.panelMu.Unlock()
		if d.detail == nil || d.detail.ClaimID != claimID {
			return nil
		}
		d.detail.Status = state.Label()
		d.indicator = state.Label()
		return nil
	})

	d.panelMu.Lock()
	d.unbind = unbind
	d.panelMu.Unlock()
}

func (d *Desk) clearPanel() {
	d.panelMu.Lock()
	unbind := d.unbind
	d.unbind = nil
	d.detail = nil
	d.panelMu.Unlock()

	if unbind != nil {
		unbind()
	}
}

func (d *Desk) setIndicator(label string) {
	d.panelMu.Lock()
	d.indicator = label
	d.panelMu.Unlock()
}

func (d *Desk) formatMoney(amount float64) string {
	if d.money == nil {
		return strconv.FormatFloat(amount, 'f', 2, 64)
	}
	return d.money.Format(amount)
}

func (d *Desk) maxDocumentSize() int64 {
	if d.documents == nil {
		return entity.MaxDocumentSize
	}
	return d.documents.MaxSize()
}

func (d *Desk) fail(err error) Outcome {
	msg := MessageForLimit(err, d.maxDocumentSize())
	d.message = msg
	d.logger.Info("Handler failed", "message", msg, "error", err)
	return Outcome{Message: msg, Err: err}
}

func (d *Desk) succeed(out Outcome) Outcome {
	d.message = out.Message
	return out
}
