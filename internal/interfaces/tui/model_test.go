package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/claimdesk/internal/application/desk"
	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/application/service"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"github.com/garyjia/claimdesk/internal/infrastructure/export"
	"github.com/garyjia/claimdesk/internal/infrastructure/persistence/memory"
	"github.com/garyjia/claimdesk/internal/infrastructure/storage"
	"github.com/garyjia/claimdesk/pkg/utils"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	model  Model
	desk   *desk.Desk
	claims service.ClaimService
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewClaimStore(zap.NewNop())
	events := dispatcher.NewDispatcher()
	claims := service.NewClaimService(store, store, workflow.NewTransitioner(workflow.PolicyPermissive), events, nopLogger{})
	documents := service.NewDocumentService(storage.NewLocalDocumentInspector(zap.NewNop()), service.DocumentPolicy{}, events, nopLogger{})
	exportDir := t.TempDir()
	exports := service.NewExportService(store, export.NewClaimWorkbook(zap.NewNop()),
		storage.NewLocalExportStorage(exportDir, zap.NewNop()), nopLogger{})
	money, err := utils.NewMoneyFormatter("USD", "en")
	require.NoError(t, err)

	d := desk.New(claims, documents, exports, events, money, nopLogger{})
	model := NewModel(context.Background(), d, events, Options{StartDir: t.TempDir()})
	t.Cleanup(func() {
		model.Close()
		d.Close()
	})

	return &fixture{model: model, desk: d, claims: claims, dir: exportDir}
}

func (f *fixture) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = f.model.Update(msg)
		f.model = next.(Model)
	}
	return cmd
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func writeDocument(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

// fillForm types the example claim and attaches a document
func (f *fixture) fillForm(t *testing.T) string {
	t.Helper()
	f.send(
		typeText("J. Smith"), press(tea.KeyTab),
		typeText("10"), press(tea.KeyTab),
		typeText("25.5"),
	)
	doc := writeDocument(t, "timesheet.pdf", 2048)
	f.model.closePicker(doc)
	return doc
}

func TestModel_TypingUpdatesForm(t *testing.T) {
	f := newFixture(t)

	f.fillForm(t)

	form := f.desk.Form()
	assert.Equal(t, "J. Smith", form.LecturerName)
	assert.Equal(t, "10", form.HoursWorked)
	assert.Equal(t, "25.5", form.HourlyRate)
	assert.NotEmpty(t, form.DocumentPath)
}

func TestModel_SubmitApproveFlow(t *testing.T) {
	f := newFixture(t)
	f.fillForm(t)

	f.send(press(tea.KeyCtrlS))

	snap := f.desk.Snapshot()
	require.Len(t, snap.Claims, 1)
	assert.Equal(t, 255.0, snap.Claims[0].TotalAmount)
	assert.Equal(t, desk.MsgClaimSubmitted, snap.Message)
	assert.Contains(t, f.model.View(), desk.MsgClaimSubmitted)

	// rate -> notes -> list
	f.send(press(tea.KeyTab), press(tea.KeyTab))
	require.Equal(t, FocusList, f.model.Focus())
	assert.Equal(t, 0, f.desk.Snapshot().Selected)
	assert.Contains(t, f.model.View(), "$ 255.00")

	f.send(press(tea.KeyCtrlA))

	snap = f.desk.Snapshot()
	require.NotNil(t, snap.Detail)
	assert.Equal(t, "Approved", snap.Detail.Status)
	assert.Equal(t, desk.MsgClaimApproved, snap.Message)
	assert.Contains(t, f.model.View(), "Approved")

	f.send(press(tea.KeyCtrlR))
	assert.Equal(t, "Rejected", f.desk.Snapshot().Detail.Status)
}

func TestModel_ApproveWithoutSelection(t *testing.T) {
	f := newFixture(t)
	f.fillForm(t)
	f.send(press(tea.KeyCtrlS))

	f.send(press(tea.KeyCtrlA))

	snap := f.desk.Snapshot()
	assert.Equal(t, workflow.StatePending, snap.Claims[0].Status)
	assert.Equal(t, desk.MsgClaimSubmitted, snap.Message)
}

func TestModel_MissingFields(t *testing.T) {
	f := newFixture(t)
	f.send(typeText("J. Smith"))

	f.send(press(tea.KeyCtrlS))

	assert.Empty(t, f.desk.Snapshot().Claims)
	assert.Contains(t, f.model.View(), desk.MsgMissingFields)
}

func TestModel_Picker(t *testing.T) {
	t.Run("cancel leaves the document unchanged", func(t *testing.T) {
		f := newFixture(t)

		cmd := f.send(press(tea.KeyCtrlU))
		assert.NotNil(t, cmd)
		require.Equal(t, FocusPicker, f.model.Focus())

		f.send(press(tea.KeyEsc))

		assert.Equal(t, FocusForm, f.model.Focus())
		assert.Empty(t, f.desk.Form().DocumentPath)
		assert.Empty(t, f.desk.Snapshot().Message)
	})

	t.Run("oversized file is refused", func(t *testing.T) {
		f := newFixture(t)

		f.model.closePicker(writeDocument(t, "big.pdf", 5242881))

		assert.Empty(t, f.desk.Form().DocumentPath)
		assert.Equal(t, desk.MsgFileTooLarge, f.desk.Snapshot().Message)
	})

	t.Run("picker renders its directory", func(t *testing.T) {
		f := newFixture(t)
		f.send(press(tea.KeyCtrlU))
		assert.Contains(t, f.model.View(), "Select supporting document")
	})
}

func TestModel_ListNavigation(t *testing.T) {
	f := newFixture(t)
	f.fillForm(t)
	f.send(press(tea.KeyCtrlS), press(tea.KeyCtrlS), press(tea.KeyCtrlS))
	require.Len(t, f.desk.Snapshot().Claims, 3)

	f.send(press(tea.KeyTab), press(tea.KeyTab))
	require.Equal(t, 0, f.desk.Snapshot().Selected)

	f.send(press(tea.KeyDown), press(tea.KeyDown), press(tea.KeyDown))
	assert.Equal(t, 2, f.desk.Snapshot().Selected)

	f.send(press(tea.KeyUp))
	assert.Equal(t, 1, f.desk.Snapshot().Selected)

	// shift+tab returns to the notes input
	f.send(press(tea.KeyShiftTab))
	assert.Equal(t, FocusForm, f.model.Focus())
}

func TestModel_Export(t *testing.T) {
	f := newFixture(t)
	f.fillForm(t)
	f.send(press(tea.KeyCtrlS))

	f.send(press(tea.KeyCtrlE))

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Contains(t, f.desk.Snapshot().Message, "Claims exported to")
}

func TestModel_RedrawsOnExternalChange(t *testing.T) {
	f := newFixture(t)
	f.fillForm(t)
	f.send(press(tea.KeyCtrlS))
	f.send(press(tea.KeyTab), press(tea.KeyTab))

	id := f.desk.Snapshot().Claims[0].ID
	_, err := f.claims.Approve(context.Background(), id)
	require.NoError(t, err)

	msg := listenForDeskEvent(f.model.eventChannel)()
	assert.IsType(t, deskEventMsg{}, msg)

	cmd := f.send(msg)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Approved", f.desk.Snapshot().Detail.Status)
}

func TestModel_Quit(t *testing.T) {
	f := newFixture(t)

	cmd := f.send(press(tea.KeyCtrlC))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
