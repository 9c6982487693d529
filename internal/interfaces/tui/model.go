// Package tui is the terminal desk: a submission form, the claim list and
// the detail panel drawn with bubbletea over the shared desk.
package tui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/garyjia/claimdesk/internal/application/desk"
	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/domain/event"
)

// FocusRegion identifies which region has keyboard focus.
type FocusRegion int

const (
	// FocusForm means keystrokes go to the focused form input.
	FocusForm FocusRegion = iota
	// FocusList means up/down move the claim selection.
	FocusList
	// FocusPicker means the document picker overlay is open.
	FocusPicker
)

// Form input order.
const (
	inputLecturer = iota
	inputHours
	inputRate
	inputNotes
	inputCount
)

// eventBuffer bounds queued redraw notifications; extra ones are dropped
const eventBuffer = 64

// deskEventMsg signals that the desk changed outside this model.
type deskEventMsg struct{}

// Options configures the terminal desk.
type Options struct {
	// StartDir is where the document picker opens; empty means the working directory
	StartDir string

	// AllowedExtensions restricts the picker, including the dot
	AllowedExtensions []string
}

// Model is the top-level bubbletea model for the terminal desk.
type Model struct {
	ctx   context.Context
	desk  *desk.Desk
	keys  KeyMap
	theme Theme

	inputs     []textinput.Model
	focusInput int
	focus      FocusRegion
	cursor     int

	picker filepicker.Model

	eventChannel chan struct{}
	unbind       func()

	width  int
	height int
}

// NewModel creates the terminal desk. When events is non-nil the model
// redraws on every dispatched event, so changes made over HTTP show up.
func NewModel(ctx context.Context, d *desk.Desk, events dispatcher.Dispatcher, opts Options) Model {
	model := Model{
		ctx:    ctx,
		desk:   d,
		keys:   DefaultKeyMap,
		theme:  DefaultTheme,
		inputs: newInputs(),
		focus:  FocusForm,
		cursor: desk.NoSelection,
		picker: newPicker(opts),
	}
	model.inputs[inputLecturer].Focus()

	if events != nil {
		channel := make(chan struct{}, eventBuffer)
		model.eventChannel = channel
		model.unbind = events.Bind(dispatcher.AnyType, func(ctx context.Context, evt *event.Event) error {
			select {
			case channel <- struct{}{}:
			default:
			}
			return nil
		})
	}

	return model
}

func newInputs() []textinput.Model {
	inputs := make([]textinput.Model, inputCount)
	placeholders := [inputCount]string{"Lecturer name", "Hours worked", "Hourly rate", "Notes (optional)"}
	prompts := [inputCount]string{"Lecturer: ", "Hours:    ", "Rate:     ", "Notes:    "}

	for i := range inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.Prompt = prompts[i]
		input.CharLimit = 128
		input.Width = 32
		inputs[i] = input
	}
	return inputs
}

func newPicker(opts Options) filepicker.Model {
	picker := filepicker.New()
	picker.AllowedTypes = opts.AllowedExtensions
	picker.CurrentDirectory = opts.StartDir
	if picker.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			picker.CurrentDirectory = wd
		} else {
			picker.CurrentDirectory = "."
		}
	}
	picker.ShowPermissions = false
	picker.AutoHeight = false
	picker.Height = 12
	return picker
}

// Close releases the redraw subscription.
func (model Model) Close() {
	if model.unbind != nil {
		model.unbind()
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForDeskEvent(model.eventChannel))
}

// listenForDeskEvent blocks until the desk changes.
func listenForDeskEvent(channel <-chan struct{}) tea.Cmd {
	if channel == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-channel; !ok {
			return nil
		}
		return deskEventMsg{}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if key.Matches(message, model.keys.Quit) {
			return model, tea.Quit
		}
		if model.focus == FocusPicker {
			return model.handlePickerKeys(message)
		}
		return model.handleKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case deskEventMsg:
		model.syncCursor()
		return model, listenForDeskEvent(model.eventChannel)
	}

	if model.focus == FocusPicker {
		var cmd tea.Cmd
		model.picker, cmd = model.picker.Update(message)
		return model, cmd
	}

	if model.focus == FocusForm {
		var cmd tea.Cmd
		model.inputs[model.focusInput], cmd = model.inputs[model.focusInput].Update(message)
		return model, cmd
	}

	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Submit):
		model.syncForm()
		model.desk.Submit(model.ctx)
		model.syncCursor()
		return model, nil

	case key.Matches(message, model.keys.Approve):
		model.desk.Approve(model.ctx)
		return model, nil

	case key.Matches(message, model.keys.Reject):
		model.desk.Reject(model.ctx)
		return model, nil

	case key.Matches(message, model.keys.Export):
		model.desk.Export(model.ctx)
		return model, nil

	case key.Matches(message, model.keys.Upload):
		model.syncForm()
		model.focus = FocusPicker
		model.blurInputs()
		return model, model.picker.Init()

	case key.Matches(message, model.keys.Next):
		return model, model.moveFocus(1)

	case key.Matches(message, model.keys.Previous):
		return model, model.moveFocus(-1)
	}

	if model.focus == FocusList {
		switch {
		case key.Matches(message, model.keys.Up):
			model.selectPosition(model.cursor - 1)
		case key.Matches(message, model.keys.Down):
			model.selectPosition(model.cursor + 1)
		}
		return model, nil
	}

	var cmd tea.Cmd
	model.inputs[model.focusInput], cmd = model.inputs[model.focusInput].Update(message)
	model.syncForm()
	return model, cmd
}

func (model Model) handlePickerKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.Cancel) {
		model.closePicker("")
		return model, model.focusForm()
	}

	var cmd tea.Cmd
	model.picker, cmd = model.picker.Update(message)

	if didSelect, path := model.picker.DidSelectFile(message); didSelect {
		model.closePicker(path)
		return model, tea.Batch(cmd, model.focusForm())
	}
	if didSelect, path := model.picker.DidSelectDisabledFile(message); didSelect {
		model.closePicker(path)
		return model, tea.Batch(cmd, model.focusForm())
	}

	return model, cmd
}

// closePicker hands the picker result to the desk; an empty path is a cancellation
func (model *Model) closePicker(path string) {
	model.desk.UploadDocument(model.ctx, path)
	model.focus = FocusForm
}

// selectPosition moves the list cursor; it stops at the first and last claim
func (model *Model) selectPosition(position int) {
	count := len(model.desk.Snapshot().Claims)
	if count == 0 {
		return
	}
	if position < 0 {
		position = 0
	}
	if position >= count {
		position = count - 1
	}
	if err := model.desk.Select(model.ctx, position); err == nil {
		model.cursor = position
	}
}

func (model *Model) syncCursor() {
	model.cursor = model.desk.Snapshot().Selected
}

func (model *Model) syncForm() {
	model.desk.SetForm(desk.Form{
		LecturerName: model.inputs[inputLecturer].Value(),
		HoursWorked:  model.inputs[inputHours].Value(),
		HourlyRate:   model.inputs[inputRate].Value(),
		Notes:        model.inputs[inputNotes].Value(),
	})
}

// moveFocus cycles through the form inputs and then the list
func (model *Model) moveFocus(step int) tea.Cmd {
	slots := inputCount + 1
	current := model.focusInput
	if model.focus == FocusList {
		current = inputCount
	}
	next := ((current+step)%slots + slots) % slots

	model.blurInputs()
	if next == inputCount {
		model.focus = FocusList
		if model.cursor == desk.NoSelection {
			model.selectPosition(0)
		}
		return nil
	}

	model.focus = FocusForm
	model.focusInput = next
	return model.inputs[next].Focus()
}

func (model *Model) focusForm() tea.Cmd {
	model.focus = FocusForm
	return model.inputs[model.focusInput].Focus()
}

func (model *Model) blurInputs() {
	for i := range model.inputs {
		model.inputs[i].Blur()
	}
}

// Focus returns the focused region.
func (model Model) Focus() FocusRegion {
	return model.focus
}
