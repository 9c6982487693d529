package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/garyjia/claimdesk/internal/application/desk"
)

const (
	formWidth   = 46
	listWidth   = 44
	detailWidth = 44
)

// View implements tea.Model.
func (model Model) View() string {
	snap := model.desk.Snapshot()

	if model.focus == FocusPicker {
		return lipgloss.JoinVertical(lipgloss.Left,
			model.renderPicker(),
			model.renderStatus(snap),
		)
	}

	regions := lipgloss.JoinHorizontal(lipgloss.Top,
		model.renderForm(snap),
		model.renderList(snap),
		model.renderDetail(snap),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		regions,
		model.renderStatus(snap),
		model.renderHelp(),
	)
}

func (model Model) renderForm(snap desk.Snapshot) string {
	lines := []string{model.theme.title().Render("Submit Claim"), ""}
	for _, input := range model.inputs {
		lines = append(lines, input.View())
	}

	document := snap.Form.DocumentPath
	if document == "" {
		document = model.theme.muted().Render("none (ctrl+u to upload)")
	}
	lines = append(lines, "", "Document: "+document)

	return model.theme.pane(model.focus == FocusForm, formWidth).Render(strings.Join(lines, "\n"))
}

func (model Model) renderList(snap desk.Snapshot) string {
	lines := []string{model.theme.title().Render("Claims"), ""}

	if len(snap.Claims) == 0 {
		lines = append(lines, model.theme.muted().Render("No claims submitted"))
	}

	for i, claim := range snap.Claims {
		label := claim.StatusLabel()
		status := lipgloss.NewStyle().Foreground(model.theme.StatusColor(label)).Render(fmt.Sprintf("%-8s", label))
		row := fmt.Sprintf("%2d  %-16s %10.2f ", i+1, truncate(claim.LecturerName, 16), claim.TotalAmount) + status
		if i == snap.Selected {
			row = lipgloss.NewStyle().Background(model.theme.Selected).Bold(true).Render(row)
		}
		lines = append(lines, row)
	}

	return model.theme.pane(model.focus == FocusList, listWidth).Render(strings.Join(lines, "\n"))
}

func (model Model) renderDetail(snap desk.Snapshot) string {
	lines := []string{model.theme.title().Render("Claim Details"), ""}

	detail := snap.Detail
	if detail == nil {
		lines = append(lines, model.theme.muted().Render("Select a claim to see its details"))
	} else {
		lines = append(lines,
			"Lecturer: "+detail.LecturerName,
			"Hours:    "+detail.HoursWorked,
			"Rate:     "+detail.HourlyRate,
			"Total:    "+detail.Total,
			"Notes:    "+detail.Notes,
			"Document: "+truncate(detail.DocumentPath, detailWidth-14),
		)
	}

	indicator := snap.Indicator
	if detail != nil {
		indicator = detail.Status
	}
	if indicator != "" {
		status := lipgloss.NewStyle().Foreground(model.theme.StatusColor(indicator)).Bold(true).Render(indicator)
		lines = append(lines, "", "Status:   "+status)
	}

	return model.theme.pane(false, detailWidth).Render(strings.Join(lines, "\n"))
}

func (model Model) renderPicker() string {
	header := model.theme.title().Render("Select supporting document") + "  " +
		model.theme.muted().Render(model.picker.CurrentDirectory)
	body := lipgloss.JoinVertical(lipgloss.Left, header, "", model.picker.View(), "",
		model.theme.muted().Render("enter select  esc cancel"))
	return model.theme.pane(true, formWidth+listWidth).Render(body)
}

func (model Model) renderStatus(snap desk.Snapshot) string {
	if snap.Message == "" {
		return ""
	}
	color := model.theme.Success
	if strings.HasPrefix(snap.Message, "Error:") || desk.IsWarning(snap.Message) {
		color = model.theme.Failure
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(" " + snap.Message)
}

func (model Model) renderHelp() string {
	parts := make([]string, 0, len(model.keys.ShortHelp()))
	for _, binding := range model.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return model.theme.muted().Render(" " + strings.Join(parts, "  "))
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
