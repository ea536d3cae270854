package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/taskifyx/internal/board"
	"github.com/hylla/taskifyx/internal/domain"
)

var (
	accent = lipgloss.Color("62")
	muted  = lipgloss.Color("241")
	dim    = lipgloss.Color("239")
)

// View renders the board, the toast stack, and any open modal.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("taskifyx")
	if m.subtitle != "" {
		header += statusStyle.Render("  " + m.subtitle)
	}
	if m.busy() {
		header += "  " + m.spinner.View()
	}

	sections := []string{header, "", m.renderColumns()}
	if !m.loaded {
		sections = append(sections, statusStyle.Render("fetching tasks..."))
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	height := lipgloss.Height(fullContent)
	if m.height > 0 {
		height = m.height
	}
	if overlay := m.renderOverlay(); overlay != "" {
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, height))
	}
	if toasts := m.renderToasts(); toasts != "" {
		fullContent = cornerOnContent(fullContent, toasts, max(1, m.width), max(1, height))
	}

	v := tea.NewView(fullContent)
	v.AltScreen = true
	return v
}

// columnWidth splits the terminal width across the board columns.
func (m Model) columnWidth() int {
	n := max(1, len(m.columns))
	return max(18, (m.width-2*n)/n-4)
}

func (m Model) renderColumns() string {
	colWidth := m.columnWidth()
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	selColStyle := baseColStyle.BorderForeground(accent)
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	itemSubStyle := lipgloss.NewStyle().Foreground(muted)

	views := make([]string, 0, len(m.columns))
	for colIdx, column := range m.columns {
		lines := []string{colTitle.Render(fmt.Sprintf("%s (%d)", column.Status, len(column.Tasks)))}
		if len(column.Tasks) == 0 {
			lines = append(lines, emptyStyle.Render("(empty)"))
		}
		for taskIdx, task := range column.Tasks {
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
			prefix := "  "
			if selected {
				prefix = "│ "
			}
			title := prefix + truncate(task.Title, max(1, colWidth-4))
			if selected {
				title = selectedTaskStyle.Render(title)
			}
			lines = append(lines, title)
			if m.showDescription {
				if sub := firstLine(task.Description); sub != "" {
					lines = append(lines, prefix+itemSubStyle.Render(truncate(sub, max(1, colWidth-4))))
				}
			}
		}
		style := baseColStyle
		if colIdx == m.selectedColumn {
			style = selColStyle
		}
		views = append(views, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// modalWidth is the outer width used by the form and info modals.
func (m Model) modalWidth() int {
	if m.width <= 0 {
		return 64
	}
	return clamp(m.width-8, 24, 80)
}

func (m Model) renderOverlay() string {
	switch {
	case m.mode == modeForm:
		return m.renderFormModal()
	case m.mode == modeTaskInfo:
		return m.renderTaskInfoModal()
	case m.help.ShowAll:
		return m.renderHelpModal()
	}
	return ""
}

func modalStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width)
}

func (m Model) renderFormModal() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	errStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	heading := "New task"
	if m.form.editing != nil {
		heading = "Edit task"
	}
	lines := []string{titleStyle.Render(heading), ""}
	for _, in := range m.form.inputs {
		lines = append(lines, in.View())
	}

	statusParts := make([]string, 0, len(domain.Statuses()))
	for i, status := range domain.Statuses() {
		label := string(status)
		if i == m.form.statusIdx {
			label = "[" + label + "]"
		}
		statusParts = append(statusParts, label)
	}
	statusLine := "status: " + strings.Join(statusParts, "  ")
	if m.form.focus == formFieldStatus {
		statusLine = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(statusLine)
	}
	lines = append(lines, statusLine)
	if m.form.err != "" {
		lines = append(lines, "", errStyle.Render(m.form.err))
	}

	hb := m.help
	hb.ShowAll = false
	hb.SetWidth(m.modalWidth() - 4)
	lines = append(lines, "", hintStyle.Render(hb.View(m.formKeys)))
	return modalStyle(m.modalWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) renderTaskInfoModal() string {
	task, ok := m.board.Task(m.infoTaskID)
	if !ok {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	metaStyle := lipgloss.NewStyle().Foreground(muted)

	lines := []string{
		titleStyle.Render(task.Title),
		metaStyle.Render(fmt.Sprintf("id: %s  status: %s", task.ID, task.Status)),
	}
	if !task.CreatedAt.IsZero() {
		lines = append(lines, metaStyle.Render("created: "+task.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	if !task.UpdatedAt.IsZero() {
		lines = append(lines, metaStyle.Render("updated: "+task.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	lines = append(lines, "")
	if desc := m.md.render(task.Description, m.modalWidth()-4); desc != "" {
		lines = append(lines, desc)
	} else {
		lines = append(lines, metaStyle.Render("(no description)"))
	}
	lines = append(lines, "", metaStyle.Render("e edit • y copy • esc close"))

	body := strings.Join(lines, "\n")
	if m.height > 0 {
		body = fitLines(body, max(4, m.height-4))
	}
	return modalStyle(m.modalWidth()).Render(body)
}

func (m Model) renderHelpModal() string {
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(m.modalWidth() - 4)
	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Keys")
	return modalStyle(m.modalWidth()).Render(title + "\n\n" + hb.View(m.keys) + "\n\n" +
		lipgloss.NewStyle().Foreground(muted).Render("esc or ? to close"))
}

func toastColor(kind board.NoticeKind) color.Color {
	if kind == board.NoticeError {
		return lipgloss.Color("203")
	}
	return lipgloss.Color("42")
}

func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	width := clamp(m.width/3, 20, 40)
	rendered := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		rendered = append(rendered, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(toastColor(t.kind)).
			Foreground(toastColor(t.kind)).
			Padding(0, 1).
			Width(width).
			Render(t.message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	x := max(0, (width-lipgloss.Width(overlay))/2)
	y := max(0, (height-lipgloss.Height(overlay))/2)
	return layerOnContent(base, overlay, width, height, x, y, 10)
}

// cornerOnContent pins overlay to the top-right corner of base.
func cornerOnContent(base, overlay string, width, height int) string {
	x := max(0, width-lipgloss.Width(overlay))
	return layerOnContent(base, overlay, width, height, x, 0, 20)
}

func layerOnContent(base, overlay string, width, height, x, y, z int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(overlay).X(x).Y(y).Z(z))
	return canvas.Render()
}
