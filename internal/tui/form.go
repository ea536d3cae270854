package tui

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/hylla/taskifyx/internal/domain"
)

// form field indexes.
const (
	formFieldTitle = iota
	formFieldDescription
	formFieldStatus
	formFieldCount
)

// taskForm holds the add/edit modal inputs.
type taskForm struct {
	inputs    []textinput.Model
	statusIdx int
	focus     int
	editing   *domain.Task
	err       string
}

func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

func newTaskForm(edit *domain.Task, width int) taskForm {
	f := taskForm{
		inputs: []textinput.Model{
			newModalInput("title: ", "what needs doing", "", 200),
			newModalInput("description: ", "markdown, optional", "", 2000),
		},
	}
	if edit != nil {
		target := *edit
		f.editing = &target
		f.inputs[formFieldTitle].SetValue(target.Title)
		f.inputs[formFieldDescription].SetValue(target.Description)
		f.statusIdx = max(0, domain.ColumnIndex(target.Status))
	}
	f.resize(width)
	return f
}

func (f *taskForm) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].SetWidth(max(10, width-18))
	}
}

func (f taskForm) status() domain.Status {
	statuses := domain.Statuses()
	return statuses[clamp(f.statusIdx, 0, len(statuses)-1)]
}

// focusField moves focus to idx and returns the cursor blink command.
func (f *taskForm) focusField(idx int) tea.Cmd {
	f.focus = (idx%formFieldCount + formFieldCount) % formFieldCount
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if f.focus < len(f.inputs) {
		return f.inputs[f.focus].Focus()
	}
	return nil
}

// openForm shows the add form, or the edit form when edit is non-nil.
func (m *Model) openForm(edit *domain.Task) tea.Cmd {
	m.board.OpenForm(edit)
	m.form = newTaskForm(edit, m.modalWidth())
	m.mode = modeForm
	if edit != nil {
		m.status = "edit task"
	} else {
		m.status = "new task"
	}
	return m.form.focusField(formFieldTitle)
}

// closeForm hides the modal without touching the controller.
func (m *Model) closeForm() {
	m.mode = modeNone
	m.form = taskForm{}
}

// handleFormKey routes key presses while the form modal is open.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.cancel):
		m.board.CloseForm()
		m.closeForm()
		m.status = "cancelled"
		return m, nil
	case key.Matches(msg, m.formKeys.submit):
		return m.submitForm()
	case key.Matches(msg, m.formKeys.nextField):
		return m, m.form.focusField(m.form.focus + 1)
	case key.Matches(msg, m.formKeys.prevField):
		return m, m.form.focusField(m.form.focus - 1)
	}

	if m.form.focus == formFieldStatus {
		n := len(domain.Statuses())
		switch {
		case key.Matches(msg, m.formKeys.cycleLeft):
			m.form.statusIdx = (m.form.statusIdx - 1 + n) % n
			return m, nil
		case key.Matches(msg, m.formKeys.cycleRight):
			m.form.statusIdx = (m.form.statusIdx + 1) % n
			return m, nil
		case msg.String() == "enter":
			return m.submitForm()
		}
		return m, nil
	}

	if msg.String() == "enter" {
		if m.form.focus == formFieldTitle {
			return m.submitForm()
		}
		return m, m.form.focusField(m.form.focus + 1)
	}
	return m.updateFocusedInput(msg)
}

// updateFocusedInput forwards msg to the focused text input.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form.focus < 0 || m.form.focus >= len(m.form.inputs) {
		return m, nil
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	if m.form.err != "" && m.form.focus == formFieldTitle {
		m.form.err = ""
	}
	return m, cmd
}

// submitForm creates or updates a task from the form fields. The form stays
// open until the controller reports success.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.form.inputs[formFieldTitle].Value())
	if title == "" {
		m.form.err = "title is required"
		return m, m.form.focusField(formFieldTitle)
	}
	m.form.err = ""
	description := strings.TrimSpace(m.form.inputs[formFieldDescription].Value())
	status := m.form.status()

	if m.form.editing == nil {
		draft := domain.TaskDraft{Title: title, Description: description, Status: status}
		m.status = "adding..."
		return m, m.runOp("create", "", func(ctx context.Context) error {
			_, err := m.board.Create(ctx, draft)
			return err
		})
	}

	task := *m.form.editing
	task.Title = title
	task.Description = description
	task.Status = status
	m.status = "saving..."
	return m, m.runOp("update", task.ID, func(ctx context.Context) error {
		_, err := m.board.Update(ctx, task)
		return err
	})
}
