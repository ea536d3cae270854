// Package tui renders the task board in the terminal and routes key presses to
// the board controller.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/hylla/taskifyx/internal/board"
	"github.com/hylla/taskifyx/internal/domain"
)

// inputMode selects which surface receives key presses.
type inputMode int

const (
	modeNone inputMode = iota
	modeForm
	modeTaskInfo
)

// Model is the bubbletea model for the board.
type Model struct {
	board *board.Controller
	inbox *Inbox

	ready  bool
	width  int
	height int

	status   string
	subtitle string
	loaded   bool

	help     help.Model
	keys     keyMap
	formKeys formKeyMap
	spinner  spinner.Model
	md       *descriptionView

	columns        []domain.Column
	selectedColumn int
	selectedTask   int

	// inFlight counts commands launched by this model that have not reported back.
	inFlight int

	mode       inputMode
	form       taskForm
	infoTaskID string

	toasts        []toast
	nextToastID   int
	toastDuration time.Duration

	showDescription bool
	clipboard       ClipboardWriter
}

// boardSyncedMsg reports that one controller operation finished.
type boardSyncedMsg struct {
	op          string
	err         error
	focusTaskID string
}

// NewModel constructs a board model. The inbox must be the Notifier the
// controller was built with so notifications surface as toasts.
func NewModel(ctrl *board.Controller, inbox *Inbox, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	if inbox == nil {
		inbox = NewInbox()
	}
	m := Model{
		board:           ctrl,
		inbox:           inbox,
		status:          "loading...",
		help:            h,
		keys:            newKeyMap(),
		formKeys:        newFormKeyMap(),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
		md:              newDescriptionView(),
		columns:         domain.Partition(nil),
		toastDuration:   DefaultToastDuration,
		showDescription: true,
		clipboard:       defaultClipboard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// loadRequestedMsg asks the model to start a full load.
type loadRequestedMsg struct{}

// Init requests the first load. The load starts in Update so its in-flight
// count lands on the model the program keeps.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return loadRequestedMsg{} }
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.form.resize(m.modalWidth())
		return m, nil

	case loadRequestedMsg:
		return m, m.loadCmd()

	case boardSyncedMsg:
		m.inFlight = max(0, m.inFlight-1)
		if msg.op == "load" {
			m.loaded = true
		}
		m.syncFromBoard(msg.focusTaskID)
		if m.mode == modeForm && !m.board.Form().Open {
			m.closeForm()
		}
		switch {
		case msg.err != nil:
			m.status = msg.op + " failed"
		case m.busy():
			m.status = "saving..."
		default:
			m.status = "ready"
		}
		return m, m.pushToasts()

	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		switch m.mode {
		case modeForm:
			return m.handleFormKey(msg)
		case modeTaskInfo:
			return m.handleTaskInfoKey(msg)
		default:
			return m.handleBoardKey(msg)
		}

	default:
		if m.mode == modeForm {
			return m.updateFocusedInput(msg)
		}
		return m, nil
	}
}

// handleBoardKey routes key presses while no modal is open.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll && msg.String() == "esc" {
		m.help.ShowAll = false
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.moveLeft):
		m.selectColumn(m.selectedColumn - 1)
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.selectColumn(m.selectedColumn + 1)
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask = clamp(m.selectedTask-1, 0, max(0, len(m.currentColumnTasks())-1))
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask = clamp(m.selectedTask+1, 0, max(0, len(m.currentColumnTasks())-1))
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		return m, m.openForm(nil)
	}

	task, ok := m.selectedTaskValue()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.editTask):
		return m, m.openForm(&task)
	case key.Matches(msg, m.keys.taskInfo):
		m.mode = modeTaskInfo
		m.infoTaskID = task.ID
		m.status = "task info"
		return m, nil
	case key.Matches(msg, m.keys.deleteTask):
		m.status = "deleting..."
		return m, m.runOp("delete", "", func(ctx context.Context) error {
			return m.board.Delete(ctx, task.ID)
		})
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.dragSelected(m.selectedColumn-1, -1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.dragSelected(m.selectedColumn+1, -1)
	case key.Matches(msg, m.keys.moveTaskUp):
		if m.selectedTask == 0 {
			return m, nil
		}
		return m.dragSelected(m.selectedColumn, m.selectedTask-1)
	case key.Matches(msg, m.keys.moveTaskDown):
		if m.selectedTask >= len(m.currentColumnTasks())-1 {
			return m, nil
		}
		return m.dragSelected(m.selectedColumn, m.selectedTask+1)
	case key.Matches(msg, m.keys.yankTask):
		return m.yank(task), nil
	}
	return m, nil
}

// handleTaskInfoKey routes key presses while the info modal is open.
func (m Model) handleTaskInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	task, ok := m.board.Task(m.infoTaskID)
	if !ok {
		m.mode = modeNone
		m.infoTaskID = ""
		m.status = "task info unavailable"
		return m, nil
	}
	switch {
	case msg.String() == "esc", key.Matches(msg, m.keys.taskInfo):
		m.mode = modeNone
		m.infoTaskID = ""
		m.status = "ready"
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		m.infoTaskID = ""
		return m, m.openForm(&task)
	case key.Matches(msg, m.keys.yankTask):
		return m.yank(task), nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

// dragSelected turns a keyboard move into a drag result. A negative
// destination index appends to the end of the destination column.
func (m Model) dragSelected(destColumn, destIndex int) (tea.Model, tea.Cmd) {
	statuses := domain.Statuses()
	if destColumn < 0 || destColumn >= len(statuses) {
		return m, nil
	}
	source := domain.Position{Column: statuses[m.selectedColumn], Index: m.selectedTask}
	dest := domain.Position{Column: statuses[destColumn], Index: destIndex}
	if destIndex < 0 {
		dest.Index = len(domain.TasksWithStatus(m.board.Tasks(), dest.Column))
	}

	pending, ok := m.board.StageReorder(domain.DragResult{Source: source, Destination: &dest})
	if !ok {
		return m, nil
	}
	moved := pending.Task()
	m.syncFromBoard(moved.ID)
	m.status = "moving " + truncate(moved.Title, 32) + "..."
	return m, m.runOp("move", moved.ID, pending.Persist)
}

func (m Model) yank(task domain.Task) Model {
	text := fmt.Sprintf("%s\t%s", task.ID, task.Title)
	if err := m.clipboard(text); err != nil {
		m.status = "copy failed: " + err.Error()
		return m
	}
	m.status = "copied " + truncate(task.Title, 32)
	return m
}

// loadCmd fetches the full list from the API.
func (m *Model) loadCmd() tea.Cmd {
	return m.runOp("load", "", m.board.Load)
}

// runOp runs one controller operation off the UI goroutine and keeps the
// spinner ticking while it is in flight.
func (m *Model) runOp(op, focusTaskID string, fn func(context.Context) error) tea.Cmd {
	startSpinner := !m.busy()
	m.inFlight++
	run := func() tea.Msg {
		return boardSyncedMsg{op: op, err: fn(context.Background()), focusTaskID: focusTaskID}
	}
	if !startSpinner {
		return run
	}
	return tea.Batch(run, m.spinner.Tick)
}

// busy reports whether any operation is pending, locally or in the controller.
func (m Model) busy() bool {
	return m.inFlight > 0 || m.board.Busy()
}

// syncFromBoard refreshes the column snapshot and keeps the selection valid.
// A non-empty focus id moves the selection onto that task.
func (m *Model) syncFromBoard(focusTaskID string) {
	m.columns = m.board.Columns()
	if focusTaskID != "" {
		if pos, ok := domain.PositionOf(m.board.Tasks(), focusTaskID); ok {
			if col := domain.ColumnIndex(pos.Column); col >= 0 {
				m.selectedColumn = col
				m.selectedTask = pos.Index
			}
		}
	}
	m.selectColumn(m.selectedColumn)
}

// selectColumn moves the column cursor and clamps the task cursor.
func (m *Model) selectColumn(idx int) {
	m.selectedColumn = clamp(idx, 0, max(0, len(m.columns)-1))
	m.selectedTask = clamp(m.selectedTask, 0, max(0, len(m.currentColumnTasks())-1))
}

func (m Model) currentColumnTasks() []domain.Task {
	if m.selectedColumn < 0 || m.selectedColumn >= len(m.columns) {
		return nil
	}
	return m.columns[m.selectedColumn].Tasks
}

func (m Model) selectedTaskValue() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if m.selectedTask < 0 || m.selectedTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.selectedTask], true
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	return min(max(v, minV), maxV)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit == 1 {
		return string(rs[:1])
	}
	return string(rs[:limit-1]) + "…"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
