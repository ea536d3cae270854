package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the board-mode key bindings.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	addTask       key.Binding
	taskInfo      key.Binding
	editTask      key.Binding
	deleteTask    key.Binding
	moveTaskLeft  key.Binding
	moveTaskRight key.Binding
	moveTaskUp    key.Binding
	moveTaskDown  key.Binding
	yankTask      key.Binding
}

// formKeyMap holds the bindings active while the task form is open.
type formKeyMap struct {
	nextField  key.Binding
	prevField  key.Binding
	cycleLeft  key.Binding
	cycleRight key.Binding
	submit     key.Binding
	cancel     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:       key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new task")),
		taskInfo:      key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task info")),
		editTask:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete task")),
		moveTaskLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
		moveTaskRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
		moveTaskUp:    key.NewBinding(key.WithKeys("K", "shift+k"), key.WithHelp("K", "move task up")),
		moveTaskDown:  key.NewBinding(key.WithKeys("J", "shift+j"), key.WithHelp("J", "move task down")),
		yankTask:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
	}
}

func newFormKeyMap() formKeyMap {
	return formKeyMap{
		nextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		cycleLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "status")),
		cycleRight: key.NewBinding(key.WithKeys("right", "l")),
		submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.editTask, k.taskInfo, k.deleteTask, k.moveTaskLeft, k.moveTaskRight, k.toggleHelp, k.quit,
	}
}

// FullHelp returns the grouped bindings shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.editTask, k.taskInfo, k.deleteTask, k.yankTask, k.reload, k.toggleHelp, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.moveTaskLeft, k.moveTaskRight, k.moveTaskUp, k.moveTaskDown},
	}
}

// ShortHelp returns the bindings shown under the form.
func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextField, k.cycleLeft, k.submit, k.cancel}
}

// FullHelp returns the form bindings as a single group.
func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
