package tui

import (
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/hylla/taskifyx/internal/board"
)

// Inbox collects controller notifications raised off the UI goroutine until
// the model drains them into visible toasts.
type Inbox struct {
	mu      sync.Mutex
	pending []notice
}

type notice struct {
	kind    board.NoticeKind
	message string
}

// NewInbox constructs an empty notification inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Notify implements board.Notifier.
func (i *Inbox) Notify(kind board.NoticeKind, message string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pending = append(i.pending, notice{kind: kind, message: message})
}

func (i *Inbox) drain() []notice {
	if i == nil {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.pending
	i.pending = nil
	return out
}

// toast is one visible notification.
type toast struct {
	id      int
	kind    board.NoticeKind
	message string
}

// toastExpiredMsg removes one toast once its display time has passed.
type toastExpiredMsg struct {
	id int
}

// maxToasts bounds the visible stack; the oldest are dropped first.
const maxToasts = 4

// pushToasts drains the inbox and schedules expiry for every new toast.
func (m *Model) pushToasts() tea.Cmd {
	notices := m.inbox.drain()
	if len(notices) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(notices))
	for _, n := range notices {
		m.nextToastID++
		t := toast{id: m.nextToastID, kind: n.kind, message: n.message}
		m.toasts = append(m.toasts, t)
		cmds = append(cmds, expireToast(t.id, m.toastDuration))
	}
	if over := len(m.toasts) - maxToasts; over > 0 {
		m.toasts = m.toasts[over:]
	}
	return tea.Batch(cmds...)
}

func expireToast(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}
