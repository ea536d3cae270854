package tui

import (
	"time"

	"github.com/atotto/clipboard"
)

// Option configures a Model.
type Option func(*Model)

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter func(string) error

// DefaultToastDuration matches the board's notification auto-close delay.
const DefaultToastDuration = 3 * time.Second

// WithToastDuration sets how long notifications stay on screen.
func WithToastDuration(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.toastDuration = d
		}
	}
}

// WithShowDescription toggles the description preview under card titles.
func WithShowDescription(show bool) Option {
	return func(m *Model) {
		m.showDescription = show
	}
}

// WithClipboard replaces the clipboard writer used by the yank key.
func WithClipboard(w ClipboardWriter) Option {
	return func(m *Model) {
		if w != nil {
			m.clipboard = w
		}
	}
}

// WithTitle sets the header title, typically the API base URL.
func WithTitle(title string) Option {
	return func(m *Model) {
		m.subtitle = title
	}
}

func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}
