package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
)

// minDescriptionWidth keeps glamour from wrapping a narrow modal to one word per line.
const minDescriptionWidth = 24

// descriptionView turns task descriptions into styled terminal text for the
// info modal. One glamour renderer is kept per wrap width.
type descriptionView struct {
	style string
	wrap  int
	term  *glamour.TermRenderer
}

func newDescriptionView() *descriptionView {
	return &descriptionView{style: "dark"}
}

func (d *descriptionView) render(description string, width int) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	wrap := max(width, minDescriptionWidth)
	if err := d.ensure(wrap); err != nil {
		return plainDescription(description, wrap)
	}
	out, err := d.term.Render(description)
	if err != nil {
		return plainDescription(description, wrap)
	}
	return strings.Trim(out, "\n")
}

func (d *descriptionView) ensure(wrap int) error {
	if d.term != nil && d.wrap == wrap {
		return nil
	}
	term, err := glamour.NewTermRenderer(glamour.WithStandardStyle(d.style), glamour.WithWordWrap(wrap))
	if err != nil {
		return err
	}
	d.term, d.wrap = term, wrap
	return nil
}

// plainDescription wraps raw markdown when glamour cannot render it.
func plainDescription(description string, wrap int) string {
	return lipgloss.NewStyle().Width(wrap).Render(description)
}
