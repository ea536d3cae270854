package board

import (
	"fmt"
	"strings"
)

// ReorderFailurePolicy selects what happens to an optimistic move whose
// persistence fails.
type ReorderFailurePolicy string

const (
	// ReorderKeep leaves the optimistic move in place.
	ReorderKeep ReorderFailurePolicy = "keep"
	// ReorderRevert puts the task back where it was.
	ReorderRevert ReorderFailurePolicy = "revert"
	// ReorderReload refetches the whole list from the API.
	ReorderReload ReorderFailurePolicy = "reload"
)

// ParseReorderFailurePolicy validates a configured policy name. Empty means keep.
func ParseReorderFailurePolicy(raw string) (ReorderFailurePolicy, error) {
	switch policy := ReorderFailurePolicy(strings.ToLower(strings.TrimSpace(raw))); policy {
	case "":
		return ReorderKeep, nil
	case ReorderKeep, ReorderRevert, ReorderReload:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown reorder failure policy %q", raw)
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReorderFailurePolicy sets how failed move persistence is handled.
func WithReorderFailurePolicy(p ReorderFailurePolicy) Option {
	return func(c *Controller) {
		if p != "" {
			c.reorderPolicy = p
		}
	}
}
