package notifier

import "github.com/fcnordhavn/matchday/internal/payload"

// Notifier defines a high-level interface for announcing match events.
// This decouples the rest of the application from the specific
// notification provider (e.g., Slack). Implementations receive the
// already-sanitized outbound payload, never raw row input.
type Notifier interface {
	// SendEventNotification posts a live-ticker message for one
	// accepted event. It returns the provider message timestamp.
	SendEventNotification(p payload.Payload, dryRun bool) (string, error)
}
