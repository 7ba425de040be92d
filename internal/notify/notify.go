// Package notify sends desktop notifications.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// notifyFunc matches beeep.Notify.
type notifyFunc func(title, message string, icon any) error

// Notifier sends best-effort desktop notifications when enabled.
type Notifier struct {
	enabled bool
	send    notifyFunc
	logger  *slog.Logger
}

// New creates a notifier. A disabled notifier drops every message.
func New(enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{enabled: enabled, send: beeep.Notify, logger: logger}
}

// Notify shows title and message using the platform notification service.
func (n *Notifier) Notify(title, message string) error {
	if !n.enabled {
		return nil
	}
	n.logger.Debug("sending notification", "title", title, "message", message)
	// Empty icon lets beeep pick the platform default.
	if err := n.send(title, message, ""); err != nil {
		n.logger.Warn("notification failed", "error", err)
		return err
	}
	return nil
}
