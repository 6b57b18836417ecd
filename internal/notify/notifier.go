// Package notify delivers reminder messages to users over an out-of-band
// channel. The service core only sees the Notifier interface.
package notify

import (
	"context"
	"log/slog"

	"taskpoints/internal/model"
)

// Notifier sends a formatted message to a user. Implementations decide what
// "unreachable" means; returning nil for a user with no linked channel is
// acceptable.
type Notifier interface {
	Notify(ctx context.Context, user *model.User, text string) error
}

// LogNotifier writes messages to the process log. Used when no delivery
// channel is configured, and in tests.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, user *model.User, text string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("reminder", slog.Uint64("user", uint64(user.ID)), slog.String("message", text))
	return nil
}
