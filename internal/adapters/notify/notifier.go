package notify

// Package notify implements the identity lifecycle notification sink as a
// structured log emitter. Hosts that need real event fan-out can provide
// their own ports.Notifier.

import (
	"context"
	"log/slog"

	"github.com/openlms/anonauth/internal/domain/model"
	"github.com/openlms/anonauth/internal/ports"
)

var _ ports.Notifier = (*SlogNotifier)(nil)

// SlogNotifier emits lifecycle notifications to a structured logger.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a SlogNotifier. A nil logger falls back to
// slog.Default().
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) UserCreated(ctx context.Context, user *model.User) {
	n.logger.InfoContext(ctx, "user created",
		"user_id", user.ID,
		"username", user.Username,
		"auth_method", user.AuthMethod,
	)
}

func (n *SlogNotifier) UserUpdated(ctx context.Context, user *model.User) {
	n.logger.InfoContext(ctx, "user updated",
		"user_id", user.ID,
		"username", user.Username,
		"auth_method", user.AuthMethod,
	)
}
