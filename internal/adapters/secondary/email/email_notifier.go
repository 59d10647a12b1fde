package email

import (
	"context"
	"log/slog"

	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// MockSMTPNotifier is a secondary adapter that mocks sending emails.
// It implements the ports.Notifier interface.
type MockSMTPNotifier struct {
	accountRepo ports.AccountRepository
	logger      *slog.Logger
}

// NewMockSMTPNotifier creates a new mock notifier.
// It requires an AccountRepository to fetch recipient details.
func NewMockSMTPNotifier(accountRepo ports.AccountRepository) ports.Notifier {
	return &MockSMTPNotifier{
		accountRepo: accountRepo,
		logger:      slog.Default().With("component", "email_notifier"),
	}
}

// NewMockSMTPNotifierWithLogger creates a new mock notifier with a custom logger.
func NewMockSMTPNotifierWithLogger(accountRepo ports.AccountRepository, logger *slog.Logger) ports.Notifier {
	return &MockSMTPNotifier{
		accountRepo: accountRepo,
		logger:      logger.With("component", "email_notifier"),
	}
}

// Notify logs the notification to the console instead of sending an email.
// It runs in a separate goroutine and should handle its own errors.
func (n *MockSMTPNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	// Use a new background context in case the original request context is cancelled.
	notifyCtx := context.Background()

	account, err := n.accountRepo.GetByID(notifyCtx, params.RecipientID)
	if err != nil {
		n.logger.Error("failed to get account for notification",
			"account_id", params.RecipientID,
			"error", err,
		)
		return
	}

	n.logger.Info("mock email sent",
		"to_name", account.FullName,
		"to_email", account.Email,
		"subject", params.Subject,
		"ticket_id", params.TicketID,
	)
}
