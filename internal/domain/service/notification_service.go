package service

import "context"

// NotificationService defines the interface for pushing security alerts to
// an account's subscribed devices. Delivery is best-effort.
type NotificationService interface {
	// SendSecurityAlert pushes an alert to the topic of the given account.
	SendSecurityAlert(ctx context.Context, accountID string, title, body string, data map[string]string) error
}
