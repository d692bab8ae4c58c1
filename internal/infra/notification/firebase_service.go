package notification

import (
	"context"
	"fmt"

	"cliptube/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type firebaseService struct {
	client *messaging.Client
}

// NewFirebaseService creates a new Firebase notification service instance
func NewFirebaseService(ctx context.Context, credentialsPath string) (service.NotificationService, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &firebaseService{
		client: client,
	}, nil
}

// SendSecurityAlert pushes an alert to the account's topic. Devices subscribe
// to their account topic at login, so every signed-in device receives it.
func (s *firebaseService) SendSecurityAlert(ctx context.Context, accountID string, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Topic: AccountTopic(accountID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	_, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send security alert: %w", err)
	}

	return nil
}

// AccountTopic returns the FCM topic name for an account.
func AccountTopic(accountID string) string {
	return "account-" + accountID
}
