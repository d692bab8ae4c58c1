// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "cliptube/internal/delivery/context"
	"cliptube/internal/domain/constants"
	"cliptube/internal/domain/entity"
	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/repository"
	"cliptube/internal/domain/service"
	"cliptube/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	tokenSvc  service.TokenService
	publisher service.EventPublisher
	notifier  service.NotificationService
	logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
// The notifier may be nil when Firebase is not configured.
func NewSessionService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	tokenSvc service.TokenService,
	publisher service.EventPublisher,
	notifier service.NotificationService,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		txManager: txManager,
		hasher:    hasher,
		tokenSvc:  tokenSvc,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login authenticates by username or email plus password, issues a fresh
// token pair and persists the refresh token as the account's single live session.
func (srv *sessionService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.SessionOutput, error) {
	identifier := entity.NormalizeIdentifier(input.Identifier)
	srv.log(ctx).Info("Login attempt", slog.String("identifier", identifier))

	var output *usecase.SessionOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByIdentifier(ctx, identifier)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrAccountNotFound, "no account for identifier")
			}

			return errors.Wrap(err, "failed to find account")
		}

		if !srv.hasher.Check(input.Password, account.PasswordHash) {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
		}

		tokens, err := srv.issueAndPersist(ctx, accountRepo, account)
		if err != nil {
			return err
		}

		output = &usecase.SessionOutput{
			Tokens:  *tokens,
			Account: account.Sanitized(),
		}

		srv.publishEvent(ctx, constants.EventAccountLoggedIn, account)

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("identifier", identifier), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("account_id", output.Account.ID))

	return output, nil
}

// Logout clears the stored refresh token, revoking the account's session.
func (srv *sessionService) Logout(ctx context.Context, accountID uuid.UUID) error {
	srv.log(ctx).Info("Logout", slog.Any("account_id", accountID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.AccountRepo().UpdateRefreshToken(ctx, accountID, nil); err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrAccountNotFound, "logout target missing")
			}

			return errors.Wrap(err, "failed to clear refresh token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Logout failed", slog.Any("error", err), slog.Any("account_id", accountID))

		return err
	}

	return nil
}

// Refresh rotates a refresh token. The presented token must verify against
// the refresh secret AND be strictly equal to the token stored on the account
// row; anything else means it was revoked or already rotated away.
func (srv *sessionService) Refresh(ctx context.Context, presentedToken string) (*usecase.SessionOutput, error) {
	if presentedToken == "" {
		return nil, errors.Wrap(domainerrors.ErrUnauthorized, "refresh token is missing")
	}

	claims, err := srv.tokenSvc.VerifyRefreshToken(presentedToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh token verification failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrUnauthorized, "invalid refresh token")
	}

	var output *usecase.SessionOutput

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, claims.AccountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrUnauthorized, "account for refresh token is gone")
			}

			return errors.Wrap(err, "failed to find account")
		}

		// Strict equality against the stored token is the revocation check:
		// a rotated-away or cleared token no longer matches.
		if account.RefreshToken == nil || *account.RefreshToken != presentedToken {
			return errors.Wrap(domainerrors.ErrRefreshTokenExpired, "presented token is not the live session token")
		}

		tokens, err := srv.issueAndPersist(ctx, accountRepo, account)
		if err != nil {
			return err
		}

		output = &usecase.SessionOutput{
			Tokens:  *tokens,
			Account: account.Sanitized(),
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Refresh failed", slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Refresh token rotated", slog.Any("account_id", output.Account.ID))

	return output, nil
}

// ChangePassword verifies the old password, stores the new hash and revokes
// the live session so every device has to log in again.
func (srv *sessionService) ChangePassword(ctx context.Context, accountID uuid.UUID, input *usecase.ChangePasswordInput) error {
	// Confirmation mismatch fails before any state is read or written.
	if input.NewPassword != input.ConfirmPassword {
		return domainerrors.ErrValidationFailed.WithDetails("new password and confirmation do not match")
	}

	srv.log(ctx).Info("Password change", slog.Any("account_id", accountID))

	var account *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		found, err := accountRepo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrAccountNotFound, "account lookup")
			}

			return errors.Wrap(err, "failed to find account")
		}

		if !srv.hasher.Check(input.OldPassword, found.PasswordHash) {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "old password mismatch")
		}

		newHash, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return domainerrors.ErrPasswordHashFailed.WrapMessage("hash new password")
		}

		found.PasswordHash = newHash
		found.RefreshToken = nil

		if err := accountRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to persist new password")
		}

		account = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Password change failed", slog.Any("error", err), slog.Any("account_id", accountID))

		return err
	}

	srv.publishEvent(ctx, constants.EventAccountPasswordChanged, account)
	srv.sendSecurityAlert(ctx, account)
	srv.log(ctx).Info("Password changed", slog.Any("account_id", accountID))

	return nil
}

// issueAndPersist creates a fresh token pair and stores the refresh token on
// the account row, superseding whatever session was live before.
func (srv *sessionService) issueAndPersist(ctx context.Context, accountRepo repository.AccountRepository, account *entity.Account) (*usecase.TokenPair, error) {
	accessToken, err := srv.tokenSvc.IssueAccessToken(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := srv.tokenSvc.IssueRefreshToken(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	if err := accountRepo.UpdateRefreshToken(ctx, account.ID, &refreshToken); err != nil {
		return nil, errors.Wrap(err, "failed to persist refresh token")
	}
	account.RefreshToken = &refreshToken

	return &usecase.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// publishEvent emits an account event. Failures are logged and swallowed.
func (srv *sessionService) publishEvent(ctx context.Context, eventType string, account *entity.Account) {
	if srv.publisher == nil || account == nil {
		return
	}

	event := &service.AccountEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       eventType,
		AccountID:  account.ID.String(),
		Username:   account.Username,
		OccurredAt: time.Now().UTC(),
	}

	if err := srv.publisher.PublishAccountEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account event",
			slog.String("event_type", eventType),
			slog.Any("error", err),
		)
	}
}

// sendSecurityAlert notifies the account's devices about the password change.
// Best-effort: a push failure never fails the password change itself.
func (srv *sessionService) sendSecurityAlert(ctx context.Context, account *entity.Account) {
	if srv.notifier == nil || account == nil {
		return
	}

	err := srv.notifier.SendSecurityAlert(ctx, account.ID.String(),
		"Password changed",
		"The password of your account was just changed. If this wasn't you, contact support immediately.",
		map[string]string{"event": constants.EventAccountPasswordChanged},
	)
	if err != nil {
		srv.log(ctx).Warn("Failed to send security alert", slog.Any("error", err), slog.Any("account_id", account.ID))
	}
}
