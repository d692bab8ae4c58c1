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

const (
	mediaCategoryAvatars = "avatars"
	mediaCategoryCovers  = "covers"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager  repository.TransactionManager
	hasher     service.PasswordHasher
	mediaStore service.MediaStore
	publisher  service.EventPublisher
	qrSvc      service.QRCodeService
	logger     *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	mediaStore service.MediaStore,
	publisher service.EventPublisher,
	qrSvc service.QRCodeService,
	logger *slog.Logger,
) usecase.AccountUsecase {
	return &accountService{
		txManager:  txManager,
		hasher:     hasher,
		mediaStore: mediaStore,
		publisher:  publisher,
		qrSvc:      qrSvc,
		logger:     logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account. The uniqueness check runs before any media
// upload so a duplicate username or email never costs a round-trip to the
// media host.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	username := entity.NormalizeIdentifier(input.Username)
	email := entity.NormalizeIdentifier(input.Email)

	if input.Avatar == nil {
		return nil, domainerrors.ErrMediaFileMissing.WrapMessage("avatar file is required")
	}

	srv.log(ctx).Info("Registering account", slog.String("username", username))

	exists, err := srv.checkExisting(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Wrap(domainerrors.ErrAccountAlreadyExists, "duplicate username or email")
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("hash password during registration")
	}

	avatarURL, err := srv.mediaStore.Upload(ctx, mediaCategoryAvatars, input.Avatar)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upload avatar")
	}

	var coverURL string
	if input.CoverImage != nil {
		coverURL, err = srv.mediaStore.Upload(ctx, mediaCategoryCovers, input.CoverImage)
		if err != nil {
			return nil, errors.Wrap(err, "failed to upload cover image")
		}
	}

	account := &entity.Account{
		Username:      username,
		Email:         email,
		FullName:      input.FullName,
		PasswordHash:  passwordHash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.AccountRepo().Create(ctx, account)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create account", slog.Any("error", err), slog.String("username", username))

		return nil, err
	}

	srv.publishEvent(ctx, constants.EventAccountRegistered, account)
	srv.log(ctx).Info("Account registered", slog.Any("account_id", account.ID))

	return &usecase.RegisterOutput{Account: account.Sanitized()}, nil
}

// GetAccount returns the sanitized view of an account.
func (srv *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*entity.AccountView, error) {
	var view *entity.AccountView

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		account, err := repoFactory.AccountRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrAccountNotFound, "account lookup")
			}

			return errors.Wrap(err, "failed to find account")
		}

		view = account.Sanitized()

		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// UpdateDetails patches the full name and/or email of an account.
func (srv *accountService) UpdateDetails(ctx context.Context, id uuid.UUID, input *usecase.UpdateDetailsInput) (*entity.AccountView, error) {
	if input.FullName == "" && input.Email == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("at least one of fullName or email is required")
	}

	var view *entity.AccountView

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrAccountNotFound, "account lookup")
			}

			return errors.Wrap(err, "failed to find account")
		}

		if input.FullName != "" {
			account.FullName = input.FullName
		}
		if input.Email != "" {
			account.Email = entity.NormalizeIdentifier(input.Email)
		}

		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to update account details")
		}

		view = account.Sanitized()

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update account details", slog.Any("error", err), slog.Any("account_id", id))

		return nil, err
	}

	srv.log(ctx).Info("Account details updated", slog.Any("account_id", id))

	return view, nil
}

// UpdateAvatar uploads a replacement avatar and persists its URL.
func (srv *accountService) UpdateAvatar(ctx context.Context, id uuid.UUID, upload *service.MediaUpload) (*entity.AccountView, error) {
	return srv.updateImage(ctx, id, upload, mediaCategoryAvatars)
}

// UpdateCoverImage uploads a replacement cover image and persists its URL.
func (srv *accountService) UpdateCoverImage(ctx context.Context, id uuid.UUID, upload *service.MediaUpload) (*entity.AccountView, error) {
	return srv.updateImage(ctx, id, upload, mediaCategoryCovers)
}

func (srv *accountService) updateImage(ctx context.Context, id uuid.UUID, upload *service.MediaUpload, category string) (*entity.AccountView, error) {
	if upload == nil {
		return nil, domainerrors.ErrMediaFileMissing.WrapMessage("image file is required")
	}

	url, err := srv.mediaStore.Upload(ctx, category, upload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upload image")
	}

	var view *entity.AccountView

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errors.Wrap(domainerrors.ErrAccountNotFound, "account lookup")
			}

			return errors.Wrap(err, "failed to find account")
		}

		switch category {
		case mediaCategoryAvatars:
			account.AvatarURL = url
		case mediaCategoryCovers:
			account.CoverImageURL = url
		}

		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to persist image URL")
		}

		view = account.Sanitized()

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update account image",
			slog.Any("error", err),
			slog.Any("account_id", id),
			slog.String("category", category),
		)

		return nil, err
	}

	return view, nil
}

// ProfileQR renders a QR code PNG linking to the account's public profile.
func (srv *accountService) ProfileQR(ctx context.Context, id uuid.UUID) ([]byte, error) {
	view, err := srv.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrSvc.GenerateProfileQR(view.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate profile QR")
	}

	return png, nil
}

// checkExisting runs the pre-registration uniqueness probe.
func (srv *accountService) checkExisting(ctx context.Context, username, email string) (bool, error) {
	var exists bool

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		exists, err = repoFactory.AccountRepo().ExistsByUsernameOrEmail(ctx, username, email)

		return errors.Wrap(err, "failed to check existing accounts")
	})

	return exists, err
}

// publishEvent emits an account event. Failures are logged and swallowed:
// event delivery never fails the originating operation.
func (srv *accountService) publishEvent(ctx context.Context, eventType string, account *entity.Account) {
	if srv.publisher == nil {
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
