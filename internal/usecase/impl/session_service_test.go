package impl

import (
	"context"
	"testing"

	"cliptube/internal/domain/constants"
	"cliptube/internal/domain/entity"
	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixtures struct {
	service   usecase.SessionUsecase
	repo      *fakeAccountRepo
	publisher *fakePublisher
	notifier  *fakeNotifier
}

func createTestSessionService(t *testing.T) sessionFixtures {
	t.Helper()

	repo := newFakeAccountRepo()
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}

	service := NewSessionService(
		&fakeTxManager{factory: &fakeRepoFactory{repo: repo}},
		newTestHasher(),
		newTestTokenService(t),
		publisher,
		notifier,
		newDiscardLogger(),
	)

	return sessionFixtures{
		service:   service,
		repo:      repo,
		publisher: publisher,
		notifier:  notifier,
	}
}

// seedAccount stores an account with the given password and returns it.
func (fx sessionFixtures) seedAccount(t *testing.T, username, email, password string) *entity.Account {
	t.Helper()

	hash, err := newTestHasher().Hash(password)
	require.NoError(t, err)

	account := &entity.Account{
		Username:     username,
		Email:        email,
		FullName:     "Test Person",
		PasswordHash: hash,
		AvatarURL:    "https://media.test/avatars/a.png",
	}
	require.NoError(t, fx.repo.Create(context.Background(), account))

	return account
}

func TestSessionService_Login_Success(t *testing.T) {
	fx := createTestSessionService(t)
	seeded := fx.seedAccount(t, "janedoe", "jane@example.com", "Password123!")

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "Password123!",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, output.Tokens.AccessToken)
	assert.NotEmpty(t, output.Tokens.RefreshToken)
	assert.Equal(t, seeded.ID, output.Account.ID)

	// The refresh token is persisted on the account row.
	stored := fx.repo.stored(seeded.ID)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, output.Tokens.RefreshToken, *stored.RefreshToken)

	assert.Contains(t, fx.publisher.eventTypes(), constants.EventAccountLoggedIn)
}

func TestSessionService_Login_ByEmail(t *testing.T) {
	fx := createTestSessionService(t)
	fx.seedAccount(t, "janedoe", "jane@example.com", "Password123!")

	// Identifier is normalized, so mixed case and padding still match.
	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "  Jane@Example.com ",
		Password:   "Password123!",
	})

	require.NoError(t, err)
	assert.Equal(t, "janedoe", output.Account.Username)
}

func TestSessionService_Login_UnknownIdentifier(t *testing.T) {
	fx := createTestSessionService(t)

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "ghost",
		Password:   "whatever",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
}

func TestSessionService_Login_WrongPassword(t *testing.T) {
	fx := createTestSessionService(t)
	fx.seedAccount(t, "janedoe", "jane@example.com", "Password123!")

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "WrongPassword!",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestSessionService_Login_SanitizedAccount(t *testing.T) {
	fx := createTestSessionService(t)
	fx.seedAccount(t, "janedoe", "jane@example.com", "Password123!")

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "Password123!",
	})

	require.NoError(t, err)
	// The sanitized view has no place to carry hash or refresh token at all;
	// spot-check the visible fields instead.
	assert.Equal(t, "janedoe", output.Account.Username)
	assert.Equal(t, "jane@example.com", output.Account.Email)
	assert.NotEmpty(t, output.Account.AvatarURL)
}

func TestSessionService_Refresh_RotatesToken(t *testing.T) {
	fx := createTestSessionService(t)
	seeded := fx.seedAccount(t, "janedoe", "jane@example.com", "Password123!")

	login, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "Password123!",
	})
	require.NoError(t, err)

	refreshed, err := fx.service.Refresh(context.Background(), login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Tokens.AccessToken)
	assert.NotEqual(t, login.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	// Rotation persisted the new token.
	stored := fx.repo.stored(seeded.ID)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, refreshed.Tokens.RefreshToken, *stored.RefreshToken)
}

func TestSessionService_Refresh_ReuseOfSupersededToken(t *testing.T) {
	fx := createTestSessionService(t)
	fx.seedAccount(t, "janedoe", "jane@example.com", "Password123!")

	login, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "Password123!",
	})
	require.NoError(t, err)

	_, err = fx.service.Refresh(context.Background(), login.Tokens.RefreshToken)
	require.NoError(t, err)

	// The first token was rotated away; presenting it again is rejected.
	output, err := fx.service.Refresh(context.Background(), login.Tokens.RefreshToken)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenExpired))
}

func TestSessionService_Refresh_AfterLogout(t *testing.T) {
	fx := createTestSessionService(t)
	seeded := fx.seedAccount(t, "janedoe", "jane@example.com", "Password123!")

	login, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "Password123!",
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.Logout(context.Background(), seeded.ID))

	output, err := fx.service.Refresh(context.Background(), login.Tokens.RefreshToken)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenExpired))
}

func TestSessionService_Refresh_GarbageToken(t *testing.T) {
	fx := createTestSessionService(t)

	output, err := fx.service.Refresh(context.Background(), "not-a-jwt")
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))

	output, err = fx.service.Refresh(context.Background(), "")
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))
}

func TestSessionService_Logout_ClearsStoredToken(t *testing.T) {
	fx := createTestSessionService(t)
	seeded := fx.seedAccount(t, "janedoe", "jane@example.com", "Password123!")

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "Password123!",
	})
	require.NoError(t, err)
	require.NotNil(t, fx.repo.stored(seeded.ID).RefreshToken)

	require.NoError(t, fx.service.Logout(context.Background(), seeded.ID))
	assert.Nil(t, fx.repo.stored(seeded.ID).RefreshToken)
}

func TestSessionService_Logout_UnknownAccount(t *testing.T) {
	fx := createTestSessionService(t)

	err := fx.service.Logout(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
}

func TestSessionService_ChangePassword_Success(t *testing.T) {
	fx := createTestSessionService(t)
	seeded := fx.seedAccount(t, "janedoe", "jane@example.com", "OldPassword1!")

	login, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "OldPassword1!",
	})
	require.NoError(t, err)

	err = fx.service.ChangePassword(context.Background(), seeded.ID, &usecase.ChangePasswordInput{
		OldPassword:     "OldPassword1!",
		NewPassword:     "NewPassword2!",
		ConfirmPassword: "NewPassword2!",
	})
	require.NoError(t, err)

	// Old password no longer works, the new one does.
	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "OldPassword1!",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "janedoe",
		Password:   "NewPassword2!",
	})
	assert.NoError(t, err)

	// The change revoked the session that was live before it.
	_, err = fx.service.Refresh(context.Background(), login.Tokens.RefreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenExpired))

	// Security alert and event went out.
	assert.Contains(t, fx.notifier.alerts, seeded.ID.String())
	assert.Contains(t, fx.publisher.eventTypes(), constants.EventAccountPasswordChanged)
}

func TestSessionService_ChangePassword_ConfirmMismatch(t *testing.T) {
	fx := createTestSessionService(t)
	seeded := fx.seedAccount(t, "janedoe", "jane@example.com", "OldPassword1!")
	hashBefore := fx.repo.stored(seeded.ID).PasswordHash

	err := fx.service.ChangePassword(context.Background(), seeded.ID, &usecase.ChangePasswordInput{
		OldPassword:     "OldPassword1!",
		NewPassword:     "NewPassword2!",
		ConfirmPassword: "SomethingElse3!",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	// No mutation happened.
	assert.Equal(t, hashBefore, fx.repo.stored(seeded.ID).PasswordHash)
}

func TestSessionService_ChangePassword_WrongOldPassword(t *testing.T) {
	fx := createTestSessionService(t)
	seeded := fx.seedAccount(t, "janedoe", "jane@example.com", "OldPassword1!")

	err := fx.service.ChangePassword(context.Background(), seeded.ID, &usecase.ChangePasswordInput{
		OldPassword:     "NotTheOldOne!",
		NewPassword:     "NewPassword2!",
		ConfirmPassword: "NewPassword2!",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}
