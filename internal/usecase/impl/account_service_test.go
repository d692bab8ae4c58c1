package impl

import (
	"context"
	"testing"

	"cliptube/internal/domain/constants"
	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQRService struct {
	usernames []string
}

func (s *fakeQRService) GenerateProfileQR(username string) ([]byte, error) {
	s.usernames = append(s.usernames, username)

	return []byte("png-bytes"), nil
}

type accountFixtures struct {
	service   usecase.AccountUsecase
	repo      *fakeAccountRepo
	media     *fakeMediaStore
	publisher *fakePublisher
	qr        *fakeQRService
}

func createTestAccountService(t *testing.T) accountFixtures {
	t.Helper()

	repo := newFakeAccountRepo()
	media := &fakeMediaStore{}
	publisher := &fakePublisher{}
	qr := &fakeQRService{}

	service := NewAccountService(
		&fakeTxManager{factory: &fakeRepoFactory{repo: repo}},
		newTestHasher(),
		media,
		publisher,
		qr,
		newDiscardLogger(),
	)

	return accountFixtures{
		service:   service,
		repo:      repo,
		media:     media,
		publisher: publisher,
		qr:        qr,
	}
}

func registerInput() *usecase.RegisterInput {
	return &usecase.RegisterInput{
		Username: "JaneDoe",
		Email:    "Jane@Example.com",
		FullName: "Jane Doe",
		Password: "Password123!",
		Avatar:   uploadOf("avatar.png"),
	}
}

func TestAccountService_Register_Success(t *testing.T) {
	fx := createTestAccountService(t)

	input := registerInput()
	input.CoverImage = uploadOf("cover.jpg")

	output, err := fx.service.Register(context.Background(), input)
	require.NoError(t, err)

	// Username and email are normalized before storage.
	assert.Equal(t, "janedoe", output.Account.Username)
	assert.Equal(t, "jane@example.com", output.Account.Email)
	assert.Equal(t, "Jane Doe", output.Account.FullName)
	assert.NotEqual(t, uuid.Nil, output.Account.ID)
	assert.NotEmpty(t, output.Account.AvatarURL)
	assert.NotEmpty(t, output.Account.CoverImageURL)

	assert.Equal(t, []string{mediaCategoryAvatars, mediaCategoryCovers}, fx.media.uploads)
	assert.Contains(t, fx.publisher.eventTypes(), constants.EventAccountRegistered)

	// The password is stored hashed, never verbatim.
	stored := fx.repo.stored(output.Account.ID)
	assert.NotEqual(t, "Password123!", stored.PasswordHash)
	assert.True(t, newTestHasher().Check("Password123!", stored.PasswordHash))
}

func TestAccountService_Register_CoverIsOptional(t *testing.T) {
	fx := createTestAccountService(t)

	output, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	assert.Empty(t, output.Account.CoverImageURL)
	assert.Equal(t, []string{mediaCategoryAvatars}, fx.media.uploads)
}

func TestAccountService_Register_MissingAvatar(t *testing.T) {
	fx := createTestAccountService(t)

	input := registerInput()
	input.Avatar = nil

	output, err := fx.service.Register(context.Background(), input)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrMediaFileMissing))
	assert.Empty(t, fx.media.uploads)
}

func TestAccountService_Register_DuplicateSkipsUpload(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)
	fx.media.uploads = nil

	output, err := fx.service.Register(context.Background(), registerInput())
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountAlreadyExists))
	// The uniqueness check ran before any media round-trip.
	assert.Empty(t, fx.media.uploads)
}

func TestAccountService_Register_DuplicateEmailOnly(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	input := registerInput()
	input.Username = "differentname"

	_, err = fx.service.Register(context.Background(), input)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountAlreadyExists))
}

func TestAccountService_GetAccount(t *testing.T) {
	fx := createTestAccountService(t)

	created, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	view, err := fx.service.GetAccount(context.Background(), created.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", view.Username)

	_, err = fx.service.GetAccount(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
}

func TestAccountService_UpdateDetails(t *testing.T) {
	fx := createTestAccountService(t)

	created, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	view, err := fx.service.UpdateDetails(context.Background(), created.Account.ID, &usecase.UpdateDetailsInput{
		FullName: "Jane A. Doe",
		Email:    "  Jane.New@Example.com ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane A. Doe", view.FullName)
	assert.Equal(t, "jane.new@example.com", view.Email)
}

func TestAccountService_UpdateDetails_NothingToUpdate(t *testing.T) {
	fx := createTestAccountService(t)

	created, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	view, err := fx.service.UpdateDetails(context.Background(), created.Account.ID, &usecase.UpdateDetailsInput{})
	assert.Nil(t, view)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAccountService_UpdateDetails_UnknownAccount(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.UpdateDetails(context.Background(), uuid.New(), &usecase.UpdateDetailsInput{
		FullName: "Nobody",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
}

func TestAccountService_UpdateAvatar(t *testing.T) {
	fx := createTestAccountService(t)

	created, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)
	previous := created.Account.AvatarURL

	view, err := fx.service.UpdateAvatar(context.Background(), created.Account.ID, uploadOf("new-avatar.png"))
	require.NoError(t, err)

	assert.NotEqual(t, previous, view.AvatarURL)
	assert.Equal(t, view.AvatarURL, fx.repo.stored(created.Account.ID).AvatarURL)
}

func TestAccountService_UpdateCoverImage(t *testing.T) {
	fx := createTestAccountService(t)

	created, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	view, err := fx.service.UpdateCoverImage(context.Background(), created.Account.ID, uploadOf("cover.jpg"))
	require.NoError(t, err)

	assert.NotEmpty(t, view.CoverImageURL)
}

func TestAccountService_UpdateImage_MissingFile(t *testing.T) {
	fx := createTestAccountService(t)

	created, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = fx.service.UpdateAvatar(context.Background(), created.Account.ID, nil)
	assert.True(t, errors.Is(err, domainerrors.ErrMediaFileMissing))
}

func TestAccountService_UpdateImage_UploadFailure(t *testing.T) {
	fx := createTestAccountService(t)

	created, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	fx.media.err = domainerrors.ErrMediaUploadFailed
	before := fx.repo.stored(created.Account.ID).AvatarURL

	_, err = fx.service.UpdateAvatar(context.Background(), created.Account.ID, uploadOf("new.png"))
	assert.True(t, errors.Is(err, domainerrors.ErrMediaUploadFailed))
	assert.Equal(t, before, fx.repo.stored(created.Account.ID).AvatarURL)
}

func TestAccountService_ProfileQR(t *testing.T) {
	fx := createTestAccountService(t)

	created, err := fx.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	png, err := fx.service.ProfileQR(context.Background(), created.Account.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, png)
	assert.Equal(t, []string{"janedoe"}, fx.qr.usernames)
}

func TestAccountService_ProfileQR_UnknownAccount(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.ProfileQR(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
}
