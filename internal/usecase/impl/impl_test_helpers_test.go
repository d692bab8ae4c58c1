package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"cliptube/config"
	"cliptube/internal/domain/entity"
	"cliptube/internal/domain/repository"
	"cliptube/internal/domain/service"
	"cliptube/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- in-memory account repository ---

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entity.Account

	failNext error // when set, the next call returns this error once
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*entity.Account)}
}

func (r *fakeAccountRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil

	return err
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	clone := *account

	return &clone, nil
}

func (r *fakeAccountRepo) FindByIdentifier(_ context.Context, identifier string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	for _, account := range r.accounts {
		if account.Username == identifier || account.Email == identifier {
			clone := *account

			return &clone, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return false, err
	}

	for _, account := range r.accounts {
		if account.Username == username || account.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeAccountRepo) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	clone := *account
	r.accounts[account.ID] = &clone

	return nil
}

func (r *fakeAccountRepo) Update(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	if _, ok := r.accounts[account.ID]; !ok {
		return repository.ErrAccountNotFound
	}

	account.UpdatedAt = time.Now()
	clone := *account
	r.accounts[account.ID] = &clone

	return nil
}

func (r *fakeAccountRepo) UpdateRefreshToken(_ context.Context, id uuid.UUID, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}

	account.RefreshToken = token

	return nil
}

// stored returns the live stored row, bypassing the clone-on-read behavior.
func (r *fakeAccountRepo) stored(id uuid.UUID) *entity.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.accounts[id]
}

// --- transaction manager over the fake repo ---

type fakeRepoFactory struct {
	repo repository.AccountRepository
}

func (f *fakeRepoFactory) AccountRepo() repository.AccountRepository {
	return f.repo
}

type fakeTxManager struct {
	factory repository.RepositoryFactory
}

func (tm *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(tm.factory)
}

// --- media store, publisher, notifier fakes ---

type fakeMediaStore struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (s *fakeMediaStore) Upload(_ context.Context, category string, upload *service.MediaUpload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return "", s.err
	}

	url := "https://media.test/" + category + "/" + uuid.New().String()
	s.uploads = append(s.uploads, category)

	return url, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*service.AccountEvent
	err    error
}

func (p *fakePublisher) PublishAccountEvent(_ context.Context, event *service.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}

	return types
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *fakeNotifier) SendSecurityAlert(_ context.Context, accountID string, _, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.alerts = append(n.alerts, accountID)

	return nil
}

// --- real token service and hasher wired for tests ---

func newTestTokenService(t *testing.T) service.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Refresh = "test-refresh-secret"
	cfg.SecretKey.AccessTTL = time.Minute
	cfg.SecretKey.RefreshTTL = time.Hour

	svc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func newTestHasher() service.PasswordHasher {
	return auth.NewBcryptHasherWithCost(bcrypt.MinCost)
}

func uploadOf(name string) *service.MediaUpload {
	content := "image-bytes"

	return &service.MediaUpload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	}
}
