package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
	"github.com/Skotchmaster/charity/internal/repo"
)

type mockUsers struct{ mock.Mock }

func userArg(args mock.Arguments) (*domain.User, error) {
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func usersArg(args mock.Arguments) ([]domain.User, error) {
	u, _ := args.Get(0).([]domain.User)
	return u, args.Error(1)
}

func (m *mockUsers) ListUsers(ctx context.Context) ([]domain.User, error) {
	return usersArg(m.Called(ctx))
}

func (m *mockUsers) ListUsersByRole(ctx context.Context, role string) ([]domain.User, error) {
	return usersArg(m.Called(ctx, role))
}

func (m *mockUsers) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return userArg(m.Called(ctx, id))
}

func (m *mockUsers) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return userArg(m.Called(ctx, email))
}

func (m *mockUsers) FindUserByToken(ctx context.Context, token string) (*domain.User, error) {
	return userArg(m.Called(ctx, token))
}

func (m *mockUsers) CreateUser(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) SaveUser(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) ClearUserRoles(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUsers) DeleteUser(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) RevokeUserTokens(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type mockRoles struct{ mock.Mock }

func (m *mockRoles) RolesByIDs(ctx context.Context, ids []uint) ([]domain.Role, error) {
	args := m.Called(ctx, ids)
	r, _ := args.Get(0).([]domain.Role)
	return r, args.Error(1)
}

func (m *mockRoles) EnsureRole(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	r, _ := args.Get(0).(*domain.Role)
	return r, args.Error(1)
}

type mockRecovery struct{ mock.Mock }

func (m *mockRecovery) FindRecoveryByToken(ctx context.Context, token string) (*domain.RecoveryPassword, error) {
	args := m.Called(ctx, token)
	r, _ := args.Get(0).(*domain.RecoveryPassword)
	return r, args.Error(1)
}

func (m *mockRecovery) DeleteRecoveryByEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockRecovery) CreateRecovery(ctx context.Context, rec *domain.RecoveryPassword) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockRecovery) DeleteRecovery(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendVerification(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

// recordingPublisher keeps every event type it receives.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := event.(map[string]any); ok {
		p.events = append(p.events, topic+":"+m["type"].(string))
	}
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// plainHasher keeps tests fast; the bcrypt hasher is covered in pkg/hash.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Matches(hash, password string) bool {
	return strings.TrimPrefix(hash, "hashed:") == password && strings.HasPrefix(hash, "hashed:")
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(models.All()...))
	return repo.New(gdb)
}
