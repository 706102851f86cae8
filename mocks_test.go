package users_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

// MockCredentialStore implements users.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*users.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) RolesOf(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	roles, _ := args.Get(0).([]string)
	return roles, args.Error(1)
}

// MockUsers overrides only the methods exercised by tests; calling anything
// else panics through the embedded nil interface.
type MockUsers struct {
	mock.Mock
	users.Users
}

func (m *MockUsers) ExistsByUsernameTx(ctx context.Context, tx bun.IDB, username string) (bool, error) {
	args := m.Called(ctx, tx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	args := m.Called(ctx, tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *users.User, criteria ...repository.InsertCriteria) (*users.User, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*users.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*users.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*users.User)
	return user, args.Error(1)
}

func (m *MockUsers) Update(ctx context.Context, record *users.User, criteria ...repository.UpdateCriteria) (*users.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*users.User)
	return user, args.Error(1)
}

func (m *MockUsers) ListPage(ctx context.Context, limit, offset int) ([]*users.User, int, error) {
	args := m.Called(ctx, limit, offset)
	records, _ := args.Get(0).([]*users.User)
	return records, args.Int(1), args.Error(2)
}

func (m *MockUsers) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRoles overrides only the methods exercised by tests.
type MockRoles struct {
	mock.Mock
	users.Roles
}

func (m *MockRoles) GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*users.Role, error) {
	args := m.Called(ctx, tx, name)
	role, _ := args.Get(0).(*users.Role)
	return role, args.Error(1)
}

func (m *MockRoles) AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, tx, userID, roleID)
	return args.Error(0)
}

func (m *MockRoles) NamesOf(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	roles, _ := args.Get(0).([]string)
	return roles, args.Error(1)
}

// MockProfiles overrides only the methods exercised by tests.
type MockProfiles struct {
	mock.Mock
	users.Profiles
}

func (m *MockProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*users.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*users.Profile)
	return profile, args.Error(1)
}

func (m *MockProfiles) UpsertForUser(ctx context.Context, record *users.Profile) (*users.Profile, error) {
	args := m.Called(ctx, record)
	profile, _ := args.Get(0).(*users.Profile)
	return profile, args.Error(1)
}

// mockRepoManager wires the mocks behind the users.RepositoryManager
// interface. RunInTx invokes the callback with a zero transaction; the
// mocked repositories never touch it.
type mockRepoManager struct {
	users    *MockUsers
	roles    *MockRoles
	profiles users.Profiles
	store    *MockCredentialStore
	txErr    error
}

func (m *mockRepoManager) Validate() error { return nil }
func (m *mockRepoManager) MustValidate()   {}

func (m *mockRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	return f(ctx, bun.Tx{})
}

func (m *mockRepoManager) Users() users.Users       { return m.users }
func (m *mockRepoManager) Roles() users.Roles       { return m.roles }
func (m *mockRepoManager) Profiles() users.Profiles { return m.profiles }

func (m *mockRepoManager) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return m.store.GetByUsername(ctx, username)
}

func (m *mockRepoManager) RolesOf(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return m.store.RolesOf(ctx, userID)
}

// testAuthConfig satisfies users.Config for wiring authenticators in tests.
type testAuthConfig struct {
	signingKey string
	ttl        time.Duration
	issuer     string
	audience   []string
}

func (c testAuthConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return "0123456789abcdef0123456789abcdef"
	}
	return c.signingKey
}

func (c testAuthConfig) GetTokenTTL() time.Duration { return c.ttl }

func (c testAuthConfig) GetIssuer() string      { return c.issuer }
func (c testAuthConfig) GetAudience() []string  { return c.audience }
func (c testAuthConfig) GetContextKey() string  { return "principal" }
func (c testAuthConfig) GetTokenLookup() string { return "header:Authorization" }
func (c testAuthConfig) GetAuthScheme() string  { return "Bearer" }
