package users

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories. It doubles as the
// CredentialStore backing the authentication flow.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	CredentialStore
	Users() Users
	Roles() Roles
	Profiles() Profiles
}

type mngr struct {
	db       *bun.DB
	users    Users
	roles    Roles
	profiles Profiles
}

var _ CredentialStore = (*mngr)(nil)

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		users:    NewUsersRepository(db),
		roles:    NewRolesRepository(db),
		profiles: NewProfilesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.roles == nil {
		return errors.New("repository roles should be initialized")
	}

	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Roles() Roles {
	return m.roles
}

func (m mngr) Profiles() Profiles {
	return m.profiles
}

// GetByUsername satisfies CredentialStore so the repository manager can back
// a UserProvider directly.
func (m mngr) GetByUsername(ctx context.Context, username string) (*User, error) {
	return m.users.GetByUsername(ctx, username)
}

// RolesOf satisfies CredentialStore.
func (m mngr) RolesOf(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return m.roles.NamesOf(ctx, userID)
}
