package users

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Roles interface {
	repository.Repository[*Role]

	GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error)
	GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error)

	AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error
	RevokeTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error

	NamesOf(ctx context.Context, userID uuid.UUID) ([]string, error)
	NamesOfTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]string, error)
}

type rolesRepo struct {
	repository.Repository[*Role]
	db *bun.DB
}

var (
	_ Roles                        = (*rolesRepo)(nil)
	_ repository.Repository[*Role] = (*rolesRepo)(nil)
)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &rolesRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *rolesRepo) GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error) {
	record := &Role{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"name": name,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *rolesRepo) GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error) {
	role, err := a.GetByNameTx(ctx, tx, name)
	if err == nil {
		return role, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record := &Role{
		ID:   uuid.New(),
		Name: name,
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *rolesRepo) AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	link := &UserRole{
		UserID: userID,
		RoleID: roleID,
	}

	_, err := tx.NewInsert().
		Model(link).
		On("CONFLICT DO NOTHING").
		Exec(ctx)

	return err
}

func (a *rolesRepo) RevokeTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*UserRole)(nil)).
		Where("user_id = ?", userID).
		Where("role_id = ?", roleID).
		Exec(ctx)

	return err
}

func (a *rolesRepo) NamesOf(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return a.NamesOfTx(ctx, a.db, userID)
}

func (a *rolesRepo) NamesOfTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]string, error) {
	names := []string{}
	err := tx.NewSelect().
		Model((*Role)(nil)).
		Column("rol.name").
		Join("JOIN user_roles AS url ON url.role_id = rol.id").
		Where("url.user_id = ?", userID).
		Order("rol.name ASC").
		Scan(ctx, &names)

	if err != nil {
		return nil, err
	}

	return names, nil
}
