package users

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Profiles interface {
	repository.Repository[*Profile]

	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Profile, error)
	UpsertForUser(ctx context.Context, record *Profile) (*Profile, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type profilesRepo struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var (
	_ Profiles                        = (*profilesRepo)(nil)
	_ repository.Repository[*Profile] = (*profilesRepo)(nil)
)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &profilesRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *profilesRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return a.GetByUserIDTx(ctx, a.db, userID)
}

func (a *profilesRepo) GetByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Profile, error) {
	record := &Profile{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

// UpsertForUser creates the profile on first write and updates it afterwards.
// The user_id column has a unique constraint so there is at most one profile
// per user.
func (a *profilesRepo) UpsertForUser(ctx context.Context, record *Profile) (*Profile, error) {
	existing, err := a.GetByUserID(ctx, record.UserID)
	if err == nil {
		record.ID = existing.ID
		return a.Repository.Update(ctx, record, repository.UpdateByID(existing.ID.String()))
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	return a.Repository.Create(ctx, record)
}

func (a *profilesRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*Profile)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)

	return err
}
