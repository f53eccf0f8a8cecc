package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles is the role catalog store
type Roles interface {
	repository.Repository[*Role]
	RoleCatalog

	Seed(ctx context.Context) error
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB
}

var _ Roles = (*roles)(nil)

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
	})

	return &roles{
		Repository: repo,
		db:         db,
	}
}

// FindRoleByName resolves a catalog entry by its unique name
func (a *roles) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	record := &Role{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || isEmptyResult(err) {
			nf := ErrRoleNotFound.Clone().WithMetadata(map[string]any{"role": name})
			nf.Source = ErrRoleNotFound
			return nil, nf
		}
		return nil, err
	}

	return record, nil
}

// Seed inserts the closed role set, skipping names that already exist
func (a *roles) Seed(ctx context.Context) error {
	for _, name := range GetAllRoles() {
		record := &Role{
			ID:   uuid.New(),
			Name: name,
		}

		_, err := a.db.NewInsert().
			Model(record).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}
