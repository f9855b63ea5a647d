package account

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailTaken is returned when an insert or update collides with the
	// unique email constraint.
	ErrEmailTaken = errors.New("email already taken")
)

type FindParams struct {
	Role   Role
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	GetAll(ctx context.Context) ([]Account, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Account, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetByID(ctx context.Context, id uint) (Account, error)
	// GetByEmail matches by exact case-insensitive email equality.
	GetByEmail(ctx context.Context, email string) (Account, error)
	Create(ctx context.Context, data Account) (Account, error)
	// UpdateFields applies a partial update of only the given fields.
	UpdateFields(ctx context.Context, id uint, patch Patch) error
	DeleteByEmail(ctx context.Context, email string) error
}
