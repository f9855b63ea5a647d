package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/entities/reference"
	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence/models"
	"github.com/clinix-uz/clinix-sdk/pkg/composables"
)

const referenceFindQuery = `
	SELECT r.id, r.kind, r.code, r.name
	FROM reference_values r
	ORDER BY r.kind, r.code`

type PgReferenceRepository struct{}

func NewReferenceRepository() reference.Repository {
	return &PgReferenceRepository{}
}

func (g *PgReferenceRepository) GetAll(ctx context.Context) ([]reference.Reference, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, referenceFindQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query reference values")
	}
	defer rows.Close()

	var refs []reference.Reference
	for rows.Next() {
		var m models.Reference
		if err := rows.Scan(&m.ID, &m.Kind, &m.Code, &m.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ToDomainReference(&m))
	}
	return refs, rows.Err()
}
