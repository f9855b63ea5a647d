package persistence

import (
	"database/sql"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/entities/reference"
	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence/models"
)

func ToDomainAccount(dbAccount *models.Account) (account.Account, error) {
	role, err := account.NewRole(dbAccount.Role)
	if err != nil {
		return account.Account{}, err
	}
	return account.Hydrate(
		dbAccount.ID,
		role,
		dbAccount.FirstName,
		dbAccount.MiddleName.String,
		dbAccount.LastName,
		dbAccount.Email,
		dbAccount.OfficeID,
		dbAccount.CourseID,
		dbAccount.YearID,
		dbAccount.CreatedAt,
		dbAccount.UpdatedAt,
	), nil
}

func toDBAccount(data account.Account) *models.Account {
	return &models.Account{
		ID:         data.ID(),
		Role:       string(data.Role()),
		FirstName:  data.FirstName(),
		MiddleName: sql.NullString{String: data.MiddleName(), Valid: data.MiddleName() != ""},
		LastName:   data.LastName(),
		Email:      data.Email(),
		OfficeID:   data.OfficeID(),
		CourseID:   data.CourseID(),
		YearID:     data.YearID(),
		CreatedAt:  data.CreatedAt(),
		UpdatedAt:  data.UpdatedAt(),
	}
}

func ToDomainReference(dbRef *models.Reference) reference.Reference {
	return reference.Reference{
		ID:   dbRef.ID,
		Kind: reference.Kind(dbRef.Kind),
		Code: dbRef.Code,
		Name: dbRef.Name,
	}
}
