package dtos

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/pkg/constants"
)

// AccountCreateDTO carries the payload of a single-account create.
type AccountCreateDTO struct {
	Role       string `json:"role" validate:"required,oneof=student staff faculty admin nurse"`
	FirstName  string `json:"first_name" validate:"required"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	OfficeID   *uint  `json:"office_id" validate:"omitempty,gt=0"`
	CourseID   *uint  `json:"course_id" validate:"omitempty,gt=0"`
	YearID     *uint  `json:"year_id" validate:"omitempty,gt=0"`
}

func (dto *AccountCreateDTO) Ok() (map[string]string, bool) {
	return validateStruct(dto)
}

func (dto *AccountCreateDTO) ToEntity() account.Account {
	opts := make([]account.Option, 0, 4)
	if dto.MiddleName != "" {
		opts = append(opts, account.WithMiddleName(dto.MiddleName))
	}
	if dto.OfficeID != nil {
		opts = append(opts, account.WithOffice(*dto.OfficeID))
	}
	if dto.CourseID != nil {
		opts = append(opts, account.WithCourse(*dto.CourseID))
	}
	if dto.YearID != nil {
		opts = append(opts, account.WithYear(*dto.YearID))
	}
	return account.New(account.Role(dto.Role), dto.FirstName, dto.LastName, dto.Email, opts...)
}

// AccountUpdateDTO carries a partial update; only the fields present in
// the payload land in the patch. The role and email of an account are
// immutable through this surface.
type AccountUpdateDTO struct {
	FirstName  *string `json:"first_name" validate:"omitempty,min=1"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name" validate:"omitempty,min=1"`
	OfficeID   *uint   `json:"office_id" validate:"omitempty,gt=0"`
	CourseID   *uint   `json:"course_id" validate:"omitempty,gt=0"`
	YearID     *uint   `json:"year_id" validate:"omitempty,gt=0"`
}

func (dto *AccountUpdateDTO) Ok() (map[string]string, bool) {
	return validateStruct(dto)
}

func (dto *AccountUpdateDTO) ToPatch() account.Patch {
	patch := account.Patch{}
	if dto.FirstName != nil {
		patch[account.FirstNameField] = *dto.FirstName
	}
	if dto.MiddleName != nil {
		patch[account.MiddleNameField] = *dto.MiddleName
	}
	if dto.LastName != nil {
		patch[account.LastNameField] = *dto.LastName
	}
	if dto.OfficeID != nil {
		patch[account.OfficeField] = dto.OfficeID
	}
	if dto.CourseID != nil {
		patch[account.CourseField] = dto.CourseID
	}
	if dto.YearID != nil {
		patch[account.YearField] = dto.YearID
	}
	return patch
}

// AccountResponse is the JSON shape of one account.
type AccountResponse struct {
	ID         uint      `json:"id"`
	Role       string    `json:"role"`
	FirstName  string    `json:"first_name"`
	MiddleName string    `json:"middle_name,omitempty"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	OfficeID   *uint     `json:"office_id,omitempty"`
	CourseID   *uint     `json:"course_id,omitempty"`
	YearID     *uint     `json:"year_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewAccountResponse(a account.Account) *AccountResponse {
	return &AccountResponse{
		ID:         a.ID(),
		Role:       string(a.Role()),
		FirstName:  a.FirstName(),
		MiddleName: a.MiddleName(),
		LastName:   a.LastName(),
		Email:      a.Email(),
		OfficeID:   a.OfficeID(),
		CourseID:   a.CourseID(),
		YearID:     a.YearID(),
		CreatedAt:  a.CreatedAt(),
		UpdatedAt:  a.UpdatedAt(),
	}
}

func validateStruct(dto any) (map[string]string, bool) {
	errorMessages := map[string]string{}
	errs := constants.Validate.Struct(dto)
	if errs == nil {
		return errorMessages, true
	}
	for _, err := range errs.(validator.ValidationErrors) {
		errorMessages[err.Field()] = fmt.Sprintf("%s failed on the %q rule", err.Field(), err.Tag())
	}
	return errorMessages, len(errorMessages) == 0
}
