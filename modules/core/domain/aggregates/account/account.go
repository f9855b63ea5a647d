package account

import (
	"strings"
	"time"
)

type Account struct {
	id         uint
	role       Role
	firstName  string
	middleName string
	lastName   string
	email      string
	officeID   *uint
	courseID   *uint
	yearID     *uint
	createdAt  time.Time
	updatedAt  time.Time
}

type Option func(*Account)

func WithMiddleName(name string) Option {
	return func(a *Account) { a.middleName = strings.TrimSpace(name) }
}

func WithOffice(id uint) Option {
	return func(a *Account) { a.officeID = &id }
}

func WithCourse(id uint) Option {
	return func(a *Account) { a.courseID = &id }
}

func WithYear(id uint) Option {
	return func(a *Account) { a.yearID = &id }
}

func New(role Role, firstName, lastName, email string, opts ...Option) Account {
	a := Account{
		role:      role,
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		email:     normalizeEmail(email),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func Hydrate(
	id uint,
	role Role,
	firstName, middleName, lastName, email string,
	officeID, courseID, yearID *uint,
	createdAt, updatedAt time.Time,
) Account {
	return Account{
		id:         id,
		role:       role,
		firstName:  strings.TrimSpace(firstName),
		middleName: strings.TrimSpace(middleName),
		lastName:   strings.TrimSpace(lastName),
		email:      normalizeEmail(email),
		officeID:   officeID,
		courseID:   courseID,
		yearID:     yearID,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (a Account) ID() uint          { return a.id }
func (a Account) Role() Role        { return a.role }
func (a Account) FirstName() string { return a.firstName }
func (a Account) MiddleName() string {
	return a.middleName
}
func (a Account) LastName() string     { return a.lastName }
func (a Account) Email() string        { return a.email }
func (a Account) OfficeID() *uint      { return a.officeID }
func (a Account) CourseID() *uint      { return a.courseID }
func (a Account) YearID() *uint        { return a.yearID }
func (a Account) CreatedAt() time.Time { return a.createdAt }
func (a Account) UpdatedAt() time.Time { return a.updatedAt }
func (a Account) IsZero() bool         { return a.id == 0 && a.email == "" }

// DisplayName joins the name parts with single spaces, skipping blanks.
func (a Account) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.firstName, a.middleName, a.lastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// FieldValue returns the account's current value for a comparable field.
func (a Account) FieldValue(f Field) any {
	switch f {
	case FirstNameField:
		return a.firstName
	case MiddleNameField:
		return a.middleName
	case LastNameField:
		return a.lastName
	case OfficeField:
		return a.officeID
	case CourseField:
		return a.courseID
	case YearField:
		return a.yearID
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
