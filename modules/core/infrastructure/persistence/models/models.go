package models

import (
	"database/sql"
	"time"
)

type Account struct {
	ID         uint
	Role       string
	FirstName  string
	MiddleName sql.NullString
	LastName   string
	Email      string
	OfficeID   *uint
	CourseID   *uint
	YearID     *uint
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Reference struct {
	ID   uint
	Kind string
	Code string
	Name string
}
