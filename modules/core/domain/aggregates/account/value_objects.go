package account

import (
	"fmt"
	"strings"
)

// Role is the operational role an account holds. Every role belongs to
// exactly one policy class: academic roles require course and year
// references, operational roles require an office reference.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
	RoleNurse   Role = "nurse"
)

func NewRole(r string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(r)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %q", r)
	}
	return role, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleFaculty, RoleAdmin, RoleNurse:
		return true
	}
	return false
}

// IsAcademic reports whether the role belongs to the academic policy class.
func (r Role) IsAcademic() bool {
	return r == RoleStudent
}

// Field identifies a comparable account field. The declaration order of
// ComparableFields is the order changed fields are reported in.
type Field string

const (
	FirstNameField  Field = "first_name"
	MiddleNameField Field = "middle_name"
	LastNameField   Field = "last_name"
	OfficeField     Field = "office"
	CourseField     Field = "course"
	YearField       Field = "year"
)

var ComparableFields = []Field{
	FirstNameField,
	MiddleNameField,
	LastNameField,
	OfficeField,
	CourseField,
	YearField,
}

// Patch maps fields to their new values for a partial update. Name fields
// carry string values, reference fields carry *uint values.
type Patch map[Field]any
