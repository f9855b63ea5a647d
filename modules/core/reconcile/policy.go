package reconcile

import (
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
)

// validatePolicy applies the role requirement policy to a normalized row.
// Academic roles require course and year; operational roles require an
// office. Missing codes and unknown codes carry distinct reasons. On pass,
// references the role forbids are cleared so field diffs stay within the
// role's field set.
//
// The requirement check deliberately runs before the identity role check
// (role_mismatch) in the classifier: a row failing both reports the more
// actionable reason.
func validatePolicy(role account.Role, row *NormalizedRow) (Reason, bool) {
	if role.IsAcademic() {
		if row.CourseCode == "" || row.YearCode == "" {
			return ReasonMissingCourseOrYear, false
		}
		if row.UnknownCourse {
			return ReasonUnknownCourse, false
		}
		if row.UnknownYear {
			return ReasonUnknownYear, false
		}
		row.OfficeID = nil
		return "", true
	}

	if row.OfficeCode == "" {
		return ReasonMissingOffice, false
	}
	if row.UnknownOffice {
		return ReasonUnknownOffice, false
	}
	row.CourseID = nil
	row.YearID = nil
	return "", true
}
