package reconcile

import (
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
)

// rowState tracks one row through the pipeline. Once outcome is set the
// row is terminal and later stages leave it alone.
type rowState struct {
	row     NormalizedRow
	outcome *Outcome
}

func (s *rowState) terminal() bool { return s.outcome != nil }

// markDuplicates resolves duplicate emails within the batch: the last
// occurrence in file order wins, earlier ones are skipped. A corrected row
// appended at the end of a file overrides an earlier mistake without the
// caller editing history. Runs over file order before any parallel work.
func markDuplicates(states []*rowState) {
	lastIdx := make(map[string]int)
	for i, s := range states {
		if s.terminal() {
			continue
		}
		lastIdx[s.row.Email] = i
	}
	for i, s := range states {
		if s.terminal() {
			continue
		}
		if lastIdx[s.row.Email] != i {
			s.outcome = skipped(s.row.Line, s.row.DisplayName, s.row.Email, ReasonDuplicateInBatch)
		}
	}
}

// classifyAdd decides the terminal state of one add-mode row given its
// match result. existing is nil when no account matched the email.
func classifyAdd(role account.Role, row NormalizedRow, existing *account.Account) *Outcome {
	if existing == nil {
		opts := make([]account.Option, 0, 4)
		if row.MiddleName != "" {
			opts = append(opts, account.WithMiddleName(row.MiddleName))
		}
		if row.OfficeID != nil {
			opts = append(opts, account.WithOffice(*row.OfficeID))
		}
		if row.CourseID != nil {
			opts = append(opts, account.WithCourse(*row.CourseID))
		}
		if row.YearID != nil {
			opts = append(opts, account.WithYear(*row.YearID))
		}
		data := account.New(role, row.FirstName, row.LastName, row.Email, opts...)
		return &Outcome{
			Line:          row.Line,
			Tag:           TagCreated,
			Name:          row.DisplayName,
			Email:         row.Email,
			pendingCreate: &data,
		}
	}

	// The engine never silently reassigns roles.
	if existing.Role() != role {
		return skipped(row.Line, row.DisplayName, row.Email, ReasonRoleMismatch)
	}

	changed, patch := diffFields(row, *existing)
	if len(changed) == 0 {
		return &Outcome{
			Line:  row.Line,
			Tag:   TagUnchanged,
			Name:  row.DisplayName,
			Email: row.Email,
		}
	}
	return &Outcome{
		Line:          row.Line,
		Tag:           TagUpdated,
		Name:          row.DisplayName,
		Email:         row.Email,
		ChangedFields: changed,
		pendingPatch:  patch,
		pendingID:     existing.ID(),
	}
}

// classifyDelete decides the terminal state of one delete-mode row.
func classifyDelete(role account.Role, row NormalizedRow, existing *account.Account) *Outcome {
	if existing == nil {
		return &Outcome{
			Line:   row.Line,
			Tag:    TagNotFound,
			Email:  row.Email,
			Reason: ReasonNotFound,
		}
	}
	if existing.Role() != role {
		return skipped(row.Line, existing.DisplayName(), row.Email, ReasonRoleMismatch)
	}
	return &Outcome{
		Line:  row.Line,
		Tag:   TagDeleted,
		Name:  existing.DisplayName(),
		Email: row.Email,
	}
}

// diffFields compares the comparable fields in their fixed declaration
// order and returns the fields that differ plus the partial-update patch.
func diffFields(row NormalizedRow, existing account.Account) ([]account.Field, account.Patch) {
	var changed []account.Field
	patch := account.Patch{}

	for _, f := range account.ComparableFields {
		rowVal := rowFieldValue(row, f)
		if fieldEqual(rowVal, existing.FieldValue(f)) {
			continue
		}
		changed = append(changed, f)
		patch[f] = rowVal
	}

	if len(changed) == 0 {
		return nil, nil
	}
	return changed, patch
}

func rowFieldValue(row NormalizedRow, f account.Field) any {
	switch f {
	case account.FirstNameField:
		return row.FirstName
	case account.MiddleNameField:
		return row.MiddleName
	case account.LastNameField:
		return row.LastName
	case account.OfficeField:
		return row.OfficeID
	case account.CourseField:
		return row.CourseID
	case account.YearField:
		return row.YearID
	}
	return nil
}

func fieldEqual(a, b any) bool {
	ap, aIsPtr := a.(*uint)
	bp, bIsPtr := b.(*uint)
	if aIsPtr || bIsPtr {
		if ap == nil || bp == nil {
			return ap == nil && bp == nil
		}
		return *ap == *bp
	}
	return a == b
}
