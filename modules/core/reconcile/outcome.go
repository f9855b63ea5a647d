package reconcile

import (
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/pkg/serrors"
)

// Mode selects the reconciliation direction of a batch.
type Mode string

const (
	ModeAdd    Mode = "add"
	ModeDelete Mode = "delete"
)

// Reason is a stable machine-readable code explaining why a row was
// skipped. Reasons never change meaning; callers key on them.
type Reason string

const (
	ReasonMissingEmail        Reason = "missing_email"
	ReasonInvalidEmail        Reason = "invalid_email"
	ReasonDuplicateInBatch    Reason = "duplicate_in_batch"
	ReasonMissingCourseOrYear Reason = "missing_course_or_year"
	ReasonUnknownCourse       Reason = "unknown_course"
	ReasonUnknownYear         Reason = "unknown_year"
	ReasonMissingOffice       Reason = "missing_office"
	ReasonUnknownOffice       Reason = "unknown_office"
	ReasonRoleMismatch        Reason = "role_mismatch"
	ReasonUnparseableRow      Reason = "unparseable_row"
	ReasonStoreRejected       Reason = "store_rejected"
	ReasonStoreTimeout        Reason = "store_timeout"
	ReasonNotFound            Reason = "not_found"
)

// Structural failures abort the whole batch before any mutation. Row-level
// failures never do; they resolve to a Skipped outcome instead.
var (
	ErrMissingEmailColumn = serrors.NewError("BULK_MISSING_EMAIL_COLUMN", "delete input must declare an email column", "")
	ErrMalformedInput     = serrors.NewError("BULK_MALFORMED_INPUT", "input does not look like a user sheet", "")
	ErrBatchTooLarge      = serrors.NewError("BULK_BATCH_TOO_LARGE", "delete batch exceeds the configured ceiling", "")
	ErrInvalidRole        = serrors.NewError("BULK_INVALID_ROLE", "target role is not recognized", "")
)

// Tag is the terminal classification of one row.
type Tag string

const (
	TagCreated   Tag = "created"
	TagUpdated   Tag = "updated"
	TagUnchanged Tag = "unchanged"
	TagSkipped   Tag = "skipped"
	TagDeleted   Tag = "deleted"
	TagNotFound  Tag = "not_found"
)

// Outcome is the immutable-once-aggregated result of one row. The pending
// fields carry the mutation payload between classification and apply; they
// are never exposed to report consumers.
type Outcome struct {
	Line          int
	Tag           Tag
	Name          string
	Email         string
	ChangedFields []account.Field
	Reason        Reason

	pendingCreate *account.Account
	pendingPatch  account.Patch
	pendingID     uint

	mutation *Mutation
}

// Mutation records one store change that was actually applied, for
// post-run event fan-out. Account is the zero value for deletes.
type Mutation struct {
	Tag     Tag
	Account account.Account
	Changed []account.Field
	Email   string
}

func skipped(line int, name, email string, reason Reason) *Outcome {
	return &Outcome{
		Line:   line,
		Tag:    TagSkipped,
		Name:   name,
		Email:  email,
		Reason: reason,
	}
}

// toSkipped demotes an actionable outcome after a store failure.
func (o *Outcome) toSkipped(reason Reason) {
	o.Tag = TagSkipped
	o.Reason = reason
	o.ChangedFields = nil
	o.pendingCreate = nil
	o.pendingPatch = nil
	o.pendingID = 0
	o.mutation = nil
}

// Actionable reports whether the outcome requires a store mutation.
func (o *Outcome) Actionable() bool {
	switch o.Tag {
	case TagCreated, TagUpdated, TagDeleted:
		return true
	}
	return false
}
