package reconcile

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/pkg/excel"
)

// Entry is one row of a report bucket.
type Entry struct {
	Name    string          `json:"name,omitempty"`
	Email   string          `json:"email,omitempty"`
	Changes []account.Field `json:"changes,omitempty"`
	Reason  Reason          `json:"reason,omitempty"`
}

// Report aggregates a full run into named buckets, preserving file order
// within each bucket. It lives for one run and is never persisted.
type Report struct {
	RunID  uuid.UUID `json:"run_id"`
	Mode   Mode      `json:"mode"`
	DryRun bool      `json:"dry_run"`

	Created   []Entry `json:"created,omitempty"`
	Updated   []Entry `json:"updated,omitempty"`
	Unchanged []Entry `json:"unchanged,omitempty"`
	Deleted   []Entry `json:"deleted,omitempty"`
	NotFound  []Entry `json:"not_found,omitempty"`
	Skipped   []Entry `json:"skipped"`

	mutations []Mutation
}

// Mutations lists the store changes the run actually applied, in file
// order. Empty for dry runs.
func (r *Report) Mutations() []Mutation {
	return r.mutations
}

func aggregate(runID uuid.UUID, mode Mode, dryRun bool, outcomes []*Outcome) *Report {
	r := &Report{
		RunID:   runID,
		Mode:    mode,
		DryRun:  dryRun,
		Skipped: []Entry{},
	}
	for _, o := range outcomes {
		if o.mutation != nil {
			r.mutations = append(r.mutations, *o.mutation)
		}
		entry := Entry{
			Name:    o.Name,
			Email:   o.Email,
			Changes: o.ChangedFields,
			Reason:  o.Reason,
		}
		switch o.Tag {
		case TagCreated:
			r.Created = append(r.Created, entry)
		case TagUpdated:
			r.Updated = append(r.Updated, entry)
		case TagUnchanged:
			r.Unchanged = append(r.Unchanged, entry)
		case TagDeleted:
			r.Deleted = append(r.Deleted, entry)
		case TagNotFound:
			r.NotFound = append(r.NotFound, entry)
		case TagSkipped:
			r.Skipped = append(r.Skipped, entry)
		}
	}
	return r
}

// Counts returns per-bucket totals for summary rendering.
func (r *Report) Counts() map[string]int {
	counts := map[string]int{
		"skipped": len(r.Skipped),
	}
	switch r.Mode {
	case ModeAdd:
		counts["created"] = len(r.Created)
		counts["updated"] = len(r.Updated)
		counts["unchanged"] = len(r.Unchanged)
	case ModeDelete:
		counts["deleted"] = len(r.Deleted)
		counts["not_found"] = len(r.NotFound)
	}
	return counts
}

// label prefers the display name and falls back to the email, matching the
// skip export's single name/email column.
func (e Entry) label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Email
}

// SkippedCSV renders the skip list as a two-column UTF-8 CSV with a header
// row and all values quoted, for caller-side export.
func (r *Report) SkippedCSV() []byte {
	var buf bytes.Buffer
	writeQuotedRecord(&buf, "name/email", "reason")
	for _, e := range r.Skipped {
		writeQuotedRecord(&buf, e.label(), string(e.Reason))
	}
	return buf.Bytes()
}

func writeQuotedRecord(buf *bytes.Buffer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

// SkippedWorkbook renders the skip list as an xlsx workbook.
func (r *Report) SkippedWorkbook(ctx context.Context) ([]byte, error) {
	rows := make([][]any, 0, len(r.Skipped))
	for _, e := range r.Skipped {
		rows = append(rows, []any{e.label(), string(e.Reason)})
	}
	ds := excel.NewSliceDataSource("Skipped", []string{"name/email", "reason"}, rows)
	return excel.NewExporter().Export(ctx, ds)
}
