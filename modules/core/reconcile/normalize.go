package reconcile

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/entities/reference"
)

var (
	emailRe      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizedRow is an ImportRow with canonical field values and resolved
// reference IDs. A reference ID is nil when the code was blank or unknown;
// the Unknown markers distinguish the two so skip reasons stay precise.
type NormalizedRow struct {
	ImportRow

	DisplayName string
	OfficeID    *uint
	CourseID    *uint
	YearID      *uint

	UnknownOffice bool
	UnknownCourse bool
	UnknownYear   bool
}

// normalizer canonicalizes rows against a per-run reference directory.
// The directory is passed in at construction; nothing is cached globally.
type normalizer struct {
	dir reference.Directory
}

// normalize trims and canonicalizes one row. It short-circuits with a skip
// reason when the email is absent or malformed; unresolved reference codes
// are recorded but surface later as policy failures.
func (n normalizer) normalize(row ImportRow) (NormalizedRow, Reason, bool) {
	out := NormalizedRow{ImportRow: row}

	out.Identifier = strings.TrimSpace(row.Identifier)
	out.FirstName = cleanName(row.FirstName)
	out.MiddleName = cleanName(row.MiddleName)
	out.LastName = cleanName(row.LastName)
	out.Email = strings.ToLower(strings.TrimSpace(row.Email))
	out.OfficeCode = strings.TrimSpace(row.OfficeCode)
	out.CourseCode = strings.TrimSpace(row.CourseCode)
	out.YearCode = strings.TrimSpace(row.YearCode)
	out.DisplayName = composeDisplayName(out.FirstName, out.MiddleName, out.LastName)

	if out.Email == "" {
		return out, ReasonMissingEmail, false
	}
	if !emailRe.MatchString(out.Email) {
		return out, ReasonInvalidEmail, false
	}

	if out.OfficeCode != "" {
		if id, ok := n.dir.Office(out.OfficeCode); ok {
			out.OfficeID = &id
		} else {
			out.UnknownOffice = true
		}
	}
	if out.CourseCode != "" {
		if id, ok := n.dir.Course(out.CourseCode); ok {
			out.CourseID = &id
		} else {
			out.UnknownCourse = true
		}
	}
	if out.YearCode != "" {
		if id, ok := n.dir.Year(out.YearCode); ok {
			out.YearID = &id
		} else {
			out.UnknownYear = true
		}
	}

	return out, "", true
}

// cleanName trims, NFC-composes and collapses inner whitespace. Uploaded
// sheets mix composed and decomposed unicode depending on their origin.
func cleanName(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return whitespaceRe.ReplaceAllString(s, " ")
}

func composeDisplayName(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
