package reconcile

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// ImportRow is one data line of the uploaded batch, untouched beyond
// field splitting. Line numbers are 1-based file positions including the
// header, matching what a caller sees in their spreadsheet.
type ImportRow struct {
	Line        int
	Identifier  string
	FirstName   string
	MiddleName  string
	LastName    string
	Email       string
	OfficeCode  string
	CourseCode  string
	YearCode    string
	Unparseable bool
}

const (
	// Add-mode column layout: identifier, first_name, middle_name,
	// last_name, email, office_code, course_code, year_code. Trailing
	// reference columns are optional depending on role.
	addColumnCount    = 8
	addMinColumnCount = 5

	// If this share of data rows has the wrong arity, the whole file is
	// rejected as a wrong-file upload rather than skipped row by row.
	malformedRowThreshold = 0.3
)

func newCSVReader(input string) *csv.Reader {
	input = strings.TrimPrefix(input, "\uFEFF")
	r := csv.NewReader(strings.NewReader(input))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// parseErrorLine recovers the file line from a csv parse error so even an
// unparseable row points back at the caller's spreadsheet.
func parseErrorLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

func recordBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseAddInput splits add-mode input into ordered import rows. The header
// line is discarded, blank lines are dropped, and file order is preserved.
// Rows with the wrong arity are marked unparseable unless they make up
// enough of the file to signal a wrong upload, which is a structural error.
func parseAddInput(input string) ([]ImportRow, error) {
	r := newCSVReader(input)

	var rows []ImportRow
	headerSeen := false
	malformed := 0

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !headerSeen {
				return nil, ErrMalformedInput.WithDetails("unreadable header line")
			}
			malformed++
			rows = append(rows, ImportRow{Line: parseErrorLine(err), Unparseable: true})
			continue
		}
		line, _ := r.FieldPos(0)
		if recordBlank(rec) {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}
		if len(rec) < addMinColumnCount || len(rec) > addColumnCount {
			malformed++
			rows = append(rows, ImportRow{Line: line, Unparseable: true})
			continue
		}

		padded := make([]string, addColumnCount)
		copy(padded, rec)
		rows = append(rows, ImportRow{
			Line:       line,
			Identifier: padded[0],
			FirstName:  padded[1],
			MiddleName: padded[2],
			LastName:   padded[3],
			Email:      padded[4],
			OfficeCode: padded[5],
			CourseCode: padded[6],
			YearCode:   padded[7],
		})
	}

	if len(rows) > 0 && float64(malformed) >= malformedRowThreshold*float64(len(rows)) {
		return nil, ErrMalformedInput.WithDetails("%d of %d rows have the wrong column count", malformed, len(rows))
	}
	return rows, nil
}

// parseDeleteInput splits delete-mode input into import rows carrying only
// emails. A header-declared email column is a precondition; its absence is
// a structural error, not a per-row concern.
func parseDeleteInput(input string) ([]ImportRow, error) {
	r := newCSVReader(input)

	var rows []ImportRow
	emailIdx := -1

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if emailIdx < 0 {
				return nil, ErrMissingEmailColumn.WithDetails("unreadable header line")
			}
			rows = append(rows, ImportRow{Line: parseErrorLine(err), Unparseable: true})
			continue
		}
		line, _ := r.FieldPos(0)
		if recordBlank(rec) {
			continue
		}
		if emailIdx < 0 {
			for i, h := range rec {
				if strings.EqualFold(strings.TrimSpace(h), "email") {
					emailIdx = i
					break
				}
			}
			if emailIdx < 0 {
				return nil, ErrMissingEmailColumn
			}
			continue
		}

		row := ImportRow{Line: line}
		if emailIdx < len(rec) {
			row.Email = rec[emailIdx]
		}
		rows = append(rows, row)
	}

	if emailIdx < 0 {
		return nil, ErrMissingEmailColumn.WithDetails("input is empty")
	}
	return rows, nil
}
