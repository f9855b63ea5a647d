package reference

import (
	"context"
	"strings"
)

// Kind names a reference table.
type Kind string

const (
	KindOffice Kind = "office"
	KindCourse Kind = "course"
	KindYear   Kind = "year"
)

// Reference is one row of a reference table: a human-readable code mapped
// to an internal ID.
type Reference struct {
	ID   uint
	Kind Kind
	Code string
	Name string
}

// Directory is a per-run snapshot of the reference tables, loaded once and
// passed into the reconciliation engine. It is never cached across runs.
type Directory struct {
	offices map[string]uint
	courses map[string]uint
	years   map[string]uint
}

func NewDirectory(refs []Reference) Directory {
	d := Directory{
		offices: make(map[string]uint),
		courses: make(map[string]uint),
		years:   make(map[string]uint),
	}
	for _, r := range refs {
		code := normalizeCode(r.Code)
		if code == "" {
			continue
		}
		switch r.Kind {
		case KindOffice:
			d.offices[code] = r.ID
		case KindCourse:
			d.courses[code] = r.ID
		case KindYear:
			d.years[code] = r.ID
		}
	}
	return d
}

func (d Directory) Office(code string) (uint, bool) {
	id, ok := d.offices[normalizeCode(code)]
	return id, ok
}

func (d Directory) Course(code string) (uint, bool) {
	id, ok := d.courses[normalizeCode(code)]
	return id, ok
}

func (d Directory) Year(code string) (uint, bool) {
	id, ok := d.years[normalizeCode(code)]
	return id, ok
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type Repository interface {
	// GetAll loads every reference row across all kinds.
	GetAll(ctx context.Context) ([]Reference, error)
}

// LoadDirectory loads a fresh Directory snapshot from the repository.
func LoadDirectory(ctx context.Context, repo Repository) (Directory, error) {
	refs, err := repo.GetAll(ctx)
	if err != nil {
		return Directory{}, err
	}
	return NewDirectory(refs), nil
}
