// Package master holds the admin-editable lookup catalogues (departments,
// job positions and the like). Every catalogue is a list of unique names.
package master

import "time"

type Kind string

const (
	KindDepartment     Kind = "departments"
	KindJobPosition    Kind = "job-positions"
	KindJobRole        Kind = "job-roles"
	KindWorkType       Kind = "work-types"
	KindEmploymentType Kind = "employment-types"
	KindShift          Kind = "shifts"
)

// Kinds lists every catalogue in display order.
var Kinds = []Kind{KindDepartment, KindJobPosition, KindJobRole, KindWorkType, KindEmploymentType, KindShift}

var tables = map[Kind]string{
	KindDepartment:     "departments",
	KindJobPosition:    "job_positions",
	KindJobRole:        "job_roles",
	KindWorkType:       "work_types",
	KindEmploymentType: "employment_types",
	KindShift:          "shifts",
}

// ParseKind maps a route segment to a catalogue kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := tables[k]; !ok {
		return "", ErrUnknownCatalogue
	}
	return k, nil
}

// Table returns the storage table backing the catalogue. Only known kinds
// have a table, so the value is safe to splice into SQL.
func (k Kind) Table() string {
	return tables[k]
}

type Item struct {
	ID        string
	Kind      Kind
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
