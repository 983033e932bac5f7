package grading

import "fmt"

// Department identifies an organisational unit.
type Department string

const (
	DepartmentJingkong Department = "jingkong"
	DepartmentKaitou   Department = "kaitou"
	DepartmentGeneral  Department = "general"
)

// DepartmentInfo describes a department for display.
type DepartmentInfo struct {
	ID   Department `json:"id"`
	Name string     `json:"name"`
}

// Departments is the catalogue of known departments.
var Departments = []DepartmentInfo{
	{ID: DepartmentJingkong, Name: "Jingkong"},
	{ID: DepartmentKaitou, Name: "开投贸易"},
	{ID: DepartmentGeneral, Name: "General"},
}

// IsKnownDepartment reports whether d is in the catalogue.
func IsKnownDepartment(d Department) bool {
	for _, info := range Departments {
		if info.ID == d {
			return true
		}
	}
	return false
}

// DepartmentName returns the display name of d, or d itself when unknown.
func DepartmentName(d Department) string {
	for _, info := range Departments {
		if info.ID == d {
			return info.Name
		}
	}
	return string(d)
}

// Range is an inclusive count range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Quota constrains how many ratees of a department may fall in each band.
// Headcount is the number of ratees a complete set of evaluations covers.
type Quota struct {
	Department Department `json:"department"`
	MaxA       int        `json:"max_a"`
	B          Range      `json:"b"`
	C          Range      `json:"c"`
	DE         Range      `json:"de"`
	Headcount  int        `json:"headcount"`
}

// QuotaTable maps departments to quotas. Departments without an entry are unconstrained.
type QuotaTable map[Department]Quota

// DefaultQuotas returns the canonical quota table.
func DefaultQuotas() QuotaTable {
	return QuotaTable{
		DepartmentJingkong: {
			Department: DepartmentJingkong,
			MaxA:       11,
			B:          Range{Min: 23, Max: 26},
			C:          Range{Min: 18, Max: 21},
			DE:         Range{Min: 3, Max: 6},
			Headcount:  46,
		},
		DepartmentKaitou: {
			Department: DepartmentKaitou,
			MaxA:       4,
			B:          Range{Min: 7, Max: 9},
			C:          Range{Min: 5, Max: 7},
			DE:         Range{Min: 1, Max: 2},
			Headcount:  16,
		},
	}
}
