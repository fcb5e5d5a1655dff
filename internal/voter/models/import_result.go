package models

import "fmt"

// RowError reports a problem with a single spreadsheet row. Row is the
// 1-based spreadsheet row number, header included.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

// ImportResult summarises one import call. It is never persisted.
type ImportResult struct {
	TotalRows  int
	Successful int
	Failed     int
	Duplicates []string
	Errors     []string
}

// AddError records a row-level validation failure.
func (r *ImportResult) AddError(row int, reason string) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Row: row, Reason: reason}.String())
}

// AddDuplicate records a row rejected because its identifier already exists.
func (r *ImportResult) AddDuplicate(description string) {
	r.Failed++
	r.Duplicates = append(r.Duplicates, description)
}

// DemoteToError moves a provisionally successful row to the error list.
func (r *ImportResult) DemoteToError(row int, reason string) {
	r.Successful--
	r.AddError(row, reason)
}

// DemoteToDuplicate moves a provisionally successful row to the duplicate list.
func (r *ImportResult) DemoteToDuplicate(description string) {
	r.Successful--
	r.AddDuplicate(description)
}
