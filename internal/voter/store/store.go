// Package store holds Record Store implementations for voter records.
//
// Every implementation enforces uniqueness of epic_no across disabled and
// enabled records, returns sentinel.ErrNotFound for absent records and
// sentinel.ErrConflict for a duplicate identifier.
package store

import (
	"strings"

	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
)

// matchesListing reports whether r belongs in a listing for opts.
func matchesListing(r *models.VoterRecord, opts models.ListOptions) bool {
	if r.IsDisabled {
		return false
	}
	f := opts.Filter
	if f.State != "" && r.State != f.State {
		return false
	}
	if f.District != "" && r.District != f.District {
		return false
	}
	if f.Gender != "" && r.Gender != f.Gender {
		return false
	}
	if f.DataSource != "" && r.DataSource != f.DataSource {
		return false
	}
	if opts.Search != "" {
		needle := strings.ToLower(opts.Search)
		if !strings.Contains(strings.ToLower(r.Name), needle) &&
			!strings.Contains(strings.ToLower(r.EPICNo.String()), needle) {
			return false
		}
	}
	return true
}

func epicStrings(epics []id.EPICNumber) []string {
	out := make([]string, len(epics))
	for i, e := range epics {
		out[i] = e.String()
	}
	return out
}
