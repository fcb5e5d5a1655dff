package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"voterdata/internal/voter/models"
	platformstrings "voterdata/pkg/platform/strings"
)

// SearchRequest carries the identifiers for a batch lookup. epicNumbers may
// be a comma-separated string or a JSON array of strings.
type SearchRequest struct {
	EPICNumbers epicList `json:"epicNumbers"`
}

type epicList []string

func (l *epicList) UnmarshalJSON(data []byte) error {
	var csv string
	if err := json.Unmarshal(data, &csv); err == nil {
		*l = platformstrings.SplitList(csv)
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return errors.New("epicNumbers must be a string or an array of strings")
	}
	*l = platformstrings.DedupeAndTrim(values)
	return nil
}

// StatusRequest is the optional body of disable and enable calls.
type StatusRequest struct {
	EPICNo string `json:"epic_no"`
}

func (r StatusRequest) conflictsWith(pathEPIC string) bool {
	body := strings.TrimSpace(r.EPICNo)
	return body != "" && body != strings.TrimSpace(pathEPIC)
}

// UploadResponse reports the outcome of a spreadsheet import.
type UploadResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Summary UploadSummary `json:"summary"`
	Details UploadDetails `json:"details"`
}

type UploadSummary struct {
	TotalRows       int `json:"totalRows"`
	Successful      int `json:"successful"`
	Failed          int `json:"failed"`
	DuplicatesCount int `json:"duplicatesCount"`
}

type UploadDetails struct {
	Duplicates []string `json:"duplicates"`
	Errors     []string `json:"errors"`
}

func toUploadResponse(result *models.ImportResult) UploadResponse {
	duplicates := result.Duplicates
	if duplicates == nil {
		duplicates = []string{}
	}
	rowErrors := result.Errors
	if rowErrors == nil {
		rowErrors = []string{}
	}
	return UploadResponse{
		Success: true,
		Message: "Excel file processed successfully",
		Summary: UploadSummary{
			TotalRows:       result.TotalRows,
			Successful:      result.Successful,
			Failed:          result.Failed,
			DuplicatesCount: len(duplicates),
		},
		Details: UploadDetails{
			Duplicates: duplicates,
			Errors:     rowErrors,
		},
	}
}
