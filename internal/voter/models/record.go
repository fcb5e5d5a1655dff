package models

import (
	"time"

	id "voterdata/pkg/domain"
	dErrors "voterdata/pkg/domain-errors"
)

// DataSource records which tier produced a record.
type DataSource string

const (
	DataSourceAPI         DataSource = "api"
	DataSourceDatabase    DataSource = "database"
	DataSourceCache       DataSource = "cache"
	DataSourceStatic      DataSource = "static"
	DataSourceExcelImport DataSource = "excel_import"
)

func (d DataSource) IsValid() bool {
	switch d {
	case DataSourceAPI, DataSourceDatabase, DataSourceCache, DataSourceStatic, DataSourceExcelImport:
		return true
	}
	return false
}

// StatusActive is the default free-text status of a new record.
const StatusActive = "active"

// VoterRecord is a per-person record keyed by EPIC number.
//
// Invariants:
//   - EPICNo is non-empty and unique across all records, disabled ones included
//   - EPICNo is immutable once set
//   - a disabled record carries DisabledBy and DisabledAt
type VoterRecord struct {
	ID     id.RecordID   `json:"id"`
	EPICNo id.EPICNumber `json:"epic_no"`
	Name   string        `json:"name"`

	NameInRegionalLang              string `json:"name_in_regional_lang,omitempty"`
	Age                             string `json:"age,omitempty"`
	RelationType                    string `json:"relation_type,omitempty"`
	RelationName                    string `json:"relation_name,omitempty"`
	RelationNameInRegionalLang      string `json:"relation_name_in_regional_lang,omitempty"`
	FatherName                      string `json:"father_name,omitempty"`
	Gender                          string `json:"gender,omitempty"`
	State                           string `json:"state,omitempty"`
	District                        string `json:"district,omitempty"`
	City                            string `json:"city,omitempty"`
	Pincode                         string `json:"pincode,omitempty"`
	Country                         string `json:"country,omitempty"`
	AddressLine                     string `json:"address_line,omitempty"`
	AssemblyConstituencyNumber      string `json:"assembly_constituency_number,omitempty"`
	AssemblyConstituency            string `json:"assembly_constituency,omitempty"`
	ParliamentaryConstituencyNumber string `json:"parliamentary_constituency_number,omitempty"`
	ParliamentaryConstituency       string `json:"parliamentary_constituency,omitempty"`
	PartNumber                      string `json:"part_number,omitempty"`
	PartName                        string `json:"part_name,omitempty"`
	SerialNumber                    string `json:"serial_number,omitempty"`
	PollingStation                  string `json:"polling_station,omitempty"`
	Address                         string `json:"address,omitempty"`
	Photo                           string `json:"photo,omitempty"`
	ResponseType                    int    `json:"responseType,omitempty"`

	Status     string     `json:"status"`
	IsDisabled bool       `json:"isDisabled"`
	DisabledBy string     `json:"disabledBy,omitempty"`
	DisabledAt *time.Time `json:"disabledAt,omitempty"`
	EnabledBy  string     `json:"enabledBy,omitempty"`
	EnabledAt  *time.Time `json:"enabledAt,omitempty"`
	DataSource DataSource `json:"dataSource"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// NewVoterRecord stamps identity, provenance and timestamps onto fetched or
// imported attributes. Status defaults to active.
func NewVoterRecord(attrs VoterRecord, source DataSource, now time.Time) (*VoterRecord, error) {
	if attrs.EPICNo == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "epic number is required")
	}
	if !source.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid data source")
	}
	r := attrs
	r.ID = id.NewRecordID()
	r.DataSource = source
	r.IsDisabled = false
	r.DisabledBy, r.DisabledAt = "", nil
	r.EnabledBy, r.EnabledAt = "", nil
	if r.Status == "" {
		r.Status = StatusActive
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	return &r, nil
}

// WithSource returns a copy tagged with the tier that served it.
func (r *VoterRecord) WithSource(source DataSource) *VoterRecord {
	out := *r
	out.DataSource = source
	return &out
}

// Clone returns a deep copy safe to hand to another goroutine.
func (r *VoterRecord) Clone() *VoterRecord {
	out := *r
	if r.DisabledAt != nil {
		t := *r.DisabledAt
		out.DisabledAt = &t
	}
	if r.EnabledAt != nil {
		t := *r.EnabledAt
		out.EnabledAt = &t
	}
	return &out
}

// DisableUpdate builds the update that soft-deletes a record.
func DisableUpdate(actor string, now time.Time) UpdateRecord {
	disabled := true
	var blank string
	return UpdateRecord{
		IsDisabled:     &disabled,
		DisabledBy:     &actor,
		DisabledAt:     &now,
		EnabledBy:      &blank,
		ClearEnabledAt: true,
	}
}

// EnableUpdate builds the update that restores a record. The disable markers
// are cleared and the enabling actor is recorded.
func EnableUpdate(actor string, now time.Time) UpdateRecord {
	disabled := false
	var blank string
	return UpdateRecord{
		IsDisabled:      &disabled,
		DisabledBy:      &blank,
		ClearDisabledAt: true,
		EnabledBy:       &actor,
		EnabledAt:       &now,
	}
}
