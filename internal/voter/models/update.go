package models

import "time"

// UpdateRecord is a partial update of a VoterRecord. Nil fields are left
// untouched. EPICNo and ID are immutable and have no counterpart here.
type UpdateRecord struct {
	Name                            *string
	NameInRegionalLang              *string
	Age                             *string
	RelationType                    *string
	RelationName                    *string
	RelationNameInRegionalLang      *string
	FatherName                      *string
	Gender                          *string
	State                           *string
	District                        *string
	City                            *string
	Pincode                         *string
	Country                         *string
	AddressLine                     *string
	AssemblyConstituencyNumber      *string
	AssemblyConstituency            *string
	ParliamentaryConstituencyNumber *string
	ParliamentaryConstituency       *string
	PartNumber                      *string
	PartName                        *string
	SerialNumber                    *string
	PollingStation                  *string
	Address                         *string
	Photo                           *string
	ResponseType                    *int

	Status     *string
	IsDisabled *bool
	DisabledBy *string
	DisabledAt *time.Time
	EnabledBy  *string
	EnabledAt  *time.Time

	// ClearDisabledAt and ClearEnabledAt reset the timestamps to unset.
	ClearDisabledAt bool
	ClearEnabledAt  bool
}

// IsEmpty reports whether the update would change nothing but UpdatedAt.
func (u UpdateRecord) IsEmpty() bool {
	return u == UpdateRecord{}
}

// Apply merges the set fields into r and bumps UpdatedAt.
func (u UpdateRecord) Apply(r *VoterRecord, now time.Time) {
	setString(&r.Name, u.Name)
	setString(&r.NameInRegionalLang, u.NameInRegionalLang)
	setString(&r.Age, u.Age)
	setString(&r.RelationType, u.RelationType)
	setString(&r.RelationName, u.RelationName)
	setString(&r.RelationNameInRegionalLang, u.RelationNameInRegionalLang)
	setString(&r.FatherName, u.FatherName)
	setString(&r.Gender, u.Gender)
	setString(&r.State, u.State)
	setString(&r.District, u.District)
	setString(&r.City, u.City)
	setString(&r.Pincode, u.Pincode)
	setString(&r.Country, u.Country)
	setString(&r.AddressLine, u.AddressLine)
	setString(&r.AssemblyConstituencyNumber, u.AssemblyConstituencyNumber)
	setString(&r.AssemblyConstituency, u.AssemblyConstituency)
	setString(&r.ParliamentaryConstituencyNumber, u.ParliamentaryConstituencyNumber)
	setString(&r.ParliamentaryConstituency, u.ParliamentaryConstituency)
	setString(&r.PartNumber, u.PartNumber)
	setString(&r.PartName, u.PartName)
	setString(&r.SerialNumber, u.SerialNumber)
	setString(&r.PollingStation, u.PollingStation)
	setString(&r.Address, u.Address)
	setString(&r.Photo, u.Photo)
	if u.ResponseType != nil {
		r.ResponseType = *u.ResponseType
	}

	setString(&r.Status, u.Status)
	if u.IsDisabled != nil {
		r.IsDisabled = *u.IsDisabled
	}
	setString(&r.DisabledBy, u.DisabledBy)
	setString(&r.EnabledBy, u.EnabledBy)
	switch {
	case u.ClearDisabledAt:
		r.DisabledAt = nil
	case u.DisabledAt != nil:
		t := *u.DisabledAt
		r.DisabledAt = &t
	}
	switch {
	case u.ClearEnabledAt:
		r.EnabledAt = nil
	case u.EnabledAt != nil:
		t := *u.EnabledAt
		r.EnabledAt = &t
	}
	r.UpdatedAt = now
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
