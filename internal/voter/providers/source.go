// Package providers defines the External Source Adapter contract. A Source
// never persists; it answers Found (record, nil), NoMatch (IsNoMatch) or a
// transport failure (any other error).
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
)

// Source looks a voter record up in an authoritative system.
type Source interface {
	// ID names the source instance for logs and metrics.
	ID() string
	// Mode is the provenance stamped on records this source produces.
	Mode() models.DataSource
	Fetch(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error)
}

// Envelope is the wire shape shared by the live API and the static dataset.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Payload is the record shape inside an Envelope. Its field names follow the
// upstream API; responseType is numeric.
type Payload struct {
	EPICNo                          string `json:"epic_no"`
	Name                            string `json:"name"`
	NameInRegionalLang              string `json:"name_in_regional_lang"`
	Age                             any    `json:"age"`
	RelationType                    string `json:"relation_type"`
	RelationName                    string `json:"relation_name"`
	RelationNameInRegionalLang      string `json:"relation_name_in_regional_lang"`
	FatherName                      string `json:"father_name"`
	Gender                          string `json:"gender"`
	State                           string `json:"state"`
	District                        string `json:"district"`
	City                            string `json:"city"`
	Pincode                         any    `json:"pincode"`
	Country                         string `json:"country"`
	AddressLine                     string `json:"address_line"`
	AssemblyConstituencyNumber      any    `json:"assembly_constituency_number"`
	AssemblyConstituency            string `json:"assembly_constituency"`
	ParliamentaryConstituencyNumber any    `json:"parliamentary_constituency_number"`
	ParliamentaryConstituency       string `json:"parliamentary_constituency"`
	PartNumber                      any    `json:"part_number"`
	PartName                        string `json:"part_name"`
	SerialNumber                    any    `json:"serial_number"`
	PollingStation                  string `json:"polling_station"`
	Address                         string `json:"address"`
	Photo                           string `json:"photo"`
	ResponseType                    int    `json:"responseType"`
	Status                          string `json:"status"`
}

// DecodeEnvelope turns raw envelope bytes into a record for epic.
// Any shape other than a successful envelope describing epic is a NoMatch.
func DecodeEnvelope(providerID string, raw []byte, epic id.EPICNumber) (*models.VoterRecord, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, NewProviderError(ErrorBadData, providerID, "malformed envelope", err)
	}
	if !env.Success {
		return nil, NewProviderError(ErrorNotFound, providerID, "source reported no match", nil)
	}
	trimmed := strings.TrimSpace(string(env.Data))
	if trimmed == "" || trimmed == "null" {
		return nil, NewProviderError(ErrorNotFound, providerID, "envelope carries no data", nil)
	}
	var p Payload
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, NewProviderError(ErrorBadData, providerID, "malformed record", err)
	}
	if strings.TrimSpace(p.EPICNo) != epic.String() {
		return nil, NewProviderError(ErrorNotFound, providerID, "record does not match requested identifier", nil)
	}
	return p.toRecord(epic), nil
}

func (p Payload) toRecord(epic id.EPICNumber) *models.VoterRecord {
	return &models.VoterRecord{
		EPICNo:                          epic,
		Name:                            strings.TrimSpace(p.Name),
		NameInRegionalLang:              p.NameInRegionalLang,
		Age:                             scalar(p.Age),
		RelationType:                    p.RelationType,
		RelationName:                    p.RelationName,
		RelationNameInRegionalLang:      p.RelationNameInRegionalLang,
		FatherName:                      p.FatherName,
		Gender:                          p.Gender,
		State:                           p.State,
		District:                        p.District,
		City:                            p.City,
		Pincode:                         scalar(p.Pincode),
		Country:                         p.Country,
		AddressLine:                     p.AddressLine,
		AssemblyConstituencyNumber:      scalar(p.AssemblyConstituencyNumber),
		AssemblyConstituency:            p.AssemblyConstituency,
		ParliamentaryConstituencyNumber: scalar(p.ParliamentaryConstituencyNumber),
		ParliamentaryConstituency:       p.ParliamentaryConstituency,
		PartNumber:                      scalar(p.PartNumber),
		PartName:                        p.PartName,
		SerialNumber:                    scalar(p.SerialNumber),
		PollingStation:                  p.PollingStation,
		Address:                         p.Address,
		Photo:                           p.Photo,
		ResponseType:                    p.ResponseType,
		Status:                          p.Status,
	}
}

// scalar renders numeric-or-string upstream fields as strings. Numbers
// arrive as json.Number so their textual form is preserved.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		raw, _ := json.Marshal(t)
		return string(raw)
	}
}
