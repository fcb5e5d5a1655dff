package importer

import "strings"

// field is a canonical record attribute a column can feed.
type field int

const (
	fieldEPIC field = iota
	fieldName
	fieldSerialNumber
	fieldPartNumber
	fieldRelationName
	fieldAddressLine
	fieldGender
)

// headerFields maps normalized header labels to fields. Unlisted columns
// are ignored.
var headerFields = map[string]field{
	"epic":          fieldEPIC,
	"name":          fieldName,
	"sl no":         fieldSerialNumber,
	"part/serial":   fieldPartNumber,
	"relative name": fieldRelationName,
	"house":         fieldAddressLine,
	"gender":        fieldGender,
}

var requiredFields = []struct {
	field field
	label string
}{
	{fieldEPIC, "EPIC"},
	{fieldName, "Name"},
}

// columnMap records which column index feeds each field. The first column
// carrying a label wins.
type columnMap map[field]int

func mapHeader(header []string) columnMap {
	cols := make(columnMap, len(headerFields))
	for i, label := range header {
		f, ok := headerFields[strings.ToLower(strings.Join(strings.Fields(label), " "))]
		if !ok {
			continue
		}
		if _, seen := cols[f]; !seen {
			cols[f] = i
		}
	}
	return cols
}

// missing returns the labels of required columns absent from the header.
func (c columnMap) missing() []string {
	var out []string
	for _, r := range requiredFields {
		if _, ok := c[r.field]; !ok {
			out = append(out, r.label)
		}
	}
	return out
}

func (c columnMap) value(row []string, f field) string {
	i, ok := c[f]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
