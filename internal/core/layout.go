package core

// layout.go maps semantic field names to column positions.
//
// An extract arrives in one of two shapes. The standard shape matches
// HeaderColumns. The extra-column shape carries one more field for a foreign
// address indicator: every position from 11 onward moves right by one, the
// cemetery phone takes the slot address line two has in the standard shape,
// and address line two and URL are not read at all.

import "strings"

// Field is a semantic column of an extract row.
type Field int

const (
	FieldFirstName Field = iota
	FieldMiddleName
	FieldLastName
	FieldBirthDate
	FieldDeathDate
	FieldSection
	FieldRow
	FieldSite
	FieldCemeteryName
	FieldAddressOne
	FieldAddressTwo
	FieldCity
	FieldState
	FieldZip
	FieldURL
	FieldPhone
	FieldRelationship
	FieldKinFirstName
	FieldKinMiddleName
	FieldKinLastName
	FieldKinSuffix
	FieldBranch
	FieldRank
	FieldWar
)

var fieldNames = map[Field]string{
	FieldFirstName:     "first_name",
	FieldMiddleName:    "middle_name",
	FieldLastName:      "last_name",
	FieldBirthDate:     "birth_date",
	FieldDeathDate:     "death_date",
	FieldSection:       "section",
	FieldRow:           "row",
	FieldSite:          "site",
	FieldCemeteryName:  "cemetery_name",
	FieldAddressOne:    "address_one",
	FieldAddressTwo:    "address_two",
	FieldCity:          "city",
	FieldState:         "state",
	FieldZip:           "zip",
	FieldURL:           "url",
	FieldPhone:         "phone",
	FieldRelationship:  "relationship",
	FieldKinFirstName:  "kin_first_name",
	FieldKinMiddleName: "kin_middle_name",
	FieldKinLastName:   "kin_last_name",
	FieldKinSuffix:     "kin_suffix",
	FieldBranch:        "branch",
	FieldRank:          "rank",
	FieldWar:           "war",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// HeaderColumns is the canonical header row of a standard extract.
var HeaderColumns = []string{
	"d_first_name", "d_mid_name", "d_last_name", "d_suffix",
	"d_birth_date", "d_death_date",
	"section_id", "row_num", "site_num",
	"cem_name", "cem_addr_one", "cem_addr_two",
	"city", "state", "zip",
	"cem_url", "cem_phone",
	"relationship", "v_first_name", "v_mid_name", "v_last_name", "v_suffix",
	"branch", "rank", "war",
}

// Layout maps each extracted field to its column index.
// Fields missing from a layout resolve to "".
type Layout struct {
	Name    string
	Columns map[Field]int
}

// StandardLayout reads rows shaped like HeaderColumns.
var StandardLayout = Layout{
	Name: "standard",
	Columns: map[Field]int{
		FieldFirstName:     0,
		FieldMiddleName:    1,
		FieldLastName:      2,
		FieldBirthDate:     4,
		FieldDeathDate:     5,
		FieldSection:       6,
		FieldRow:           7,
		FieldSite:          8,
		FieldCemeteryName:  9,
		FieldAddressOne:    10,
		FieldAddressTwo:    11,
		FieldCity:          12,
		FieldState:         13,
		FieldZip:           14,
		FieldURL:           15,
		FieldRelationship:  17,
		FieldKinFirstName:  18,
		FieldKinMiddleName: 19,
		FieldKinLastName:   20,
		FieldKinSuffix:     21,
		FieldBranch:        22,
		FieldRank:          23,
		FieldWar:           24,
	},
}

// ExtraColumnLayout reads rows carrying the foreign address indicator.
var ExtraColumnLayout = Layout{
	Name: "extra-column",
	Columns: map[Field]int{
		FieldFirstName:     0,
		FieldMiddleName:    1,
		FieldLastName:      2,
		FieldBirthDate:     4,
		FieldDeathDate:     5,
		FieldSection:       6,
		FieldRow:           7,
		FieldSite:          8,
		FieldCemeteryName:  9,
		FieldAddressOne:    10,
		FieldPhone:         11,
		FieldCity:          13,
		FieldState:         14,
		FieldZip:           15,
		FieldRelationship:  18,
		FieldKinFirstName:  19,
		FieldKinMiddleName: 20,
		FieldKinLastName:   21,
		FieldKinSuffix:     22,
		FieldBranch:        23,
		FieldRank:          24,
		FieldWar:           25,
	},
}

// IsExtraColumn reports whether a row uses the extra-column shape.
func IsExtraColumn(row []string) bool {
	return len(row) > len(HeaderColumns)+1
}

// LayoutFor selects the layout for a row by its field count.
func LayoutFor(row []string) Layout {
	if IsExtraColumn(row) {
		return ExtraColumnLayout
	}
	return StandardLayout
}

// Fields is a row resolved through a layout. Values are trimmed.
type Fields map[Field]string

// Resolve extracts every field the layout knows about from row.
func (l Layout) Resolve(row []string) Fields {
	f := make(Fields, len(l.Columns))
	for field, idx := range l.Columns {
		f[field] = cell(row, idx)
	}
	return f
}

// Get returns the trimmed value of field, or "" when absent.
func (f Fields) Get(field Field) string {
	return strings.TrimSpace(f[field])
}
