package core

import "testing"

// standardRow returns a complete 25-column row.
func standardRow() []string {
	return []string{
		"John", "Q", "Doe", "Jr", "1/2/1920", "3/4/1990",
		"A", "1", "2",
		"Oak Hill", "1 Main St", "Suite 2",
		"Springfield", "IL", "62701",
		"oakhill.example", "555-0100",
		"Son", "Jim", "R", "Doe", "Sr",
		"Army", "PFC", "WWII",
	}
}

// extraRow returns a complete row in the extra-column shape.
func extraRow() []string {
	return []string{
		"Mary", "", "Roe", "", "5/6/1925", "7/8/2001",
		"B", "3", "4",
		"Willamette", "11800 SE Mt Scott Blvd", "555-0199", "N",
		"Portland", "OR", "97086",
		"willamette.example", "",
		"Daughter", "Ann", "", "Roe", "",
		"Navy", "Ensign", "Korea",
		"",
	}
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"short row", 3, "standard"},
		{"standard width", 25, "standard"},
		{"one trailing column", 26, "standard"},
		{"extra column", 27, "extra-column"},
		{"wider", 30, "extra-column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LayoutFor(make([]string, tt.n)).Name; got != tt.want {
				t.Errorf("LayoutFor(%d cols) = %s, want %s", tt.n, got, tt.want)
			}
		})
	}
}

func TestResolve_Standard(t *testing.T) {
	f := StandardLayout.Resolve(standardRow())

	tests := []struct {
		field Field
		want  string
	}{
		{FieldFirstName, "John"},
		{FieldLastName, "Doe"},
		{FieldDeathDate, "3/4/1990"},
		{FieldCemeteryName, "Oak Hill"},
		{FieldAddressTwo, "Suite 2"},
		{FieldURL, "oakhill.example"},
		{FieldPhone, ""},
		{FieldKinSuffix, "Sr"},
		{FieldWar, "WWII"},
	}
	for _, tt := range tests {
		if got := f.Get(tt.field); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestResolve_ExtraColumn(t *testing.T) {
	row := extraRow()
	f := LayoutFor(row).Resolve(row)

	tests := []struct {
		field Field
		want  string
	}{
		{FieldFirstName, "Mary"},
		{FieldAddressOne, "11800 SE Mt Scott Blvd"},
		{FieldPhone, "555-0199"},
		{FieldAddressTwo, ""},
		{FieldURL, ""},
		{FieldCity, "Portland"},
		{FieldState, "OR"},
		{FieldZip, "97086"},
		{FieldRelationship, "Daughter"},
		{FieldKinLastName, "Roe"},
		{FieldBranch, "Navy"},
		{FieldRank, "Ensign"},
		{FieldWar, "Korea"},
	}
	for _, tt := range tests {
		if got := f.Get(tt.field); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestResolve_ShortRowYieldsEmpty(t *testing.T) {
	f := StandardLayout.Resolve([]string{"John", "", "Doe"})
	if f.Get(FieldWar) != "" || f.Get(FieldCity) != "" {
		t.Errorf("missing columns should resolve to empty, got %v", f)
	}
}

func TestFieldString(t *testing.T) {
	if FieldKinFirstName.String() != "kin_first_name" {
		t.Errorf("String() = %q", FieldKinFirstName.String())
	}
	if Field(99).String() != "unknown" {
		t.Errorf("String() of unknown field = %q", Field(99).String())
	}
}

// asExtraColumn rewrites a standard row into the extra-column shape: the
// phone takes slot 11, the indicator follows, and the rest shifts right.
func asExtraColumn(std []string) []string {
	row := append([]string{}, std[:11]...)
	row = append(row, std[16], "N")
	row = append(row, std[12:]...)
	return append(row, "")
}

func TestBuildRecords_LayoutsAgree(t *testing.T) {
	std := standardRow()
	extra := asExtraColumn(std)
	if LayoutFor(extra).Name != "extra-column" {
		t.Fatalf("rewritten row has %d columns, want the extra-column layout", len(extra))
	}

	fromStd := BuildRecords(StandardLayout.Resolve(std))
	fromExtra := BuildRecords(LayoutFor(extra).Resolve(extra))

	if fromStd.Kin != fromExtra.Kin {
		t.Errorf("Kin differs:\nstandard = %+v\nextra    = %+v", fromStd.Kin, fromExtra.Kin)
	}
	if fromStd.Burial != fromExtra.Burial {
		t.Errorf("Burial differs:\nstandard = %+v\nextra    = %+v", fromStd.Burial, fromExtra.Burial)
	}
	if fromStd.Veteran.Key != fromExtra.Veteran.Key {
		t.Errorf("veteran key = %q, want %q", fromExtra.Veteran.Key, fromStd.Veteran.Key)
	}
	if fromStd.Branches != fromExtra.Branches || fromStd.Ranks != fromExtra.Ranks || fromStd.Wars != fromExtra.Wars {
		t.Errorf("vocabulary differs: standard %q/%q/%q, extra %q/%q/%q",
			fromStd.Branches, fromStd.Ranks, fromStd.Wars,
			fromExtra.Branches, fromExtra.Ranks, fromExtra.Wars)
	}
	if fromExtra.Cemetery.Phone != "555-0100" || fromExtra.Cemetery.City != "Springfield" {
		t.Errorf("extra-column cemetery = %+v", fromExtra.Cemetery)
	}
}
