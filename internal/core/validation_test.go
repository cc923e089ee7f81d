package core

import (
	"strings"
	"testing"
)

func TestIsHeaderRow(t *testing.T) {
	v := NewRowValidator()

	reversed := make([]string, len(HeaderColumns))
	for i, h := range HeaderColumns {
		reversed[len(HeaderColumns)-1-i] = h
	}

	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{"canonical header", HeaderColumns, true},
		{"any order", reversed, true},
		{"with extra column", append(append([]string{}, HeaderColumns...), "foreign_addr"), true},
		{"missing one name", HeaderColumns[1:], false},
		{"case differs", append([]string{"D_FIRST_NAME"}, HeaderColumns[1:]...), false},
		{"data row", standardRow(), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsHeaderRow(tt.row); got != tt.want {
				t.Errorf("IsHeaderRow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsable(t *testing.T) {
	v := NewRowValidator()

	without := func(idx int) []string {
		row := standardRow()
		row[idx] = "  "
		return row
	}

	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{"complete row", standardRow(), true},
		{"optional middle name blank", without(1), true},
		{"optional branch blank", without(22), true},
		{"first name blank", without(0), false},
		{"death date blank", without(5), false},
		{"cemetery address blank", without(10), false},
		{"kin last name blank", without(20), false},
		{"header", HeaderColumns, false},
		{"truncated", standardRow()[:17], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Usable(tt.row, LayoutFor(tt.row)); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsable_ExtraColumn(t *testing.T) {
	v := NewRowValidator()
	row := extraRow()
	if !v.Usable(row, LayoutFor(row)) {
		t.Fatal("complete extra-column row should be usable")
	}

	// Column 18 holds the relationship only in the extra-column shape.
	row[18] = ""
	if v.Usable(row, LayoutFor(row)) {
		t.Error("row without relationship should not be usable")
	}
}

func TestValidateRow_ReportsEveryMissingField(t *testing.T) {
	v := NewRowValidator()
	row := standardRow()
	row[0] = ""
	row[12] = ""

	result := v.ValidateRow(row, StandardLayout)
	if result.Valid {
		t.Fatal("Valid = true, want false")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(result.Errors), result.Errors)
	}
	desc := result.describe()
	for _, want := range []string{"first_name", "city", "required field is empty"} {
		if !strings.Contains(desc, want) {
			t.Errorf("describe() = %q, missing %q", desc, want)
		}
	}
}

func TestIsEmptyRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{"nil", nil, true},
		{"single blank", []string{""}, true},
		{"whitespace only", []string{" ", "\t", ""}, true},
		{"one value", []string{"", "x", ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmptyRow(tt.row); got != tt.want {
				t.Errorf("isEmptyRow(%q) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}
