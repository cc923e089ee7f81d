package core

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		// Valid: month/day/year
		{
			name:      "single digit month and day",
			input:     "1/2/1920",
			wantValid: true,
			wantYear:  1920,
			wantMonth: time.January,
			wantDay:   2,
		},
		{
			name:      "zero padded",
			input:     "03/04/1990",
			wantValid: true,
			wantYear:  1990,
			wantMonth: time.March,
			wantDay:   4,
		},
		{
			name:      "leap day",
			input:     "2/29/1944",
			wantValid: true,
			wantYear:  1944,
			wantMonth: time.February,
			wantDay:   29,
		},
		{
			name:      "surrounding whitespace",
			input:     "  12/31/1999 ",
			wantValid: true,
			wantYear:  1999,
			wantMonth: time.December,
			wantDay:   31,
		},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "ISO format", input: "1920-01-02", wantValid: false},
		{name: "two digit year", input: "1/2/20", wantValid: false},
		{name: "not a leap year", input: "2/29/1943", wantValid: false},
		{name: "month out of range", input: "13/1/1950", wantValid: false},
		{name: "text", input: "unknown", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ParseDate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}
			y, m, d := got.Time.Date()
			if y != tt.wantYear || m != tt.wantMonth || d != tt.wantDay {
				t.Errorf("ParseDate(%q) = %d-%d-%d, want %d-%d-%d",
					tt.input, y, m, d, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(ParseDate("3/4/1990")); got != "1990-03-04" {
		t.Errorf("FormatDate = %q, want %q", got, "1990-03-04")
	}
	if got := FormatDate(pgtype.Date{}); got != "" {
		t.Errorf("FormatDate(invalid) = %q, want empty", got)
	}
}

func TestSameDate(t *testing.T) {
	a := ParseDate("3/4/1990")
	b := ParseDate("03/04/1990")
	c := ParseDate("3/5/1990")

	tests := []struct {
		name string
		x, y pgtype.Date
		want bool
	}{
		{"equal days", a, b, true},
		{"different days", a, c, false},
		{"both absent", pgtype.Date{}, pgtype.Date{}, true},
		{"one absent", a, pgtype.Date{}, false},
	}
	for _, tt := range tests {
		if got := SameDate(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: SameDate = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Text Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"Oak Hill", true, "Oak Hill"},
		{"  padded  ", true, "padded"},
		{"", false, ""},
		{" \t ", false, ""},
	}
	for _, tt := range tests {
		got := ToPgText(tt.input)
		if got.Valid != tt.wantValid || got.String != tt.want {
			t.Errorf("ToPgText(%q) = %+v, want valid=%v %q", tt.input, got, tt.wantValid, tt.want)
		}
		if back := FromPgText(got); back != tt.want {
			t.Errorf("FromPgText(ToPgText(%q)) = %q, want %q", tt.input, back, tt.want)
		}
	}
}

func TestCell(t *testing.T) {
	row := []string{" a ", "b"}
	tests := []struct {
		i    int
		want string
	}{
		{0, "a"},
		{1, "b"},
		{2, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := cell(row, tt.i); got != tt.want {
			t.Errorf("cell(row, %d) = %q, want %q", tt.i, got, tt.want)
		}
	}
}
