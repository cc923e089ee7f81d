package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil", nil, ""},
		{"busy", ErrTooManyImports, "IMP001"},
		{"wrapped busy", fmt.Errorf("acquire: %w", ErrTooManyImports), "IMP001"},
		{"import not found", ErrImportNotFound, "IMP002"},
		{"record not found", fmt.Errorf("find veteran: %w", ErrNotFound), "VAL002"},
		{"empty file", ErrEmptyFile, "FILE004"},
		{"too large", fmt.Errorf("%w: 10 bytes", ErrFileTooLarge), "FILE001"},
		{"cancelled row", &RowError{Row: 3, Err: context.Canceled}, "IMP003"},
		{"deadline", &RowError{Row: 9, Err: context.DeadlineExceeded}, "IMP004"},
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "veterans_pkey"`), "DB001"},
		{"sqlite unique", errors.New("UNIQUE constraint failed: veterans.key"), "DB001"},
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), "DB002"},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), "DB005"},
		{"connection", errors.New("dial tcp: connection refused"), "DB003"},
		{"missing file", errors.New("open /x.csv: no such file or directory"), "FILE005"},
		{"missing object", errors.New("api error NoSuchKey: not found"), "FILE005"},
		{"csv parse", errors.New(`parse error on line 4, column 2: bare " in non-quoted field`), "FILE002"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got, tt.wantCode)
			}
		})
	}
}

func TestRowError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&RowError{Row: 7, Err: inner})

	if err.Error() != "row 7: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("RowError should unwrap to its cause")
	}

	var rowErr *RowError
	if !errors.As(fmt.Errorf("import: %w", err), &rowErr) || rowErr.Row != 7 {
		t.Error("errors.As should find the row number through wrapping")
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyImports)
	if !strings.Contains(got, "(Code: IMP001)") {
		t.Errorf("FormatUserError = %q", got)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(ErrEmptyFile) {
		t.Error("ErrEmptyFile should be user facing")
	}
	if IsUserFacing(errors.New("mystery")) {
		t.Error("unmatched errors are not user facing")
	}
	if IsUserFacing(nil) {
		t.Error("nil is not user facing")
	}
}
