package core

// validation.go decides which extract rows are worth importing.
//
// Two checks run before any key is derived:
//  1. Header detection: a row carrying every canonical column name is the
//     header itself and is skipped.
//  2. Required fields: the decedent, cemetery and kin fields that make up
//     keys and mandatory columns must be non-empty after trimming.
//
// Rows failing either check are skipped without touching storage.

import (
	"fmt"
	"strings"
)

// requiredFields are the fields a row must carry to be imported.
var requiredFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldBirthDate,
	FieldDeathDate,
	FieldCemeteryName,
	FieldAddressOne,
	FieldCity,
	FieldRelationship,
	FieldKinFirstName,
	FieldKinLastName,
}

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult contains the result of validating a row.
type ValidationResult struct {
	Valid  bool              // True if all validations passed
	Errors []ValidationError // List of validation errors (empty if Valid)
}

// RowValidator gates rows before they reach storage.
type RowValidator struct {
	header map[string]struct{}
}

// NewRowValidator creates a validator for the canonical header.
func NewRowValidator() *RowValidator {
	header := make(map[string]struct{}, len(HeaderColumns))
	for _, h := range HeaderColumns {
		header[h] = struct{}{}
	}
	return &RowValidator{header: header}
}

// IsHeaderRow reports whether every canonical header name appears verbatim in row.
func (v *RowValidator) IsHeaderRow(row []string) bool {
	seen := make(map[string]struct{}, len(row))
	for _, value := range row {
		if _, ok := v.header[value]; ok {
			seen[value] = struct{}{}
		}
	}
	return len(seen) == len(v.header)
}

// ValidateRow checks every required field and returns all failures.
func (v *RowValidator) ValidateRow(row []string, layout Layout) ValidationResult {
	result := ValidationResult{Valid: true}
	fields := layout.Resolve(row)

	for _, f := range requiredFields {
		if fields.Get(f) == "" {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   f.String(),
				Message: "required field is empty",
			})
		}
	}
	return result
}

// Usable reports whether a row should be imported: not the header and all
// required fields present.
func (v *RowValidator) Usable(row []string, layout Layout) bool {
	if v.IsHeaderRow(row) {
		return false
	}
	for _, f := range requiredFields {
		idx, ok := layout.Columns[f]
		if !ok || cell(row, idx) == "" {
			return false
		}
	}
	return true
}

// describe joins validation errors for logging.
func (r ValidationResult) describe() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
