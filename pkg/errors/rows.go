package errors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RowContext locates a problem inside a spreadsheet or CSV file
type RowContext struct {
	File     string `json:"file"`
	Sheet    string `json:"sheet,omitempty"`
	Row      int    `json:"row"`
	Column   string `json:"column,omitempty"`
	Value    string `json:"value,omitempty"`
	Expected string `json:"expected,omitempty"`
}

// RowError is a parse error tied to one row of an input file
type RowError struct {
	*DSFError
	Location    *RowContext `json:"location"`
	Recoverable bool        `json:"recoverable"`
	Examples    []string    `json:"examples,omitempty"`
}

// Error implements the error interface with the row location appended
func (e *RowError) Error() string {
	parts := []string{e.DSFError.Error()}

	if e.Location != nil {
		location := fmt.Sprintf("at %s", filepath.Base(e.Location.File))
		if e.Location.Sheet != "" {
			location += fmt.Sprintf("[%s]", e.Location.Sheet)
		}
		if e.Location.Row > 0 {
			location += fmt.Sprintf(":%d", e.Location.Row)
		}
		if e.Location.Column != "" {
			location += fmt.Sprintf(" column '%s'", e.Location.Column)
		}
		parts = append(parts, location)
	}

	return strings.Join(parts, " ")
}

// GetDetailedError returns a detailed multi-line error description
func (e *RowError) GetDetailedError() string {
	lines := []string{fmt.Sprintf("ERROR: %s", e.Message)}

	if e.Location != nil {
		lines = append(lines, fmt.Sprintf("  → File: %s", e.Location.File))
		if e.Location.Sheet != "" {
			lines = append(lines, fmt.Sprintf("  → Sheet: %s", e.Location.Sheet))
		}
		if e.Location.Row > 0 {
			lines = append(lines, fmt.Sprintf("  → Row: %d", e.Location.Row))
		}
		if e.Location.Column != "" {
			lines = append(lines, fmt.Sprintf("  → Column: %s", e.Location.Column))
		}
		if e.Location.Value != "" {
			lines = append(lines, fmt.Sprintf("  → Value: '%s'", e.Location.Value))
		}
		if e.Location.Expected != "" {
			lines = append(lines, fmt.Sprintf("  → Expected: %s", e.Location.Expected))
		}
	}

	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  → Suggestion: %s", e.Suggestion))
	}

	if len(e.Examples) > 0 {
		lines = append(lines, "  → Examples:")
		for _, example := range e.Examples {
			lines = append(lines, fmt.Sprintf("    • %s", example))
		}
	}

	return strings.Join(lines, "\n")
}

// NewRowError creates a row-level parse error
func NewRowError(code ErrorCode, loc *RowContext, message string, cause error) *RowError {
	base := build(CategoryParse, code, message, cause)

	if loc != nil {
		base.WithContext("file", loc.File).
			WithContext("row", loc.Row).
			WithContext("column", loc.Column).
			WithContext("value", loc.Value)
	}

	return &RowError{
		DSFError:    base,
		Location:    loc,
		Recoverable: true,
	}
}

// WithExamples adds example values to help fix the error
func (e *RowError) WithExamples(examples ...string) *RowError {
	e.Examples = examples
	return e
}

// WithSuggestion adds a suggestion and returns the RowError
func (e *RowError) WithSuggestion(suggestion string) *RowError {
	e.DSFError.WithSuggestion(suggestion)
	return e
}

// InvalidAmountError creates an error for an unreadable amount cell
func InvalidAmountError(file string, row int, column string, value string) *RowError {
	loc := &RowContext{File: file, Row: row, Column: column, Value: value, Expected: "non-negative number"}
	return NewRowError(CodeInvalidAmount, loc, "invalid amount format", nil).
		WithExamples("1234.56", "1 234,56", "0").
		WithSuggestion("remove currency symbols and keep a single decimal separator")
}

// MissingColumnError creates an error for missing required columns
func MissingColumnError(file string, expected []string, actual []string) *RowError {
	missing := findMissingColumns(expected, actual)

	loc := &RowContext{
		File:     file,
		Row:      1,
		Expected: fmt.Sprintf("columns: %s", strings.Join(expected, ", ")),
	}

	err := NewRowError(CodeMissingColumn, loc, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil).
		WithSuggestion("add the missing columns to the header row")
	err.Recoverable = false
	return err
}

// EmptyValueError creates an error for empty required values
func EmptyValueError(file string, row int, column string) *RowError {
	loc := &RowContext{File: file, Row: row, Column: column, Expected: "non-empty value"}
	return NewRowError(CodeMissingField, loc, "required field is empty", nil).
		WithSuggestion("provide a value for this required field")
}

// RowErrorCollector collects row errors during parsing
type RowErrorCollector struct {
	errors    []*RowError
	maxErrors int
}

// NewRowErrorCollector creates a collector that stops accepting after maxErrors
func NewRowErrorCollector(maxErrors int) *RowErrorCollector {
	return &RowErrorCollector{maxErrors: maxErrors}
}

// Add records err and reports whether parsing may continue
func (c *RowErrorCollector) Add(err *RowError) bool {
	if err == nil {
		return true
	}

	c.errors = append(c.errors, err)

	if c.maxErrors > 0 && len(c.errors) >= c.maxErrors {
		return false
	}

	return err.Recoverable
}

// HasErrors returns true if any errors have been collected
func (c *RowErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// GetErrors returns all collected errors
func (c *RowErrorCollector) GetErrors() []*RowError {
	return c.errors
}

// GetSummary returns an error summary for all collected errors
func (c *RowErrorCollector) GetSummary() *ErrorSummary {
	base := make([]*DSFError, len(c.errors))
	for i, err := range c.errors {
		base[i] = err.DSFError
	}
	return NewErrorSummary(base)
}

func findMissingColumns(expected, actual []string) []string {
	actualSet := make(map[string]bool)
	for _, col := range actual {
		actualSet[strings.ToLower(strings.TrimSpace(col))] = true
	}

	var missing []string
	for _, col := range expected {
		if !actualSet[strings.ToLower(strings.TrimSpace(col))] {
			missing = append(missing, col)
		}
	}

	return missing
}

// FormatRowErrorsForUser formats multiple row errors in a user-friendly way
func FormatRowErrorsForUser(errs []*RowError) string {
	if len(errs) == 0 {
		return "No parse errors"
	}

	if len(errs) == 1 {
		return errs[0].GetDetailedError()
	}

	lines := []string{fmt.Sprintf("Found %d parse errors:", len(errs))}

	maxDetailed := 3
	for i, err := range errs {
		if i == maxDetailed {
			lines = append(lines, "", fmt.Sprintf("... and %d more errors", len(errs)-maxDetailed))
			break
		}
		lines = append(lines, "", err.GetDetailedError())
	}

	return strings.Join(lines, "\n")
}
