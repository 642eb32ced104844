package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the stage of the declaration pipeline that raised them
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryMapping       ErrorCategory = "mapping"
	CategoryGeneration    ErrorCategory = "generation"
	CategoryImport        ErrorCategory = "import"
	CategoryStorage       ErrorCategory = "storage"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeUnsupported    ErrorCode = "unsupported_format"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"
	CodeEmptySheet    ErrorCode = "empty_sheet"

	// Validation errors
	CodeInvalidAmount  ErrorCode = "invalid_amount"
	CodeInvalidAccount ErrorCode = "invalid_account"
	CodeMissingField   ErrorCode = "missing_field"
	CodeInvalidBalance ErrorCode = "invalid_balance"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Mapping errors
	CodeInvalidMapping  ErrorCode = "invalid_mapping"
	CodeUnknownCategory ErrorCode = "unknown_category"
	CodeUnknownSource   ErrorCode = "unknown_source"

	// Generation errors
	CodeUnknownPath       ErrorCode = "unknown_path"
	CodeBalanceNotReady   ErrorCode = "balance_not_ready"
	CodeGenerationFailed  ErrorCode = "generation_failed"
	CodeDeclarationLocked ErrorCode = "declaration_locked"

	// Import errors
	CodeUnknownField   ErrorCode = "unknown_field"
	CodeEntryNotFound  ErrorCode = "entry_not_found"
	CodeLowConfidence  ErrorCode = "low_confidence"
	CodeNothingToApply ErrorCode = "nothing_to_apply"

	// Storage errors
	CodeNotFound       ErrorCode = "not_found"
	CodeStorageFailure ErrorCode = "storage_failure"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// DSFError is the base error type for all application errors
type DSFError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *DSFError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *DSFError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *DSFError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration, CategoryMapping:
		return 4
	case CategoryGeneration, CategoryImport:
		return 5
	case CategoryStorage:
		return 6
	case CategoryInternal:
		return 7
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *DSFError) WithContext(key string, value interface{}) *DSFError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *DSFError) WithSuggestion(suggestion string) *DSFError {
	e.Suggestion = suggestion
	return e
}

// Is reports whether target carries the same category and code.
func (e *DSFError) Is(target error) bool {
	t, ok := target.(*DSFError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// New creates a new DSFError
func New(category ErrorCategory, code ErrorCode, message string) *DSFError {
	return &DSFError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with DSFError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *DSFError {
	if err == nil {
		return nil
	}

	return &DSFError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func build(category ErrorCategory, code ErrorCode, message string, err error) *DSFError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *DSFError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "re-export the workbook from the accounting software"
	case CodeUnsupported:
		message = fmt.Sprintf("unsupported file format: %s", path)
		suggestion = "provide the trial balance as .xlsx or .csv"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	return build(CategoryFile, code, message, err).
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, file string, row int, column string, value string, err error) *DSFError {
	var message, suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in %s at row %d, column '%s': '%s'", file, row, column, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s' in %s", column, file)
		suggestion = "the trial balance needs an account number, a label and six amount columns"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in %s at row %d, column '%s': '%s'", file, row, column, value)
		suggestion = "correct the data format or remove the invalid entry"
	case CodeEmptySheet:
		message = fmt.Sprintf("no data rows found in %s", file)
		suggestion = "check that the first sheet holds the trial balance"
	default:
		message = fmt.Sprintf("parse error in %s at row %d", file, row)
		suggestion = "check the file format and data integrity"
	}

	return build(CategoryParse, code, message, err).
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("row", row).
		WithContext("column", column).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *DSFError {
	var message, suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "amounts must be non-negative numbers (e.g. '1234.56' or '1 234,56')"
	case CodeInvalidAccount:
		message = fmt.Sprintf("invalid account number in field '%s': %v", field, value)
		suggestion = "OHADA account numbers contain digits only"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeInvalidBalance:
		message = fmt.Sprintf("balance %v failed validation", value)
		suggestion = "review the stored validation errors and upload a corrected balance"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	return build(CategoryValidation, code, message, err).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *DSFError {
	var message, suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	case CodeConfigConflict:
		message = fmt.Sprintf("configuration conflict with setting '%s': %v", setting, value)
		suggestion = "resolve the conflicting settings or use default values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	return build(CategoryConfiguration, code, message, err).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// MappingError creates an error about a mapping configuration
func MappingError(code ErrorCode, category string, detail string, err error) *DSFError {
	var message, suggestion string

	switch code {
	case CodeInvalidMapping:
		message = fmt.Sprintf("invalid mapping for category '%s': %s", category, detail)
		suggestion = "each mapping needs an account number, a source code and a destination path"
	case CodeUnknownCategory:
		message = fmt.Sprintf("unknown report category '%s'", category)
		suggestion = "use one of the categories listed by 'dsf mappings categories'"
	case CodeUnknownSource:
		message = fmt.Sprintf("unknown source code '%s' in category '%s'", detail, category)
		suggestion = "source codes are OD, OC, MD, MC, SD, SC, MCD and SCD"
	default:
		message = fmt.Sprintf("mapping error in category '%s': %s", category, detail)
		suggestion = "review the mapping configuration"
	}

	return build(CategoryMapping, code, message, err).
		WithSuggestion(suggestion).
		WithContext("category", category)
}

// GenerationError creates a report generation error
func GenerationError(code ErrorCode, operation string, err error) *DSFError {
	var message, suggestion string

	switch code {
	case CodeUnknownPath:
		message = fmt.Sprintf("unknown destination path: %s", operation)
		suggestion = "destination paths must address a field of the report schema"
	case CodeBalanceNotReady:
		message = fmt.Sprintf("balance is not ready for generation: %s", operation)
		suggestion = "upload and validate the current year trial balance first"
	case CodeDeclarationLocked:
		message = fmt.Sprintf("declaration cannot be modified: %s", operation)
		suggestion = "regenerate the declaration before applying changes"
	default:
		message = fmt.Sprintf("generation failed during %s", operation)
		suggestion = "review the balance and mapping configuration"
	}

	return build(CategoryGeneration, code, message, err).
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ImportError creates a legacy-import error
func ImportError(code ErrorCode, subject string, err error) *DSFError {
	var message, suggestion string

	switch code {
	case CodeUnknownField:
		message = fmt.Sprintf("unknown target field: %s", subject)
		suggestion = "pick a field from the declaration field catalog"
	case CodeEntryNotFound:
		message = fmt.Sprintf("import entry not found: %s", subject)
		suggestion = "reload the import session"
	case CodeLowConfidence:
		message = fmt.Sprintf("match confidence too low to apply: %s", subject)
		suggestion = "confirm the match manually before applying"
	case CodeNothingToApply:
		message = fmt.Sprintf("no entry eligible for application in %s", subject)
		suggestion = "confirm low-confidence matches or lower the threshold"
	default:
		message = fmt.Sprintf("import error: %s", subject)
		suggestion = "check the legacy workbook"
	}

	return build(CategoryImport, code, message, err).
		WithSuggestion(suggestion).
		WithContext("subject", subject)
}

// StorageError creates a persistence error
func StorageError(code ErrorCode, entity string, id string, err error) *DSFError {
	var message, suggestion string

	switch code {
	case CodeNotFound:
		message = fmt.Sprintf("%s not found: %s", entity, id)
		suggestion = "check the identifier"
	default:
		message = fmt.Sprintf("storage failure on %s %s", entity, id)
		suggestion = "check the database connection settings"
	}

	return build(CategoryStorage, code, message, err).
		WithSuggestion(suggestion).
		WithContext("entity", entity).
		WithContext("id", id)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *DSFError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	return build(CategoryInternal, code, message, err).
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*DSFError           `json:"errors"`
	SampleErrors []*DSFError           `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*DSFError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if errs == nil {
		summary.Errors = []*DSFError{}
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	return es.ByCategory[category] > 0
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	return es.ByCode[code] > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// AsDSFError extracts a DSFError from an error chain
func AsDSFError(err error) (*DSFError, bool) {
	var dsfErr *DSFError
	if errors.As(err, &dsfErr) {
		return dsfErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a DSFError with the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	dsfErr, ok := AsDSFError(err)
	return ok && dsfErr.Code == code
}

// WrapIfNeeded wraps an error if it's not already a DSFError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *DSFError {
	if err == nil {
		return nil
	}

	if dsfErr, ok := AsDSFError(err); ok {
		return dsfErr
	}

	return Wrap(err, category, code, message)
}
