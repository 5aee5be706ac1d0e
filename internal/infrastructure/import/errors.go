package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Import error codes
const (
	ErrCodeImportUnknown           = "ERR_IMPORT_UNKNOWN"
	ErrCodeImportInvalidFile       = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile         = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge      = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportCSVParsing        = "ERR_IMPORT_CSV_PARSING"
	ErrCodeImportMissingHeader     = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportCatalog           = "ERR_IMPORT_CATALOG"
	ErrCodeImportRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
	ErrCodeImportClientUnresolved  = "ERR_IMPORT_CLIENT_UNRESOLVED"
	ErrCodeImportPersistence       = "ERR_IMPORT_PERSISTENCE"
	ErrCodeImportAmbiguousDate     = "ERR_IMPORT_AMBIGUOUS_DATE"
)

var (
	// ErrEmptyFile is returned when the file has no content
	ErrEmptyFile = errors.New("import file is empty")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("import file missing header row")

	// ErrNoWorksheet is returned when a workbook has no sheets
	ErrNoWorksheet = errors.New("workbook has no worksheets")

	// ErrFileTooLarge is returned when the file exceeds maximum size
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	if e.Row == 0 {
		return e.Message
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// NewRowErrorWithValue creates a new RowError with the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
		Value:   value,
	}
}

// ErrorCollection keeps the first maxErrors errors and counts the rest
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequiredError adds a required field error
func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField, fmt.Sprintf("field '%s' is required", column)))
}

// AddReferenceError adds a reference not found error
func (ec *ErrorCollection) AddReferenceError(row int, column, value, refType string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportReferenceNotFound,
		fmt.Sprintf("%s '%s' not found", refType, value), value))
}

// AddClientError records a client that could not be found or created.
// Row 0 means the error is not tied to a single line.
func (ec *ErrorCollection) AddClientError(row int, client string, cause error) {
	ec.Add(NewRowErrorWithValue(row, "", ErrCodeImportClientUnresolved,
		fmt.Sprintf("client '%s' could not be resolved: %v", client, cause), client))
}

// AddPersistenceError records a failed sale write
func (ec *ErrorCollection) AddPersistenceError(row int, message string, cause error) {
	ec.Add(NewRowError(row, "", ErrCodeImportPersistence, fmt.Sprintf("%s: %v", message, cause)))
}

// AddDateWarning records a date kept verbatim because it could not be placed
func (ec *ErrorCollection) AddDateWarning(row int, column, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportAmbiguousDate,
		"date could not be normalized and was kept as-is", value))
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// Count returns the number of collected errors (up to maxErrors)
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns the total number of errors including those not collected
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were not collected due to the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// ErrorSummary returns the collected errors counted by code
func (ec *ErrorCollection) ErrorSummary() map[string]int {
	summary := make(map[string]int)
	for _, err := range ec.errors {
		summary[err.Code]++
	}
	return summary
}

// String returns a string representation of all errors
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) found", ec.totalCount))
	if ec.IsTruncated() {
		sb.WriteString(fmt.Sprintf(" (showing first %d)", ec.maxErrors))
	}
	sb.WriteString(":\n")

	for _, err := range ec.errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}

	return sb.String()
}
