package types

// FileType represents supported catalog file types
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// RawItem is a catalog row as read from a source file, before normalization.
// Price has already been reduced to its digits.
type RawItem struct {
	Brand     string `json:"brand"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // won
	Event     string `json:"event"`
	Category  string `json:"category,omitempty"`
	ImageURL  string `json:"imgUrl,omitempty"`
	RowNumber int    `json:"rowNumber"`
}

// ParseError represents a parsing error
type ParseError struct {
	RowNumber     *int    `json:"rowNumber,omitempty"`
	Field         *string `json:"field,omitempty"`
	Message       string  `json:"message"`
	OriginalValue *string `json:"originalValue,omitempty"`
}

// ParseWarning represents a parsing warning
type ParseWarning struct {
	RowNumber *int    `json:"rowNumber,omitempty"`
	Field     *string `json:"field,omitempty"`
	Message   string  `json:"message"`
}

// ParseResult represents result of parsing
type ParseResult struct {
	Rows      []RawItem      `json:"rows"`
	Errors    []ParseError   `json:"errors,omitempty"`
	Warnings  []ParseWarning `json:"warnings,omitempty"`
	TotalRows int            `json:"totalRows"`
	ValidRows int            `json:"validRows"`
	Skipped   int            `json:"skipped"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}
