package xlsx

// XlsxColumnIndex locates a column either by 0-based position or by header name
type XlsxColumnIndex struct {
	Index  *int
	Header *string
}

// NewNumericIndex creates a column index from a numeric position
func NewNumericIndex(index int) XlsxColumnIndex {
	return XlsxColumnIndex{Index: &index}
}

// NewHeaderIndex creates a column index from a header name
func NewHeaderIndex(header string) XlsxColumnIndex {
	return XlsxColumnIndex{Header: &header}
}

// IsNumeric returns true if this is a numeric index
func (c XlsxColumnIndex) IsNumeric() bool {
	return c.Index != nil
}

// IsHeader returns true if this is a header-based index
func (c XlsxColumnIndex) IsHeader() bool {
	return c.Header != nil
}

// XlsxColumnMapping maps catalog fields to worksheet columns
type XlsxColumnMapping struct {
	Brand    *XlsxColumnIndex `json:"brand,omitempty"`
	Name     XlsxColumnIndex  `json:"name"`  // Required
	Price    XlsxColumnIndex  `json:"price"` // Required
	Event    *XlsxColumnIndex `json:"event,omitempty"`
	Category *XlsxColumnIndex `json:"category,omitempty"`
	ImageURL *XlsxColumnIndex `json:"imgUrl,omitempty"`
}

// DefaultColumnMapping matches the header row written by the categorize command
func DefaultColumnMapping() *XlsxColumnMapping {
	brand := NewHeaderIndex("brand")
	event := NewHeaderIndex("event")
	category := NewHeaderIndex("category")
	image := NewHeaderIndex("img_url")
	return &XlsxColumnMapping{
		Brand:    &brand,
		Name:     NewHeaderIndex("name"),
		Price:    NewHeaderIndex("price"),
		Event:    &event,
		Category: &category,
		ImageURL: &image,
	}
}

// XlsxParserOptions represents XLSX parser options
type XlsxParserOptions struct {
	ColumnMapping *XlsxColumnMapping `json:"columnMapping,omitempty"`
	// HasHeader indicates whether the first row is a header
	HasHeader bool `json:"hasHeader,omitempty"`
	// DefaultBrand is used if no brand column is present
	DefaultBrand string `json:"defaultBrand,omitempty"`
	RequireEvent bool   `json:"requireEvent,omitempty"`
	// SheetName selects the worksheet; empty means the first sheet
	SheetName string `json:"sheetName,omitempty"`
}

// DefaultOptions returns default XLSX parser options
func DefaultOptions() XlsxParserOptions {
	return XlsxParserOptions{
		ColumnMapping: DefaultColumnMapping(),
		HasHeader:     true,
		RequireEvent:  true,
	}
}

// InvalidIndex indicates a column was not found or not specified
const InvalidIndex = -1

type resolvedIndices struct {
	Brand, Name, Price, Event, Category, ImageURL int
}
