package csv

import "github.com/honeycombo/combo-service/internal/parsers/charset"

// CsvDelimiter represents supported CSV delimiters
type CsvDelimiter rune

const (
	DelimiterComma     CsvDelimiter = ','
	DelimiterSemicolon CsvDelimiter = ';'
	DelimiterTab       CsvDelimiter = '\t'
)

// CsvColumnMapping maps catalog fields to CSV header names
type CsvColumnMapping struct {
	Brand    string `json:"brand"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Event    string `json:"event"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"imgUrl,omitempty"`
}

// DefaultColumnMapping matches the scraper export header
// "brand,name,price,event,category,img_url".
func DefaultColumnMapping() CsvColumnMapping {
	return CsvColumnMapping{
		Brand:    "brand",
		Name:     "name",
		Price:    "price",
		Event:    "event",
		Category: "category",
		ImageURL: "img_url",
	}
}

// CsvParserOptions represents CSV parser options
type CsvParserOptions struct {
	Delimiter     CsvDelimiter     `json:"delimiter,omitempty"` // zero = detect
	Encoding      charset.Encoding `json:"encoding,omitempty"`  // empty = detect
	ColumnMapping CsvColumnMapping `json:"columnMapping"`
	// DefaultBrand fills rows of single-chain exports without a brand column
	DefaultBrand string `json:"defaultBrand,omitempty"`
	// RequireEvent drops rows without a promotion label
	RequireEvent bool `json:"requireEvent"`
	// NoisePatterns drops rows whose name contains any pattern
	NoisePatterns []string `json:"noisePatterns,omitempty"`
}

// DefaultOptions returns default CSV parser options
func DefaultOptions() CsvParserOptions {
	return CsvParserOptions{
		ColumnMapping: DefaultColumnMapping(),
		RequireEvent:  true,
		NoisePatterns: []string{"디폴트 이미지"},
	}
}
