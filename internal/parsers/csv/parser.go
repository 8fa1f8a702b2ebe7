package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/honeycombo/combo-service/internal/parsers/charset"
	"github.com/honeycombo/combo-service/internal/types"
)

// Parser reads catalog CSV exports with encoding and delimiter detection.
type Parser struct {
	options CsvParserOptions
}

// NewParser creates a new CSV parser with the given options
func NewParser(options CsvParserOptions) *Parser {
	if options.ColumnMapping.Name == "" {
		options.ColumnMapping = DefaultColumnMapping()
	}
	return &Parser{options: options}
}

type rowKey struct {
	brand, name, event string
	price              int64
}

// Parse parses CSV content into raw catalog rows. Rows that cannot be used
// are reported in the result rather than failing the whole file.
func (p *Parser) Parse(content []byte) (*types.ParseResult, error) {
	opts := p.options

	enc := opts.Encoding
	if enc == "" {
		enc = charset.DetectEncoding(content)
	}
	decoded, err := charset.Decode(content, enc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(decoded)
	}

	reader := stdcsv.NewReader(strings.NewReader(decoded))
	reader.Comma = rune(delim)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &types.ParseResult{
			Rows:     []types.RawItem{},
			Warnings: []types.ParseWarning{{Message: "CSV file is empty"}},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	indices, err := p.buildColumnIndices(header)
	if err != nil {
		return nil, err
	}

	result := &types.ParseResult{Rows: make([]types.RawItem, 0)}
	seen := make(map[rowKey]struct{})
	rowNumber := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNumber++
		if err != nil {
			result.Errors = append(result.Errors, types.ParseError{
				RowNumber: types.IntPtr(rowNumber),
				Message:   err.Error(),
			})
			continue
		}
		if isEmptyRecord(record) {
			continue
		}
		result.TotalRows++

		row, rowErr := p.mapRow(record, rowNumber, indices)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		if p.isNoise(row.Name) {
			result.Skipped++
			continue
		}

		key := rowKey{brand: row.Brand, name: row.Name, event: row.Event, price: row.Price}
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}

		result.Rows = append(result.Rows, row)
		result.ValidRows++
	}

	log.Debug().
		Int("total", result.TotalRows).
		Int("valid", result.ValidRows).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Str("encoding", string(enc)).
		Msg("Parsed catalog CSV")

	return result, nil
}

// buildColumnIndices resolves header names case-insensitively.
func (p *Parser) buildColumnIndices(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	m := p.options.ColumnMapping
	indices := make(map[string]int)
	resolve := func(field, column string, required bool) error {
		if column == "" {
			if required {
				return fmt.Errorf("column mapping for %s is required", field)
			}
			return nil
		}
		idx, ok := byName[strings.ToLower(column)]
		if !ok {
			if required {
				return fmt.Errorf("required column %q not found in header", column)
			}
			return nil
		}
		indices[field] = idx
		return nil
	}

	if err := resolve("name", m.Name, true); err != nil {
		return nil, err
	}
	if err := resolve("price", m.Price, true); err != nil {
		return nil, err
	}
	if err := resolve("brand", m.Brand, p.options.DefaultBrand == ""); err != nil {
		return nil, err
	}
	if err := resolve("event", m.Event, p.options.RequireEvent); err != nil {
		return nil, err
	}
	if err := resolve("category", m.Category, false); err != nil {
		return nil, err
	}
	if err := resolve("imageUrl", m.ImageURL, false); err != nil {
		return nil, err
	}
	return indices, nil
}

func (p *Parser) mapRow(record []string, rowNumber int, indices map[string]int) (types.RawItem, *types.ParseError) {
	get := func(field string) string {
		idx, ok := indices[field]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	fail := func(field, msg, value string) *types.ParseError {
		return &types.ParseError{
			RowNumber:     types.IntPtr(rowNumber),
			Field:         types.StringPtr(field),
			Message:       msg,
			OriginalValue: types.StringPtr(value),
		}
	}

	row := types.RawItem{
		Brand:     get("brand"),
		Name:      get("name"),
		Event:     get("event"),
		Category:  get("category"),
		ImageURL:  get("imageUrl"),
		RowNumber: rowNumber,
	}
	if row.Brand == "" {
		row.Brand = p.options.DefaultBrand
	}

	if isBlank(row.Name) {
		return row, fail("name", "name is required", row.Name)
	}
	if isBlank(row.Brand) {
		return row, fail("brand", "brand is required", row.Brand)
	}
	if p.options.RequireEvent && isBlank(row.Event) {
		return row, fail("event", "event is required", row.Event)
	}

	rawPrice := get("price")
	price, err := CleanPrice(rawPrice)
	if err != nil {
		return row, fail("price", err.Error(), rawPrice)
	}
	row.Price = price
	return row, nil
}

func (p *Parser) isNoise(name string) bool {
	for _, pattern := range p.options.NoisePatterns {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

func isEmptyRecord(record []string) bool {
	for _, f := range record {
		if !isBlank(f) {
			return false
		}
	}
	return true
}
