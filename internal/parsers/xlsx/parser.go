package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	catcsv "github.com/honeycombo/combo-service/internal/parsers/csv"
	"github.com/honeycombo/combo-service/internal/types"
)

// Parser is an XLSX parser implementation
type Parser struct {
	options XlsxParserOptions
}

// NewParser creates a new XLSX parser
func NewParser(options XlsxParserOptions) *Parser {
	if options.ColumnMapping == nil {
		options.ColumnMapping = DefaultColumnMapping()
	}
	return &Parser{options: options}
}

// Parse parses workbook content into raw catalog rows. Workbook-level
// problems are returned as errors; row problems land in the result.
func (p *Parser) Parse(content []byte) (*types.ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := p.selectSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheet, err)
	}

	result := &types.ParseResult{Rows: make([]types.RawItem, 0)}
	if len(rows) == 0 {
		result.Warnings = append(result.Warnings, types.ParseWarning{Message: "Excel file is empty"})
		return result, nil
	}

	var headers []string
	start := 0
	if p.options.HasHeader {
		headers = rows[0]
		start = 1
	}

	idx, err := p.buildColumnIndices(headers)
	if err != nil {
		return nil, err
	}

	for i := start; i < len(rows); i++ {
		raw := rows[i]
		if isEmptyRow(raw) {
			continue
		}
		result.TotalRows++

		row, rowErr := p.mapRow(raw, i+1, idx)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	result.ValidRows = len(result.Rows)

	log.Debug().
		Str("sheet", sheet).
		Int("total", result.TotalRows).
		Int("valid", result.ValidRows).
		Msg("Parsed catalog workbook")

	return result, nil
}

func (p *Parser) selectSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if p.options.SheetName == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == p.options.SheetName {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found. Available sheets: %s", p.options.SheetName, strings.Join(sheets, ", "))
}

func (p *Parser) buildColumnIndices(headers []string) (resolvedIndices, error) {
	resolve := func(col *XlsxColumnIndex) int {
		if col == nil {
			return InvalidIndex
		}
		if col.IsNumeric() {
			return *col.Index
		}
		if col.IsHeader() {
			want := strings.ToLower(strings.TrimSpace(*col.Header))
			for i, h := range headers {
				if strings.ToLower(strings.TrimSpace(h)) == want {
					return i
				}
			}
		}
		return InvalidIndex
	}

	m := p.options.ColumnMapping
	idx := resolvedIndices{
		Brand:    resolve(m.Brand),
		Name:     resolve(&m.Name),
		Price:    resolve(&m.Price),
		Event:    resolve(m.Event),
		Category: resolve(m.Category),
		ImageURL: resolve(m.ImageURL),
	}
	if idx.Name == InvalidIndex {
		return idx, fmt.Errorf("column mapping missing required field: name")
	}
	if idx.Price == InvalidIndex {
		return idx, fmt.Errorf("column mapping missing required field: price")
	}
	if idx.Brand == InvalidIndex && p.options.DefaultBrand == "" {
		return idx, fmt.Errorf("column mapping missing required field: brand")
	}
	if idx.Event == InvalidIndex && p.options.RequireEvent {
		return idx, fmt.Errorf("column mapping missing required field: event")
	}
	return idx, nil
}

func (p *Parser) mapRow(raw []string, rowNumber int, idx resolvedIndices) (types.RawItem, *types.ParseError) {
	get := func(i int) string {
		if i == InvalidIndex || i >= len(raw) {
			return ""
		}
		return strings.TrimSpace(raw[i])
	}
	fail := func(field, value string) *types.ParseError {
		return &types.ParseError{
			RowNumber:     types.IntPtr(rowNumber),
			Field:         types.StringPtr(field),
			Message:       fmt.Sprintf("%s is required", field),
			OriginalValue: types.StringPtr(value),
		}
	}

	row := types.RawItem{
		Brand:     get(idx.Brand),
		Name:      get(idx.Name),
		Event:     get(idx.Event),
		Category:  get(idx.Category),
		ImageURL:  get(idx.ImageURL),
		RowNumber: rowNumber,
	}
	if row.Brand == "" {
		row.Brand = p.options.DefaultBrand
	}
	switch {
	case row.Name == "":
		return row, fail("name", row.Name)
	case row.Brand == "":
		return row, fail("brand", row.Brand)
	case p.options.RequireEvent && row.Event == "":
		return row, fail("event", row.Event)
	}

	rawPrice := get(idx.Price)
	price, err := catcsv.CleanPrice(rawPrice)
	if err != nil {
		return row, &types.ParseError{
			RowNumber:     types.IntPtr(rowNumber),
			Field:         types.StringPtr("price"),
			Message:       "Invalid price value",
			OriginalValue: types.StringPtr(rawPrice),
		}
	}
	row.Price = price
	return row, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
