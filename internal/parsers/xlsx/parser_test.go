package xlsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseWorkbook(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		{"brand", "name", "price", "event", "category", "img_url"},
		{"CU", "불닭볶음면", "1,800원", "1+1", "식사류", ""},
		{"GS25", "제주삼다수 2L", 1100, "2+1", "생수", "https://img/2.jpg"},
		{},
		{"GS25", "", 1000, "1+1", "", ""},
		{"CU", "허니버터칩", "문의", "1+1", "간식류", ""},
	})

	result, err := NewParser(DefaultOptions()).Parse(content)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "불닭볶음면", result.Rows[0].Name)
	assert.Equal(t, int64(1800), result.Rows[0].Price)
	assert.Equal(t, 2, result.Rows[0].RowNumber)
	assert.Equal(t, int64(1100), result.Rows[1].Price)
	assert.Equal(t, "https://img/2.jpg", result.Rows[1].ImageURL)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "name", *result.Errors[0].Field)
	assert.Equal(t, "price", *result.Errors[1].Field)
}

func TestParseNumericMapping(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		{"신라면", 1000},
		{"짜파게티", 1200},
	})
	opts := XlsxParserOptions{
		ColumnMapping: &XlsxColumnMapping{
			Name:  NewNumericIndex(0),
			Price: NewNumericIndex(1),
		},
		DefaultBrand: "emart24",
	}

	result, err := NewParser(opts).Parse(content)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "emart24", result.Rows[1].Brand)
	assert.Equal(t, int64(1200), result.Rows[1].Price)
}

func TestParseMissingSheet(t *testing.T) {
	content := buildWorkbook(t, [][]any{{"name", "price"}})
	opts := DefaultOptions()
	opts.SheetName = "Promotions"
	_, err := NewParser(opts).Parse(content)
	assert.Error(t, err)
}

func TestParseInvalidContent(t *testing.T) {
	_, err := NewParser(DefaultOptions()).Parse([]byte("not a workbook"))
	assert.Error(t, err)
}
