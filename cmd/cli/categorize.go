package main

import (
	"bufio"
	stdcsv "encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/honeycombo/combo-service/internal/catalog"
)

// categorizeCmd represents the categorize command
var categorizeCmd = &cobra.Command{
	Use:   "categorize <input> <output>",
	Short: "Clean a scraped catalog and assign categories",
	Long: `Read a scraped promotion export (CSV or XLSX, a single file or a directory), drop
noise and duplicate rows, normalize promotion labels and assign a category to every
item from its name. Writes a CSV (UTF-8 with BOM) or XLSX file depending on the
output extension, with the header brand,name,price,event,category,img_url.`,
	Example: `  combo-service categorize ./raw/cu.csv ./data/cu.csv
  combo-service categorize ./raw ./data/catalog.xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: runCategorize,
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
}

var catalogHeader = []string{"brand", "name", "price", "event", "category", "img_url"}

func runCategorize(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	cat, err := newLoader(input).Load(cmd.Context())
	if err != nil {
		return err
	}

	records := make([][]string, 0, cat.Len())
	for _, it := range cat.Items {
		records = append(records, []string{
			it.Brand, it.Name, strconv.FormatInt(it.Price, 10),
			string(it.Promotion), it.Category.Label(), it.ImageURL,
		})
	}

	switch strings.ToLower(filepath.Ext(output)) {
	case ".xlsx":
		err = writeXLSX(output, records)
	case ".csv":
		err = writeCSV(output, records)
	default:
		return fmt.Errorf("unsupported output extension %q (use .csv or .xlsx)", filepath.Ext(output))
	}
	if err != nil {
		return err
	}

	counts := cat.CategoryCounts()
	logger.Info().
		Str("output", output).
		Int("items", cat.Len()).
		Int(string(catalog.CategoryMeal), counts[catalog.CategoryMeal]).
		Int(string(catalog.CategorySnack), counts[catalog.CategorySnack]).
		Int(string(catalog.CategoryBeverage), counts[catalog.CategoryBeverage]).
		Int(string(catalog.CategoryWater), counts[catalog.CategoryWater]).
		Int(string(catalog.CategoryOther), counts[catalog.CategoryOther]).
		Int(string(catalog.CategoryHousehold), counts[catalog.CategoryHousehold]).
		Msg("Catalog categorized")
	return nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	// utf-8-sig so spreadsheet apps detect the encoding
	if _, err := buf.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	w := stdcsv.NewWriter(buf)
	if err := w.Write(catalogHeader); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func writeXLSX(path string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	write := func(row int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return f.SetSheetRow(sheet, cell, &cells)
	}

	if err := write(1, catalogHeader); err != nil {
		return err
	}
	for i, rec := range records {
		if err := write(i+2, rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
