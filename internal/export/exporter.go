package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// ToCSV exports a result set to a CSV file with a header row
func ToCSV(result models.QueryResult, path string) error {
	// Create the file
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return WriteCSV(file, result)
}

// WriteCSV writes a result set as CSV to w
func WriteCSV(w io.Writer, result models.QueryResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(result.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range result.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ToJSON exports a result set to a JSON file as an array of objects keyed by column
func ToJSON(result models.QueryResult, path string) error {
	records := make([]map[string]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		record := make(map[string]string, len(result.Columns))
		for i, col := range result.Columns {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}

	// Marshal to JSON with pretty printing
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// ToFile picks the format from the file extension: .json, otherwise CSV
func ToFile(result models.QueryResult, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ToJSON(result, path)
	}
	return ToCSV(result, path)
}

// WriteTable renders rows as an aligned text table
func WriteTable(w io.Writer, columns []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}
