package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
	"github.com/xuri/excelize/v2"
)

// ToXLSX - write a query response to an XLSX file
//
// Creates an Excel file from query results with formatted headers and data.
// Headers show field labels with types (e.g., "Customer Name (text)").
// The record id field is marked with *.
//
// Example:
//
//	err := xlsx.ToXLSX(resp, "output.xlsx", "Orders")
func ToXLSX(resp *qbclient.QueryResponse, filePath string, sheetName string) error {
	// Create new Excel file
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}

	// Create/rename sheet
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	// Create header style
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Write headers in the field order of the response
	for col, field := range resp.Fields {
		cell := columnName(col+1) + "1"
		header := fmt.Sprintf("%s (%s)", field.Label, field.Type)
		if field.ID == qbclient.RecordIDField {
			header += " *"
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// Write data rows; values come in the {"value": ...} envelope,
	// keyed by fid as a string
	for rowIdx, rec := range resp.Data {
		for col, field := range resp.Fields {
			cell := columnName(col+1) + strconv.Itoa(rowIdx+2)
			v, ok := rec[strconv.Itoa(field.ID)]
			if !ok {
				continue
			}
			f.SetCellValue(sheetName, cell, cellValue(v.Value))
			applyCellFormat(f, sheetName, cell, field.Type)
		}
	}

	// Auto-fit columns
	for col := range resp.Fields {
		colName := columnName(col + 1)
		f.SetColWidth(sheetName, colName, colName, 15)
	}

	// Save file
	return f.SaveAs(filePath)
}

// Sheet - parsed contents of one XLSX sheet
type Sheet struct {
	Columns []string
	Rows    []map[string]string
}

// FromXLSX - read an XLSX file into labeled rows
//
// Reads an Excel file and returns its rows keyed by column label.
// Headers in format "label (type)" or "label (type) *" are reduced to
// the bare label, so the output maps directly onto field labels.
//
// Example:
//
//	sheet, err := xlsx.FromXLSX("input.xlsx", "Orders")
func FromXLSX(filePath string, sheetName string) (*Sheet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have header and at least one data row")
	}

	sheet := &Sheet{Columns: make([]string, 0, len(rows[0]))}
	for _, header := range rows[0] {
		sheet.Columns = append(sheet.Columns, parseHeader(header))
	}

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		dataRow := rows[rowIdx]
		row := make(map[string]string, len(sheet.Columns))
		for col, label := range sheet.Columns {
			if col >= len(dataRow) {
				row[label] = ""
				continue
			}
			row[label] = dataRow[col]
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

// parseHeader - strip "(type)" suffix and key marker from a header string
func parseHeader(header string) string {
	header = strings.TrimSuffix(header, " *")
	if idx := strings.LastIndex(header, "("); idx > 0 {
		if endIdx := strings.LastIndex(header, ")"); endIdx > idx {
			return strings.TrimSpace(header[:idx])
		}
	}
	return strings.TrimSpace(header)
}

// cellValue extracts a Go native value for excelize from a decoded JSON value.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case float64, string, int:
		return val
	case map[string]any:
		// user and address fields come as objects; show the display name
		if name, ok := val["name"].(string); ok {
			return name
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// applyCellFormat - apply Excel format based on the platform field type
func applyCellFormat(f *excelize.File, sheet, cell string, fieldType string) {
	switch fieldType {
	case "numeric", "duration":
		f.SetCellStyle(sheet, cell, cell, 2)
	case "date":
		f.SetCellStyle(sheet, cell, cell, 14)
	case "datetime", "timestamp":
		f.SetCellStyle(sheet, cell, cell, 22)
	default:
		f.SetCellStyle(sheet, cell, cell, 49)
	}
}

// columnName - convert column index to Excel column name (1 → A, 27 → AA)
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}
