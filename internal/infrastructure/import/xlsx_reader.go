package csvimport

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readXLSX loads the first worksheet of a workbook. The first non-blank
// row is the header. Cells are read raw: number formats are not applied,
// so date cells arrive as serials whatever their display style.
func readXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	headerIdx := -1
	for i, record := range records {
		if !blankRecord(record) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(records[headerIdx]))
	for i, h := range records[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{
		Format:   FormatXLSX,
		Encoding: EncodingUTF8,
		Headers:  headers,
	}
	for i := headerIdx + 1; i < len(records); i++ {
		row := newRow(i+1, headers, records[i], true)
		if row.IsEmpty() {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// SerialDate converts an Excel date serial into DD-MM-YYYY text. Anything else is returned unchanged.
func SerialDate(value string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	// 1982-01-01 .. 2173-10-14
	if serial < 29952 || serial > 99999 {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return t.Format("02-01-2006")
}
