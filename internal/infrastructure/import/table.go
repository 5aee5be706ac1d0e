package csvimport

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var zipMagic = []byte("PK\x03\x04")

// Table is a header-keyed spreadsheet read fully into memory
type Table struct {
	Format   string
	Encoding string
	Headers  []string
	Rows     []*Row
}

// HasHeader checks if a header exists
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// MissingHeaders returns the required headers that are absent
func (t *Table) MissingHeaders(required ...string) []string {
	var missing []string
	for _, h := range required {
		if !t.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// HasAnyHeader reports whether at least one of the aliases is a header
func (t *Table) HasAnyHeader(aliases ...string) bool {
	for _, a := range aliases {
		if t.HasHeader(a) {
			return true
		}
	}
	return false
}

// ReadTable reads a CSV or XLSX data drop. Workbooks are recognised by
// extension or by their zip signature. maxBytes <= 0 disables the size check.
func ReadTable(fileName string, r io.Reader, maxBytes int64, opts ...ParserOption) (*Table, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	switch detectFormat(fileName, data) {
	case FormatXLSX:
		return readXLSX(data)
	default:
		return readCSV(data, opts...)
	}
}

func detectFormat(fileName string, data []byte) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

func readCSV(data []byte, opts ...ParserOption) (*Table, error) {
	parser, err := ParseFromBytes(data, opts...)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrCodeImportCSVParsing, err)
	}
	return &Table{
		Format:   FormatCSV,
		Encoding: parser.Encoding(),
		Headers:  parser.Headers(),
		Rows:     rows,
	}, nil
}
