package csvimport

import "strings"

// Row represents a parsed spreadsheet row with its data and line number
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

func newRow(line int, headers, record []string, trim bool) *Row {
	row := &Row{
		LineNumber: line,
		Data:       make(map[string]string, len(headers)),
		RawFields:  record,
	}
	for i, header := range headers {
		value := ""
		if i < len(record) {
			value = record[i]
			if trim {
				value = strings.TrimSpace(value)
			}
		}
		row.Data[header] = value
	}
	return row
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value for a column, or default if not present
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return defaultVal
}

// First returns the first non-empty value among the given header aliases
func (r *Row) First(headers ...string) string {
	for _, h := range headers {
		if val := r.Data[h]; val != "" {
			return val
		}
	}
	return ""
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
