package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Supported source encodings
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

const sniffSize = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser handles parsing of spreadsheet CSV exports
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	encoding   string
	headerMap  map[string]int
	headers    []string
	currentRow int
	totalRows  int
	reader     *csv.Reader
	bufReader  *bufio.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter fixes the field delimiter instead of sniffing it from the header line
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithEncoding fixes the source encoding instead of detecting it
func WithEncoding(enc string) ParserOption {
	return func(p *CSVParser) {
		p.encoding = enc
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trimSpace = trim
	}
}

// NewCSVParser creates a new CSV parser from a reader.
// A UTF-8 BOM is dropped. Unless WithEncoding is given, a stream whose first
// 4KB are not valid UTF-8 is decoded as Windows-1252, which is what
// spreadsheet tools on Windows write by default. A reader cannot be inspected
// past that window; ParseFromBytes checks the whole content instead.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		lazyQuotes: true,
		trimSpace:  true,
		headerMap:  make(map[string]int),
	}

	for _, opt := range opts {
		opt(parser)
	}

	parser.bufReader = bufio.NewReaderSize(r, sniffSize)

	content, err := parser.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if bytes.HasPrefix(content, utf8BOM) {
		_, _ = parser.bufReader.Discard(3)
	}

	sample, err := parser.bufReader.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read file for encoding detection: %w", err)
	}
	if len(bytes.TrimSpace(sample)) == 0 {
		return nil, ErrEmptyFile
	}

	if parser.encoding == "" {
		parser.encoding = EncodingUTF8
		if !validUTF8Prefix(sample) {
			parser.encoding = EncodingWindows1252
		}
	}
	var source io.Reader = parser.bufReader
	if parser.encoding == EncodingWindows1252 {
		source = transform.NewReader(parser.bufReader, charmap.Windows1252.NewDecoder())
	}

	if parser.delimiter == 0 {
		parser.delimiter = sniffDelimiter(sample)
	}

	parser.reader = csv.NewReader(source)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = parser.trimSpace
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// validUTF8Prefix reports whether b is valid UTF-8, ignoring a rune cut off
// at the end of the sample.
func validUTF8Prefix(b []byte) bool {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				b = b[:i]
			}
			break
		}
	}
	return utf8.Valid(b)
}

// sniffDelimiter picks ';' or ',' by counting both on the header line.
// Locales with a decimal comma export with ';'.
func sniffDelimiter(sample []byte) rune {
	line := sample
	if idx := bytes.IndexAny(sample, "\r\n"); idx >= 0 {
		line = sample[:idx]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// ParseHeader reads and parses the header row
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		header := h
		if p.trimSpace {
			header = strings.TrimSpace(header)
		}
		p.headers[i] = header
		p.headerMap[header] = i
	}

	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	p.currentRow = 1

	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HeaderMap returns a map of header name to column index
func (p *CSVParser) HeaderMap() map[string]int {
	return p.headerMap
}

// HasHeader checks if a header exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// Delimiter returns the field delimiter in use
func (p *CSVParser) Delimiter() rune {
	return p.delimiter
}

// Encoding returns the detected source encoding
func (p *CSVParser) Encoding() string {
	return p.encoding
}

// ReadRow reads the next row from the CSV
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}

	p.totalRows++
	return newRow(p.currentRow, p.headers, record, p.trimSpace), nil
}

// ReadAllRows reads all remaining rows, skipping blank ones
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row

	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}

		if row.IsEmpty() {
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// CurrentRow returns the current row number (1-indexed)
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}

// TotalRows returns the total number of data rows read
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}

// ParseFromBytes creates a parser from a byte slice. The encoding is decided
// on the whole content, so a single Windows-1252 byte deep into the file
// still switches decoding.
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	enc := EncodingUTF8
	if !utf8.Valid(bytes.TrimPrefix(data, utf8BOM)) {
		enc = EncodingWindows1252
	}
	return NewCSVParser(bytes.NewReader(data), append([]ParserOption{WithEncoding(enc)}, opts...)...)
}

// ValidateHeaders returns the required headers that are absent
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}
