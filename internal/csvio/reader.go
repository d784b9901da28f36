// Package csvio reads uploaded delimited files as header-keyed records.
//
// The field separator is auto-detected: warehouse exports arrive with
// either semicolons or commas and carry no declaration of which. Detection
// needs the raw content up front (delimiter frequency cannot be judged from
// a prefix), so the file is read once and then parsed as a streaming pass
// over the buffered bytes.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one data row keyed by the header row's field names.
type Record map[string]string

// DetectDelimiter picks the field separator for raw CSV content: semicolon
// when the content contains at least one, comma otherwise.
func DetectDelimiter(data []byte) rune {
	if bytes.ContainsRune(data, ';') {
		return ';'
	}
	return ','
}

// Reader emits one Record per data row of a delimited file.
type Reader struct {
	cr        *csv.Reader
	header    []string
	delimiter rune
}

// Open reads the file at path and prepares a Reader over its rows.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return New(data)
}

// New prepares a Reader over raw delimited content.
func New(data []byte) (*Reader, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	delim := DetectDelimiter(data)
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	// Cardinality is the transformer's concern; malformed rows pass
	// through untouched.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv file")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &Reader{cr: cr, header: header, delimiter: delim}, nil
}

// Header returns the trimmed header row field names.
func (r *Reader) Header() []string { return r.header }

// Delimiter returns the detected field separator.
func (r *Reader) Delimiter() rune { return r.delimiter }

// Next returns the next data row as a Record, or io.EOF after the last row.
// Rows with fewer fields than the header get empty strings for the missing
// columns; extra fields beyond the header are dropped.
func (r *Reader) Next() (Record, error) {
	row, err := r.cr.Read()
	if err != nil {
		return nil, err
	}

	rec := make(Record, len(r.header))
	for i, key := range r.header {
		if i < len(row) {
			rec[key] = row[i]
		} else {
			rec[key] = ""
		}
	}
	return rec, nil
}
