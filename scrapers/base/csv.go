package base

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/raushankrgupta/price-list-crawler/normalize"
)

// ErrUnknownDelimiter is returned when a header line has no known separator.
var ErrUnknownDelimiter = errors.New("unknown delimiter")

// DetectDelimiter picks the separator of a delimited file from its header
// line: tab, then semicolon, then comma.
func DetectDelimiter(text string) (rune, error) {
	header, _, _ := strings.Cut(text, "\n")
	switch {
	case strings.Contains(header, "\t"):
		return '\t', nil
	case strings.Contains(header, ";"):
		return ';', nil
	case strings.Contains(header, ","):
		return ',', nil
	}
	return 0, ErrUnknownDelimiter
}

// ReadRows parses delimited text into header-keyed rows. A leading byte order
// mark is dropped and short rows simply lack the trailing columns.
func ReadRows(text string, delimiter rune) ([]normalize.Row, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []normalize.Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}

		row := make(normalize.Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
