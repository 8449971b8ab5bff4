package base

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// Encoding labels used by the price-list publishers.
const (
	UTF8        = "utf-8"
	Windows1250 = "windows-1250"
	ISO88592    = "iso-8859-2"
)

// DecodeError reports a payload none of the candidate encodings could decode.
type DecodeError struct {
	Encodings []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("payload is not valid in any of %s", strings.Join(e.Encodings, ", "))
}

// DecodeText decodes data with the first encoding that yields clean text.
// UTF-8 is validated strictly; single-byte code pages fail on bytes they
// leave unmapped.
func DecodeText(data []byte, encodings ...string) (string, error) {
	if len(encodings) == 0 {
		encodings = []string{UTF8}
	}
	for _, label := range encodings {
		if text, ok := decodeAs(data, label); ok {
			return text, nil
		}
	}
	return "", &DecodeError{Encodings: encodings}
}

func decodeAs(data []byte, label string) (string, bool) {
	if strings.EqualFold(label, UTF8) {
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", false
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil || strings.ContainsRune(string(out), utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// DecodeTextPrefix decodes data with the first encoding whose output starts
// with prefix. Single-byte code pages decode almost anything, so a known
// header line is the only way to tell ISO-8859-2 from Windows-1250.
func DecodeTextPrefix(data []byte, prefix string, encodings ...string) (string, error) {
	for _, label := range encodings {
		text, ok := decodeAs(data, label)
		if ok && strings.HasPrefix(strings.TrimPrefix(text, "\ufeff"), prefix) {
			return text, nil
		}
	}
	return "", &DecodeError{Encodings: encodings}
}
