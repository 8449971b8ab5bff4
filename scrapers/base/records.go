package base

import (
	"context"
	"fmt"
	"iter"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
)

// RecordGroup is the raw payload of one store for one day: a file, an
// archive entry or an API document. Name carries whatever the store locator
// is parsed from (file name, link title or URL).
type RecordGroup struct {
	Name    string
	URL     string
	Content []byte
}

// Download is one pending fetch of a record group.
type Download struct {
	Name string
	URL  string
}

// FetchGroups lazily downloads each group in order. A failed download is
// yielded with its error and the sequence moves on.
func (b *BaseScraper) FetchGroups(ctx context.Context, downloads []Download) iter.Seq2[RecordGroup, error] {
	return func(yield func(RecordGroup, error) bool) {
		for _, d := range downloads {
			g := RecordGroup{Name: d.Name, URL: d.URL}
			data, err := b.FetchBytes(ctx, d.URL)
			if err == nil {
				g.Content = data
			}
			if !yield(g, err) {
				return
			}
		}
	}
}

// ArchiveGroups turns the matching entries of a ZIP archive into record
// groups. An unreadable archive fails immediately.
func ArchiveGroups(url string, data []byte, suffix string) (iter.Seq2[RecordGroup, error], error) {
	entries, err := ZipEntries(data, suffix)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", url, err)
	}
	return func(yield func(RecordGroup, error) bool) {
		for entry, err := range entries {
			if !yield(RecordGroup{Name: entry.Name, URL: url, Content: entry.Content}, err) {
				return
			}
		}
	}, nil
}

// DelimitedProducts decodes a delimited payload and normalizes its rows.
// A zero delimiter is detected from the header line.
func DelimitedProducts(rc *normalize.RunContext, n *normalize.Normalizer, content []byte, delimiter rune, encodings ...string) ([]models.Product, error) {
	text, err := DecodeText(content, encodings...)
	if err != nil {
		return nil, err
	}
	if delimiter == 0 {
		if delimiter, err = DetectDelimiter(text); err != nil {
			return nil, err
		}
	}
	rows, err := ReadRows(text, delimiter)
	if err != nil {
		return nil, err
	}
	return n.Products(rc, normalize.RowRecords(rows)), nil
}
