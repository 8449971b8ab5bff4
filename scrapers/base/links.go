package base

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Links collects attr of every element matching selector, resolved against
// base and de-duplicated in document order.
func Links(doc *goquery.Document, selector, attr string, base *url.URL) []string {
	seen := make(map[string]bool)
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		raw, ok := s.Attr(attr)
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			return
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return
		}
		link := ref.String()
		if base != nil {
			link = base.ResolveReference(ref).String()
		}
		if !seen[link] {
			seen[link] = true
			out = append(out, link)
		}
	})
	return out
}

// FileName returns the unescaped last path segment of a download URL, so
// ".../Supermarket_Ilica%201.csv" gives "Supermarket_Ilica 1.csv".
func FileName(rawURL string) string {
	name := path.Base(rawURL)
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}
