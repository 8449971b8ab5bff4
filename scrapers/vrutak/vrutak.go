package vrutak

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Vrutak slug.
const Chain = "vrutak"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:     normalize.Req("mpcijena"),
		normalize.FieldUnitPrice: normalize.Col("mpcijenamjera"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Req("naziv"),
		normalize.FieldProductID: normalize.Req("sifra"),
		normalize.FieldBrand:     normalize.Col("marka"),
		normalize.FieldQuantity:  normalize.Col("nettokolicina"),
		normalize.FieldUnit:      normalize.Col("mjera"),
		normalize.FieldBarcode:   normalize.Col("barkod"),
		normalize.FieldCategory:  normalize.Col("kategorija"),
	},
}

// Both stores are in Zagreb and the file names do not say so.
const (
	city    = "Zagreb"
	zipcode = "10000"
)

type VrutakScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewVrutakScraper(b *base.BaseScraper) *VrutakScraper {
	return &VrutakScraper{
		BaseScraper: b,
		IndexURL:    "https://www.vrutak.hr/cjenik-svih-artikala",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *VrutakScraper) Chain() string { return Chain }

func (s *VrutakScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords reads the index table, one row per day with a link per store.
func (s *VrutakScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	indexURL, err := url.Parse(s.IndexURL)
	if err != nil {
		return nil, err
	}
	doc, err := s.FetchDocument(ctx, s.IndexURL, base.HasSelection("tbody tr"))
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	links := IndexLinks(doc, indexURL)[rc.Date.Format(time.DateOnly)]
	if len(links) == 0 {
		rc.Log.Warn("no price lists found for date")
	}
	downloads := make([]base.Download, 0, len(links))
	for _, link := range links {
		downloads = append(downloads, base.Download{Name: link, URL: link})
	}
	return s.FetchGroups(ctx, downloads), nil
}

// IndexLinks maps each ISO date in the index table to its XML links. The
// second cell holds the date as "20.05.2025."; the cells after it hold one
// link each.
func IndexLinks(doc *goquery.Document, root *url.URL) map[string][]string {
	byDate := make(map[string][]string)
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		date, err := time.Parse("2.1.2006.", strings.TrimSpace(cells.Eq(1).Text()))
		if err != nil {
			return
		}

		var links []string
		cells.Slice(2, goquery.ToEnd).Each(func(_ int, cell *goquery.Selection) {
			href, ok := cell.Find(`a[href$=".xml"]`).First().Attr("href")
			if !ok {
				return
			}
			ref, err := url.Parse(strings.TrimSpace(href))
			if err != nil {
				return
			}
			links = append(links, root.ResolveReference(ref).String())
		})
		if len(links) > 0 {
			byDate[date.Format(time.DateOnly)] = links
		}
	})
	return byDate
}

func (s *VrutakScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	root, err := base.ParseXML(g.Content)
	if err != nil {
		return models.Store{}, nil, err
	}
	products := s.normalizer.Products(rc, normalize.ElementRecords(root.FindAll("item")))
	if len(products) == 0 {
		rc.Log.Warn("no products found for store", zap.String("store", store.StoreID))
	}
	return store, products, nil
}

// ParseStoreInfo reads "vrutak-<type>-<address>-<store id>-..." file names.
func ParseStoreInfo(rawURL string) (models.Store, error) {
	filename := base.FileName(rawURL)
	parts := strings.Split(strings.TrimSuffix(filename, ".xml"), "-")
	if len(parts) < 4 {
		return models.Store{}, fmt.Errorf("invalid XML filename format for Vrutak: %s", filename)
	}

	kind, id := parts[1], parts[3]
	return models.Store{
		Chain:         Chain,
		StoreID:       id,
		Name:          "Vrutak " + kind + " " + id,
		StoreType:     kind,
		City:          city,
		StreetAddress: base.Title(parts[2]),
		Zipcode:       zipcode,
	}, nil
}
