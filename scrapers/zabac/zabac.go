package zabac

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Žabac slug.
const Chain = "zabac"

// Žabac publishes a single shelf price per article.
var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:     normalize.Col("MPC"),
		normalize.FieldUnitPrice: normalize.Col("MPC"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProductID: normalize.Req("Artikl Šifra"),
		normalize.FieldBarcode:   normalize.Col("Barcode"),
		normalize.FieldProduct:   normalize.Req("Naziv artikla / usluge"),
	},
}

// Cjenik-Zabac-Food-Outlet-PJ-11-Savska-Cesta-206.csv
var filenamePattern = regexp.MustCompile(`.*PJ-(?P<store_id>\d+)-(?P<address>.+)\.csv$`)

type ZabacScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewZabacScraper(b *base.BaseScraper) *ZabacScraper {
	return &ZabacScraper{
		BaseScraper: b,
		IndexURL:    "https://zabacfoodoutlet.hr/cjenik/",
		normalizer: &normalize.Normalizer{
			Chain:   Chain,
			Mapping: mapping,
			Rules:   []normalize.FixRule{normalize.TrimProductName},
		},
	}
}

func (s *ZabacScraper) Chain() string { return Chain }

func (s *ZabacScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords lists every CSV on the index. Only current price lists are
// published.
func (s *ZabacScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	rc.Log.Warn("date is ignored, only current price lists are published",
		zap.String("requested", rc.Date.Format(time.DateOnly)))

	indexURL, err := url.Parse(s.IndexURL)
	if err != nil {
		return nil, err
	}
	doc, err := s.FetchDocument(ctx, s.IndexURL, base.AnyDocument)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	links := base.Links(doc, `a[href$=".csv"]`, "href", indexURL)
	downloads := make([]base.Download, 0, len(links))
	for _, link := range links {
		downloads = append(downloads, base.Download{Name: link, URL: link})
	}
	return s.FetchGroups(ctx, downloads), nil
}

func (s *ZabacScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	products, err := base.DelimitedProducts(rc, s.normalizer, g.Content, ';', base.Windows1250)
	if err != nil {
		return models.Store{}, nil, err
	}
	return store, products, nil
}

// ParseStoreInfo reads the store unit ("PJ") and street from a download URL.
// Type, city and zipcode are not published.
func ParseStoreInfo(rawURL string) (models.Store, error) {
	filename := base.FileName(rawURL)
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return models.Store{}, fmt.Errorf("invalid CSV filename format for Zabac: %s", filename)
	}

	id := "PJ-" + m[filenamePattern.SubexpIndex("store_id")]
	return models.Store{
		Chain:         Chain,
		StoreID:       id,
		Name:          "Žabac " + id,
		StreetAddress: strings.ReplaceAll(m[filenamePattern.SubexpIndex("address")], "-", " "),
	}, nil
}
