package ntl

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

// Chain is the NTL slug.
const Chain = "ntl"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("Maloprodajna cijena"),
		normalize.FieldUnitPrice:    normalize.Col("Cijena za jedinicu mjere"),
		normalize.FieldSpecialPrice: normalize.Col("MPC za vrijeme posebnog oblika prodaje"),
		normalize.FieldAnchorPrice:  normalize.Col("Sidrena cijena na 2.5.2025"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProductID: normalize.Req("Šifra proizvoda"),
		normalize.FieldBarcode:   normalize.Col("Barkod"),
		normalize.FieldProduct:   normalize.Req("Naziv proizvoda"),
		normalize.FieldBrand:     normalize.Col("Marka proizvoda"),
		normalize.FieldQuantity:  normalize.Col("Neto količina"),
		normalize.FieldUnit:      normalize.Col("Jedinica mjere"),
		normalize.FieldCategory:  normalize.Col("Kategorija proizvoda"),
	},
}

// Supermarket_Ljudevita Gaja 1_DUGA RESA_10103_263_25052025_07_22_36.csv
var filenamePattern = regexp.MustCompile(`^(?P<store_type>[^_]+)_(?P<street_address>[^_]+)_(?P<city>[^_]+)_(?P<store_id>\d+)_.*\.csv$`)

type NTLScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewNTLScraper(b *base.BaseScraper) *NTLScraper {
	return &NTLScraper{
		BaseScraper: b,
		IndexURL:    "https://www.ntl.hr/cjenici-za-ntl-supermarkete",
		normalizer: &normalize.Normalizer{
			Chain:   Chain,
			Mapping: mapping,
			Rules:   []normalize.FixRule{normalize.TrimProductName},
		},
	}
}

func (s *NTLScraper) Chain() string { return Chain }

func (s *NTLScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords lists the CSV files currently on the index. NTL only
// publishes the latest prices, so the run date is not used.
func (s *NTLScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
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

	links := base.Links(doc, `table a[href$=".csv"]`, "href", indexURL)
	if len(links) == 0 {
		rc.Log.Warn("no price lists found on index")
	}
	downloads := make([]base.Download, 0, len(links))
	for _, link := range links {
		downloads = append(downloads, base.Download{Name: link, URL: link})
	}
	return s.FetchGroups(ctx, downloads), nil
}

func (s *NTLScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
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

// ParseStoreInfo reads the store from the file name of a download URL.
// There is no zipcode in it.
func ParseStoreInfo(rawURL string) (models.Store, error) {
	filename := base.FileName(rawURL)
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return models.Store{}, fmt.Errorf("invalid CSV filename format for NTL: %s", filename)
	}
	group := func(name string) string { return m[filenamePattern.SubexpIndex(name)] }

	city := base.Title(group("city"))
	return models.Store{
		Chain:         Chain,
		StoreID:       group("store_id"),
		Name:          "NTL " + city,
		StoreType:     strings.ToLower(group("store_type")),
		City:          city,
		StreetAddress: group("street_address"),
	}, nil
}
