package ktc

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the KTC slug.
const Chain = "ktc"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Req("Maloprodajna cijena"),
		normalize.FieldUnitPrice:    normalize.Req("Cijena za jedinicu mjere"),
		normalize.FieldSpecialPrice: normalize.Col("MPC za vrijeme posebnog oblika prodaje"),
		normalize.FieldBestPrice30:  normalize.Col("Najniža cijena u posljednjih 30 dana"),
		normalize.FieldAnchorPrice:  normalize.Col("Sidrena cijena na 2.5.2025"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Req("Naziv proizvoda"),
		normalize.FieldProductID: normalize.Req("Šifra proizvoda"),
		normalize.FieldBrand:     normalize.Col("Marka proizvoda"),
		normalize.FieldQuantity:  normalize.Col("Neto količina"),
		normalize.FieldUnit:      normalize.Col("Jedinica mjere"),
		normalize.FieldBarcode:   normalize.Col("Barkod"),
		normalize.FieldCategory:  normalize.Col("Kategorija"),
	},
}

// Cities as spelled in file names. "SISAK II" must come before "SISAK".
var cities = []string{
	"KRIZEVCI", "VARAZDIN", "BJELOVAR", "CAKOVEC", "DARUVAR", "DUGO SELO",
	"DURDEVAC", "GRUBISNO POLJE", "IVANEC", "JALZABET", "KARLOVAC", "KOPRIVNICA",
	"KRAPINA", "KUTINA", "MURSKO SREDISCE", "PAKRAC", "PETRINJA", "PITOMACA",
	"POZEGA", "PRELOG", "SISAK II", "SISAK", "SLATINA", "VELIKA GORICA",
	"VIROVITICA", "VRBOVEC", "ZABOK", "CAZMA",
}

type KTCScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewKTCScraper(b *base.BaseScraper) *KTCScraper {
	return &KTCScraper{
		BaseScraper: b,
		IndexURL:    "https://www.ktc.hr/cjenici",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *KTCScraper) Chain() string { return Chain }

func (s *KTCScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords walks the store pages linked from the index. Each page lists
// that store's CSV files; the one stamped with the run date is the group. A
// store without it fails on its own.
func (s *KTCScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	indexURL, err := url.Parse(s.IndexURL)
	if err != nil {
		return nil, err
	}
	doc, err := s.FetchDocument(ctx, s.IndexURL, base.AnyDocument)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	pages := base.Links(doc, `a[href^="cjenici?poslovnica="]`, "href", indexURL)
	if len(pages) == 0 {
		rc.Log.Warn("no store pages found on index")
	}
	return func(yield func(base.RecordGroup, error) bool) {
		for _, page := range pages {
			if !yield(s.storeGroup(ctx, page, rc.Date)) {
				return
			}
		}
	}, nil
}

func (s *KTCScraper) storeGroup(ctx context.Context, pageURL string, date time.Time) (base.RecordGroup, error) {
	g := base.RecordGroup{Name: pageURL, URL: pageURL}
	page, err := url.Parse(pageURL)
	if err != nil {
		return g, err
	}
	doc, err := s.FetchDocument(ctx, pageURL, base.AnyDocument)
	if err != nil {
		return g, fmt.Errorf("fetch store page: %w", err)
	}

	stamp := date.Format("20060102")
	for _, link := range base.Links(doc, `a[href$=".csv"]`, "href", page) {
		if !strings.Contains(link, stamp) {
			continue
		}
		g.Name, g.URL = link, link
		g.Content, err = s.FetchBytes(ctx, link)
		return g, err
	}
	return g, fmt.Errorf("no CSV found for date %s at %s", date.Format(time.DateOnly), pageURL)
}

func (s *KTCScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	products, err := base.DelimitedProducts(rc, s.normalizer, g.Content, ';', base.Windows1250)
	if err != nil {
		return models.Store{}, nil, err
	}
	if len(products) == 0 {
		rc.Log.Warn("no products found for store", zap.String("url", g.URL))
	}
	return store, products, nil
}

// ParseStoreInfo reads "TRGOVINA-SENJSKA ULICA 118 KARLOVAC-PJ8A-1-20250515-071626.csv".
// The city is whichever known city the name mentions.
func ParseStoreInfo(rawURL string) (models.Store, error) {
	filename := base.FileName(rawURL)
	parts := strings.Split(filename, "-")
	if len(parts) < 3 {
		return models.Store{}, fmt.Errorf("invalid CSV filename format for KTC: %s", filename)
	}

	var city string
	for _, c := range cities {
		if strings.Contains(filename, c) {
			city = c
			break
		}
	}
	street := strings.TrimSpace(parts[1])
	if city != "" {
		street = strings.Join(strings.Fields(strings.ReplaceAll(street, city, "")), " ")
	}

	id := strings.TrimSpace(parts[2])
	if !strings.HasPrefix(id, "PJ") {
		id = "PJ" + id
	}
	return models.Store{
		Chain:         Chain,
		StoreID:       id,
		Name:          strings.TrimSpace("KTC " + base.Title(city)),
		StoreType:     strings.ToLower(strings.TrimSpace(parts[0])),
		City:          base.Title(city),
		StreetAddress: base.Title(street),
	}, nil
}
