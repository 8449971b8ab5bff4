package metro

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Metro slug.
const Chain = "metro"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Req("MPC"),
		normalize.FieldUnitPrice:    normalize.Req("CIJENA_PO_MJERI"),
		normalize.FieldSpecialPrice: normalize.Col("POSEBNA_PRODAJA"),
		normalize.FieldBestPrice30:  normalize.Col("NAJNIZA_30_DANA"),
		normalize.FieldAnchorPrice:  normalize.Col("SIDRENA_02_05"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Req("NAZIV"),
		normalize.FieldProductID: normalize.Req("SIFRA"),
		normalize.FieldBrand:     normalize.Col("MARKA"),
		normalize.FieldQuantity:  normalize.Col("NETO_KOLICINA"),
		normalize.FieldUnit:      normalize.Col("JED_MJERE"),
		normalize.FieldBarcode:   normalize.Col("BARKOD"),
		normalize.FieldCategory:  normalize.Col("KATEGORIJA"),
	},
}

// skladiste_za_trgovanje_robom_na_veliko_i_malo_METRO_20250521T1149_S20_CESTA_PAPE_IVANA_PAVLA_II_3,_KASTEL_SUCURAC.csv
var filenamePattern = regexp.MustCompile(`^(?P<store_type>.+?)_METRO_\d{8}T\d{4}_(?P<store_id>[^_]+)_(?P<address>[^,]+),(?P<city>[^.]+)\.csv$`)

type MetroScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewMetroScraper(b *base.BaseScraper) *MetroScraper {
	return &MetroScraper{
		BaseScraper: b,
		IndexURL:    "https://metrocjenik.com.hr",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *MetroScraper) Chain() string { return Chain }

func (s *MetroScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords keeps the CSV links whose file name carries the run date as
// "_YYYYMMDDT".
func (s *MetroScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	indexURL, err := url.Parse(s.IndexURL)
	if err != nil {
		return nil, err
	}
	doc, err := s.FetchDocument(ctx, s.IndexURL, base.AnyDocument)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	stamp := "_" + rc.Date.Format("20060102") + "T"
	var downloads []base.Download
	for _, link := range base.Links(doc, `a[href$=".csv"]`, "href", indexURL) {
		if strings.Contains(base.FileName(link), stamp) {
			downloads = append(downloads, base.Download{Name: link, URL: link})
		}
	}
	if len(downloads) == 0 {
		rc.Log.Warn("no price lists found for date", zap.String("stamp", stamp))
	}
	return s.FetchGroups(ctx, downloads), nil
}

func (s *MetroScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	products, err := base.DelimitedProducts(rc, s.normalizer, g.Content, ',', base.UTF8)
	if err != nil {
		return models.Store{}, nil, err
	}
	return store, products, nil
}

// ParseStoreInfo reads the store from the file name of a download URL.
func ParseStoreInfo(rawURL string) (models.Store, error) {
	filename := base.FileName(rawURL)
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return models.Store{}, fmt.Errorf("invalid CSV filename format for Metro: %s", filename)
	}
	group := func(name string) string { return m[filenamePattern.SubexpIndex(name)] }

	id := group("store_id")
	city := base.Title(strings.Trim(group("city"), "_"))
	return models.Store{
		Chain:         Chain,
		StoreID:       id,
		Name:          "Metro " + city + " " + id,
		StoreType:     strings.ToLower(strings.ReplaceAll(group("store_type"), "_", " ")),
		City:          city,
		StreetAddress: base.Title(group("address")),
	}, nil
}
