package plodine

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Plodine slug.
const Chain = "plodine"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("Maloprodajna cijena"),
		normalize.FieldUnitPrice:    normalize.Col("Cijena po JM"),
		normalize.FieldSpecialPrice: normalize.Col("MPC za vrijeme posebnog oblika prodaje"),
		normalize.FieldBestPrice30:  normalize.Col("Najniza cijena u poslj. 30 dana"),
		normalize.FieldAnchorPrice:  normalize.Col("Sidrena cijena na 2.5.2025"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Req("Naziv proizvoda"),
		normalize.FieldProductID: normalize.Req("Sifra proizvoda"),
		normalize.FieldBrand:     normalize.Col("Marka proizvoda"),
		normalize.FieldQuantity:  normalize.Col("Neto kolicina"),
		normalize.FieldUnit:      normalize.Col("Jedinica mjere"),
		normalize.FieldBarcode:   normalize.Col("Barkod"),
		normalize.FieldCategory:  normalize.Col("Kategorija proizvoda"),
	},
}

var (
	archivePattern = regexp.MustCompile(`.*/cjenici/cjenici_(\d{2})_(\d{2})_(\d{4})_.*\.zip`)

	// SUPERMARKET_SJEVERNA_VEZNA_CESTA_31_35000_SLAVONSKI_BROD_022_6_20052025014212.csv
	filenamePattern = regexp.MustCompile(`^(SUPERMARKET|HIPERMARKET)_(.+?)_(\d{5})_(.+)_(\d+)_\d+_\d+.*\.csv$`)
)

type PlodineScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewPlodineScraper(b *base.BaseScraper) *PlodineScraper {
	return &PlodineScraper{
		BaseScraper: b,
		IndexURL:    "https://www.plodine.hr/info-o-cijenama",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *PlodineScraper) Chain() string { return Chain }

func (s *PlodineScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords downloads the archive published for the date; each CSV in it
// is one store.
func (s *PlodineScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	zipURL, err := s.archiveURL(ctx, rc)
	if err != nil {
		return nil, err
	}
	data, err := s.FetchBytes(ctx, zipURL)
	if err != nil {
		return nil, fmt.Errorf("fetch archive: %w", err)
	}
	return base.ArchiveGroups(zipURL, data, ".csv")
}

func (s *PlodineScraper) archiveURL(ctx context.Context, rc *normalize.RunContext) (string, error) {
	indexURL, err := url.Parse(s.IndexURL)
	if err != nil {
		return "", err
	}
	doc, err := s.FetchDocument(ctx, s.IndexURL, base.AnyDocument)
	if err != nil {
		return "", fmt.Errorf("fetch index: %w", err)
	}

	byDate := make(map[string]string)
	var available []string
	for _, link := range base.Links(doc, `a[href$=".zip"]`, "href", indexURL) {
		if date, ok := archiveDate(link); ok {
			byDate[date] = link
			available = append(available, date)
		}
	}

	want := rc.Date.Format(time.DateOnly)
	zipURL, ok := byDate[want]
	if !ok {
		rc.Log.Debug("available price lists", zap.Strings("dates", available))
		return "", fmt.Errorf("no price list found for %s", want)
	}
	return zipURL, nil
}

// archiveDate reads the dd_mm_yyyy date of an archive link.
func archiveDate(link string) (string, bool) {
	m := archivePattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || int(date.Month()) != month {
		return "", false
	}
	return date.Format(time.DateOnly), true
}

func (s *PlodineScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	products, err := base.DelimitedProducts(rc, s.normalizer, g.Content, ';', base.UTF8)
	if err != nil {
		return models.Store{}, nil, err
	}
	return store, products, nil
}

// ParseStoreInfo reads the store from an archive entry name.
func ParseStoreInfo(filename string) (models.Store, error) {
	m := filenamePattern.FindStringSubmatch(base.FileName(filename))
	if m == nil {
		return models.Store{}, fmt.Errorf("invalid CSV filename format for Plodine: %s", filename)
	}

	city := base.Title(m[4])
	return models.Store{
		Chain:         Chain,
		StoreID:       m[5],
		Name:          "Plodine " + city,
		StoreType:     strings.ToLower(m[1]),
		City:          city,
		StreetAddress: base.Title(m[2]),
		Zipcode:       m[3],
	}, nil
}
