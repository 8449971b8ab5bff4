package lidl

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

// Chain is the Lidl slug.
const Chain = "lidl"

const anchorPriceColumn = "Sidrena_cijena_na_02.05.2025"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("MALOPRODAJNA_CIJENA"),
		normalize.FieldUnitPrice:    normalize.Col("CIJENA_ZA_JEDINICU_MJERE"),
		normalize.FieldSpecialPrice: normalize.Col("MPC_ZA_VRIJEME_POSEBNOG_OBLIKA_PRODAJE"),
		normalize.FieldAnchorPrice:  normalize.Col(anchorPriceColumn),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Col("NAZIV"),
		normalize.FieldProductID: normalize.Req("ŠIFRA"),
		normalize.FieldBrand:     normalize.Col("MARKA"),
		normalize.FieldQuantity:  normalize.Col("NETO_KOLIČINA"),
		normalize.FieldUnit:      normalize.Col("JEDINICA_MJERE"),
		normalize.FieldBarcode:   normalize.Col("BARKOD"),
		normalize.FieldCategory:  normalize.Col("KATEGORIJA_PROIZVODA"),
		normalize.FieldPackaging: normalize.Col("PAKIRANJE"),
	},
}

var (
	archivePattern = regexp.MustCompile(`.*/Popis_cijena_po_trgovinama_na_dan_(\d{1,2})_(\d{1,2})_(\d{4})\.zip`)

	// Supermarket 265_Ulica_Ljudevita_Gaja_2_10000_ZAGREB_1_18.05.2025_7.15h.csv
	filenamePattern = regexp.MustCompile(`(?i)^(Supermarket)\s+(\d+)_+([\p{L}\p{N}_.\s-]+?)_+(\d{5})_+([A-ZŠĐČĆŽ_\s-]+?)_.*\.csv`)
)

type LidlScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewLidlScraper(b *base.BaseScraper) *LidlScraper {
	return &LidlScraper{
		BaseScraper: b,
		IndexURL:    "https://tvrtka.lidl.hr/cijene",
		normalizer: &normalize.Normalizer{
			Chain:   Chain,
			Mapping: mapping,
			Prepare: dropUnsoldAnchor,
		},
	}
}

func (s *LidlScraper) Chain() string { return Chain }

func (s *LidlScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords downloads the single archive published for the date. Every
// CSV inside is one store.
func (s *LidlScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
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

func (s *LidlScraper) archiveURL(ctx context.Context, rc *normalize.RunContext) (string, error) {
	indexURL, err := url.Parse(s.IndexURL)
	if err != nil {
		return "", err
	}
	doc, err := s.FetchDocument(ctx, s.IndexURL, base.AnyDocument)
	if err != nil {
		return "", fmt.Errorf("fetch index: %w", err)
	}

	byDate := make(map[string]string)
	for _, link := range base.Links(doc, `a[href$=".zip"]`, "href", indexURL) {
		date, ok := archiveDate(link)
		if ok {
			byDate[date] = link
		}
	}

	want := rc.Date.Format(time.DateOnly)
	zipURL, ok := byDate[want]
	if !ok {
		rc.Log.Debug("available price lists", zap.Int("count", len(byDate)))
		return "", fmt.Errorf("no price list found for %s", want)
	}
	return zipURL, nil
}

// archiveDate reads the ISO date from an archive link.
func archiveDate(link string) (string, bool) {
	m := archivePattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly), true
}

func (s *LidlScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	products, err := base.DelimitedProducts(rc, s.normalizer, g.Content, 0, base.Windows1250)
	if err != nil {
		return models.Store{}, nil, err
	}
	return store, products, nil
}

// ParseStoreInfo reads the store from an archived CSV file name.
func ParseStoreInfo(filename string) (models.Store, error) {
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return models.Store{}, fmt.Errorf("filename doesn't match expected pattern: %s", filename)
	}

	city := strings.ReplaceAll(m[5], "_", " ")
	address := strings.ReplaceAll(m[3], "_", " ")
	if strings.HasPrefix(address, city+" ") {
		address = strings.TrimPrefix(address[len(city)+1:], "-")
	}

	city = base.Title(strings.TrimSpace(city))
	return models.Store{
		Chain:         Chain,
		StoreID:       m[2],
		Name:          "Lidl " + city,
		StoreType:     strings.ToLower(m[1]),
		City:          city,
		StreetAddress: base.Title(strings.TrimSpace(address)),
		Zipcode:       m[4],
	}, nil
}

func dropUnsoldAnchor(_ *normalize.RunContext, rec normalize.Record) normalize.Record {
	if v, _ := rec.Lookup(anchorPriceColumn); strings.Contains(v, "Nije_bilo_u_prodaji") {
		return normalize.WithValues(rec, map[string]string{anchorPriceColumn: ""})
	}
	return rec
}
