package spar

import (
	"context"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Spar slug.
const Chain = "spar"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("MPC"),
		normalize.FieldUnitPrice:    normalize.Col("cijena za jedinicu mjere"),
		normalize.FieldSpecialPrice: normalize.Col("MPC za vrijeme posebnog oblika prodaje"),
		normalize.FieldBestPrice30:  normalize.Col("Najniža cijena u posljednjih 30 dana"),
		normalize.FieldAnchorPrice:  normalize.Col("sidrena cijena na 2.5.2025."),
	},
	Fields: normalize.FieldMap{
		normalize.FieldBarcode:         normalize.Col("barkod"),
		normalize.FieldProduct:         normalize.Req("naziv"),
		normalize.FieldProductID:       normalize.Req("šifra"),
		normalize.FieldBrand:           normalize.Col("marka"),
		normalize.FieldQuantity:        normalize.Col("neto količina"),
		normalize.FieldUnit:            normalize.Col("jedinica mjere"),
		normalize.FieldCategory:        normalize.Col("kategorija proizvoda"),
		normalize.FieldAnchorPriceDate: normalize.Col("datum sidrene cijene"),
	},
}

// csvPrefix starts every price list and tells the two code pages apart.
const csvPrefix = "naziv;šifra;marka;neto količina;jedinica mjere;"

// hipermarket_zadar_bleiburskih_zrtava_18_8701_interspar_zadar_0017_20250518_0330.csv
var filenamePattern = regexp.MustCompile(`^([a-zA-Z]+)_([a-zA-Z0-9_.]+)_(\d{4,5})_([a-zA-Z_]+)_`)

// Cities in file name spelling. Multi-word names must be matched before the
// street is split off at the first underscore.
var cities = []string{
	"varazdin", "valpovo", "sibenik", "zadar", "zagreb", "cakovec", "rijeka",
	"split", "kastav", "selce", "bibinje", "labin", "buje", "krizevci", "pozega",
	"jastrebarsko", "sesvetski_kraljevec", "krapinske_toplice", "novi_marof",
	"ivanic_grad", "vukovar", "marija_bistrica", "zapresic", "velika_gorica",
	"slavonski_brod", "osijek", "koprivnica", "bjelovar", "vinkovci", "dakovo",
	"orahovica", "pakrac", "suhopolje", "daruvar", "nasice", "pula", "opatija",
	"porec", "knin", "zlatar", "ivanec", "popovaca", "nin", "donja_stubica",
	"pregrada", "cepin", "ozalj", "dugo_selo", "gospic",
}

type SparScraper struct {
	*base.BaseScraper
	BaseURL    string
	normalizer *normalize.Normalizer
}

func NewSparScraper(b *base.BaseScraper) *SparScraper {
	return &SparScraper{
		BaseScraper: b,
		BaseURL:     "https://www.spar.hr",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *SparScraper) Chain() string { return Chain }

func (s *SparScraper) Mapping() normalize.Mapping { return mapping }

type priceListIndex struct {
	Files []struct {
		Name string `json:"name"`
		URL  string `json:"URL"`
	} `json:"files"`
}

// LocateRecords reads the daily JSON index of per-store CSV files.
func (s *SparScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	indexURL := fmt.Sprintf("%s/datoteke_cjenici/Cjenik%s.json", s.BaseURL, rc.Date.Format("20060102"))
	var index priceListIndex
	if err := s.FetchJSON(ctx, indexURL, &index); err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	if len(index.Files) == 0 {
		rc.Log.Error("price list index doesn't contain any files", zap.String("url", indexURL))
	}

	downloads := make([]base.Download, 0, len(index.Files))
	for _, f := range index.Files {
		if f.URL == "" {
			continue
		}
		downloads = append(downloads, base.Download{Name: f.Name, URL: f.URL})
	}
	rc.Log.Info("found price lists in index", zap.Int("count", len(downloads)))
	return s.FetchGroups(ctx, downloads), nil
}

func (s *SparScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	text, err := base.DecodeTextPrefix(g.Content, csvPrefix, base.ISO88592, base.Windows1250)
	if err != nil {
		return models.Store{}, nil, err
	}
	rows, err := base.ReadRows(text, ';')
	if err != nil {
		return models.Store{}, nil, err
	}
	return store, s.normalizer.Products(rc, normalize.RowRecords(dropCurrency(rows))), nil
}

// dropCurrency strips the "(EUR)" marker from price column names, so
// "MPC (EUR)" is read as "MPC".
func dropCurrency(rows []normalize.Row) []normalize.Row {
	for i, row := range rows {
		fixed := make(normalize.Row, len(row))
		for k, v := range row {
			fixed[strings.TrimSpace(strings.ReplaceAll(k, "(EUR)", ""))] = v
		}
		rows[i] = fixed
	}
	return rows
}

// ParseStoreInfo reads the store from a price list file name.
func ParseStoreInfo(filename string) (models.Store, error) {
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return models.Store{}, fmt.Errorf("invalid CSV filename format for Spar: %s", filename)
	}
	kind, cityAndAddress, id, name := m[1], m[2], m[3], m[4]

	city, address := splitCity(cityAndAddress)
	return models.Store{
		Chain:         Chain,
		StoreID:       id,
		Name:          base.Title(name),
		StoreType:     strings.ToLower(kind),
		City:          base.Title(city),
		StreetAddress: base.Title(address),
	}, nil
}

// splitCity takes a known city off the front of "zadar_bleiburskih_zrtava_18".
// An unknown city is assumed to be the first word.
func splitCity(s string) (city, address string) {
	lower := strings.ToLower(s)
	for _, c := range cities {
		if strings.HasPrefix(lower, c) {
			return c, strings.TrimPrefix(s[len(c):], "_")
		}
	}
	city, address, _ = strings.Cut(s, "_")
	return city, address
}
