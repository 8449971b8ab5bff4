package tommy

import (
	"context"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Tommy slug.
const Chain = "tommy"

const (
	apiPrefix       = "/api/v2"
	dateAddedColumn = "DATUM_ULASKA_NOVOG_ARTIKLA"
)

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("MPC"),
		normalize.FieldSpecialPrice: normalize.Col("MPC_POSEBNA_PRODAJA"),
		normalize.FieldUnitPrice:    normalize.Col("CIJENA_PO_JM"),
		normalize.FieldBestPrice30:  normalize.Col("MPC_NAJNIZA_30"),
		normalize.FieldAnchorPrice:  normalize.Col("MPC_020525"),
		normalize.FieldInitialPrice: normalize.Col("PRVA_CIJENA_NOVOG_ARTIKLA"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldBarcode:   normalize.Col("BARKOD_ARTIKLA"),
		normalize.FieldProductID: normalize.Req("SIFRA_ARTIKLA"),
		normalize.FieldProduct:   normalize.Req("NAZIV_ARTIKLA"),
		normalize.FieldBrand:     normalize.Col("BRAND"),
		normalize.FieldCategory:  normalize.Col("ROBNA_STRUKTURA"),
		normalize.FieldUnit:      normalize.Col("JEDINICA_MJERE"),
		normalize.FieldQuantity:  normalize.Col("NETO_KOLICINA"),
		normalize.FieldDateAdded: normalize.Col(dateAddedColumn),
	},
}

var (
	locationPattern  = regexp.MustCompile(`^(\d{5})\s+(.+)`)
	dateAddedPattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})\.`)
)

type TommyScraper struct {
	*base.BaseScraper
	BaseURL    string
	normalizer *normalize.Normalizer
}

func NewTommyScraper(b *base.BaseScraper) *TommyScraper {
	return &TommyScraper{
		BaseScraper: b,
		BaseURL:     "https://spiza.tommy.hr" + apiPrefix,
		normalizer: &normalize.Normalizer{
			Chain:   Chain,
			Mapping: mapping,
			Prepare: normalizeDateAdded,
		},
	}
}

func (s *TommyScraper) Chain() string { return Chain }

func (s *TommyScraper) Mapping() normalize.Mapping { return mapping }

type priceTables struct {
	Members []struct {
		ID       string `json:"@id"`
		FileName string `json:"fileName"`
	} `json:"hydra:member"`
}

// LocateRecords lists the store price tables of the date from the shop API.
func (s *TommyScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	listURL := fmt.Sprintf("%s/shop/store-prices-tables?date=%s&page=1&itemsPerPage=200&channelCode=general",
		s.BaseURL, rc.Date.Format(time.DateOnly))

	var tables priceTables
	if err := s.FetchJSON(ctx, listURL, &tables); err != nil {
		return nil, fmt.Errorf("fetch store list: %w", err)
	}

	downloads := make([]base.Download, 0, len(tables.Members))
	for _, m := range tables.Members {
		if m.ID == "" || m.FileName == "" {
			rc.Log.Warn("skipping store with missing CSV ID or filename",
				zap.String("id", m.ID), zap.String("file_name", m.FileName))
			continue
		}
		downloads = append(downloads, base.Download{
			Name: m.FileName,
			URL:  s.BaseURL + strings.TrimPrefix(m.ID, apiPrefix),
		})
	}
	if len(downloads) == 0 {
		rc.Log.Warn("no stores found for date")
	}
	return s.FetchGroups(ctx, downloads), nil
}

func (s *TommyScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	products, err := base.DelimitedProducts(rc, s.normalizer, g.Content, ',', base.UTF8, base.Windows1250)
	if err != nil {
		return models.Store{}, nil, err
	}
	return store, products, nil
}

// ParseStoreInfo reads the store from an API file name such as
//
//	SUPERMARKET, ANTE STARČEVIĆA 6, 20260 KORČULA, 10180, 2, 20250516 0530
func ParseStoreInfo(filename string) (models.Store, error) {
	parts := strings.Split(filename, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 4 {
		return models.Store{}, fmt.Errorf("unparseable filename: %s", filename)
	}

	kind := strings.ToLower(parts[0])
	address := base.Title(parts[1])
	zipcode, city := "", base.Title(parts[2])
	if m := locationPattern.FindStringSubmatch(parts[2]); m != nil {
		zipcode, city = m[1], base.Title(m[2])
	}

	return models.Store{
		Chain:         Chain,
		StoreID:       parts[3],
		Name:          "Tommy " + base.Title(kind) + " " + address,
		StoreType:     kind,
		City:          city,
		StreetAddress: address,
		Zipcode:       zipcode,
	}, nil
}

// normalizeDateAdded rewrites "16.5.2025. 0:00:00" as "2025-05-16".
func normalizeDateAdded(rc *normalize.RunContext, rec normalize.Record) normalize.Record {
	raw, _ := rec.Lookup(dateAddedColumn)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return rec
	}
	date, ok := parseDateAdded(raw)
	if !ok {
		rc.Log.Warn("date string format not recognized", zap.String("value", raw))
	}
	return normalize.WithValues(rec, map[string]string{dateAddedColumn: date})
}

func parseDateAdded(raw string) (string, bool) {
	m := dateAddedPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return "", false
	}
	return d.Format(time.DateOnly), true
}
