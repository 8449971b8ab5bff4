package trgocentar

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

// Chain is the Trgocentar slug.
const Chain = "trgocentar"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("mpc"),
		normalize.FieldUnitPrice:    normalize.Col("c_jmj"),
		normalize.FieldSpecialPrice: normalize.Col("mpc_pop"),
		normalize.FieldBestPrice30:  normalize.Col("c_najniza_30"),
		normalize.FieldAnchorPrice:  normalize.Col("c_020525"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Req("naziv_art"),
		normalize.FieldProductID: normalize.Req("sif_art"),
		normalize.FieldBrand:     normalize.Col("marka"),
		normalize.FieldQuantity:  normalize.Col("net_kol"),
		normalize.FieldUnit:      normalize.Col("jmj"),
		normalize.FieldBarcode:   normalize.Col("ean_kod"),
		normalize.FieldCategory:  normalize.Col("naz_kat"),
	},
}

// SUPERMARKET_VL_NAZORA_58_SV_IVAN_ZELINA_P120_009_230520250745.xml
var filenamePattern = regexp.MustCompile(`^(?P<store_type>[^_]+)_(?P<address_city>.+?)_P(?P<store_id>\d+)_(?P<serial>\d+)_(?P<date>\d{8})(?P<time>\d+)\.xml$`)

var cities = []string{
	"HUM NA SUTLI",
	"ZLATAR",
	"SV IVAN ZELINA",
	"SV KRIZ ZACRETJE",
	"ZABOK",
	"ZAPRESIC",
}

type TrgocentarScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewTrgocentarScraper(b *base.BaseScraper) *TrgocentarScraper {
	return &TrgocentarScraper{
		BaseScraper: b,
		IndexURL:    "https://trgocentar.com/Trgovine-cjenik/",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *TrgocentarScraper) Chain() string { return Chain }

func (s *TrgocentarScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords keeps the XML links stamped "_DDMMYYYY" with the run date.
func (s *TrgocentarScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	indexURL, err := url.Parse(s.IndexURL)
	if err != nil {
		return nil, err
	}
	doc, err := s.FetchDocument(ctx, s.IndexURL, base.AnyDocument)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	stamp := "_" + rc.Date.Format("02012006")
	var downloads []base.Download
	for _, link := range base.Links(doc, `a[href$=".xml"]`, "href", indexURL) {
		if strings.Contains(base.FileName(link), stamp) {
			downloads = append(downloads, base.Download{Name: link, URL: link})
		}
	}
	if len(downloads) == 0 {
		rc.Log.Warn("no price lists found for date", zap.String("stamp", stamp))
	}
	return s.FetchGroups(ctx, downloads), nil
}

func (s *TrgocentarScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	root, err := base.ParseXML(g.Content)
	if err != nil {
		return models.Store{}, nil, err
	}
	return store, s.normalizer.Products(rc, normalize.ElementRecords(root.FindAll("cjenik"))), nil
}

// ParseStoreInfo reads the store from the file name of a download URL.
func ParseStoreInfo(rawURL string) (models.Store, error) {
	filename := base.FileName(rawURL)
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return models.Store{}, fmt.Errorf("invalid XML filename format for Trgocentar: %s", filename)
	}
	group := func(name string) string { return m[filenamePattern.SubexpIndex(name)] }

	id := "P" + group("store_id")
	street, city := splitAddress(group("address_city"))
	return models.Store{
		Chain:         Chain,
		StoreID:       id,
		Name:          strings.Join(strings.Fields("Trgocentar "+city+" "+id), " "),
		StoreType:     strings.ToLower(group("store_type")),
		City:          city,
		StreetAddress: street,
	}, nil
}

// splitAddress separates a known city from the end of "VL_NAZORA_58_SV_IVAN_ZELINA".
func splitAddress(raw string) (street, city string) {
	address := strings.ReplaceAll(raw, "_", " ")
	for _, name := range cities {
		if strings.HasSuffix(address, name) {
			return base.Title(strings.TrimSpace(strings.TrimSuffix(address, name))), base.Title(name)
		}
	}
	return base.Title(address), ""
}
