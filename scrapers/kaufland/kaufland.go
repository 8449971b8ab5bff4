package kaufland

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Kaufland slug.
const Chain = "kaufland"

const (
	anchorPriceColumn = "Sidrena cijena"
	anchorDateColumn  = "Datum sidrenja"
)

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("maloprod.cijena(EUR)"),
		normalize.FieldUnitPrice:    normalize.Col("cijena jed.mj.(EUR)"),
		normalize.FieldSpecialPrice: normalize.Col("MPC poseb.oblik prod"),
		normalize.FieldBestPrice30:  normalize.Col("Najniža MPC u 30dana"),
		normalize.FieldAnchorPrice:  normalize.Col(anchorPriceColumn),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:         normalize.Req("naziv proizvoda"),
		normalize.FieldProductID:       normalize.Req("šifra proizvoda"),
		normalize.FieldBrand:           normalize.Col("marka proizvoda"),
		normalize.FieldQuantity:        normalize.Col("neto količina(KG)"),
		normalize.FieldUnit:            normalize.Col("jedinica mjere"),
		normalize.FieldBarcode:         normalize.Col("barkod"),
		normalize.FieldCategory:        normalize.Col("Kategorija"),
		normalize.FieldAnchorPriceDate: normalize.Col(anchorDateColumn),
	},
}

// Longer names first so "Zagreb Blato" wins over "Zagreb".
var cities = []string{
	"Zagreb Blato", "Zagreb", "Karlovac", "Velika Gorica", "Zapresic", "Zadar",
	"Cakovec", "Đakovo", "Sisak", "Koprivnica", "Slavonski Brod", "Nova Gradiska",
	"Sinj", "Rovinj", "Osijek", "Virovitica", "Biograd", "Dugo Selo", "Sibenik",
	"Pula", "Porec", "Makarska", "Kutina", "Split", "Vinkovci", "Rijeka",
	"Bjelovar", "Ivanec", "Trogir", "Umag", "Vukovar", "Zabok", "Cibaca",
	"Pozega", "Dakovo", "Vodice", "Varazdin", "Samobor",
}

var (
	// Supermarket_Put_Gaceleza_1D_Vodice_6730_15_05_2025_7_30.csv
	labelPattern = regexp.MustCompile(`(Supermarket|Hipermarket)_(.+?)_(\d{4})_`)
	// MPC 2.5.2025=7,99€
	anchorPattern = regexp.MustCompile(`MPC\s+(\d+\.\d+\.\d+)=(.+)`)
)

type KauflandScraper struct {
	*base.BaseScraper
	BaseURL    string
	normalizer *normalize.Normalizer
}

func NewKauflandScraper(b *base.BaseScraper) *KauflandScraper {
	return &KauflandScraper{
		BaseScraper: b,
		BaseURL:     "https://www.kaufland.hr",
		normalizer: &normalize.Normalizer{
			Chain:   Chain,
			Mapping: mapping,
			Prepare: splitAnchorPrice,
		},
	}
}

func (s *KauflandScraper) Chain() string { return Chain }

func (s *KauflandScraper) Mapping() normalize.Mapping { return mapping }

type assetListProps struct {
	Settings struct {
		DataURLAssets string `json:"dataUrlAssets"`
	} `json:"settings"`
}

type asset struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// LocateRecords reads the asset feed behind the index page's Vue AssetList
// component and keeps the price lists labelled with the date.
func (s *KauflandScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	const assetList = "div[data-component=AssetList]"

	doc, err := s.FetchDocument(ctx, s.BaseURL+"/akcije-novosti/popis-mpc.html", base.HasSelection(assetList))
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	rawProps, ok := doc.Find(assetList).First().Attr("data-props")
	if !ok {
		return nil, errors.New("asset list has no data-props")
	}
	var props assetListProps
	if err := json.Unmarshal([]byte(rawProps), &props); err != nil {
		return nil, fmt.Errorf("decode asset list props: %w", err)
	}
	if props.Settings.DataURLAssets == "" {
		return nil, errors.New("asset list props have no data URL")
	}

	var assets []asset
	if err := s.FetchJSON(ctx, s.BaseURL+props.Settings.DataURLAssets, &assets); err != nil {
		return nil, err
	}

	dated := []string{rc.Date.Format("_02_01_2006_"), rc.Date.Format("_02012006_")}
	var downloads []base.Download
	for _, a := range assets {
		if a.Label == "" || a.Path == "" {
			continue
		}
		if !strings.Contains(a.Label, dated[0]) && !strings.Contains(a.Label, dated[1]) {
			continue
		}
		downloads = append(downloads, base.Download{Name: a.Label, URL: s.BaseURL + a.Path})
	}
	rc.Log.Debug("located price lists", zap.Int("assets", len(assets)), zap.Int("count", len(downloads)))

	return s.FetchGroups(ctx, downloads), nil
}

func (s *KauflandScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	store, err := ParseStoreInfo(g.Name)
	if err != nil {
		return models.Store{}, nil, err
	}
	products, err := base.DelimitedProducts(rc, s.normalizer, g.Content, '\t', base.Windows1250)
	if err != nil {
		return models.Store{}, nil, err
	}
	return store, products, nil
}

// ParseStoreInfo reads the store from a price list label.
func ParseStoreInfo(label string) (models.Store, error) {
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		return models.Store{}, fmt.Errorf("could not parse store info from filename: %s", label)
	}

	street := base.Title(m[2])
	city := ""
	for _, name := range cities {
		if strings.HasSuffix(base.StripDiacritics(street), name) {
			city = name
			street = strings.TrimSpace(base.TrimSuffixRunes(street, len([]rune(name))))
			break
		}
	}

	return models.Store{
		Chain:         Chain,
		StoreID:       m[3],
		Name:          strings.TrimSpace("Kaufland " + city),
		StoreType:     strings.ToLower(m[1]),
		City:          city,
		StreetAddress: street,
	}, nil
}

// splitAnchorPrice turns "MPC 2.5.2025=7,99€" into an anchor price and its
// ISO date. Any other anchor value is dropped.
func splitAnchorPrice(rc *normalize.RunContext, rec normalize.Record) normalize.Record {
	values := map[string]string{anchorDateColumn: ""}

	raw, _ := rec.Lookup(anchorPriceColumn)
	if raw != "" {
		values[anchorPriceColumn] = ""
		if m := anchorPattern.FindStringSubmatch(raw); m != nil {
			date, err := time.Parse("2.1.2006", m[1])
			if err != nil {
				rc.Log.Warn("failed to parse anchor price date", zap.String("value", raw), zap.Error(err))
			} else {
				values[anchorDateColumn] = date.Format(time.DateOnly)
				values[anchorPriceColumn] = m[2]
			}
		}
	}
	return normalize.WithValues(rec, values)
}
