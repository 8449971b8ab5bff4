package eurospin

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Eurospin slug.
const Chain = "eurospin"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Req("MALOPROD.CIJENA(EUR)"),
		normalize.FieldUnitPrice:    normalize.Req("CIJENA_ZA_JEDINICU_MJERE"),
		normalize.FieldSpecialPrice: normalize.Col("MPC_POSEB.OBLIK_PROD"),
		normalize.FieldBestPrice30:  normalize.Col("NAJNIŽA_MPC_U_30DANA"),
		normalize.FieldAnchorPrice:  normalize.Col("SIDRENA_CIJENA"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Req("NAZIV_PROIZVODA"),
		normalize.FieldProductID: normalize.Req("ŠIFRA_PROIZVODA"),
		normalize.FieldBrand:     normalize.Col("MARKA_PROIZVODA"),
		normalize.FieldQuantity:  normalize.Col("NETO_KOLIČINA"),
		normalize.FieldUnit:      normalize.Col("JEDINICA_MJERE"),
		normalize.FieldBarcode:   normalize.Col("BARKOD"),
		normalize.FieldCategory:  normalize.Col("KATEGORIJA_PROIZVODA"),
	},
}

// Some files omit the store id; it is recovered from the address.
var storeIDs = map[string]string{
	"Ulica hrvatskog preporoda 70 Dugo Selo":  "310032",
	"Ulica Rimske centurijacije 100":          "310013",
	"Ulica Juraja Dobrile 1C":                 "310006",
	"Zagrebacka ul 49G":                       "310012",
	"Gacka ulica 70":                          "310017",
	"Ulica Istarskih narodnjaka 17 Stop Shop": "310027",
	"Zagrebacka cesta 162A":                   "310018",
	"Ulica Ote Horvata 1 33000 Virovitica":    "310036",
	"Cesta Dalmatinskih brigada 7a":           "310030",
	"Celine 2":                                "310009",
	"Ulica Mate Vlašica 51A":                  "310010",
	"Koprivnicka ulica 34A":                   "310033",
	"Ulica Furicevo 20":                       "310016",
	"Zvonarska ulica 63":                      "310035",
	"Ulica Petra Svacica 2B":                  "310014",
	"Zagrebacka 52":                           "310004",
	"Ulica Matije Gupca 59":                   "310021",
	"Ulica Mihovila P Miškine 5":              "310024",
	"4 Gardijske Brigade 1":                   "310003",
	"Ulica hrvatskih branitelja 2":            "310005",
	"Ulica Ante Starcevica 20":                "310019",
	"I Štefanovecki zavoj 12":                 "310002",
	"Štrmac 303":                              "310026",
	"Ljudevita Šestica 7":                     "310037",
	"Ulica Vlahe Paljetka 7":                  "310011",
	"Ulica Veceslava Holjevca 15":             "310034",
	"Stop shop":                               "310028",
	"Solinska ulica 84":                       "310015",
	"Obrtnicka ulica 2":                       "310008",
	"Ulica kralja Tomislava 47A":              "310007",
	"Žutska ulica broj 1":                     "310023",
}

var zipcodePattern = regexp.MustCompile(`^\d{5}$`)

type EurospinScraper struct {
	*base.BaseScraper
	BaseURL    string
	normalizer *normalize.Normalizer
}

func NewEurospinScraper(b *base.BaseScraper) *EurospinScraper {
	return &EurospinScraper{
		BaseScraper: b,
		BaseURL:     "https://www.eurospin.hr",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *EurospinScraper) Chain() string { return Chain }

func (s *EurospinScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords picks the archive for the date from the index select box.
func (s *EurospinScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	baseURL, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, err
	}
	doc, err := s.FetchDocument(ctx, s.BaseURL+"/cjenik/", base.AnyDocument)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	want := rc.Date.Format("02.01.2006")
	var zipURL string
	links := base.Links(doc, "option[value$='.zip']", "value", baseURL)
	for _, link := range links {
		if strings.Contains(path.Base(link), want) {
			zipURL = link
			break
		}
	}
	if zipURL == "" {
		rc.Log.Debug("no archive for date", zap.Int("archives", len(links)))
		return nil, fmt.Errorf("no price list found for %s", want)
	}

	data, err := s.FetchBytes(ctx, zipURL)
	if err != nil {
		return nil, fmt.Errorf("fetch archive: %w", err)
	}
	return base.ArchiveGroups(zipURL, data, ".csv")
}

func (s *EurospinScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
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

// ParseStoreInfo reads the store from a file name such as
//
//	supermarket-310037-Ljudevita_Šestica_7-Karlovac-47000-21.05.2025-7.30.csv
//
// Names without the id segment get it from the address.
func ParseStoreInfo(filename string) (models.Store, error) {
	parts := strings.Split(path.Base(filename), "-")
	if len(parts) < 6 {
		return models.Store{}, fmt.Errorf("invalid CSV filename format: %s", filename)
	}
	if len(parts) == 6 {
		addr := strings.ReplaceAll(parts[1], "_", " ")
		id, ok := storeIDs[addr]
		if !ok {
			id = addr
		}
		parts = slices.Insert(parts, 1, id)
	}

	zipcode := ""
	if zipcodePattern.MatchString(parts[4]) {
		zipcode = parts[4]
	}
	return models.Store{
		Chain:         Chain,
		StoreID:       parts[1],
		Name:          "Eurospin " + parts[3],
		StoreType:     strings.ToLower(parts[0]),
		City:          parts[3],
		StreetAddress: strings.ReplaceAll(parts[2], "_", " "),
		Zipcode:       zipcode,
	}, nil
}
