package ribola

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Ribola slug.
const Chain = "ribola"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("MaloprodajnaCijena"),
		normalize.FieldUnitPrice:    normalize.Col("CijenaZaJedinicuMjere"),
		normalize.FieldSpecialPrice: normalize.Col("MaloprodajnaCijenaAkcija"),
		normalize.FieldBestPrice30:  normalize.Col("NajnizaCijena"),
		normalize.FieldAnchorPrice:  normalize.Col("SidrenaCijena"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Req("NazivProizvoda"),
		normalize.FieldProductID: normalize.Req("SifraProizvoda"),
		normalize.FieldBrand:     normalize.Col("MarkaProizvoda"),
		normalize.FieldQuantity:  normalize.Col("NetoKolicina"),
		normalize.FieldUnit:      normalize.Col("JedinicaMjere"),
		normalize.FieldBarcode:   normalize.Col("Barkod"),
		normalize.FieldCategory:  normalize.Col("KategorijeProizvoda"),
	},
}

var cities = []string{
	"Kastel Sucurac", "Ploče", "Kaštel Gomilica", "Trogir", "Kaštel Lukšić",
	"Okrug Gornji", "Makarska", "Kaštel Stari", "Kaštel Novi", "Kastel Kambelovac",
	"Split", "Sinj", "Solin", "Orebić", "Nečujam", "Dubrovnik", "Podstrana",
	"Dugi Rat", "Ražanj", "Primošten", "Jelsa", "Stobrec", "Trilj", "Seget Donji",
	"Brela", "Šibenik", "Zadar",
}

var errNoStore = errors.New("no ProdajniObjekt element found in XML")

type RibolaScraper struct {
	*base.BaseScraper
	IndexURL   string
	normalizer *normalize.Normalizer
}

func NewRibolaScraper(b *base.BaseScraper) *RibolaScraper {
	return &RibolaScraper{
		BaseScraper: b,
		IndexURL:    "https://ribola.hr/ribola-cjenici/",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *RibolaScraper) Chain() string { return Chain }

func (s *RibolaScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords lists one XML document per store for the date.
func (s *RibolaScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	indexURL, err := url.Parse(s.IndexURL)
	if err != nil {
		return nil, err
	}
	q := indexURL.Query()
	q.Set("date", rc.Date.Format("02.01.2006"))
	indexURL.RawQuery = q.Encode()

	doc, err := s.FetchDocument(ctx, indexURL.String(), base.AnyDocument)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	links := base.Links(doc, `a[href$=".xml"]`, "href", indexURL)
	if len(links) == 0 {
		rc.Log.Warn("no price lists found on index", zap.String("url", indexURL.String()))
	}
	downloads := make([]base.Download, 0, len(links))
	for _, link := range links {
		downloads = append(downloads, base.Download{Name: link, URL: link})
	}
	return s.FetchGroups(ctx, downloads), nil
}

func (s *RibolaScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	root, err := base.ParseXML(g.Content)
	if err != nil {
		return models.Store{}, nil, err
	}
	store, err := ParseStore(root)
	if err != nil {
		return models.Store{}, nil, err
	}
	products := s.normalizer.Products(rc, normalize.ElementRecords(root.FindAll("Proizvod")))
	return store, products, nil
}

// ParseStore reads the first ProdajniObjekt element of a price list.
func ParseStore(root *normalize.Element) (models.Store, error) {
	objects := root.FindAll("ProdajniObjekt")
	if len(objects) == 0 {
		return models.Store{}, errNoStore
	}
	obj := objects[0]
	kind, _ := obj.Lookup("Oblik")
	id, _ := obj.Lookup("Oznaka")
	address, _ := obj.Lookup("Adresa")

	street, city := splitAddress(address)
	return models.Store{
		Chain:         Chain,
		StoreID:       id,
		Name:          strings.Join(strings.Fields("Ribola "+city+" "+id), " "),
		StoreType:     strings.ToLower(kind),
		City:          base.Title(city),
		StreetAddress: street,
	}, nil
}

// splitAddress separates a known city from the end of "Poljička cesta 35 Split".
func splitAddress(raw string) (street, city string) {
	address := strings.TrimSpace(raw)
	for _, name := range cities {
		if base.HasSuffixFold(address, name) {
			return strings.TrimSpace(base.TrimSuffixRunes(address, len([]rune(name)))), name
		}
	}
	return address, ""
}
