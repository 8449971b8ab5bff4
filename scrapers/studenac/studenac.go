package studenac

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
	"time"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Studenac slug.
const Chain = "studenac"

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("MaloprodajnaCijena"),
		normalize.FieldUnitPrice:    normalize.Col("CijenaPoJedinici"),
		normalize.FieldSpecialPrice: normalize.Col("MaloprodajnaCijenaAkcija"),
		normalize.FieldBestPrice30:  normalize.Col("NajnizaCijena"),
		normalize.FieldAnchorPrice:  normalize.Col("SidrenaCijena"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Col("NazivProizvoda"),
		normalize.FieldProductID: normalize.Req("SifraProizvoda"),
		normalize.FieldBrand:     normalize.Col("MarkaProizvoda"),
		normalize.FieldQuantity:  normalize.Col("NetoKolicina"),
		normalize.FieldUnit:      normalize.Col("JedinicaMjere"),
		normalize.FieldBarcode:   normalize.Col("Barkod"),
		normalize.FieldCategory:  normalize.Col("KategorijeProizvoda"),
	},
}

// The city is the trailing run of upper case words: "Ulica 1 KAŠTEL STARI".
var addressPattern = regexp.MustCompile(`^(.*?)([A-ZČĆĐŠŽ][A-ZČĆĐŠŽ\s]+)$`)

var errNoStore = errors.New("no ProdajniObjekt element found in XML")

type StudenacScraper struct {
	*base.BaseScraper
	BaseURL    string
	normalizer *normalize.Normalizer
}

func NewStudenacScraper(b *base.BaseScraper) *StudenacScraper {
	return &StudenacScraper{
		BaseScraper: b,
		BaseURL:     "https://www.studenac.hr",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *StudenacScraper) Chain() string { return Chain }

func (s *StudenacScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords downloads the daily archive, which has one XML file per store.
func (s *StudenacScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	zipURL := fmt.Sprintf("%s/cjenici/PROIZVODI-%s.zip", s.BaseURL, rc.Date.Format(time.DateOnly))
	data, err := s.FetchBytes(ctx, zipURL)
	if err != nil {
		return nil, fmt.Errorf("fetch archive: %w", err)
	}
	return base.ArchiveGroups(zipURL, data, ".xml")
}

func (s *StudenacScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	root, err := base.ParseXML(g.Content)
	if err != nil {
		return models.Store{}, nil, err
	}
	store, err := ParseStore(root)
	if err != nil {
		return models.Store{}, nil, err
	}

	var items []*normalize.Element
	for _, obj := range root.FindAll("ProdajniObjekt") {
		if list := obj.Find("Proizvodi"); list != nil {
			items = append(items, list.FindAll("Proizvod")...)
		}
	}
	return store, s.normalizer.Products(rc, normalize.ElementRecords(items)), nil
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

	street, city := SplitAddress(address)
	return models.Store{
		Chain:         Chain,
		StoreID:       id,
		Name:          "Studenac " + id,
		StoreType:     strings.ToLower(kind),
		City:          city,
		StreetAddress: street,
	}, nil
}

// SplitAddress separates the upper case city from the street. Both come
// back title cased; an address without such a city is all street.
func SplitAddress(address string) (street, city string) {
	m := addressPattern.FindStringSubmatch(address)
	if m == nil {
		return base.Title(strings.TrimSpace(address)), ""
	}
	return base.Title(strings.TrimSpace(m[1])), base.Title(strings.TrimSpace(m[2]))
}
