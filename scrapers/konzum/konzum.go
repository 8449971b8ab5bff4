package konzum

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the Konzum slug.
const Chain = "konzum"

const maxIndexPages = 9

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldPrice:        normalize.Col("MALOPRODAJNA CIJENA"),
		normalize.FieldUnitPrice:    normalize.Req("CIJENA ZA JEDINICU MJERE"),
		normalize.FieldSpecialPrice: normalize.Col("MPC ZA VRIJEME POSEBNOG OBLIKA PRODAJE"),
		normalize.FieldBestPrice30:  normalize.Col("NAJNIŽA CIJENA U POSLJEDNJIH 30 DANA"),
		normalize.FieldAnchorPrice:  normalize.Col("SIDRENA CIJENA NA 2.5.2025"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Req("NAZIV PROIZVODA"),
		normalize.FieldProductID: normalize.Req("ŠIFRA PROIZVODA"),
		normalize.FieldBrand:     normalize.Col("MARKA PROIZVODA"),
		normalize.FieldQuantity:  normalize.Col("NETO KOLIČINA"),
		normalize.FieldUnit:      normalize.Col("JEDINICA MJERE"),
		normalize.FieldBarcode:   normalize.Col("BARKOD"),
		normalize.FieldCategory:  normalize.Col("KATEGORIJA PROIZVODA"),
	},
}

// "REPUBLIKE 1 31300 BELI MANASTIR"
var addressPattern = regexp.MustCompile(`^(.*) (\d{5}) (.*)$`)

type KonzumScraper struct {
	*base.BaseScraper
	BaseURL    string
	normalizer *normalize.Normalizer
}

func NewKonzumScraper(b *base.BaseScraper) *KonzumScraper {
	return &KonzumScraper{
		BaseScraper: b,
		BaseURL:     "https://www.konzum.hr",
		normalizer:  &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *KonzumScraper) Chain() string { return Chain }

func (s *KonzumScraper) Mapping() normalize.Mapping { return mapping }

// LocateRecords walks the paginated index for the date until a page lists no
// CSV links.
func (s *KonzumScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	baseURL, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, err
	}

	var downloads []base.Download
	seen := make(map[string]bool)
	for page := 1; page <= maxIndexPages; page++ {
		pageURL := fmt.Sprintf("%s/cjenici?date=%s&page=%d", s.BaseURL, rc.Date.Format(time.DateOnly), page)
		doc, err := s.FetchDocument(ctx, pageURL, base.AnyDocument)
		if err != nil {
			return nil, fmt.Errorf("fetch index page %d: %w", page, err)
		}

		links := base.Links(doc, "a[format=csv]", "href", baseURL)
		if len(links) == 0 {
			break
		}
		for _, link := range links {
			if !seen[link] {
				seen[link] = true
				downloads = append(downloads, base.Download{Name: link, URL: link})
			}
		}
	}
	rc.Log.Debug("located price lists", zap.Int("count", len(downloads)))

	return s.FetchGroups(ctx, downloads), nil
}

func (s *KonzumScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
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

// ParseStoreInfo reads the store from the title query parameter of a CSV
// download URL. Titles look like
//
//	SUPERMARKET,REPUBLIKE 1 31300 BELI MANASTIR,0904,1629,21.05.2025, 05-22.CSV
//
// and sometimes split the address over two fields.
func ParseStoreInfo(rawURL string) (models.Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.Store{}, err
	}
	title := strings.ReplaceAll(u.Query().Get("title"), "_", " ")
	if title == "" {
		return models.Store{}, fmt.Errorf("no title parameter found in URL: %s", rawURL)
	}

	parts := strings.Split(title, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 6 {
		return models.Store{}, fmt.Errorf("invalid CSV title format: %s", title)
	}

	storeID, address := parts[2], parts[1]
	if len(parts) != 6 {
		storeID, address = parts[3], parts[1]+" "+parts[2]
	}
	m := addressPattern.FindStringSubmatch(address)
	if m == nil {
		return models.Store{}, fmt.Errorf("could not parse address from: %s", address)
	}

	city := base.Title(strings.TrimSpace(m[3]))
	return models.Store{
		Chain:         Chain,
		StoreID:       storeID,
		Name:          "Konzum " + city,
		StoreType:     strings.ToLower(parts[0]),
		City:          city,
		StreetAddress: base.Title(strings.TrimSpace(m[1])),
		Zipcode:       m[2],
	}, nil
}
