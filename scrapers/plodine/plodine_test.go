package plodine

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

const sampleName = "SUPERMARKET_SJEVERNA_VEZNA_CESTA_31_35000_SLAVONSKI_BROD_022_6_20052025014212.csv"

const sampleCSV = "Naziv proizvoda;Sifra proizvoda;Marka proizvoda;Neto kolicina;Jedinica mjere;Maloprodajna cijena;Cijena po JM;MPC za vrijeme posebnog oblika prodaje;Najniza cijena u poslj. 30 dana;Sidrena cijena na 2.5.2025;Barkod;Kategorija proizvoda\n" +
	"Brašno T-550;0101;Podravka;1;kg;0,89;0,89;0,79;0,79;0,95;3850102000010;Namirnice\n" +
	";0102;;1;kg;1,00;1,00;;;;;Namirnice\n"

func TestParseStoreInfo(t *testing.T) {
	tests := []struct {
		filename string
		kind     string
		id       string
		address  string
		zipcode  string
		city     string
	}{
		{sampleName, "supermarket", "022", "Sjeverna Vezna Cesta 31", "35000", "Slavonski Brod"},
		{"HIPERMARKET_ULICA_FRANJE_TUDJMANA_83A_10450_JASTREBARSKO_063_2_16052025020937.csv", "hipermarket", "063", "Ulica Franje Tudjmana 83A", "10450", "Jastrebarsko"},
	}
	for _, tt := range tests {
		store, err := ParseStoreInfo(tt.filename)
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.kind, store.StoreType)
		assert.Equal(t, tt.id, store.StoreID)
		assert.Equal(t, tt.address, store.StreetAddress)
		assert.Equal(t, tt.zipcode, store.Zipcode)
		assert.Equal(t, tt.city, store.City)
		assert.Equal(t, "Plodine "+tt.city, store.Name)
	}

	_, err := ParseStoreInfo("TRGOVINA_ILICA_1_10000_ZAGREB_1_1_1.csv")
	assert.Error(t, err)
}

func TestArchiveDate(t *testing.T) {
	date, ok := archiveDate("https://www.plodine.hr/cjenici/cjenici_20_05_2025_07_00_01.zip")
	require.True(t, ok)
	assert.Equal(t, "2025-05-20", date)

	_, ok = archiveDate("https://www.plodine.hr/cjenici/cjenici_31_02_2025_07_00_01.zip")
	assert.False(t, ok)
	_, ok = archiveDate("https://www.plodine.hr/upload/katalog.zip")
	assert.False(t, ok)
}

func TestParseRecordGroup(t *testing.T) {
	s := NewPlodineScraper(base.NewBaseScraper(base.Options{}))
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), nil, nil, "")

	store, products, err := s.ParseRecordGroup(rc, base.RecordGroup{Name: sampleName, Content: []byte(sampleCSV)})
	require.NoError(t, err)
	assert.Equal(t, "022", store.StoreID)

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "Brašno T-550", p.Name)
	assert.Equal(t, "0.79", p.SpecialPrice.Decimal.StringFixed(2))
	assert.Equal(t, "0.95", p.AnchorPrice.Decimal.StringFixed(2))
	assert.Equal(t, normalize.DefaultAnchorPriceDate, p.AnchorPriceDate)
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLocateRecords(t *testing.T) {
	archive := zipOf(t, map[string]string{sampleName: sampleCSV, "upute.pdf": "x"})
	mux := http.NewServeMux()
	mux.HandleFunc("/info-o-cijenama", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/cjenici/cjenici_19_05_2025_07_00_01.zip">19.05.</a>
<a href="/cjenici/cjenici_20_05_2025_07_00_01.zip">20.05.</a>
</body></html>`)
	})
	mux.HandleFunc("/cjenici/cjenici_20_05_2025_07_00_01.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewPlodineScraper(base.NewBaseScraper(base.Options{}))
	s.IndexURL = srv.URL + "/info-o-cijenama"

	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), nil, nil, "")
	groups, err := s.LocateRecords(context.Background(), rc)
	require.NoError(t, err)

	var names []string
	for g, err := range groups {
		require.NoError(t, err)
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{sampleName}, names)

	rc = normalize.NewRunContext(Chain, time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), nil, nil, "")
	_, err = s.LocateRecords(context.Background(), rc)
	assert.ErrorContains(t, err, "no price list found for 2025-05-21")
}

func TestMappingValid(t *testing.T) {
	assert.NoError(t, mapping.Validate())
}
