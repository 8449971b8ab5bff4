package ntl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/charmap"

	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

const sampleCSV = "Naziv proizvoda;Šifra proizvoda;Marka proizvoda;Neto količina;Jedinica mjere;Maloprodajna cijena;Cijena za jedinicu mjere;MPC za vrijeme posebnog oblika prodaje;Sidrena cijena na 2.5.2025;Barkod;Kategorija proizvoda\n" +
	"  Kruh bijeli  ;5001;;0,5;kg;1,20;2,40;;1,10;;Pekarski\n" +
	"Burek;;;0,2;kg;2,00;;;;;Pekarski\n"

func TestParseStoreInfo(t *testing.T) {
	store, err := ParseStoreInfo("https://www.ntl.hr/csv_files/Supermarket_Ljudevita%20Gaja%201_DUGA%20RESA_10103_263_25052025_07_22_36.csv")
	require.NoError(t, err)
	assert.Equal(t, "supermarket", store.StoreType)
	assert.Equal(t, "10103", store.StoreID)
	assert.Equal(t, "Ljudevita Gaja 1", store.StreetAddress)
	assert.Equal(t, "Duga Resa", store.City)
	assert.Equal(t, "NTL Duga Resa", store.Name)
	assert.Equal(t, "", store.Zipcode)

	_, err = ParseStoreInfo("https://www.ntl.hr/csv_files/cjenik.csv")
	assert.Error(t, err)
}

func TestParseRecordGroup(t *testing.T) {
	content, err := charmap.Windows1250.NewEncoder().Bytes([]byte(sampleCSV))
	require.NoError(t, err)

	s := NewNTLScraper(base.NewBaseScraper(base.Options{}))
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC), nil, nil, "")

	_, products, err := s.ParseRecordGroup(rc, base.RecordGroup{
		Name:    "https://www.ntl.hr/csv_files/Supermarket_Ljudevita%20Gaja%201_DUGA%20RESA_10103_263_25052025_07_22_36.csv",
		Content: content,
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Kruh bijeli", products[0].Name)
	assert.Equal(t, "ntl:5001", products[0].Barcode)
}

func TestLocateRecordsIgnoresDate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cjenici", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/csv_files/outside.csv">not in table</a>
<table><tr><td><a href="/csv_files/Supermarket_Ilica%201_ZAGREB_1_25052025.csv">csv</a></td></tr></table>
</body></html>`)
	})
	mux.HandleFunc("/csv_files/", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "data") })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	s := NewNTLScraper(base.NewBaseScraper(base.Options{}))
	s.IndexURL = srv.URL + "/cjenici"
	rc := normalize.NewRunContext(Chain, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), zap.New(core), nil, "")

	groups, err := s.LocateRecords(context.Background(), rc)
	require.NoError(t, err)

	var count int
	for g, err := range groups {
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), g.Content)
		count++
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, logs.FilterMessage("date is ignored, only current price lists are published").Len())
}

func TestMappingValid(t *testing.T) {
	assert.NoError(t, mapping.Validate())
}
