package metro

import (
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

const sampleName = "https://metrocjenik.com.hr/cjenici/skladiste_za_trgovanje_robom_na_veliko_i_malo_METRO_20250521T1149_S20_CESTA_PAPE_IVANA_PAVLA_II_3%2C_KASTEL_SUCURAC.csv"

const sampleCSV = "NAZIV,SIFRA,MARKA,NETO_KOLICINA,JED_MJERE,MPC,CIJENA_PO_MJERI,POSEBNA_PRODAJA,NAJNIZA_30_DANA,SIDRENA_02_05,BARKOD,KATEGORIJA\n" +
	"Ulje suncokretovo,100200,Zvijezda,1,l,\"2,49\",\"2,49\",,\"2,19\",\"2,59\",3850104000011,Ulja\n" +
	"Bez cijene po mjeri,100201,,1,kom,\"1,00\",,,,,,\n" +
	",100202,,1,kom,\"1,00\",\"1,00\",,,,,\n"

func TestParseStoreInfo(t *testing.T) {
	store, err := ParseStoreInfo(sampleName)
	require.NoError(t, err)
	assert.Equal(t, "skladiste za trgovanje robom na veliko i malo", store.StoreType)
	assert.Equal(t, "S20", store.StoreID)
	assert.Equal(t, "Cesta Pape Ivana Pavla Ii 3", store.StreetAddress)
	assert.Equal(t, "Kastel Sucurac", store.City)
	assert.Equal(t, "Metro Kastel Sucurac S20", store.Name)
	assert.Equal(t, "", store.Zipcode)

	_, err = ParseStoreInfo("https://metrocjenik.com.hr/cjenici/METRO_cjenik.csv")
	assert.Error(t, err)
}

func TestParseRecordGroup(t *testing.T) {
	s := NewMetroScraper(base.NewBaseScraper(base.Options{}))
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), nil, nil, "")

	store, products, err := s.ParseRecordGroup(rc, base.RecordGroup{Name: sampleName, Content: []byte(sampleCSV)})
	require.NoError(t, err)
	assert.Equal(t, "S20", store.StoreID)

	// Unit price and name are both required.
	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "Ulje suncokretovo", p.Name)
	assert.Equal(t, "2.49", p.Price.StringFixed(2))
	assert.Equal(t, "2.19", p.BestPrice30.Decimal.StringFixed(2))
	assert.Equal(t, "2.59", p.AnchorPrice.Decimal.StringFixed(2))
	assert.Equal(t, "3850104000011", p.Barcode)
}

func TestLocateRecordsFiltersByDate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/cjenici/hipermarket_METRO_20250520T0800_S10_JANKOMIR_31%2C_ZAGREB.csv">20.</a>
<a href="/cjenici/hipermarket_METRO_20250521T0800_S10_JANKOMIR_31%2C_ZAGREB.csv">21.</a>
<a href="cjenici/hipermarket_METRO_20250521T0800_S20_PUT_1%2C_SPLIT.csv">21.</a>
</body></html>`)
	})
	mux.HandleFunc("/cjenici/", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "data") })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewMetroScraper(base.NewBaseScraper(base.Options{}))
	s.IndexURL = srv.URL + "/"
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), nil, nil, "")

	groups, err := s.LocateRecords(context.Background(), rc)
	require.NoError(t, err)

	var ids []string
	for g, err := range groups {
		require.NoError(t, err)
		store, err := ParseStoreInfo(g.Name)
		require.NoError(t, err)
		ids = append(ids, store.StoreID)
	}
	assert.Equal(t, []string{"S10", "S20"}, ids)
}

func TestMappingValid(t *testing.T) {
	assert.NoError(t, mapping.Validate())
}
