package trgocentar

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

	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

const sampleName = "https://trgocentar.com/Trgovine-cjenik/SUPERMARKET_VL_NAZORA_58_SV_IVAN_ZELINA_P120_009_230520250745.xml"

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<cjenici>
  <cjenik>
    <naziv_art>Jaja M 10/1</naziv_art>
    <sif_art>4410</sif_art>
    <marka>Farma</marka>
    <net_kol>10</net_kol>
    <jmj>kom</jmj>
    <mpc>2,99</mpc>
    <c_jmj>0,30</c_jmj>
    <mpc_pop></mpc_pop>
    <c_najniza_30>2,79</c_najniza_30>
    <c_020525>3,19</c_020525>
    <ean_kod>3859888000014</ean_kod>
    <naz_kat>Jaja</naz_kat>
  </cjenik>
  <cjenik>
    <naziv_art></naziv_art>
    <sif_art>4411</sif_art>
    <mpc>1,00</mpc>
  </cjenik>
</cjenici>`

func TestParseStoreInfo(t *testing.T) {
	tests := []struct {
		url     string
		id      string
		address string
		city    string
		name    string
	}{
		{sampleName, "P120", "Vl Nazora 58", "Sv Ivan Zelina", "Trgocentar Sv Ivan Zelina P120"},
		{"SUPERMARKET_ZAGREBACKA_2_ZABOK_P005_001_230520250745.xml", "P005", "Zagrebacka 2", "Zabok", "Trgocentar Zabok P005"},
		{"MARKET_TRG_1_OROSLAVJE_P007_001_230520250745.xml", "P007", "Trg 1 Oroslavje", "", "Trgocentar P007"},
	}
	for _, tt := range tests {
		store, err := ParseStoreInfo(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.id, store.StoreID)
		assert.Equal(t, tt.address, store.StreetAddress)
		assert.Equal(t, tt.city, store.City)
		assert.Equal(t, tt.name, store.Name)
	}

	_, err := ParseStoreInfo("https://trgocentar.com/cjenik.xml")
	assert.Error(t, err)
}

func TestParseRecordGroup(t *testing.T) {
	s := NewTrgocentarScraper(base.NewBaseScraper(base.Options{}))
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 23, 0, 0, 0, 0, time.UTC), nil, nil, "")

	store, products, err := s.ParseRecordGroup(rc, base.RecordGroup{Name: sampleName, Content: []byte(sampleXML)})
	require.NoError(t, err)
	assert.Equal(t, "supermarket", store.StoreType)

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "Jaja M 10/1", p.Name)
	assert.Equal(t, "0.30", p.UnitPrice.StringFixed(2))
	assert.Equal(t, "3.19", p.AnchorPrice.Decimal.StringFixed(2))
}

func TestLocateRecordsFiltersByDate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Trgovine-cjenik/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Trgovine-cjenik/" {
			fmt.Fprint(w, "<cjenici/>")
			return
		}
		fmt.Fprint(w, `<html><body>
<a href="SUPERMARKET_ZAGREBACKA_2_ZABOK_P005_001_220520250745.xml">22.</a>
<a href="SUPERMARKET_ZAGREBACKA_2_ZABOK_P005_001_230520250745.xml">23.</a>
</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewTrgocentarScraper(base.NewBaseScraper(base.Options{}))
	s.IndexURL = srv.URL + "/Trgovine-cjenik/"

	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 23, 0, 0, 0, 0, time.UTC), nil, nil, "")
	groups, err := s.LocateRecords(context.Background(), rc)
	require.NoError(t, err)

	var urls []string
	for g, err := range groups {
		require.NoError(t, err)
		urls = append(urls, g.URL)
	}
	assert.Equal(t, []string{srv.URL + "/Trgovine-cjenik/SUPERMARKET_ZAGREBACKA_2_ZABOK_P005_001_230520250745.xml"}, urls)

	core, logs := observer.New(zapcore.WarnLevel)
	rc = normalize.NewRunContext(Chain, time.Date(2025, 5, 24, 0, 0, 0, 0, time.UTC), zap.New(core), nil, "")
	groups, err = s.LocateRecords(context.Background(), rc)
	require.NoError(t, err)
	for range groups {
		t.Fatal("expected no groups")
	}
	assert.Equal(t, 1, logs.FilterMessage("no price lists found for date").Len())
}

func TestMappingValid(t *testing.T) {
	assert.NoError(t, mapping.Validate())
}
