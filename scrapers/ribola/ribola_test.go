package ribola

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

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<root>
  <ProdajniObjekt>
    <Oblik>Supermarket</Oblik>
    <Oznaka>105</Oznaka>
    <Adresa>Put Brodarice 6 Kaštel Sućurac</Adresa>
    <Proizvodi>
      <Proizvod>
        <NazivProizvoda>Srdele</NazivProizvoda>
        <SifraProizvoda>7001</SifraProizvoda>
        <MarkaProizvoda></MarkaProizvoda>
        <NetoKolicina>1</NetoKolicina>
        <JedinicaMjere>kg</JedinicaMjere>
        <MaloprodajnaCijena>4,99</MaloprodajnaCijena>
        <CijenaZaJedinicuMjere>4,99</CijenaZaJedinicuMjere>
        <MaloprodajnaCijenaAkcija></MaloprodajnaCijenaAkcija>
        <NajnizaCijena>4,49</NajnizaCijena>
        <SidrenaCijena>5,29</SidrenaCijena>
        <Barkod></Barkod>
        <KategorijeProizvoda>Riba</KategorijeProizvoda>
      </Proizvod>
      <Proizvod>
        <NazivProizvoda>Oslić</NazivProizvoda>
        <SifraProizvoda>7002</SifraProizvoda>
      </Proizvod>
    </Proizvodi>
  </ProdajniObjekt>
</root>`

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		raw    string
		street string
		city   string
	}{
		{"Put Brodarice 6 Kaštel Sućurac", "Put Brodarice 6", "Kastel Sucurac"},
		{"Poljička cesta 35 Split ", "Poljička cesta 35", "Split"},
		{"Obala 1 SIBENIK", "Obala 1", "Šibenik"},
		{"Nepoznata 3", "Nepoznata 3", ""},
	}
	for _, tt := range tests {
		street, city := splitAddress(tt.raw)
		assert.Equal(t, tt.street, street, tt.raw)
		assert.Equal(t, tt.city, city, tt.raw)
	}
}

func TestParseRecordGroup(t *testing.T) {
	s := NewRibolaScraper(base.NewBaseScraper(base.Options{}))
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), nil, nil, "")

	store, products, err := s.ParseRecordGroup(rc, base.RecordGroup{Content: []byte(sampleXML)})
	require.NoError(t, err)
	assert.Equal(t, "105", store.StoreID)
	assert.Equal(t, "supermarket", store.StoreType)
	assert.Equal(t, "Put Brodarice 6", store.StreetAddress)
	assert.Equal(t, "Kastel Sucurac", store.City)
	assert.Equal(t, "Ribola Kastel Sucurac 105", store.Name)

	require.Len(t, products, 1)
	assert.Equal(t, "Srdele", products[0].Name)
	assert.Equal(t, "4.49", products[0].BestPrice30.Decimal.StringFixed(2))
	assert.Equal(t, "ribola:7001", products[0].Barcode)
}

func TestParseRecordGroupWithoutStore(t *testing.T) {
	s := NewRibolaScraper(base.NewBaseScraper(base.Options{}))
	rc := normalize.NewRunContext(Chain, time.Now(), nil, nil, "")

	_, _, err := s.ParseRecordGroup(rc, base.RecordGroup{Content: []byte(`<root><Proizvod/></root>`)})
	assert.ErrorIs(t, err, errNoStore)
}

func TestLocateRecords(t *testing.T) {
	var gotDate string
	mux := http.NewServeMux()
	mux.HandleFunc("/ribola-cjenici/", func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.URL.Query().Get("date")
		fmt.Fprint(w, `<html><body><a href="files/105.xml">105</a><a href="files/105.xml">dup</a><a href="info.pdf">pdf</a></body></html>`)
	})
	mux.HandleFunc("/ribola-cjenici/files/105.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleXML)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewRibolaScraper(base.NewBaseScraper(base.Options{}))
	s.IndexURL = srv.URL + "/ribola-cjenici/"
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), nil, nil, "")

	groups, err := s.LocateRecords(context.Background(), rc)
	require.NoError(t, err)

	var urls []string
	for g, err := range groups {
		require.NoError(t, err)
		urls = append(urls, g.URL)
	}
	assert.Equal(t, "20.05.2025", gotDate)
	assert.Equal(t, []string{srv.URL + "/ribola-cjenici/files/105.xml"}, urls)
}

func TestMappingValid(t *testing.T) {
	assert.NoError(t, mapping.Validate())
}
