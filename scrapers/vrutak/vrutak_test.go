package vrutak

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

const indexHTML = `<html><body><table>
<thead><tr><th>#</th><th>Datum</th><th>Jankomir</th><th>Dubrava</th></tr></thead>
<tbody>
<tr><td>1</td><td>20.05.2025.</td>
  <td><a href="/cjenik/vrutak-hipermarket-JANKOMIR_1-1-001-20052025.xml">xml</a></td>
  <td><a href="/cjenik/vrutak-supermarket-DUBRAVA_22-2-001-20052025.xml">xml</a></td></tr>
<tr><td>2</td><td>19.05.2025.</td>
  <td><a href="/cjenik/vrutak-hipermarket-JANKOMIR_1-1-001-19052025.xml">xml</a></td>
  <td>-</td></tr>
<tr><td colspan="3">Arhiva</td></tr>
</tbody></table></body></html>`

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<items>
  <item>
    <naziv>Kava mljevena</naziv>
    <sifra>55</sifra>
    <marka>Franck</marka>
    <nettokolicina>0,5</nettokolicina>
    <mjera>kg</mjera>
    <mpcijena>5,49</mpcijena>
    <mpcijenamjera>10,98</mpcijenamjera>
    <barkod>3850100000018</barkod>
    <kategorija>Kava</kategorija>
  </item>
  <item>
    <naziv>Bez cijene</naziv>
    <sifra>56</sifra>
    <mpcijenamjera>1,00</mpcijenamjera>
  </item>
</items>`

func TestIndexLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indexHTML))
	require.NoError(t, err)
	root, err := url.Parse("https://www.vrutak.hr/cjenik-svih-artikala")
	require.NoError(t, err)

	byDate := IndexLinks(doc, root)
	assert.Len(t, byDate, 2)
	assert.Equal(t, []string{
		"https://www.vrutak.hr/cjenik/vrutak-hipermarket-JANKOMIR_1-1-001-20052025.xml",
		"https://www.vrutak.hr/cjenik/vrutak-supermarket-DUBRAVA_22-2-001-20052025.xml",
	}, byDate["2025-05-20"])
	assert.Len(t, byDate["2025-05-19"], 1)
}

func TestParseStoreInfo(t *testing.T) {
	store, err := ParseStoreInfo("https://www.vrutak.hr/cjenik/vrutak-hipermarket-JANKOMIR_1-1-001-20052025.xml")
	require.NoError(t, err)
	assert.Equal(t, "hipermarket", store.StoreType)
	assert.Equal(t, "1", store.StoreID)
	assert.Equal(t, "Jankomir 1", store.StreetAddress)
	assert.Equal(t, "Vrutak hipermarket 1", store.Name)
	assert.Equal(t, "Zagreb", store.City)
	assert.Equal(t, "10000", store.Zipcode)

	_, err = ParseStoreInfo("https://www.vrutak.hr/cjenik/vrutak-cjenik.xml")
	assert.Error(t, err)
}

func TestParseRecordGroup(t *testing.T) {
	s := NewVrutakScraper(base.NewBaseScraper(base.Options{}))
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), nil, nil, "")

	_, products, err := s.ParseRecordGroup(rc, base.RecordGroup{
		Name:    "vrutak-supermarket-DUBRAVA_22-2-001-20052025.xml",
		Content: []byte(sampleXML),
	})
	require.NoError(t, err)

	// The shelf price is required.
	require.Len(t, products, 1)
	assert.Equal(t, "Kava mljevena", products[0].Name)
	assert.Equal(t, "5.49", products[0].Price.StringFixed(2))
	assert.Equal(t, "10.98", products[0].UnitPrice.StringFixed(2))
}

func TestLocateRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cjenik-svih-artikala", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, indexHTML)
	})
	mux.HandleFunc("/cjenik/", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, sampleXML) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewVrutakScraper(base.NewBaseScraper(base.Options{}))
	s.IndexURL = srv.URL + "/cjenik-svih-artikala"

	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), nil, nil, "")
	groups, err := s.LocateRecords(context.Background(), rc)
	require.NoError(t, err)

	var ids []string
	for g, err := range groups {
		require.NoError(t, err)
		store, _, err := s.ParseRecordGroup(rc, g)
		require.NoError(t, err)
		ids = append(ids, store.StoreID)
	}
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestMappingValid(t *testing.T) {
	assert.NoError(t, mapping.Validate())
}
