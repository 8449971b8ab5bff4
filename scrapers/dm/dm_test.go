package dm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

var headerRow = []any{
	"Naziv + šifra", nil, "Marka", "Barkod", "Kategorija proizvoda", "Neto količina", "Jedinica mjere",
	"MPC", "Cijena za jedinicu mjere",
	"MPC za vrijeme posebnog oblika prodaje (rasprodaja proizvoda koji izlaze iz asortimana)",
	"Najniža cijena u posljednjih 30 dana prije rasprodaje",
	"Sidrena cijena na 2.5.2025. ili na datum ulistanja",
}

func sampleWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Vazeci cjenik dm"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &headerRow))
	require.NoError(t, f.MergeCell(sheet, "A3", "B3"))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"Balea šampon", "900100", "Balea", "4058172000001", "Kosa", "0,3", "l", "2,95", "9,83", "", "", "2,95"}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{"Bez šifre", "", "Balea"}))
	require.NoError(t, f.SetSheetRow(sheet, "A6", &[]any{"Alverde krema", "900101", "Alverde", "", "Lice", "0,05", "l", "", "", "", "", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A7", &[]any{"", "900102", "dm", "", "Dom", "1", "kom", "1,25", "1,25", "", "", ""}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestWorkbookRows(t *testing.T) {
	rows := [][]string{
		{"Cjenik", "", ""},
		{"NAZIV + ŠIFRA", "", "MARKA"},
		{"Kava", "123", "Dallmayr"},
		{"", "", ""},
	}
	records, err := WorkbookRows(rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, normalize.Row{"naziv": "Kava", "sifra": "123", "marka": "Dallmayr"}, records[0])
}

func TestWorkbookRowsDuplicatedMergedHeader(t *testing.T) {
	records, err := WorkbookRows([][]string{
		{"naziv + šifra", "naziv + šifra"},
		{"Kava", "123"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "123", records[0]["sifra"])
}

func TestWorkbookRowsErrors(t *testing.T) {
	_, err := WorkbookRows([][]string{{"naziv", "sifra"}})
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = WorkbookRows([][]string{{"naziv + šifra", "marka"}})
	assert.Error(t, err)
}

func TestParseRecordGroup(t *testing.T) {
	s := NewDMScraper(base.NewBaseScraper(base.Options{}))
	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC), nil, nil, "")

	store, products, err := s.ParseRecordGroup(rc, base.RecordGroup{Content: sampleWorkbook(t)})
	require.NoError(t, err)
	assert.Equal(t, "all", store.StoreID)
	assert.Equal(t, "DM", store.Name)
	assert.Equal(t, "store", store.StoreType)

	// The row without a sifra is dropped while reading and the one without
	// any price cannot be resolved. A missing name is kept.
	require.Len(t, products, 2)
	p := products[0]
	assert.Equal(t, "Balea šampon", p.Name)
	assert.Equal(t, "900100", p.ProductID)
	assert.Equal(t, "2.95", p.Price.StringFixed(2))
	assert.Equal(t, "9.83", p.UnitPrice.StringFixed(2))
	assert.Equal(t, "2.95", p.AnchorPrice.Decimal.StringFixed(2))
	assert.Equal(t, "4058172000001", p.Barcode)

	assert.Equal(t, "", products[1].Name)
	assert.Equal(t, "900102", products[1].ProductID)
	assert.Equal(t, "1.25", products[1].Price.StringFixed(2))
}

func TestWorkbookRowsKeepsUnnamedProducts(t *testing.T) {
	records, err := WorkbookRows([][]string{
		{"naziv + šifra", "", "marka"},
		{"", "77", "dm"},
		{"Bez šifre", "", "dm"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "77", records[0]["sifra"])
	assert.Equal(t, "", records[0]["naziv"])
}

func TestLocateRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/novo/promocije/nove-oznake-cijena-i-vazeci-cjenik-u-dm-u-2906632", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"mainData":[
{"type":"CMText","data":{"headline":"Nove oznake"}},
{"type":"CMDownload","data":{"headline":"Vazeci cjenik 15.5.2025","linkTarget":"/files/15.xlsx"}},
{"type":"CMDownload","data":{"headline":"Vazeci cjenik 16.5.2025","linkTarget":"/files/16.xlsx"}},
{"type":"CMDownload","data":{"headline":"","linkTarget":"/files/x.xlsx"}}
]}`)
	})
	mux.HandleFunc("/files/16.xlsx", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "xlsx") })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewDMScraper(base.NewBaseScraper(base.Options{}))
	s.ContentBaseURL = srv.URL

	rc := normalize.NewRunContext(Chain, time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC), nil, nil, "")
	groups, err := s.LocateRecords(context.Background(), rc)
	require.NoError(t, err)

	var urls []string
	for g, err := range groups {
		require.NoError(t, err)
		urls = append(urls, g.URL)
	}
	assert.Equal(t, []string{srv.URL + "/files/16.xlsx"}, urls)

	rc = normalize.NewRunContext(Chain, time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC), nil, nil, "")
	_, err = s.LocateRecords(context.Background(), rc)
	assert.ErrorContains(t, err, "no Excel file found for date 2025-05-17")
}

func TestParseHeadlineDate(t *testing.T) {
	d, ok := parseHeadlineDate("Cjenik od 1.6.2025.")
	require.True(t, ok)
	assert.Equal(t, "2025-06-01", d.Format(time.DateOnly))

	_, ok = parseHeadlineDate("Cjenik 31.2.2025")
	assert.False(t, ok)
}

func TestMappingValid(t *testing.T) {
	assert.NoError(t, mapping.Validate())
}
