package dm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain is the DM slug.
const Chain = "dm"

const (
	contentBaseURL = "https://content.services.dmtech.com/rootpage-dm-shop-hr-hr"
	indexPath      = "/novo/promocije/nove-oznake-cijena-i-vazeci-cjenik-u-dm-u-2906632?mrclx=false"

	mergedHeader = "naziv + sifra"
)

var mapping = normalize.Mapping{
	Prices: normalize.FieldMap{
		normalize.FieldUnitPrice:    normalize.Col("cijena za jedinicu mjere"),
		normalize.FieldPrice:        normalize.Col("mpc"),
		normalize.FieldSpecialPrice: normalize.Col("mpc za vrijeme posebnog oblika prodaje (rasprodaja proizvoda koji izlaze iz asortimana)"),
		normalize.FieldBestPrice30:  normalize.Col("najniza cijena u posljednjih 30 dana prije rasprodaje"),
		normalize.FieldAnchorPrice:  normalize.Col("sidrena cijena na 2.5.2025. ili na datum ulistanja"),
	},
	Fields: normalize.FieldMap{
		normalize.FieldProduct:   normalize.Col("naziv"),
		normalize.FieldProductID: normalize.Req("sifra"),
		normalize.FieldBrand:     normalize.Col("marka"),
		normalize.FieldBarcode:   normalize.Col("barkod"),
		normalize.FieldCategory:  normalize.Col("kategorija proizvoda"),
		normalize.FieldQuantity:  normalize.Col("neto kolicina"),
		normalize.FieldUnit:      normalize.Col("jedinica mjere"),
	},
}

var (
	headlineDate = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)

	// ErrNoHeader is returned for a workbook without the "naziv + šifra" header.
	ErrNoHeader = errors.New("could not detect Excel columns, DM file format may have changed")
)

type DMScraper struct {
	*base.BaseScraper
	ContentBaseURL string
	normalizer     *normalize.Normalizer
}

func NewDMScraper(b *base.BaseScraper) *DMScraper {
	return &DMScraper{
		BaseScraper:    b,
		ContentBaseURL: contentBaseURL,
		normalizer:     &normalize.Normalizer{Chain: Chain, Mapping: mapping},
	}
}

func (s *DMScraper) Chain() string { return Chain }

func (s *DMScraper) Mapping() normalize.Mapping { return mapping }

type contentPage struct {
	MainData []struct {
		Type string `json:"type"`
		Data struct {
			Headline   string `json:"headline"`
			LinkTarget string `json:"linkTarget"`
		} `json:"data"`
	} `json:"mainData"`
}

// LocateRecords finds the national workbook for the date in the content API.
// DM prices are the same in every store, so there is a single group.
func (s *DMScraper) LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error) {
	var page contentPage
	if err := s.FetchJSON(ctx, s.ContentBaseURL+indexPath, &page); err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	var downloads int
	for _, item := range page.MainData {
		if item.Type != "CMDownload" {
			continue
		}
		downloads++
		headline, target := item.Data.Headline, item.Data.LinkTarget
		if headline == "" || target == "" {
			continue
		}
		date, ok := parseHeadlineDate(headline)
		if !ok {
			rc.Log.Warn("could not read date from headline", zap.String("headline", headline))
			continue
		}
		if date.Format(time.DateOnly) == rc.Date.Format(time.DateOnly) {
			if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
				target = s.ContentBaseURL + target
			}
			rc.Log.Debug("found workbook", zap.String("url", target))
			return s.FetchGroups(ctx, []base.Download{{Name: headline, URL: target}}), nil
		}
	}
	if downloads == 0 {
		return nil, errors.New("no Excel links found in JSON data")
	}
	return nil, fmt.Errorf("no Excel file found for date %s", rc.Date.Format(time.DateOnly))
}

func parseHeadlineDate(headline string) (time.Time, bool) {
	m := headlineDate.FindStringSubmatch(headline)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || int(date.Month()) != month {
		return time.Time{}, false
	}
	return date, true
}

func (s *DMScraper) ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error) {
	rows, err := base.ReadWorkbook(g.Content)
	if err != nil {
		return models.Store{}, nil, err
	}
	records, err := WorkbookRows(rows)
	if err != nil {
		return models.Store{}, nil, err
	}

	store := models.Store{
		Chain:     Chain,
		StoreID:   "all",
		Name:      "DM",
		StoreType: "store",
	}
	return store, s.normalizer.Products(rc, normalize.RowRecords(records)), nil
}

// WorkbookRows finds the header row and keys every following row by it.
// The merged "naziv + šifra" header spans the name and the id columns.
func WorkbookRows(rows [][]string) ([]normalize.Row, error) {
	headerIdx := -1
	var columns []string
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.ToLower(base.StripDiacritics(strings.TrimSpace(cell)))
		}
		idx := slices.Index(cells, mergedHeader)
		if idx < 0 {
			continue
		}
		if idx+1 >= len(cells) || (cells[idx+1] != "" && cells[idx+1] != mergedHeader) {
			return nil, errors.New("expected 'naziv + šifra' to be a merged cell with two parts")
		}
		cells[idx], cells[idx+1] = "naziv", "sifra"
		headerIdx, columns = i, cells
		break
	}
	if headerIdx < 0 {
		return nil, ErrNoHeader
	}

	var out []normalize.Row
	for _, row := range rows[headerIdx+1:] {
		rec := make(normalize.Row, len(columns))
		for j, col := range columns {
			if col == "" {
				continue
			}
			if j < len(row) {
				rec[col] = strings.TrimSpace(row[j])
			} else {
				rec[col] = ""
			}
		}
		if rec["sifra"] == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
