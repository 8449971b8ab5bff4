// Package export writes crawl results as the per-chain CSV tables and the
// dated ZIP archive.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/pricing"
)

var (
	StoreColumns   = []string{"store_id", "type", "address", "city", "zipcode"}
	ProductColumns = []string{"product_id", "barcode", "name", "brand", "category", "unit", "quantity"}
	PriceColumns   = []string{"store_id", "product_id", "price", "unit_price", "best_price_30", "anchor_price", "special_price"}
)

// Tables holds the rows of the three exported files, in column order.
type Tables struct {
	Stores   [][]string
	Products [][]string
	Prices   [][]string
}

// Transform flattens stores into export rows. Products are de-duplicated by
// chain and product id; the first occurrence wins.
func Transform(stores []models.Store) Tables {
	var t Tables
	seen := make(map[string]bool)

	for _, s := range stores {
		t.Stores = append(t.Stores, []string{s.StoreID, s.StoreType, s.StreetAddress, s.City, s.Zipcode})

		for _, p := range s.Products {
			key := s.Chain + ":" + p.ProductID
			if !seen[key] {
				seen[key] = true
				barcode := p.Barcode
				if barcode == "" {
					barcode = key
				}
				t.Products = append(t.Products, []string{p.ProductID, barcode, p.Name, p.Brand, p.Category, p.Unit, p.Quantity})
			}
			t.Prices = append(t.Prices, []string{
				s.StoreID,
				p.ProductID,
				p.Price.StringFixed(pricing.Places),
				p.UnitPrice.StringFixed(pricing.Places),
				pricing.Format(p.BestPrice30),
				pricing.Format(p.AnchorPrice),
				pricing.Format(p.SpecialPrice),
			})
		}
	}
	return t
}

// SaveChain writes stores.csv, products.csv and prices.csv into dir,
// creating it if needed. Empty tables are not written.
func SaveChain(log *zap.Logger, dir string, stores []models.Store) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	t := Transform(stores)
	files := []struct {
		name    string
		columns []string
		rows    [][]string
	}{
		{"stores.csv", StoreColumns, t.Stores},
		{"products.csv", ProductColumns, t.Products},
		{"prices.csv", PriceColumns, t.Prices},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if len(f.rows) == 0 {
			log.Warn("no data to save, skipping", zap.String("path", path))
			continue
		}
		if err := writeCSV(path, f.columns, f.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, columns []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("write %s: row has %d values, expected %d", path, len(row), len(columns))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
