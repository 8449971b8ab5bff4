package models

import "fmt"

// Store represents one outlet of a retail chain together with its price list
type Store struct {
	Chain         string    `json:"chain"`    // Lowercase chain slug, e.g. "konzum"
	StoreID       string    `json:"store_id"` // Chain specific location identifier
	Name          string    `json:"name"`
	StoreType     string    `json:"type"` // e.g. "supermarket", "hipermarket"
	City          string    `json:"city"`
	StreetAddress string    `json:"address"`
	Zipcode       string    `json:"zipcode"`
	Products      []Product `json:"products,omitempty"`
}

// Key identifies the store within one crawl.
func (s Store) Key() string {
	return s.Chain + ":" + s.StoreID
}

func (s Store) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.StreetAddress)
}
