package scrapers

import (
	"context"
	"iter"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Crawler defines the interface for all price-list crawlers
type Crawler interface {
	// Chain returns the lowercase chain slug.
	Chain() string
	// Mapping returns the declarative field mapping of the chain's records.
	Mapping() normalize.Mapping
	// LocateRecords discovers the record groups published for rc.Date. An
	// error here fails the whole run; an error yielded by the sequence only
	// skips that group.
	LocateRecords(ctx context.Context, rc *normalize.RunContext) (iter.Seq2[base.RecordGroup, error], error)
	// ParseRecordGroup builds the store described by g and its products.
	ParseRecordGroup(rc *normalize.RunContext, g base.RecordGroup) (models.Store, []models.Product, error)
}
