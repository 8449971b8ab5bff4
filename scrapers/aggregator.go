package scrapers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
)

// Group failure stages, also used as metric reasons.
const (
	StageFetch = "fetch"
	StageParse = "parse"
)

// LocateError is the batch level failure of a chain run: its record groups
// could not be discovered at all.
type LocateError struct {
	Chain string
	Err   error
}

func (e *LocateError) Error() string {
	return fmt.Sprintf("%s: locate records: %v", e.Chain, e.Err)
}

func (e *LocateError) Unwrap() error { return e.Err }

// GroupError is a record group that could not be fetched or parsed. It is
// logged and skipped, never returned from Run.
type GroupError struct {
	Chain string
	Group string
	Stage string
	Err   error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("%s: %s group %s: %v", e.Chain, e.Stage, e.Group, e.Err)
}

func (e *GroupError) Unwrap() error { return e.Err }

// Run crawls one chain for rc.Date. Stores come back in discovery order with
// their products in record order. Groups that fail are skipped and stores
// without products are dropped; only a failed discovery or a cancelled ctx
// fails the run, in which case no stores are returned.
func Run(ctx context.Context, rc *normalize.RunContext, c Crawler) ([]models.Store, error) {
	start := time.Now()
	rc.Log.Info("starting crawl")

	groups, err := c.LocateRecords(ctx, rc)
	if err != nil {
		rc.Log.Error("failed to locate record groups", zap.Error(err))
		return nil, &LocateError{Chain: c.Chain(), Err: err}
	}

	var (
		stores  []models.Store
		prices  int
		skipped int
	)
	for g, err := range groups {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: crawl interrupted: %w", c.Chain(), ctxErr)
		}
		if err != nil {
			skipGroup(rc, &GroupError{Chain: c.Chain(), Group: g.Name, Stage: StageFetch, Err: err})
			skipped++
			continue
		}

		store, products, err := c.ParseRecordGroup(rc, g)
		if err != nil {
			skipGroup(rc, &GroupError{Chain: c.Chain(), Group: g.Name, Stage: StageParse, Err: err})
			skipped++
			continue
		}
		if len(products) == 0 {
			rc.Log.Warn("dropping store without products",
				zap.String("group", g.Name),
				zap.String("store_id", store.StoreID),
			)
			rc.Metrics.StoreDropped(c.Chain())
			continue
		}

		store.Products = products
		stores = append(stores, store)
		prices += len(products)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: crawl interrupted: %w", c.Chain(), err)
	}

	rc.Log.Info("completed crawl",
		zap.Int("stores", len(stores)),
		zap.Int("prices", prices),
		zap.Int("skipped_groups", skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stores, nil
}

func skipGroup(rc *normalize.RunContext, err *GroupError) {
	rc.Log.Error("skipping record group",
		zap.String("group", err.Group),
		zap.String("stage", err.Stage),
		zap.Error(err.Err),
	)
	rc.Metrics.GroupSkipped(err.Chain, err.Stage)
}
