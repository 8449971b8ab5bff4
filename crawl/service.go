// Package crawl runs the per-chain pipelines for one date and packages the
// results.
package crawl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/raushankrgupta/price-list-crawler/export"
	"github.com/raushankrgupta/price-list-crawler/models"
	"github.com/raushankrgupta/price-list-crawler/normalize"
	"github.com/raushankrgupta/price-list-crawler/scrapers"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

// Chain run outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

// Uploader stores a finished archive and returns its object key.
type Uploader interface {
	UploadFile(ctx context.Context, path, name string) (string, error)
}

// Notifier delivers the crawl report.
type Notifier interface {
	Notify(ctx context.Context, subject, text, html string) error
}

// Recorder receives pipeline counts and finished chain runs.
type Recorder interface {
	normalize.Sink
	ChainRun(chain, outcome string, elapsed time.Duration)
}

type nopRecorder struct{ normalize.NopSink }

func (nopRecorder) ChainRun(string, string, time.Duration) {}

// Service crawls a set of chains for one date.
type Service struct {
	OutputDir       string
	AnchorPriceDate string
	Parallelism     int
	Scraper         *base.BaseScraper
	Log             *zap.Logger
	Metrics         Recorder

	// Optional. Nil disables the step.
	Uploader Uploader
	Notifier Notifier

	// NewCrawler defaults to scrapers.GetCrawler.
	NewCrawler func(chain string, b *base.BaseScraper) (scrapers.Crawler, error)
}

// Run crawls chains (all registered chains when empty) for date. Every chain
// runs to completion regardless of its siblings. Chains that succeed are
// saved below OutputDir/YYYY-MM-DD and zipped into OutputDir/YYYY-MM-DD.zip.
// The returned error is only set for invalid input, a cancelled ctx or a
// failure to write the archive.
func (s *Service) Run(ctx context.Context, date time.Time, chains []string) (*Summary, error) {
	start := time.Now()
	chains, err := scrapers.SelectChains(chains)
	if err != nil {
		return nil, err
	}

	log := s.logger()
	day := date.Format(time.DateOnly)
	dir := filepath.Join(s.OutputDir, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	limit := s.Parallelism
	if limit < 1 {
		limit = 1
	}
	log.Info("starting crawl",
		zap.String("date", day),
		zap.Strings("chains", chains),
		zap.Int("parallelism", limit),
	)

	results := make([]ChainResult, len(chains))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, chain := range chains {
		g.Go(func() error {
			results[i] = s.runChain(ctx, date, chain, filepath.Join(dir, chain))
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{Date: day, Chains: results}
	if err := ctx.Err(); err != nil {
		summary.Elapsed = time.Since(start)
		return summary, fmt.Errorf("crawl %s interrupted: %w", day, err)
	}

	if !summary.AllFailed() {
		if err := s.archive(ctx, summary, dir); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}
	}
	summary.Elapsed = time.Since(start)

	for _, r := range summary.Chains {
		fields := []zap.Field{
			zap.String("chain", r.Chain),
			zap.Int("stores", r.Stores),
			zap.Int("products", r.Products),
			zap.Int("prices", r.Prices),
			zap.Float64("elapsed_seconds", r.ElapsedSeconds),
		}
		if r.Error != "" {
			log.Error("chain failed", append(fields, zap.String("error", r.Error))...)
			continue
		}
		log.Info("chain done", fields...)
	}
	log.Info("crawl finished",
		zap.String("date", day),
		zap.Int("failed", len(summary.Failed())),
		zap.String("archive", summary.Archive),
		zap.Duration("elapsed", summary.Elapsed),
	)

	s.notify(ctx, summary)
	return summary, nil
}

func (s *Service) runChain(ctx context.Context, date time.Time, chain, dir string) ChainResult {
	start := time.Now()
	rec := s.recorder()
	rc := normalize.NewRunContext(chain, date, s.logger(), rec, s.AnchorPriceDate)
	result := ChainResult{Chain: chain}

	finish := func(outcome string) ChainResult {
		elapsed := time.Since(start)
		result.ElapsedSeconds = elapsed.Round(time.Millisecond).Seconds()
		rec.ChainRun(chain, outcome, elapsed)
		return result
	}

	newCrawler := s.NewCrawler
	if newCrawler == nil {
		newCrawler = scrapers.GetCrawler
	}
	c, err := newCrawler(chain, s.Scraper)
	if err != nil {
		result.Error = err.Error()
		return finish(OutcomeFailed)
	}

	stores, err := scrapers.Run(ctx, rc, c)
	if err != nil {
		result.Error = err.Error()
		return finish(OutcomeFailed)
	}
	if len(stores) == 0 {
		rc.Log.Warn("no stores found")
		return finish(OutcomeEmpty)
	}

	if err := export.SaveChain(rc.Log, dir, stores); err != nil {
		rc.Log.Error("failed to save chain", zap.Error(err))
		result.Error = err.Error()
		return finish(OutcomeFailed)
	}

	result.Stores, result.Products, result.Prices = count(stores)
	return finish(OutcomeOK)
}

func count(stores []models.Store) (nStores, nProducts, nPrices int) {
	ids := make(map[string]struct{})
	for _, s := range stores {
		for _, p := range s.Products {
			ids[p.ProductID] = struct{}{}
		}
		nPrices += len(s.Products)
	}
	return len(stores), len(ids), nPrices
}

func (s *Service) archive(ctx context.Context, summary *Summary, dir string) error {
	log := s.logger()
	if err := export.WriteArchiveInfo(dir); err != nil {
		return fmt.Errorf("write archive info: %w", err)
	}

	name := summary.Date + ".zip"
	zipPath := filepath.Join(s.OutputDir, name)
	if err := export.CreateArchive(dir, zipPath); err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	summary.Archive = zipPath
	log.Info("created archive", zap.String("path", zipPath))

	if s.Uploader == nil {
		return nil
	}
	key, err := s.Uploader.UploadFile(ctx, zipPath, name)
	if err != nil {
		log.Error("archive upload failed", zap.String("path", zipPath), zap.Error(err))
		return nil
	}
	summary.ArchiveKey = key
	log.Info("uploaded archive", zap.String("key", key))
	return nil
}

func (s *Service) notify(ctx context.Context, summary *Summary) {
	if s.Notifier == nil {
		return
	}
	subject := fmt.Sprintf("Price crawl %s: %d/%d chains ok",
		summary.Date, len(summary.Chains)-len(summary.Failed()), len(summary.Chains))
	text := summary.Report()
	if err := s.Notifier.Notify(ctx, subject, text, summary.HTML()); err != nil {
		s.logger().Error("failed to send crawl report", zap.Error(err))
	}
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) recorder() Recorder {
	if s.Metrics == nil {
		return nopRecorder{}
	}
	return s.Metrics
}
