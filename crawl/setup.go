package crawl

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/config"
	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
	"github.com/raushankrgupta/price-list-crawler/utils"
)

// Options selects the optional steps of a crawl.
type Options struct {
	Upload bool
	Notify bool
}

// NewService wires a Service from cfg. Requested steps whose settings are
// missing are an error.
func NewService(ctx context.Context, cfg config.Config, log *zap.Logger, rec Recorder, opts Options) (*Service, error) {
	s := &Service{
		OutputDir:       cfg.OutputDir,
		AnchorPriceDate: cfg.AnchorPriceDate,
		Parallelism:     cfg.Parallelism,
		Log:             log,
		Metrics:         rec,
		Scraper: base.NewBaseScraper(base.Options{
			Timeout:          cfg.HTTPTimeout,
			BrowserFallback:  cfg.BrowserFallback,
			ChromeDriverPath: cfg.ChromeDriverPath,
			Log:              log,
		}),
	}

	if opts.Upload {
		up, err := utils.NewS3Uploader(ctx, cfg.AWSRegion, cfg.AWSBucketName)
		if err != nil {
			return nil, fmt.Errorf("archive upload: %w", err)
		}
		s.Uploader = up
	}
	if opts.Notify {
		m, err := utils.NewMailer(cfg.SendGridAPIKey, cfg.ReportFromEmail, cfg.ReportEmail, log)
		if err != nil {
			return nil, fmt.Errorf("crawl report: %w", err)
		}
		s.Notifier = m
	}
	return s, nil
}
