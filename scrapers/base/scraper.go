package base

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures a BaseScraper.
type Options struct {
	Timeout          time.Duration
	UserAgent        string
	BrowserFallback  bool
	ChromeDriverPath string
	Log              *zap.Logger
}

// BaseScraper handles the fetch logic shared by every chain crawler
type BaseScraper struct {
	Client           *http.Client
	UserAgent        string
	BrowserFallback  bool
	ChromeDriverPath string
	Log              *zap.Logger
}

// StatusError is returned for any non-200 response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Status)
}

// NewBaseScraper creates a new BaseScraper instance
func NewBaseScraper(opts Options) *BaseScraper {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &BaseScraper{
		Client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ForceAttemptHTTP2:     false,
				TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		UserAgent:        opts.UserAgent,
		BrowserFallback:  opts.BrowserFallback,
		ChromeDriverPath: opts.ChromeDriverPath,
		Log:              opts.Log,
	}
}

func (b *BaseScraper) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", b.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "hr-HR,hr;q=0.9,en-US;q=0.8,en;q=0.7")

	res, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, &StatusError{URL: url, Status: res.StatusCode}
	}
	return res, nil
}

// FetchBytes downloads url into memory.
func (b *BaseScraper) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	res, err := b.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	b.Log.Debug("downloaded",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

// FetchText downloads url and decodes it, trying each encoding in order.
// Without encodings the body is taken as UTF-8.
func (b *BaseScraper) FetchText(ctx context.Context, url string, encodings ...string) (string, error) {
	data, err := b.FetchBytes(ctx, url)
	if err != nil {
		return "", err
	}
	if len(encodings) == 0 {
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}
	text, err := DecodeText(data, encodings...)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}
	return text, nil
}

// FetchJSON downloads url and unmarshals the body into v.
func (b *BaseScraper) FetchJSON(ctx context.Context, url string, v any) error {
	data, err := b.FetchBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode json from %s: %w", url, err)
	}
	return nil
}

// FetchDocument fetches the URL using multiple strategies with a custom validator.
// The browser strategies only run when BrowserFallback is enabled.
func (b *BaseScraper) FetchDocument(ctx context.Context, url string, validator func(*goquery.Document) bool) (*goquery.Document, error) {
	log := b.Log.With(zap.String("url", url))

	// Strategy 1: HTTP Client (Fastest)
	doc, err := b.FetchDocumentHTTP(ctx, url)
	if err == nil {
		if validator(doc) {
			log.Debug("fetched document", zap.String("strategy", "http"))
			return doc, nil
		}
		log.Debug("http yielded invalid content, trying fallbacks")
	} else {
		log.Debug("http fetch failed", zap.Error(err))
	}
	if !b.BrowserFallback {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected page content at %s", url)
	}

	// Strategy 2: ChromeDP (Headless)
	doc, err = b.FetchDocumentChromeDP(ctx, url)
	if err == nil && validator(doc) {
		log.Debug("fetched document", zap.String("strategy", "chromedp"))
		return doc, nil
	}
	if err != nil {
		log.Debug("chromedp fetch failed", zap.Error(err))
	}

	// Strategy 3: Selenium (Full Browser)
	doc, err = b.FetchDocumentSelenium(ctx, url)
	if err == nil && validator(doc) {
		log.Debug("fetched document", zap.String("strategy", "selenium"))
		return doc, nil
	}
	if err != nil {
		log.Debug("selenium fetch failed", zap.Error(err))
	}

	return nil, fmt.Errorf("all strategies failed for %s", url)
}

// HasSelection returns a validator accepting documents that contain selector.
func HasSelection(selector string) func(*goquery.Document) bool {
	return func(doc *goquery.Document) bool {
		return doc.Find(selector).Length() > 0
	}
}

// AnyDocument accepts every document.
func AnyDocument(*goquery.Document) bool { return true }

// FetchDocumentHTTP fetches the URL and returns a GoQuery document via standard HTTP
func (b *BaseScraper) FetchDocumentHTTP(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := b.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return goquery.NewDocumentFromReader(res.Body)
}
