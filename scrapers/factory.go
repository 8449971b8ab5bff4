package scrapers

import (
	"fmt"
	"slices"
	"strings"

	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
	"github.com/raushankrgupta/price-list-crawler/scrapers/dm"
	"github.com/raushankrgupta/price-list-crawler/scrapers/eurospin"
	"github.com/raushankrgupta/price-list-crawler/scrapers/kaufland"
	"github.com/raushankrgupta/price-list-crawler/scrapers/konzum"
	"github.com/raushankrgupta/price-list-crawler/scrapers/ktc"
	"github.com/raushankrgupta/price-list-crawler/scrapers/lidl"
	"github.com/raushankrgupta/price-list-crawler/scrapers/metro"
	"github.com/raushankrgupta/price-list-crawler/scrapers/ntl"
	"github.com/raushankrgupta/price-list-crawler/scrapers/plodine"
	"github.com/raushankrgupta/price-list-crawler/scrapers/ribola"
	"github.com/raushankrgupta/price-list-crawler/scrapers/spar"
	"github.com/raushankrgupta/price-list-crawler/scrapers/studenac"
	"github.com/raushankrgupta/price-list-crawler/scrapers/tommy"
	"github.com/raushankrgupta/price-list-crawler/scrapers/trgocentar"
	"github.com/raushankrgupta/price-list-crawler/scrapers/vrutak"
	"github.com/raushankrgupta/price-list-crawler/scrapers/zabac"
)

// Constructor builds a crawler on top of a shared BaseScraper.
type Constructor func(b *base.BaseScraper) Crawler

// Registration binds a chain slug to its constructor.
type Registration struct {
	Chain string
	New   Constructor
}

// Registry lists every supported chain in crawl order.
var Registry = []Registration{
	{konzum.Chain, func(b *base.BaseScraper) Crawler { return konzum.NewKonzumScraper(b) }},
	{lidl.Chain, func(b *base.BaseScraper) Crawler { return lidl.NewLidlScraper(b) }},
	{tommy.Chain, func(b *base.BaseScraper) Crawler { return tommy.NewTommyScraper(b) }},
	{kaufland.Chain, func(b *base.BaseScraper) Crawler { return kaufland.NewKauflandScraper(b) }},
	{eurospin.Chain, func(b *base.BaseScraper) Crawler { return eurospin.NewEurospinScraper(b) }},
	{dm.Chain, func(b *base.BaseScraper) Crawler { return dm.NewDMScraper(b) }},
	{ntl.Chain, func(b *base.BaseScraper) Crawler { return ntl.NewNTLScraper(b) }},
	{ribola.Chain, func(b *base.BaseScraper) Crawler { return ribola.NewRibolaScraper(b) }},
	{spar.Chain, func(b *base.BaseScraper) Crawler { return spar.NewSparScraper(b) }},
	{studenac.Chain, func(b *base.BaseScraper) Crawler { return studenac.NewStudenacScraper(b) }},
	{plodine.Chain, func(b *base.BaseScraper) Crawler { return plodine.NewPlodineScraper(b) }},
	{ktc.Chain, func(b *base.BaseScraper) Crawler { return ktc.NewKTCScraper(b) }},
	{metro.Chain, func(b *base.BaseScraper) Crawler { return metro.NewMetroScraper(b) }},
	{trgocentar.Chain, func(b *base.BaseScraper) Crawler { return trgocentar.NewTrgocentarScraper(b) }},
	{zabac.Chain, func(b *base.BaseScraper) Crawler { return zabac.NewZabacScraper(b) }},
	{vrutak.Chain, func(b *base.BaseScraper) Crawler { return vrutak.NewVrutakScraper(b) }},
}

// Chains returns the slugs of all registered chains.
func Chains() []string {
	chains := make([]string, len(Registry))
	for i, r := range Registry {
		chains[i] = r.Chain
	}
	return chains
}

// GetCrawler returns the crawler registered for chain
func GetCrawler(chain string, b *base.BaseScraper) (Crawler, error) {
	chain = strings.ToLower(strings.TrimSpace(chain))
	for _, r := range Registry {
		if r.Chain == chain {
			return r.New(b), nil
		}
	}
	return nil, fmt.Errorf("no crawler found for chain: %s", chain)
}

// SelectChains validates a requested chain list. An empty list selects every
// registered chain.
func SelectChains(requested []string) ([]string, error) {
	all := Chains()
	if len(requested) == 0 {
		return all, nil
	}

	var out []string
	for _, c := range requested {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || slices.Contains(out, c) {
			continue
		}
		if !slices.Contains(all, c) {
			return nil, fmt.Errorf("unknown chain %q (known: %s)", c, strings.Join(all, ", "))
		}
		out = append(out, c)
	}
	return out, nil
}
