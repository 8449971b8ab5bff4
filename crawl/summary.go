package crawl

import (
	"fmt"
	"html"
	"strings"
	"text/tabwriter"
	"time"
)

// ChainResult is the outcome of one chain run.
type ChainResult struct {
	Chain          string  `json:"chain"`
	Stores         int     `json:"stores"`
	Products       int     `json:"products"` // Distinct product ids
	Prices         int     `json:"prices"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Error          string  `json:"error,omitempty"`
}

// Failed reports whether the chain run failed.
func (r ChainResult) Failed() bool { return r.Error != "" }

// Summary describes a finished crawl.
type Summary struct {
	Date       string        `json:"date"`
	Chains     []ChainResult `json:"chains"`
	Archive    string        `json:"archive,omitempty"`
	ArchiveKey string        `json:"archive_key,omitempty"`
	Elapsed    time.Duration `json:"-"`
}

// Failed returns the chains whose run failed.
func (s *Summary) Failed() []string {
	var out []string
	for _, r := range s.Chains {
		if r.Failed() {
			out = append(out, r.Chain)
		}
	}
	return out
}

// AllFailed reports whether no chain succeeded. An empty crawl counts as
// failed.
func (s *Summary) AllFailed() bool {
	return len(s.Failed()) == len(s.Chains)
}

// Report renders the summary as an aligned text table.
func (s *Summary) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crawl %s\n\n", s.Date)

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "chain\tstores\tproducts\tprices\ttime\t")
	for _, r := range s.Chains {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1fs\t\n", r.Chain, r.Stores, r.Products, r.Prices, r.ElapsedSeconds)
	}
	w.Flush()

	for _, r := range s.Chains {
		if r.Failed() {
			fmt.Fprintf(&b, "\n%s failed: %s", r.Chain, r.Error)
		}
	}
	if s.Archive != "" {
		fmt.Fprintf(&b, "\n\nArchive: %s", s.Archive)
	}
	if s.ArchiveKey != "" {
		fmt.Fprintf(&b, " (uploaded as %s)", s.ArchiveKey)
	}
	fmt.Fprintf(&b, "\nElapsed: %s\n", s.Elapsed.Round(time.Second))
	return b.String()
}

// HTML renders Report for e-mail clients.
func (s *Summary) HTML() string {
	return "<pre>" + html.EscapeString(s.Report()) + "</pre>"
}
