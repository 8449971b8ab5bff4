package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/scrapers"
	"github.com/raushankrgupta/price-list-crawler/utils"
)

// CrawlHandler runs a crawl for ?date=YYYY-MM-DD (default today) and
// ?chains=a,b (default all) and responds with its summary. Only one crawl
// runs at a time.
func (s *Server) CrawlHandler(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			utils.RespondError(s.Log, w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = d
	}

	var requested []string
	if v := r.URL.Query().Get("chains"); v != "" {
		requested = strings.Split(v, ",")
	}
	chains, err := scrapers.SelectChains(requested)
	if err != nil {
		utils.RespondError(s.Log, w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.running.TryLock() {
		utils.RespondError(s.Log, w, "A crawl is already running", http.StatusConflict)
		return
	}
	defer s.running.Unlock()

	subject, _ := SubjectFromContext(r.Context())
	s.Log.Info("crawl requested",
		zap.String("subject", subject),
		zap.String("date", date.Format(time.DateOnly)),
		zap.Strings("chains", chains),
	)

	summary, err := s.Crawler.Run(r.Context(), date, chains)
	if err != nil {
		s.Log.Error("crawl failed", zap.Error(err))
		utils.RespondError(s.Log, w, "Crawl failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.RespondJSON(s.Log, w, http.StatusOK, summary)
}
