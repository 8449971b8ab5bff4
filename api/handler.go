// Package api serves crawl results and on demand crawls over HTTP.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/crawl"
	"github.com/raushankrgupta/price-list-crawler/scrapers"
	"github.com/raushankrgupta/price-list-crawler/utils"
)

// Crawler runs a crawl for one date.
type Crawler interface {
	Run(ctx context.Context, date time.Time, chains []string) (*crawl.Summary, error)
}

// Presigner returns a temporary download URL for an uploaded archive.
type Presigner interface {
	PresignedURL(ctx context.Context, name string) (string, error)
}

// Server holds the handler dependencies.
type Server struct {
	Crawler   Crawler
	OutputDir string
	JWTSecret string
	Presigner Presigner    // optional
	Metrics   http.Handler // optional, served at /metrics
	Log       *zap.Logger

	running sync.Mutex
}

// Routes builds the HTTP handler with CORS and request logging applied.
func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.HealthHandler)
	mux.HandleFunc("GET /v0/chains", s.ChainsHandler)
	mux.HandleFunc("GET /v0/archives", s.ArchivesHandler)
	mux.Handle("POST /v0/crawl", s.AuthMiddleware(http.HandlerFunc(s.CrawlHandler)))
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics)
	}

	return utils.LatencyMiddleware(s.Log, corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HealthHandler reports that the service is up.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(s.Log, w, http.StatusOK, map[string]string{"status": "ok"})
}

// ChainsHandler lists the supported chains.
func (s *Server) ChainsHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(s.Log, w, http.StatusOK, map[string][]string{"chains": scrapers.Chains()})
}
