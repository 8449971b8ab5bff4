package api

import (
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/utils"
)

// Archive describes one dated crawl archive.
type Archive struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url,omitempty"`
}

// ArchivesHandler lists the dated ZIP archives in OutputDir, newest first.
func (s *Server) ArchivesHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.OutputDir)
	if err != nil && !os.IsNotExist(err) {
		s.Log.Error("failed to read output directory", zap.String("dir", s.OutputDir), zap.Error(err))
		utils.RespondError(s.Log, w, "Error listing archives", http.StatusInternalServerError)
		return
	}

	archives := []Archive{}
	for _, e := range entries {
		date, ok := strings.CutSuffix(e.Name(), ".zip")
		if !ok || e.IsDir() {
			continue
		}
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		a := Archive{Date: date, Name: e.Name(), Size: info.Size()}
		if s.Presigner != nil {
			if url, err := s.Presigner.PresignedURL(r.Context(), e.Name()); err == nil {
				a.URL = url
			} else {
				s.Log.Warn("failed to presign archive", zap.String("name", e.Name()), zap.Error(err))
			}
		}
		archives = append(archives, a)
	}
	slices.SortFunc(archives, func(a, b Archive) int { return strings.Compare(b.Date, a.Date) })

	utils.RespondJSON(s.Log, w, http.StatusOK, map[string][]Archive{"archives": archives})
}
