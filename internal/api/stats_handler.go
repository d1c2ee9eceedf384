// File path: internal/api/stats_handler.go
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/catalog"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, err := s.index.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	real, ia := 0, 0
	for _, rec := range records {
		switch rec.Label {
		case dataset.LabelReal:
			real++
		case dataset.LabelIA:
			ia++
		}
	}
	payload := map[string]any{
		"total_indexed": len(records),
		"real":          real,
		"ia":            ia,
	}
	if s.catalog != nil {
		counts, err := s.catalog.LabelCounts(r.Context(), catalog.StageClassification)
		if err != nil {
			common.Logger().Warn("api: catalog counts unavailable", "error", err)
		} else {
			payload["catalog"] = counts
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("catalog unavailable"))
		return
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	commits, err := s.catalog.RecentCommits(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commits": commits})
}

func (s *Server) handleTrainingStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.trainer.Status())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"entries": common.LogEntries()})
}
