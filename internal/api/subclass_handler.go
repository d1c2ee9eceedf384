// File path: internal/api/subclass_handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	chi "github.com/go-chi/chi/v5"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/catalog"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/classifier"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/subclass"
)

func (s *Server) handleSubclassImages(w http.ResponseWriter, r *http.Request) {
	files, err := s.subclass.ScanSource()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	results := make([]pendingImage, 0, len(files))
	for _, name := range files {
		// No stage-2 model exists yet; the default suggestion mirrors
		// the original tool.
		results = append(results, pendingImage{
			Filename:   name,
			Prediction: classifier.Prediction{Label: "otros", Confidence: 0.5},
			URL:        "/images/real/" + name,
		})
	}
	writeJSON(w, http.StatusOK, results)
}

type subclassBatchRequest struct {
	Items []subclass.Decision `json:"items"`
}

func (s *Server) handleSubclassCommit(w http.ResponseWriter, r *http.Request) {
	var req subclassBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.subclass.Commit(r.Context(), req.Items)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrEmptyBatch) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	items := make([]catalog.CommitItem, 0, len(result.Committed))
	for _, item := range result.Committed {
		items = append(items, catalog.CommitItem{
			Filename: item.Filename,
			Label:    item.Category,
			Path:     item.Path,
		})
	}
	s.recordBatch(r, result.BatchID, catalog.StageSubclassification, items)

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"stats":  result,
	})
}

func (s *Server) handleSubclassStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.subclass.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSubclassRemove(w http.ResponseWriter, r *http.Request) {
	name, err := sanitizeFilename(chi.URLParam(r, "filename"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.subclass.Remove(name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "filename": name})
}
