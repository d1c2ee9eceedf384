// File path: internal/api/batch_handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/catalog"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
)

type batchRequest struct {
	Items []dataset.Decision `json:"items"`
}

func (s *Server) handleBatchCommit(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.curator.Commit(ctx, req.Items)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrEmptyBatch) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	s.recordBatch(r, result.BatchID, catalog.StageClassification, committedToCatalog(result.Committed))

	if len(result.Committed) > 0 {
		started := s.trainer.TriggerAsync()
		logger.Info("api: batch accepted", "batch", result.BatchID, "training_started", started)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"stats":  result,
	})
}

func committedToCatalog(items []dataset.CommittedItem) []catalog.CommitItem {
	out := make([]catalog.CommitItem, 0, len(items))
	for _, item := range items {
		out = append(out, catalog.CommitItem{
			Filename: item.Filename,
			Label:    item.Label,
			Hash:     item.Hash,
			Path:     item.Path,
		})
	}
	return out
}

// recordBatch mirrors a committed batch into the catalog. Best effort: a
// catalog failure is logged and never fails the commit that already
// persisted.
func (s *Server) recordBatch(r *http.Request, batchID, stage string, items []catalog.CommitItem) {
	if s.catalog == nil || len(items) == 0 {
		return
	}
	if err := s.catalog.RecordBatch(r.Context(), batchID, stage, items); err != nil {
		common.Logger().Warn("api: catalog record failed", "batch", batchID, "stage", stage, "error", err)
	}
}
