// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/catalog"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/classifier"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/subclass"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/trainer"
)

// Server is the HTTP surface consumed by the GUI shell. All curation logic
// lives behind it in the dataset, subclass and trainer packages.
type Server struct {
	router   chi.Router
	layout   *dataset.Layout
	index    *dataset.Index
	audit    *dataset.AuditLog
	curator  *dataset.Curator
	subclass *subclass.Manager
	provider classifier.Provider
	trainer  *trainer.Coordinator
	catalog  *catalog.Store
}

// NewServer wires the components into the route table. The catalog may be
// nil; catalog-backed endpoints then degrade.
func NewServer(layout *dataset.Layout, index *dataset.Index, audit *dataset.AuditLog, curator *dataset.Curator, sub *subclass.Manager, provider classifier.Provider, coord *trainer.Coordinator, cat *catalog.Store) (*Server, error) {
	if layout == nil || index == nil || audit == nil || curator == nil || sub == nil || provider == nil || coord == nil {
		return nil, errors.New("server requires layout, index, audit, curator, subclass manager, provider and trainer")
	}
	s := &Server{
		router:   chi.NewRouter(),
		layout:   layout,
		index:    index,
		audit:    audit,
		curator:  curator,
		subclass: sub,
		provider: provider,
		trainer:  coord,
		catalog:  cat,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})
	// The GUI shell loads from a webview origin.
	s.router.Use(corsMiddleware)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Get("/v1/images", s.handleListImages)
	s.router.Post("/v1/upload", s.handleUpload)
	s.router.Post("/v1/batch", s.handleBatchCommit)
	s.router.Delete("/v1/images/{filename}", s.handleRemoveImage)
	s.router.Get("/v1/stats", s.handleStats)

	s.router.Get("/v1/subclass/images", s.handleSubclassImages)
	s.router.Post("/v1/subclass/batch", s.handleSubclassCommit)
	s.router.Get("/v1/subclass/stats", s.handleSubclassStats)
	s.router.Delete("/v1/subclass/images/{filename}", s.handleSubclassRemove)

	s.router.Get("/v1/training/status", s.handleTrainingStatus)
	s.router.Get("/v1/history", s.handleHistory)
	s.router.Get("/v1/logs", s.handleLogs)

	s.router.Get("/images/entrada/{filename}", s.serveImage(s.layout.Inbox))
	s.router.Get("/images/real/{filename}", s.serveImage(s.layout.SubSource))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"classifier":        s.provider.Name(),
		"catalog_available": s.catalog != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
