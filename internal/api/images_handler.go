// File path: internal/api/images_handler.go
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/classifier"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
)

type pendingImage struct {
	Filename   string                `json:"filename"`
	Prediction classifier.Prediction `json:"prediction"`
	URL        string                `json:"url"`
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	files, err := s.layout.ScanInbox()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	results := make([]pendingImage, 0, len(files))
	for _, name := range files {
		prediction, err := s.provider.Predict(ctx, filepath.Join(s.layout.Inbox, name))
		if err != nil {
			// A predict failure degrades to the sentinel; the item
			// stays reviewable.
			logger.Warn("api: prediction failed", "file", name, "error", err)
			prediction = classifier.ErrorPrediction()
		}
		results = append(results, pendingImage{
			Filename:   name,
			Prediction: prediction,
			URL:        "/images/entrada/" + name,
		})
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	const maxMemory = 64 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		logger.Warn("api: upload form parse failed", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse upload form: %w", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}
	var saved []string
	for _, header := range files {
		name, err := sanitizeFilename(header.Filename)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if !dataset.IsImage(name) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", name))
			return
		}
		src, err := header.Open()
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Errorf("open upload %s: %w", name, err))
			return
		}
		dest, err := os.Create(filepath.Join(s.layout.Inbox, name))
		if err != nil {
			src.Close()
			writeError(w, http.StatusInternalServerError, fmt.Errorf("create %s: %w", name, err))
			return
		}
		_, copyErr := io.Copy(dest, src)
		src.Close()
		if closeErr := dest.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			writeError(w, http.StatusInternalServerError, fmt.Errorf("save %s: %w", name, copyErr))
			return
		}
		saved = append(saved, name)
	}
	logger.Info("api: upload accepted", "files", len(saved))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Uploaded %d files", len(saved)),
		"files":   saved,
	})
}

func (s *Server) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	name, err := sanitizeFilename(chi.URLParam(r, "filename"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.curator.Remove(name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "filename": name})
}

func (s *Server) serveImage(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := sanitizeFilename(chi.URLParam(r, "filename"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			writeError(w, http.StatusNotFound, fmt.Errorf("image %s not found", name))
			return
		}
		http.ServeFile(w, r, path)
	}
}

func sanitizeFilename(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("filename required")
	}
	cleaned := filepath.Base(filepath.Clean(name))
	if cleaned == "." || cleaned == ".." || cleaned == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename: %s", raw)
	}
	return cleaned, nil
}
