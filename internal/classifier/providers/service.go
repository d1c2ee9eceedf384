// File path: internal/classifier/providers/service.go
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
)

// ServiceProvider talks to the bespoke classifier service over HTTP:
// POST /predict with the image as a multipart part, POST /train with the
// dataset manifest as JSON.
type ServiceProvider struct {
	baseURL string
	client  *http.Client
	// Training can run for minutes; its client carries no timeout and the
	// caller's context governs cancellation instead.
	trainClient *http.Client
}

func NewServiceProvider(baseURL string, timeout time.Duration) *ServiceProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServiceProvider{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:      &http.Client{Timeout: timeout},
		trainClient: &http.Client{},
	}
}

func (p *ServiceProvider) Predict(ctx context.Context, imagePath string) (Prediction, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return Prediction{}, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return Prediction{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Prediction{}, fmt.Errorf("read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Prediction{}, fmt.Errorf("finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", &body)
	if err != nil {
		return Prediction{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("predict request: unexpected status %s", resp.Status)
	}
	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return Prediction{}, fmt.Errorf("decode prediction: %w", err)
	}
	return prediction, nil
}

type trainRequest struct {
	Dataset map[string][]string `json:"dataset"`
	Epochs  int                 `json:"epochs"`
}

func (p *ServiceProvider) Train(ctx context.Context, dataset map[string][]string, epochs int) (Metrics, error) {
	logger := common.Logger()
	payload, err := json.Marshal(trainRequest{Dataset: dataset, Epochs: epochs})
	if err != nil {
		return Metrics{}, fmt.Errorf("encode train request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/train", bytes.NewReader(payload))
	if err != nil {
		return Metrics{}, fmt.Errorf("build train request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("classifier: train requested", "labels", len(dataset), "epochs", epochs)
	resp, err := p.trainClient.Do(req)
	if err != nil {
		return Metrics{}, fmt.Errorf("train request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Metrics{}, fmt.Errorf("train request: unexpected status %s", resp.Status)
	}
	var metrics Metrics
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		return Metrics{}, fmt.Errorf("decode train metrics: %w", err)
	}
	logger.Info("classifier: train finished", "accuracy", metrics.Accuracy, "loss", metrics.Loss)
	return metrics, nil
}

func (p *ServiceProvider) Name() string {
	return "service"
}
