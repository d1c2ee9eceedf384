// File path: internal/classifier/providers/provider.go
package providers

import (
	"context"
	"errors"
)

// Prediction is the classifier's tentative label for one image. The label
// "error" with zero confidence is the sentinel for a failed prediction.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Metrics summarizes one training run.
type Metrics struct {
	Accuracy float64 `json:"accuracy"`
	Loss     float64 `json:"loss"`
}

// ErrTrainingUnsupported marks providers that can predict but not retrain.
var ErrTrainingUnsupported = errors.New("training not supported by this provider")

// Provider is the boundary to the external classifier. Both calls are
// potentially slow and fallible.
type Provider interface {
	Predict(ctx context.Context, imagePath string) (Prediction, error)
	Train(ctx context.Context, dataset map[string][]string, epochs int) (Metrics, error)
	Name() string
}

// ErrorPrediction is the degraded per-item result for a failed predict call.
func ErrorPrediction() Prediction {
	return Prediction{Label: "error", Confidence: 0}
}
