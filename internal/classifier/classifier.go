// File path: internal/classifier/classifier.go
package classifier

import (
	"os"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/classifier/providers"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/config"
)

type Prediction = providers.Prediction

type Metrics = providers.Metrics

type Provider = providers.Provider

var ErrTrainingUnsupported = providers.ErrTrainingUnsupported

// ErrorPrediction is the sentinel for a failed predict call.
func ErrorPrediction() Prediction {
	return providers.ErrorPrediction()
}

// NewProvider selects the classifier backend: the configured HTTP service
// when a URL is set, the OpenAI vision provider when an API key is present,
// otherwise the local stub.
func NewProvider(cfg config.ClassifierConfig) Provider {
	logger := common.Logger()
	if url := strings.TrimSpace(cfg.ServiceURL); url != "" {
		logger.Info("classifier: service provider selected", "url", url)
		return providers.NewServiceProvider(url, cfg.Timeout)
	}
	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
			logger.Info("classifier: OpenAI custom endpoint configured", "endpoint", endpoint)
			opts = append(opts, option.WithBaseURL(endpoint))
		}
		logger.Info("classifier: OpenAI provider selected")
		return providers.NewOpenAIProvider(openai.NewClient(opts...))
	}
	logger.Warn("classifier: no service URL or OPENAI_API_KEY; falling back to local provider")
	return providers.NewLocalProvider()
}
