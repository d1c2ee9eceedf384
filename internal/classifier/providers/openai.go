// File path: internal/classifier/providers/openai.go
package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/openai/openai-go/v2"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
)

const visionPrompt = `You are labeling photos for a dataset that separates real photographs from AI-generated images. Reply with JSON only, exactly {"label":"real"|"ia","confidence":0.0-1.0}.`

// OpenAIProvider predicts via a vision-capable chat model. It cannot retrain
// the downstream classifier; Train reports ErrTrainingUnsupported and the
// coordinator tolerates it.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

func NewOpenAIProvider(client openai.Client) *OpenAIProvider {
	model := strings.TrimSpace(os.Getenv("OPENAI_VISION_MODEL"))
	if model == "" {
		model = "gpt-4o"
	}
	common.Logger().Info("classifier: OpenAI provider configured", "model", model)
	return &OpenAIProvider{client: client, model: model}
}

func (o *OpenAIProvider) Predict(ctx context.Context, imagePath string) (Prediction, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return Prediction{}, fmt.Errorf("read image: %w", err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(imagePath)))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(visionPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart("Classify this image."),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Prediction{}, fmt.Errorf("no choices returned")
	}
	return parsePrediction(resp.Choices[0].Message.Content)
}

func (o *OpenAIProvider) Train(ctx context.Context, dataset map[string][]string, epochs int) (Metrics, error) {
	return Metrics{}, ErrTrainingUnsupported
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

func parsePrediction(content string) (Prediction, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	var prediction Prediction
	if err := json.Unmarshal([]byte(trimmed), &prediction); err != nil {
		return Prediction{}, fmt.Errorf("decode model reply %q: %w", content, err)
	}
	if prediction.Label != "real" && prediction.Label != "ia" {
		return Prediction{}, fmt.Errorf("model reply outside label set: %q", prediction.Label)
	}
	return prediction, nil
}
