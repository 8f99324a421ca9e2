package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/adapters/classifier"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ProviderOpenAI names the OpenAI vision provider
const ProviderOpenAI = "openai"

// VisionClassifier labels images with an OpenAI vision model
type VisionClassifier struct {
	client         *openai.Client
	apiKey         string
	modelName      string
	maxTokens      int
	temperature    float32
	maxLabelLength int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
	prompt         string
}

// candidateEnvelope is the JSON object the model is asked to return
type candidateEnvelope struct {
	Candidates json.RawMessage `json:"candidates"`
}

// NewVisionClassifier creates a new OpenAI vision classifier. baseURL and
// transport may be empty/nil to use the SDK defaults.
func NewVisionClassifier(
	apiKey string,
	baseURL string,
	modelName string,
	maxTokens int,
	temperature float32,
	timeout time.Duration,
	maxLabelLength int,
	transport http.RoundTripper,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *VisionClassifier {
	apiKey = strings.TrimSpace(apiKey)
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}

	return &VisionClassifier{
		client:         openai.NewClientWithConfig(cfg),
		apiKey:         apiKey,
		modelName:      modelName,
		maxTokens:      maxTokens,
		temperature:    temperature,
		maxLabelLength: maxLabelLength,
		logger:         logger,
		textProcessor:  textProcessor,
		prompt: `You are the vision module of a smart waste bin. Identify the single object in the photo.
Respond with a JSON object containing:
- candidates: array of up to 5 objects, most likely first, each with
  - label: string (short English object name, lower case, e.g. "banana", "plastic bottle")
  - score: number between 0 and 1 (your confidence in that label)

Respond only with the JSON object and nothing else.`,
	}
}

// Provider returns the provider name
func (c *VisionClassifier) Provider() string {
	return ProviderOpenAI
}

// HasCredential reports whether an API key is configured
func (c *VisionClassifier) HasCredential() bool {
	return c.apiKey != ""
}

// Classify sends the image as a data URL and returns the top-ranked label
func (c *VisionClassifier) Classify(ctx context.Context, image []byte) (*core.ClassificationResult, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(image), base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an image classifier. Respond only with JSON.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: c.prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	c.logger.Debug("Sending image to classifier",
		zap.String("provider", ProviderOpenAI),
		zap.String("model", c.modelName),
		zap.Int("image_bytes", len(image)))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, core.NewClassificationError(ProviderOpenAI, errorKind(err),
			fmt.Errorf("failed to create chat completion with OpenAI: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewClassificationError(ProviderOpenAI, core.ErrInvalidResponse, errors.New("empty response from OpenAI"))
	}

	candidates, err := parseAnswer(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, core.NewClassificationError(ProviderOpenAI, core.ErrInvalidResponse, err)
	}

	best := classifier.TopCandidate(candidates)
	best.Label = c.textProcessor.NormalizeLabel(strings.ToLower(best.Label), c.maxLabelLength)

	c.logger.Debug("Classifier answered",
		zap.String("label", best.Label),
		zap.Float64("score", best.Score),
		zap.String("completion_id", resp.ID))

	return &best, nil
}

// parseAnswer decodes the model reply, tolerating text around the JSON object
func parseAnswer(text string) ([]core.ClassificationResult, error) {
	var env candidateEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("failed to extract JSON from model response: %w", err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &env); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}
	if len(env.Candidates) == 0 {
		return nil, errors.New("model response has no candidates")
	}
	return classifier.ParseCandidates(env.Candidates)
}

// errorKind maps SDK failures onto the classifier error kinds
func errorKind(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return core.ErrUnreachable
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return core.ErrUnreachable
	}
	return classifier.TransportKind(err)
}
