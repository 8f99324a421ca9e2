package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/utils"
	"go.uber.org/zap"
)

// ProviderHuggingFace names the Hugging Face inference provider
const ProviderHuggingFace = "huggingface"

// maxResponseBytes caps how much of a classifier response is read
const maxResponseBytes = 1 << 20

// HuggingFaceClient is a single-attempt client for a Hugging Face image
// classification endpoint
type HuggingFaceClient struct {
	httpClient     *http.Client
	apiURL         string
	apiToken       string
	maxLabelLength int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
}

// NewHuggingFaceClient creates a new Hugging Face client. transport may be nil
// to use http.DefaultTransport.
func NewHuggingFaceClient(
	apiURL string,
	apiToken string,
	timeout time.Duration,
	maxLabelLength int,
	transport http.RoundTripper,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *HuggingFaceClient {
	return &HuggingFaceClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		apiURL:         apiURL,
		apiToken:       strings.TrimSpace(apiToken),
		maxLabelLength: maxLabelLength,
		logger:         logger,
		textProcessor:  textProcessor,
	}
}

// Provider returns the provider name
func (c *HuggingFaceClient) Provider() string {
	return ProviderHuggingFace
}

// HasCredential reports whether an API token is configured
func (c *HuggingFaceClient) HasCredential() bool {
	return c.apiToken != ""
}

// Classify posts the raw image bytes and returns the top-ranked label
func (c *HuggingFaceClient) Classify(ctx context.Context, image []byte) (*core.ClassificationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(image))
	if err != nil {
		return nil, core.NewClassificationError(ProviderHuggingFace, core.ErrUnreachable, err)
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	req.Header.Set("Content-Type", imageContentType(image))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-wait-for-model", "true")

	c.logger.Debug("Sending image to classifier",
		zap.String("provider", ProviderHuggingFace),
		zap.Int("image_bytes", len(image)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewClassificationError(ProviderHuggingFace, TransportKind(err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, core.NewClassificationError(ProviderHuggingFace, TransportKind(err), fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, core.NewClassificationError(ProviderHuggingFace, core.ErrUnreachable,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(body)))
	}

	candidates, err := ParseCandidates(body)
	if err != nil {
		return nil, core.NewClassificationError(ProviderHuggingFace, core.ErrInvalidResponse, err)
	}

	best := TopCandidate(candidates)
	best.Label = c.textProcessor.NormalizeLabel(best.Label, c.maxLabelLength)

	c.logger.Debug("Classifier answered",
		zap.String("label", best.Label),
		zap.Float64("score", best.Score),
		zap.Int("candidates", len(candidates)))

	return &best, nil
}

// imageContentType sniffs jpeg/png; anything else is sent as octet-stream
func imageContentType(image []byte) string {
	switch ct := http.DetectContentType(image); ct {
	case "image/jpeg", "image/png":
		return ct
	default:
		return "application/octet-stream"
	}
}

// TransportKind separates timeouts from other transport failures
func TransportKind(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.ErrTimeout
	}
	return core.ErrUnreachable
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
