package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/utils"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBaseURL     = "https://openai.test/v1"
	completionsPath = testBaseURL + "/chat/completions"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestClassifier(t *testing.T, apiKey string) (*VisionClassifier, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	logger := zap.NewNop()
	c := NewVisionClassifier(apiKey, testBaseURL, "gpt-4o-mini", 300, 0, 10*time.Second, 255, mt, logger, utils.NewTextProcessor(logger))
	return c, mt
}

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func TestVisionClassifier_Classify(t *testing.T) {
	c, mt := newTestClassifier(t, "sk-test")

	mt.RegisterResponder(http.MethodPost, completionsPath, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "data:image/png;base64,")
		assert.Contains(t, string(body), `"json_object"`)
		return httpmock.NewStringResponse(http.StatusOK,
			completion(`{"candidates":[{"label":"Plastic Bottle","score":0.4},{"label":"Banana Peel","score":0.9}]}`)), nil
	})

	result, err := c.Classify(context.Background(), pngImage)

	require.NoError(t, err)
	assert.Equal(t, "banana peel", result.Label)
	assert.InDelta(t, 0.9, result.Score, 1e-9)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestVisionClassifier_Classify_Errors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		kind      error
	}{
		{
			"api_error",
			httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`),
			core.ErrUnreachable,
		},
		{
			"timeout",
			httpmock.NewErrorResponder(context.DeadlineExceeded),
			core.ErrTimeout,
		},
		{
			"no_json",
			httpmock.NewStringResponder(http.StatusOK, completion("I think it is a banana")),
			core.ErrInvalidResponse,
		},
		{
			"no_candidates",
			httpmock.NewStringResponder(http.StatusOK, completion(`{"label":"banana"}`)),
			core.ErrInvalidResponse,
		},
		{
			"empty_candidates",
			httpmock.NewStringResponder(http.StatusOK, completion(`{"candidates":[]}`)),
			core.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mt := newTestClassifier(t, "sk-test")
			mt.RegisterResponder(http.MethodPost, completionsPath, tt.responder)

			result, err := c.Classify(context.Background(), pngImage)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestParseAnswer_ExtractsWrappedJSON(t *testing.T) {
	text := "```json\n{\"candidates\":[{\"label\":\"apple\",\"score\":0.7}]}\n```"

	candidates, err := parseAnswer(text)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "apple", candidates[0].Label)
}

func TestVisionClassifier_HasCredential(t *testing.T) {
	c, _ := newTestClassifier(t, "")
	assert.False(t, c.HasCredential())
	assert.Equal(t, ProviderOpenAI, c.Provider())

	c, _ = newTestClassifier(t, "sk-test")
	assert.True(t, c.HasCredential())
	assert.True(t, strings.HasPrefix(c.prompt, "You are the vision module"))
}
