package classifier

import (
	"context"
	"errors"
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

const testURL = "https://classifier.test/models/vit"

var jpegImage = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func newTestClient(t *testing.T, token string) (*HuggingFaceClient, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	logger := zap.NewNop()
	c := NewHuggingFaceClient(testURL, token, 10*time.Second, 255, mt, logger, utils.NewTextProcessor(logger))
	return c, mt
}

func TestHuggingFace_Classify_ReturnsTopCandidate(t *testing.T) {
	c, mt := newTestClient(t, "hf_test")

	mt.RegisterResponder(http.MethodPost, testURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer hf_test", req.Header.Get("Authorization"))
		assert.Equal(t, "image/jpeg", req.Header.Get("Content-Type"))
		assert.Equal(t, "true", req.Header.Get("x-wait-for-model"))
		return httpmock.NewStringResponse(http.StatusOK,
			`[{"label":"banana","score":0.98},{"label":"apple","score":0.02}]`), nil
	})

	result, err := c.Classify(context.Background(), jpegImage)

	require.NoError(t, err)
	assert.Equal(t, "banana", result.Label)
	assert.InDelta(t, 0.98, result.Score, 1e-9)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestHuggingFace_Classify_UnsortedResponse(t *testing.T) {
	c, mt := newTestClient(t, "hf_test")
	mt.RegisterResponder(http.MethodPost, testURL, httpmock.NewStringResponder(http.StatusOK,
		`[{"label":"plastic bag","score":0.10},{"label":"metal","score":0.91}]`))

	result, err := c.Classify(context.Background(), jpegImage)

	require.NoError(t, err)
	assert.Equal(t, "metal", result.Label)
	assert.InDelta(t, 0.91, result.Score, 1e-9)
}

func TestHuggingFace_Classify_Errors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		kind      error
	}{
		{"server_error", httpmock.NewStringResponder(http.StatusInternalServerError, `{"error":"boom"}`), core.ErrUnreachable},
		{"unauthorized", httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":"bad token"}`), core.ErrUnreachable},
		{"network", httpmock.NewErrorResponder(errors.New("connection refused")), core.ErrUnreachable},
		{"timeout", httpmock.NewErrorResponder(context.DeadlineExceeded), core.ErrTimeout},
		{"not_json", httpmock.NewStringResponder(http.StatusOK, `<html>loading</html>`), core.ErrInvalidResponse},
		{"object_not_array", httpmock.NewStringResponder(http.StatusOK, `{"label":"banana","score":0.9}`), core.ErrInvalidResponse},
		{"empty_array", httpmock.NewStringResponder(http.StatusOK, `[]`), core.ErrInvalidResponse},
		{"missing_score", httpmock.NewStringResponder(http.StatusOK, `[{"label":"banana"}]`), core.ErrInvalidResponse},
		{"score_out_of_range", httpmock.NewStringResponder(http.StatusOK, `[{"label":"banana","score":1.5}]`), core.ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mt := newTestClient(t, "hf_test")
			mt.RegisterResponder(http.MethodPost, testURL, tt.responder)

			result, err := c.Classify(context.Background(), jpegImage)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, core.CategoryClassification, core.Categorize(err))
		})
	}
}

func TestHuggingFace_Classify_NormalizesLabel(t *testing.T) {
	c, mt := newTestClient(t, "hf_test")
	long := strings.Repeat("a", 300)
	mt.RegisterResponder(http.MethodPost, testURL, httpmock.NewStringResponder(http.StatusOK,
		`[{"label":"  `+long+`  ","score":0.5}]`))

	result, err := c.Classify(context.Background(), jpegImage)

	require.NoError(t, err)
	assert.Len(t, result.Label, 255)
}

func TestHuggingFace_HasCredential(t *testing.T) {
	c, _ := newTestClient(t, "  ")
	assert.False(t, c.HasCredential())

	c, _ = newTestClient(t, "hf_test")
	assert.True(t, c.HasCredential())
	assert.Equal(t, ProviderHuggingFace, c.Provider())
}

func TestImageContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", imageContentType(jpegImage))
	assert.Equal(t, "image/png", imageContentType([]byte("\x89PNG\r\n\x1a\n0000")))
	assert.Equal(t, "application/octet-stream", imageContentType([]byte("test-image-data")))
}

func TestTopCandidate_TieKeepsFirst(t *testing.T) {
	best := TopCandidate([]core.ClassificationResult{
		{Label: "banana", Score: 0.5},
		{Label: "apple", Score: 0.5},
	})
	assert.Equal(t, "banana", best.Label)
}
