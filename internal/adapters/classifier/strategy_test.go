package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRemote struct {
	credential bool
	result     *core.ClassificationResult
	err        error
	calls      int
}

func (s *stubRemote) Classify(ctx context.Context, image []byte) (*core.ClassificationResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubRemote) Provider() string    { return "stub" }
func (s *stubRemote) HasCredential() bool { return s.credential }

type countingRecorder struct {
	reasons []error
}

func (r *countingRecorder) RecordFallback(provider string, reason error) {
	r.reasons = append(r.reasons, reason)
}

var mockResult = core.ClassificationResult{Label: "banana", Score: 0.98}

func TestStrict_MissingCredentialSkipsNetwork(t *testing.T) {
	remote := &stubRemote{credential: false}
	c := NewStrictClassifier(remote, zap.NewNop())

	result, err := c.Classify(context.Background(), jpegImage)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, core.ErrMissingCredential)
	assert.Equal(t, 0, remote.calls)
}

func TestStrict_PropagatesRemoteError(t *testing.T) {
	remote := &stubRemote{credential: true, err: core.NewClassificationError("stub", core.ErrTimeout, context.DeadlineExceeded)}
	c := NewStrictClassifier(remote, zap.NewNop())

	_, err := c.Classify(context.Background(), jpegImage)

	assert.ErrorIs(t, err, core.ErrTimeout)
	assert.Equal(t, 1, remote.calls)
}

func TestStrict_WrapsForeignError(t *testing.T) {
	remote := &stubRemote{credential: true, err: errors.New("boom")}
	c := NewStrictClassifier(remote, zap.NewNop())

	_, err := c.Classify(context.Background(), jpegImage)

	assert.ErrorIs(t, err, core.ErrUnreachable)
	assert.Equal(t, core.CategoryClassification, core.Categorize(err))
}

func TestStrict_Success(t *testing.T) {
	remote := &stubRemote{credential: true, result: &core.ClassificationResult{Label: "metal", Score: 0.91}}
	c := NewStrictClassifier(remote, zap.NewNop())

	result, err := c.Classify(context.Background(), jpegImage)

	require.NoError(t, err)
	assert.Equal(t, "metal", result.Label)
}

func TestFallback_RemoteErrorServesMock(t *testing.T) {
	remote := &stubRemote{credential: true, err: core.NewClassificationError("stub", core.ErrUnreachable, errors.New("API Error"))}
	rec := &countingRecorder{}
	c := NewFallbackClassifier(remote, mockResult, rec, zap.NewNop())

	result, err := c.Classify(context.Background(), jpegImage)

	require.NoError(t, err)
	assert.Equal(t, mockResult, *result)
	assert.Equal(t, 1, remote.calls)
	require.Len(t, rec.reasons, 1)
	assert.ErrorIs(t, rec.reasons[0], core.ErrUnreachable)
}

func TestFallback_MissingCredentialServesMockWithoutNetwork(t *testing.T) {
	remote := &stubRemote{credential: false}
	c := NewFallbackClassifier(remote, mockResult, nil, zap.NewNop())

	result, err := c.Classify(context.Background(), jpegImage)

	require.NoError(t, err)
	assert.Equal(t, mockResult, *result)
	assert.Equal(t, 0, remote.calls)
}

func TestFallback_ReturnsCopy(t *testing.T) {
	remote := &stubRemote{credential: false}
	c := NewFallbackClassifier(remote, mockResult, nil, zap.NewNop())

	first, _ := c.Classify(context.Background(), jpegImage)
	first.Label = "changed"
	second, _ := c.Classify(context.Background(), jpegImage)

	assert.Equal(t, "banana", second.Label)
}

func TestFallback_SuccessPassesThrough(t *testing.T) {
	remote := &stubRemote{credential: true, result: &core.ClassificationResult{Label: "metal", Score: 0.91}}
	c := NewFallbackClassifier(remote, mockResult, nil, zap.NewNop())

	result, err := c.Classify(context.Background(), jpegImage)

	require.NoError(t, err)
	assert.Equal(t, "metal", result.Label)
}

func TestNewForEnvironment(t *testing.T) {
	remote := &stubRemote{}

	_, strict := NewForEnvironment(true, remote, mockResult, nil, zap.NewNop()).(*StrictClassifier)
	assert.True(t, strict)

	_, fallback := NewForEnvironment(false, remote, mockResult, nil, zap.NewNop()).(*FallbackClassifier)
	assert.True(t, fallback)
}
