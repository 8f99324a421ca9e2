package classifier

import (
	"context"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
)

// Remote is a single-attempt classifier backed by an external service
type Remote interface {
	core.Classifier
	Provider() string
	HasCredential() bool
}

// FallbackRecorder counts fallback results served in non-production mode
type FallbackRecorder interface {
	RecordFallback(provider string, reason error)
}

// StrictClassifier is the production strategy. A missing credential fails
// before any network attempt and every remote failure is returned.
type StrictClassifier struct {
	remote Remote
	logger *zap.Logger
}

// NewStrictClassifier creates the production strategy
func NewStrictClassifier(remote Remote, logger *zap.Logger) *StrictClassifier {
	return &StrictClassifier{remote: remote, logger: logger}
}

// Classify implements core.Classifier
func (c *StrictClassifier) Classify(ctx context.Context, image []byte) (*core.ClassificationResult, error) {
	if !c.remote.HasCredential() {
		return nil, core.NewClassificationError(c.remote.Provider(), core.ErrMissingCredential, nil)
	}

	result, err := c.remote.Classify(ctx, image)
	if err != nil {
		if core.Categorize(err) != core.CategoryClassification {
			err = core.NewClassificationError(c.remote.Provider(), core.ErrUnreachable, err)
		}
		return nil, err
	}
	return result, nil
}

// FallbackClassifier is the non-production strategy. Any remote failure, or a
// missing credential, yields the fixed fallback result so the rest of the
// pipeline can run without live credentials.
type FallbackClassifier struct {
	remote   Remote
	fallback core.ClassificationResult
	recorder FallbackRecorder
	logger   *zap.Logger
}

// NewFallbackClassifier creates the non-production strategy. recorder may be nil.
func NewFallbackClassifier(remote Remote, fallback core.ClassificationResult, recorder FallbackRecorder, logger *zap.Logger) *FallbackClassifier {
	return &FallbackClassifier{
		remote:   remote,
		fallback: fallback,
		recorder: recorder,
		logger:   logger,
	}
}

// Classify implements core.Classifier
func (c *FallbackClassifier) Classify(ctx context.Context, image []byte) (*core.ClassificationResult, error) {
	if !c.remote.HasCredential() {
		return c.useFallback(core.ErrMissingCredential), nil
	}

	result, err := c.remote.Classify(ctx, image)
	if err != nil {
		return c.useFallback(err), nil
	}
	return result, nil
}

func (c *FallbackClassifier) useFallback(reason error) *core.ClassificationResult {
	c.logger.Warn("Classifier failed, serving fallback result",
		zap.String("provider", c.remote.Provider()),
		zap.Error(reason),
		zap.String("fallback_label", c.fallback.Label))
	if c.recorder != nil {
		c.recorder.RecordFallback(c.remote.Provider(), reason)
	}
	result := c.fallback
	return &result
}

// NewForEnvironment selects the strategy for the deployment mode
func NewForEnvironment(production bool, remote Remote, fallback core.ClassificationResult, recorder FallbackRecorder, logger *zap.Logger) core.Classifier {
	if production {
		logger.Info("Using strict classifier", zap.String("provider", remote.Provider()))
		return NewStrictClassifier(remote, logger)
	}
	logger.Info("Using classifier with fallback",
		zap.String("provider", remote.Provider()),
		zap.String("fallback_label", fallback.Label),
		zap.Float64("fallback_score", fallback.Score))
	return NewFallbackClassifier(remote, fallback, recorder, logger)
}
