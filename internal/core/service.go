package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PipelineState is a stage of a single pipeline run
type PipelineState string

const (
	StateIdle        PipelineState = "idle"
	StateClassifying PipelineState = "classifying"
	StateDeciding    PipelineState = "deciding"
	StatePersisting  PipelineState = "persisting"
	StateCommitted   PipelineState = "committed"
	StateRolledBack  PipelineState = "rolled_back"
)

// Recorder receives pipeline measurements
type Recorder interface {
	RecordClassification(duration time.Duration, err error)
	RecordOutcome(state PipelineState, action TrashAction, category ErrorCategory)
}

type nopRecorder struct{}

func (nopRecorder) RecordClassification(time.Duration, error)               {}
func (nopRecorder) RecordOutcome(PipelineState, TrashAction, ErrorCategory) {}

// DisposalService is the classification-and-disposal pipeline
type DisposalService struct {
	classifier Classifier
	policy     DisposalPolicy
	store      AnalysisStore
	notifier   ActionNotifier
	recorder   Recorder
	logger     *zap.Logger
}

// NewDisposalService creates a new disposal pipeline. notifier and recorder may be nil.
func NewDisposalService(
	classifier Classifier,
	policy DisposalPolicy,
	store AnalysisStore,
	notifier ActionNotifier,
	recorder Recorder,
	logger *zap.Logger,
) *DisposalService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &DisposalService{
		classifier: classifier,
		policy:     policy,
		store:      store,
		notifier:   notifier,
		recorder:   recorder,
		logger:     logger,
	}
}

// pipelineRun tracks the state of one request
type pipelineRun struct {
	state  PipelineState
	logger *zap.Logger
}

func (r *pipelineRun) enter(next PipelineState) {
	r.logger.Debug("Pipeline transition",
		zap.String("from", string(r.state)),
		zap.String("to", string(next)))
	r.state = next
}

// Process classifies one image, decides the bin action and stores both
// records atomically. Classification finishes before a connection is leased.
func (s *DisposalService) Process(ctx context.Context, req *AnalysisRequest) (*Decision, error) {
	if req == nil || len(req.Image) == 0 {
		s.recorder.RecordOutcome(StateIdle, "", CategoryValidation)
		return nil, NewValidationError(ErrNoImage)
	}

	run := &pipelineRun{state: StateIdle, logger: s.logger}

	// Caller cancellation does not reach an in-flight classification; the
	// classifier's own timeout bounds it.
	run.enter(StateClassifying)
	start := time.Now()
	result, err := s.classifier.Classify(context.WithoutCancel(ctx), req.Image)
	s.recorder.RecordClassification(time.Since(start), err)
	if err != nil {
		if Categorize(err) != CategoryClassification {
			err = NewClassificationError("classifier", ErrUnreachable, err)
		}
		run.enter(StateRolledBack)
		s.recorder.RecordOutcome(run.state, "", CategoryClassification)
		s.logger.Error("Classification failed", zap.Error(err))
		return nil, err
	}

	run.enter(StateDeciding)
	isOrganic := s.policy.IsOrganic(result.Label)
	action := s.policy.DecideAction(isOrganic)

	run.enter(StatePersisting)
	var analysisID int64
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx AnalysisTx) error {
		id, err := tx.LogAnalysis(ctx, req.UserID, result.Label, result.Score, isOrganic)
		if err != nil {
			return NewPersistenceError("log analysis", err)
		}
		if err := tx.LogTrashAction(ctx, id, action); err != nil {
			return NewPersistenceError("log trash action", err)
		}
		analysisID = id
		return nil
	})
	if err != nil {
		err = NewPersistenceError("persist analysis", err)
		run.enter(StateRolledBack)
		s.recorder.RecordOutcome(run.state, action, CategoryPersistence)
		s.logger.Error("Persisting analysis failed", zap.Error(err), zap.String("label", result.Label))
		return nil, err
	}

	run.enter(StateCommitted)
	s.recorder.RecordOutcome(run.state, action, "")
	s.logger.Info("Analysis committed",
		zap.Int64("analysis_id", analysisID),
		zap.String("label", result.Label),
		zap.Float64("confidence", result.Score),
		zap.Bool("is_organic", isOrganic),
		zap.String("action", string(action)))

	s.notify(ctx, &ActionEvent{
		AnalysisID: analysisID,
		Action:     action,
		Object:     result.Label,
		Timestamp:  time.Now().UTC(),
	})

	return &Decision{
		Success:     true,
		Object:      result.Label,
		Confidence:  result.Score,
		CanDiscard:  isOrganic,
		TrashAction: action,
		AnalysisID:  analysisID,
	}, nil
}

// notify forwards a committed action; failures never undo the commit
func (s *DisposalService) notify(ctx context.Context, event *ActionEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("Failed to notify bin action",
			zap.Error(err),
			zap.Int64("analysis_id", event.AnalysisID))
	}
}

// History returns at most MaxHistoryLimit analyses, newest first
func (s *DisposalService) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	entries, err := s.store.GetHistory(ctx, ClampHistoryLimit(limit))
	if err != nil {
		return nil, NewPersistenceError("load history", err)
	}
	return entries, nil
}
