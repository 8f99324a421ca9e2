package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
)

var _ core.Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of core.Store. Units of work
// are serialised and staged until commit.
type MemoryStore struct {
	mu           sync.RWMutex
	analyses     []core.AnalysisRecord
	actions      map[int64]core.TrashActionRecord
	status       *core.DeviceStatus
	nextAnalysis int64
	nextAction   int64
	logger       *zap.Logger
	now          func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		actions: make(map[int64]core.TrashActionRecord),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// memoryTx stages writes for a single unit of work
type memoryTx struct {
	store    *MemoryStore
	analyses []core.AnalysisRecord
	actions  []core.TrashActionRecord
}

// WithinTx runs fn with exclusive access and applies its writes only when it succeeds
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx core.AnalysisTx) error) error {
	if err := ctx.Err(); err != nil {
		return core.NewPersistenceError("begin transaction", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(ctx, tx); err != nil {
		s.logger.Debug("Transaction rolled back",
			zap.Int("staged_analyses", len(tx.analyses)),
			zap.Int("staged_actions", len(tx.actions)))
		return err
	}

	s.analyses = append(s.analyses, tx.analyses...)
	for _, a := range tx.actions {
		s.actions[a.AnalysisID] = a
	}
	return nil
}

// LogAnalysis stages one analysis record
func (t *memoryTx) LogAnalysis(ctx context.Context, userID *int64, label string, confidence float64, isOrganic bool) (int64, error) {
	t.store.nextAnalysis++
	rec := core.AnalysisRecord{
		ID:             t.store.nextAnalysis,
		ObjectDetected: label,
		Confidence:     confidence,
		IsOrganic:      isOrganic,
		CreatedAt:      t.store.now(),
	}
	if userID != nil {
		uid := *userID
		rec.UserID = &uid
	}
	t.analyses = append(t.analyses, rec)
	return rec.ID, nil
}

// LogTrashAction stages the action for an analysis
func (t *memoryTx) LogTrashAction(ctx context.Context, analysisID int64, action core.TrashAction) error {
	if !action.Valid() {
		return core.NewPersistenceError("insert trash action", fmt.Errorf("invalid action %q", action))
	}
	if !t.knows(analysisID) {
		return core.NewPersistenceError("insert trash action", fmt.Errorf("analysis %d does not exist", analysisID))
	}
	if _, dup := t.store.actions[analysisID]; dup || t.staged(analysisID) {
		return core.NewPersistenceError("insert trash action", fmt.Errorf("analysis %d already has an action", analysisID))
	}

	t.store.nextAction++
	t.actions = append(t.actions, core.TrashActionRecord{
		ID:         t.store.nextAction,
		AnalysisID: analysisID,
		Action:     action,
		Timestamp:  t.store.now(),
	})
	return nil
}

func (t *memoryTx) knows(analysisID int64) bool {
	for _, a := range t.analyses {
		if a.ID == analysisID {
			return true
		}
	}
	for _, a := range t.store.analyses {
		if a.ID == analysisID {
			return true
		}
	}
	return false
}

func (t *memoryTx) staged(analysisID int64) bool {
	for _, a := range t.actions {
		if a.AnalysisID == analysisID {
			return true
		}
	}
	return false
}

// GetHistory returns analyses with their actions, newest first
func (s *MemoryStore) GetHistory(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := make([]core.AnalysisRecord, len(s.analyses))
	copy(sorted, s.analyses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	limit = core.ClampHistoryLimit(limit)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]core.HistoryEntry, 0, len(sorted))
	for _, a := range sorted {
		e := core.HistoryEntry{AnalysisRecord: a}
		if act, ok := s.actions[a.ID]; ok {
			action := act.Action
			ts := act.Timestamp
			e.Action = &action
			e.ActionTimestamp = &ts
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LastAction returns the newest action or core.ErrNotFound
func (s *MemoryStore) LastAction(ctx context.Context) (*core.TrashActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last *core.TrashActionRecord
	for _, a := range s.actions {
		if last == nil || a.Timestamp.After(last.Timestamp) ||
			(a.Timestamp.Equal(last.Timestamp) && a.ID > last.ID) {
			rec := a
			last = &rec
		}
	}
	if last == nil {
		return nil, core.ErrNotFound
	}
	return last, nil
}

// SaveStatus replaces the device status
func (s *MemoryStore) SaveStatus(ctx context.Context, status *core.DeviceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *status
	s.status = &cp
	return nil
}

// LatestStatus returns the device status or core.ErrNotFound
func (s *MemoryStore) LatestStatus(ctx context.Context) (*core.DeviceStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status == nil {
		return nil, core.ErrNotFound
	}
	cp := *s.status
	return &cp, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
