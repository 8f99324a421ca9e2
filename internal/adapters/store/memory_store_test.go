package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMemoryStore() *MemoryStore {
	s := NewMemoryStore(zap.NewNop())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	return s
}

func TestMemoryStore_CommitAndHistory(t *testing.T) {
	s := newMemoryStore()
	first := logPair(t, s, "banana", true, core.ActionOpen)
	second := logPair(t, s, "metal", false, core.ActionDeny)

	history, err := s.GetHistory(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second, history[0].ID)
	assert.Equal(t, first, history[1].ID)
	assert.Equal(t, core.ActionDeny, *history[0].Action)
	assert.Equal(t, core.ActionOpen, *history[1].Action)
}

func TestMemoryStore_RollbackIsTotal(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx core.AnalysisTx) error {
		id, err := tx.LogAnalysis(ctx, nil, "banana", 0.98, true)
		require.NoError(t, err)
		return tx.LogTrashAction(ctx, id, core.TrashAction(""))
	})
	require.Error(t, err)

	history, err := s.GetHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = s.LastAction(ctx)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore_RejectsOrphanAndDuplicateActions(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx core.AnalysisTx) error {
		return tx.LogTrashAction(ctx, 7, core.ActionOpen)
	})
	assert.Error(t, err)

	id := logPair(t, s, "banana", true, core.ActionOpen)
	err = s.WithinTx(ctx, func(ctx context.Context, tx core.AnalysisTx) error {
		return tx.LogTrashAction(ctx, id, core.ActionDeny)
	})
	assert.Error(t, err)
}

func TestMemoryStore_HistoryLeftJoinAndClamp(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx core.AnalysisTx) error {
		_, err := tx.LogAnalysis(ctx, nil, "cardboard box", 0.4, false)
		return err
	}))
	history, err := s.GetHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].Action)

	for i := 0; i < 110; i++ {
		logPair(t, s, "banana", true, core.ActionOpen)
	}
	history, err = s.GetHistory(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, history, core.MaxHistoryLimit)

	history, err = s.GetHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, core.DefaultHistoryLimit)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := newMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithinTx(ctx, func(ctx context.Context, tx core.AnalysisTx) error {
		return errors.New("must not run")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, core.CategoryPersistence, core.Categorize(err))
}

func TestMemoryStore_DeviceStatus(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	_, err := s.LatestStatus(ctx)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.SaveStatus(ctx, &core.DeviceStatus{Status: "ONLINE"}))
	require.NoError(t, s.SaveStatus(ctx, &core.DeviceStatus{Status: "OFFLINE"}))

	ds, err := s.LatestStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OFFLINE", ds.Status)
}
