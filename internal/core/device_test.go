package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/campoos/backend-lixeira-app/internal/adapters/store"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenStore struct {
	*store.MemoryStore
}

func (brokenStore) LatestStatus(context.Context) (*core.DeviceStatus, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) LastAction(context.Context) (*core.TrashActionRecord, error) {
	return nil, errors.New("connection refused")
}

func TestDeviceService_StatusDefaultsBeforeFirstPing(t *testing.T) {
	mem := store.NewMemoryStore(zap.NewNop())
	svc := core.NewDeviceService(mem, mem, zap.NewNop())

	status, err := svc.Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, core.DefaultDeviceStatus, status.Status)
	require.NotNil(t, status.BatteryLevel)
	assert.Equal(t, core.DefaultBatteryLevel, *status.BatteryLevel)
	require.NotNil(t, status.FirmwareVersion)
	assert.Equal(t, core.DefaultFirmwareVersion, *status.FirmwareVersion)
}

func TestDeviceService_PingReplacesStatus(t *testing.T) {
	mem := store.NewMemoryStore(zap.NewNop())
	svc := core.NewDeviceService(mem, mem, zap.NewNop())
	battery := 42

	stored, err := svc.Ping(context.Background(), &core.PingRequest{Status: " offline ", BatteryLevel: &battery})
	require.NoError(t, err)
	assert.Equal(t, "OFFLINE", stored.Status)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OFFLINE", status.Status)
	assert.Equal(t, 42, *status.BatteryLevel)
	assert.Nil(t, status.FirmwareVersion)

	stored, err = svc.Ping(context.Background(), &core.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultDeviceStatus, stored.Status)
}

func TestDeviceService_PingRejectsOutOfContractValues(t *testing.T) {
	mem := store.NewMemoryStore(zap.NewNop())
	svc := core.NewDeviceService(mem, mem, zap.NewNop())
	level := func(v int) *int { return &v }

	tests := []struct {
		name string
		req  *core.PingRequest
		want error
	}{
		{"unknown status", &core.PingRequest{Status: "charging"}, core.ErrInvalidDeviceStatus},
		{"negative battery", &core.PingRequest{BatteryLevel: level(-1)}, core.ErrInvalidBatteryLevel},
		{"battery above 100", &core.PingRequest{Status: "ONLINE", BatteryLevel: level(101)}, core.ErrInvalidBatteryLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ping(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, core.CategoryValidation, core.Categorize(err))
		})
	}

	_, err := mem.LatestStatus(context.Background())
	assert.ErrorIs(t, err, core.ErrNotFound)

	for _, edge := range []int{0, 100} {
		_, err := svc.Ping(context.Background(), &core.PingRequest{Status: "error", BatteryLevel: level(edge)})
		assert.NoError(t, err)
	}
}

func TestDeviceService_LastAction(t *testing.T) {
	mem := store.NewMemoryStore(zap.NewNop())
	svc := core.NewDeviceService(mem, mem, zap.NewNop())

	rec, err := svc.LastAction(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)

	var id int64
	require.NoError(t, mem.WithinTx(context.Background(), func(ctx context.Context, tx core.AnalysisTx) error {
		var err error
		id, err = tx.LogAnalysis(ctx, nil, "banana", 0.98, true)
		if err != nil {
			return err
		}
		return tx.LogTrashAction(ctx, id, core.ActionOpen)
	}))

	rec, err = svc.LastAction(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, id, rec.AnalysisID)
	assert.Equal(t, core.ActionOpen, rec.Action)
}

func TestDeviceService_StoreErrorsArePersistenceErrors(t *testing.T) {
	broken := brokenStore{store.NewMemoryStore(zap.NewNop())}
	svc := core.NewDeviceService(broken, broken, zap.NewNop())

	_, err := svc.Status(context.Background())
	assert.Equal(t, core.CategoryPersistence, core.Categorize(err))

	_, err = svc.LastAction(context.Background())
	assert.Equal(t, core.CategoryPersistence, core.Categorize(err))
}
