package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Device defaults reported before the first ping
const (
	DefaultDeviceStatus    = DeviceOnline
	DefaultBatteryLevel    = 100
	DefaultFirmwareVersion = "1.0.0"
)

// Reported device states
const (
	DeviceOnline  = "ONLINE"
	DeviceOffline = "OFFLINE"
	DeviceError   = "ERROR"
)

var (
	// ErrInvalidDeviceStatus is returned for a ping with an unknown status
	ErrInvalidDeviceStatus = errors.New("status must be one of ONLINE, OFFLINE, ERROR")
	// ErrInvalidBatteryLevel is returned for a battery level outside 0..100
	ErrInvalidBatteryLevel = errors.New("batteryLevel must be between 0 and 100")
)

// PingRequest is a status report sent by the bin
type PingRequest struct {
	Status          string  `json:"status"`
	BatteryLevel    *int    `json:"batteryLevel"`
	FirmwareVersion *string `json:"firmwareVersion"`
}

// DeviceService tracks the physical bin. It is plain last-write-wins storage
// and takes no part in the analysis unit of work.
type DeviceService struct {
	devices  DeviceStatusStore
	analyses AnalysisStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewDeviceService creates a new device service
func NewDeviceService(devices DeviceStatusStore, analyses AnalysisStore, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		devices:  devices,
		analyses: analyses,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ping stores the reported status
func (s *DeviceService) Ping(ctx context.Context, req *PingRequest) (*DeviceStatus, error) {
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case "":
		status = DefaultDeviceStatus
	case DeviceOnline, DeviceOffline, DeviceError:
	default:
		return nil, NewValidationError(fmt.Errorf("%w: got %q", ErrInvalidDeviceStatus, req.Status))
	}
	if req.BatteryLevel != nil && (*req.BatteryLevel < 0 || *req.BatteryLevel > 100) {
		return nil, NewValidationError(fmt.Errorf("%w: got %d", ErrInvalidBatteryLevel, *req.BatteryLevel))
	}

	ds := &DeviceStatus{
		Status:          status,
		BatteryLevel:    req.BatteryLevel,
		FirmwareVersion: req.FirmwareVersion,
		UpdatedAt:       s.now(),
	}
	if err := s.devices.SaveStatus(ctx, ds); err != nil {
		return nil, NewPersistenceError("save device status", err)
	}
	s.logger.Debug("Device ping stored", zap.String("status", ds.Status))
	return ds, nil
}

// Status returns the last reported status, or the defaults when the bin has never pinged
func (s *DeviceService) Status(ctx context.Context) (*DeviceStatus, error) {
	ds, err := s.devices.LatestStatus(ctx)
	if errors.Is(err, ErrNotFound) {
		battery := DefaultBatteryLevel
		firmware := DefaultFirmwareVersion
		return &DeviceStatus{
			Status:          DefaultDeviceStatus,
			BatteryLevel:    &battery,
			FirmwareVersion: &firmware,
			UpdatedAt:       s.now(),
		}, nil
	}
	if err != nil {
		return nil, NewPersistenceError("load device status", err)
	}
	return ds, nil
}

// LastAction returns the newest bin action, or nil when none has been recorded
func (s *DeviceService) LastAction(ctx context.Context) (*TrashActionRecord, error) {
	rec, err := s.analyses.LastAction(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewPersistenceError("load last action", err)
	}
	return rec, nil
}
