package core

import (
	"time"
)

// TrashAction is the physical bin decision
type TrashAction string

const (
	// ActionOpen lets the bin accept the item
	ActionOpen TrashAction = "OPEN"
	// ActionDeny keeps the bin closed
	ActionDeny TrashAction = "DENY"
)

// Valid reports whether a is one of the known bin actions
func (a TrashAction) Valid() bool {
	return a == ActionOpen || a == ActionDeny
}

// History limits
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// ClampHistoryLimit maps a requested history size into [1, MaxHistoryLimit].
// Non-positive values fall back to DefaultHistoryLimit.
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// ClassificationResult is the top-ranked candidate returned by a classifier
type ClassificationResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// AnalysisRequest is a single validated image submitted to the pipeline
type AnalysisRequest struct {
	Image  []byte
	UserID *int64
}

// AnalysisRecord is one persisted classification
type AnalysisRecord struct {
	ID             int64     `json:"id"`
	UserID         *int64    `json:"user_id"`
	ObjectDetected string    `json:"object_detected"`
	Confidence     float64   `json:"confidence"`
	IsOrganic      bool      `json:"is_organic"`
	CreatedAt      time.Time `json:"created_at"`
}

// TrashActionRecord is the bin action persisted alongside its analysis
type TrashActionRecord struct {
	ID         int64       `json:"id"`
	AnalysisID int64       `json:"analysis_id"`
	Action     TrashAction `json:"action"`
	Timestamp  time.Time   `json:"timestamp"`
}

// HistoryEntry is an analysis joined with its action. Action fields are nil
// when no action row exists.
type HistoryEntry struct {
	AnalysisRecord
	Action          *TrashAction `json:"action"`
	ActionTimestamp *time.Time   `json:"action_timestamp"`
}

// Decision is the summary returned for a committed pipeline run
type Decision struct {
	Success     bool        `json:"success"`
	Object      string      `json:"object"`
	Confidence  float64     `json:"confidence"`
	CanDiscard  bool        `json:"canDiscard"`
	TrashAction TrashAction `json:"trashAction"`
	AnalysisID  int64       `json:"analysisId"`
}

// ActionEvent is published to the bin after a commit
type ActionEvent struct {
	AnalysisID int64       `json:"analysisId"`
	Action     TrashAction `json:"action"`
	Object     string      `json:"object"`
	Timestamp  time.Time   `json:"timestamp"`
}

// DeviceStatus is the last reported state of the physical bin
type DeviceStatus struct {
	Status          string    `json:"status"`
	BatteryLevel    *int      `json:"batteryLevel"`
	FirmwareVersion *string   `json:"firmwareVersion"`
	UpdatedAt       time.Time `json:"lastPing"`
}
