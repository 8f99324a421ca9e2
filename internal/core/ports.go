package core

import (
	"context"
)

// Classifier defines the interface for labelling an image
type Classifier interface {
	// Classify returns the top-ranked label for the image
	Classify(ctx context.Context, image []byte) (*ClassificationResult, error)
}

// DisposalPolicy maps a label to the bin decision
type DisposalPolicy interface {
	IsOrganic(label string) bool
	DecideAction(isOrganic bool) TrashAction
}

// AnalysisTx is the unit of work spanning one analysis and its action
type AnalysisTx interface {
	// LogAnalysis inserts an analysis record and returns its id
	LogAnalysis(ctx context.Context, userID *int64, label string, confidence float64, isOrganic bool) (int64, error)

	// LogTrashAction inserts the action row for an analysis written in the same unit
	LogTrashAction(ctx context.Context, analysisID int64, action TrashAction) error
}

// AnalysisStore defines the interface for persisting pipeline results
type AnalysisStore interface {
	// WithinTx leases a connection, runs fn inside a transaction and commits
	// when fn returns nil. Any error rolls the whole unit back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx AnalysisTx) error) error

	// GetHistory returns analyses joined with their actions, newest first
	GetHistory(ctx context.Context, limit int) ([]HistoryEntry, error)

	// LastAction returns the most recent bin action or ErrNotFound
	LastAction(ctx context.Context) (*TrashActionRecord, error)
}

// DeviceStatusStore keeps the last reported device status
type DeviceStatusStore interface {
	// SaveStatus replaces the stored status
	SaveStatus(ctx context.Context, status *DeviceStatus) error

	// LatestStatus returns the stored status or ErrNotFound
	LatestStatus(ctx context.Context) (*DeviceStatus, error)
}

// Store is the full storage backend used by the service
type Store interface {
	AnalysisStore
	DeviceStatusStore

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend
	Close() error
}

// ActionNotifier forwards committed bin actions to the device
type ActionNotifier interface {
	Notify(ctx context.Context, event *ActionEvent) error
}
