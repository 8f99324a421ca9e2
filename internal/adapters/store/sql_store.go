package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// deviceRowID is the single row holding the bin status
const deviceRowID = 1

// Options configures an SQLStore
type Options struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxWaiting      int
	AcquireTimeout  time.Duration
	AutoMigrate     bool
	PingTimeout     time.Duration
}

var _ core.Store = (*SQLStore)(nil)

// SQLStore is a database/sql implementation of core.Store
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	gate    *LeaseGate
	logger  *zap.Logger
	now     func() time.Time
}

// Open connects to the database, verifies the connection and optionally
// creates the schema
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open(opts.Dialect.driverName(), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", opts.Dialect, err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", opts.Dialect, err)
	}

	s := NewSQLStore(db, opts.Dialect, NewLeaseGate(maxOpen, opts.MaxWaiting, opts.AcquireTimeout), logger)

	if opts.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Info("Connected to database",
		zap.String("dialect", string(opts.Dialect)),
		zap.Int("max_open_conns", maxOpen),
		zap.Int("max_waiting", opts.MaxWaiting))

	return s, nil
}

// NewSQLStore wraps an open database handle
func NewSQLStore(db *sql.DB, dialect Dialect, gate *LeaseGate, logger *zap.Logger) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
		gate:    gate,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates the tables if they do not exist
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// WithinTx leases a connection, runs fn in a transaction and commits when fn
// succeeds. The transaction is rolled back before the lease is released on
// every failure path.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx core.AnalysisTx) error) error {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return core.NewPersistenceError("lease connection", err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.NewPersistenceError("begin transaction", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Error("Failed to roll back transaction", zap.Error(err))
			return
		}
		s.logger.Debug("Transaction rolled back")
	}()

	if err := fn(ctx, &sqlTx{tx: tx, store: s}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return core.NewPersistenceError("commit transaction", err)
	}
	committed = true
	return nil
}

// sqlTx implements core.AnalysisTx over an open transaction
type sqlTx struct {
	tx    *sql.Tx
	store *SQLStore
}

// LogAnalysis inserts one ai_analysis row
func (t *sqlTx) LogAnalysis(ctx context.Context, userID *int64, label string, confidence float64, isOrganic bool) (int64, error) {
	var uid sql.NullInt64
	if userID != nil {
		uid = sql.NullInt64{Int64: *userID, Valid: true}
	}
	query := `INSERT INTO ai_analysis (user_id, object_detected, confidence, is_organic, created_at) VALUES (?, ?, ?, ?, ?)`
	args := []any{uid, label, confidence, isOrganic, t.store.timestamp()}

	id, err := t.store.insert(ctx, t.tx, query, args...)
	if err != nil {
		return 0, core.NewPersistenceError("insert analysis", err)
	}
	return id, nil
}

// LogTrashAction inserts the trash_logs row for an analysis
func (t *sqlTx) LogTrashAction(ctx context.Context, analysisID int64, action core.TrashAction) error {
	if !action.Valid() {
		return core.NewPersistenceError("insert trash action", fmt.Errorf("invalid action %q", action))
	}
	query := t.store.dialect.rebind(`INSERT INTO trash_logs (analysis_id, action, timestamp) VALUES (?, ?, ?)`)
	if _, err := t.tx.ExecContext(ctx, query, analysisID, string(action), t.store.timestamp()); err != nil {
		return core.NewPersistenceError("insert trash action", err)
	}
	return nil
}

// insert runs an INSERT and returns the generated id
func (s *SQLStore) insert(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	if s.dialect == DialectPostgres {
		var id int64
		if err := tx.QueryRowContext(ctx, s.dialect.rebind(query)+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetHistory returns analyses left-joined with their actions, newest first
func (s *SQLStore) GetHistory(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return nil, core.NewPersistenceError("lease connection", err)
	}
	defer release()

	query := s.dialect.rebind(`
		SELECT a.id, a.user_id, a.object_detected, a.confidence, a.is_organic, a.created_at,
			t.action, t.timestamp
		FROM ai_analysis a
		LEFT JOIN trash_logs t ON t.analysis_id = a.id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, core.ClampHistoryLimit(limit))
	if err != nil {
		return nil, core.NewPersistenceError("query history", err)
	}
	defer rows.Close()

	entries := make([]core.HistoryEntry, 0)
	for rows.Next() {
		var (
			e        core.HistoryEntry
			userID   sql.NullInt64
			action   sql.NullString
			actionTS sql.NullTime
		)
		if err := rows.Scan(&e.ID, &userID, &e.ObjectDetected, &e.Confidence, &e.IsOrganic, &e.CreatedAt,
			&action, &actionTS); err != nil {
			return nil, core.NewPersistenceError("scan history", err)
		}
		if userID.Valid {
			uid := userID.Int64
			e.UserID = &uid
		}
		if action.Valid {
			a := core.TrashAction(action.String)
			e.Action = &a
		}
		if actionTS.Valid {
			ts := actionTS.Time.UTC()
			e.ActionTimestamp = &ts
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewPersistenceError("read history", err)
	}
	return entries, nil
}

// LastAction returns the newest trash_logs row
func (s *SQLStore) LastAction(ctx context.Context) (*core.TrashActionRecord, error) {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return nil, core.NewPersistenceError("lease connection", err)
	}
	defer release()

	var (
		rec    core.TrashActionRecord
		action string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT id, analysis_id, action, timestamp
		FROM trash_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`).Scan(&rec.ID, &rec.AnalysisID, &action, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.NewPersistenceError("query last action", err)
	}
	rec.Action = core.TrashAction(action)
	rec.Timestamp = rec.Timestamp.UTC()
	return &rec, nil
}

// SaveStatus upserts the single device_status row
func (s *SQLStore) SaveStatus(ctx context.Context, status *core.DeviceStatus) error {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return core.NewPersistenceError("lease connection", err)
	}
	defer release()

	var (
		battery  sql.NullInt64
		firmware sql.NullString
	)
	if status.BatteryLevel != nil {
		battery = sql.NullInt64{Int64: int64(*status.BatteryLevel), Valid: true}
	}
	if status.FirmwareVersion != nil {
		firmware = sql.NullString{String: *status.FirmwareVersion, Valid: true}
	}
	updatedAt := status.UpdatedAt.UTC().Truncate(time.Microsecond)

	if _, err := s.db.ExecContext(ctx, s.dialect.upsertStatus(),
		deviceRowID, status.Status, battery, firmware, updatedAt); err != nil {
		return core.NewPersistenceError("upsert device status", err)
	}
	return nil
}

// LatestStatus reads the device_status row
func (s *SQLStore) LatestStatus(ctx context.Context) (*core.DeviceStatus, error) {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return nil, core.NewPersistenceError("lease connection", err)
	}
	defer release()

	var (
		ds       core.DeviceStatus
		battery  sql.NullInt64
		firmware sql.NullString
	)
	err = s.db.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT status, battery_level, firmware_version, updated_at
		FROM device_status
		WHERE id = ?`), deviceRowID).Scan(&ds.Status, &battery, &firmware, &ds.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.NewPersistenceError("query device status", err)
	}
	if battery.Valid {
		b := int(battery.Int64)
		ds.BatteryLevel = &b
	}
	if firmware.Valid {
		f := firmware.String
		ds.FirmwareVersion = &f
	}
	ds.UpdatedAt = ds.UpdatedAt.UTC()
	return &ds, nil
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
