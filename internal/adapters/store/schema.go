package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the SQL flavour spoken by the backing database
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured driver name onto a Dialect
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql":
		return DialectMySQL, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// driverName returns the database/sql driver registered for the dialect
func (d Dialect) driverName() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectSQLite:
		return "sqlite3"
	default:
		return "mysql"
	}
}

// rebind rewrites ? placeholders into $n for postgres
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsertStatus returns the single-row device_status upsert
func (d Dialect) upsertStatus() string {
	if d == DialectMySQL {
		return `
		INSERT INTO device_status (id, status, battery_level, firmware_version, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			battery_level = VALUES(battery_level),
			firmware_version = VALUES(firmware_version),
			updated_at = VALUES(updated_at)`
	}
	return d.rebind(`
		INSERT INTO device_status (id, status, battery_level, firmware_version, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			battery_level = excluded.battery_level,
			firmware_version = excluded.firmware_version,
			updated_at = excluded.updated_at`)
}

// schema returns the statements creating the store tables
func (d Dialect) schema() []string {
	switch d {
	case DialectPostgres:
		return []string{
			`CREATE TABLE IF NOT EXISTS ai_analysis (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NULL,
				object_detected VARCHAR(255) NOT NULL,
				confidence DOUBLE PRECISION NOT NULL,
				is_organic BOOLEAN NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_ai_analysis_created_at ON ai_analysis (created_at)`,
			`CREATE TABLE IF NOT EXISTS trash_logs (
				id BIGSERIAL PRIMARY KEY,
				analysis_id BIGINT NOT NULL UNIQUE REFERENCES ai_analysis (id),
				action VARCHAR(8) NOT NULL,
				timestamp TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS device_status (
				id INTEGER PRIMARY KEY,
				status VARCHAR(32) NOT NULL,
				battery_level INTEGER NULL,
				firmware_version VARCHAR(64) NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
		}
	case DialectSQLite:
		return []string{
			`CREATE TABLE IF NOT EXISTS ai_analysis (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NULL,
				object_detected TEXT NOT NULL,
				confidence REAL NOT NULL,
				is_organic BOOLEAN NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_ai_analysis_created_at ON ai_analysis (created_at)`,
			`CREATE TABLE IF NOT EXISTS trash_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				analysis_id INTEGER NOT NULL UNIQUE REFERENCES ai_analysis (id),
				action TEXT NOT NULL,
				timestamp TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS device_status (
				id INTEGER PRIMARY KEY,
				status TEXT NOT NULL,
				battery_level INTEGER NULL,
				firmware_version TEXT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
		}
	default:
		return []string{
			`CREATE TABLE IF NOT EXISTS ai_analysis (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				user_id BIGINT NULL,
				object_detected VARCHAR(255) NOT NULL,
				confidence DOUBLE NOT NULL,
				is_organic BOOLEAN NOT NULL,
				created_at DATETIME(6) NOT NULL,
				INDEX idx_ai_analysis_created_at (created_at)
			)`,
			`CREATE TABLE IF NOT EXISTS trash_logs (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				analysis_id BIGINT NOT NULL,
				action VARCHAR(8) NOT NULL,
				timestamp DATETIME(6) NOT NULL,
				UNIQUE INDEX idx_trash_logs_analysis_id (analysis_id),
				CONSTRAINT fk_trash_logs_analysis FOREIGN KEY (analysis_id) REFERENCES ai_analysis (id)
			)`,
			`CREATE TABLE IF NOT EXISTS device_status (
				id INT PRIMARY KEY,
				status VARCHAR(32) NOT NULL,
				battery_level INT NULL,
				firmware_version VARCHAR(64) NULL,
				updated_at DATETIME(6) NOT NULL
			)`,
		}
	}
}
