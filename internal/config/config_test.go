package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.False(t, cfg.IsProduction())
	assert.Equal(t, EnvDevelopment, cfg.GetApp().Environment)

	cc, err := cfg.GetClassifier()
	require.NoError(t, err)
	assert.Equal(t, "huggingface", cc.Provider)
	assert.Equal(t, 10*time.Second, cc.Timeout)
	assert.Equal(t, "banana", cc.FallbackLabel)
	assert.InDelta(t, 0.98, cc.FallbackScore, 1e-9)

	db, err := cfg.GetDatabase()
	require.NoError(t, err)
	assert.Equal(t, "mysql", db.Driver)
	assert.Equal(t, 10, db.MaxOpenConns)
	assert.Equal(t, 100, db.MaxWaiting)
	assert.Equal(t, 5*time.Second, db.AcquireTimeout)

	srv, err := cfg.GetServer()
	require.NoError(t, err)
	assert.Equal(t, int64(5*1024*1024), srv.MaxUploadBytes)

	mq, err := cfg.GetMQTT()
	require.NoError(t, err)
	assert.False(t, mq.Enabled)
	assert.Equal(t, 100, mq.QueueSize)
}

func TestIsProduction(t *testing.T) {
	v := NewEmptyViper()
	v.Set("app.environment", " Production ")
	assert.True(t, NewFromViper(v).IsProduction())

	v.Set("app.environment", "staging")
	assert.False(t, NewFromViper(v).IsProduction())
}

func TestInvalidDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("classifier.timeout", "soon")

	_, err := NewFromViper(v).GetClassifier()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classifier.timeout")
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("app:\n  environment: production\ndatabase:\n  driver: sqlite\n  max_waiting: 3\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())

	db, err := cfg.GetDatabase()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", db.Driver)
	assert.Equal(t, 3, db.MaxWaiting)
}

func TestLegacyTokenEnv(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_legacy")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	cc, err := cfg.GetClassifier()
	require.NoError(t, err)
	assert.Equal(t, "hf_legacy", cc.APIToken)
}

func TestDSNBuilders(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 3306, User: "bin", Password: "pw", Name: "smart_bin"}
	assert.Equal(t, "bin:pw@tcp(db:3306)/smart_bin?parseTime=true&charset=utf8mb4&loc=UTC", d.MySQLDSN())

	d.Port = 5432
	assert.Equal(t, "host=db port=5432 user=bin password=pw dbname=smart_bin sslmode=disable", d.PostgresDSN())
}
