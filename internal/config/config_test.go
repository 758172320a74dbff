package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listsmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 120*time.Second, cfg.Batch.Deadline)
	assert.Equal(t, 0.5, cfg.Batch.ConfidenceFloor)
	assert.False(t, cfg.Batch.SkipReview)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "localhost:6379", cfg.Session.Redis.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
llm:
  model: gpt-4o
  temperature: 0.2
batch:
  deadline: 45s
  skip_review: true
session:
  store: redis
  redis:
    addr: redis.internal:6380
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 45*time.Second, cfg.Batch.Deadline)
	assert.True(t, cfg.Batch.SkipReview)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "redis.internal:6380", cfg.Session.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LISTSMITH_LLM_API_KEY", "sk-test-123")
	t.Setenv("LISTSMITH_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.LLM.APIKey)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"negative deadline", "batch:\n  deadline: -5s\n", "batch.deadline"},
		{"floor above one", "batch:\n  confidence_floor: 1.5\n", "confidence_floor"},
		{"unknown store", "session:\n  store: dynamo\n", "session.store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingExplicitFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "listsmith.yaml"))
	assert.Error(t, err)
}
