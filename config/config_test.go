package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arcana.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: text
nlu:
  provider: anthropic
  model: claude-3-5-sonnet-20241022
  api_key: sk-test
knowledge:
  backend: redis
  redis:
    address: redis.internal:6380
    db: 2
    prefix: "assistant:"
workflows:
  dir: ./workflows
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "anthropic", cfg.NLU.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.NLU.Model)
	assert.Equal(t, "redis", cfg.Knowledge.Backend)
	assert.Equal(t, "redis.internal:6380", cfg.Knowledge.Redis.Address)
	assert.Equal(t, 2, cfg.Knowledge.Redis.DB)
	assert.Equal(t, "assistant:", cfg.Knowledge.Redis.Prefix)
	assert.Equal(t, "./workflows", cfg.Workflows.Dir)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "keyword", cfg.NLU.Provider)
	assert.Equal(t, "memory", cfg.Knowledge.Backend)
}

func TestLoadDefaultsRedisAddress(t *testing.T) {
	path := writeConfig(t, `
knowledge:
  backend: redis
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Knowledge.Redis.Address)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
nlu:
  provider: spacy
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown nlu provider")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
knowledge:
  backend: postgres
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown knowledge backend")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "logging: [")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "keyword", cfg.NLU.Provider)
	assert.Equal(t, "memory", cfg.Knowledge.Backend)
}
