package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigParsesMaps(t *testing.T) {
	path := writeTempConfig(t, `
openai:
  model: "gpt-4o-mini"
  task_models:
    question_generation: "gpt-4o"
    cv_analysis: "gpt-4o-mini"
model_qpm_limits:
  gpt-4o: 3000
  gpt-4o-mini: 5000
matcher:
  strategy: "embedding"
  default_limit: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.OpenAI.TaskModels["question_generation"])
	assert.Equal(t, 3000, cfg.ModelQPMLimits["gpt-4o"])
	assert.Equal(t, "embedding", cfg.Matcher.Strategy)
	assert.Equal(t, 5, cfg.Matcher.DefaultLimit)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
postgres:
  host: "localhost"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "heuristic", cfg.Matcher.Strategy)
	assert.Equal(t, 10, cfg.Matcher.DefaultLimit)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.Embedding.Model)
}

func TestLoadConfigEnvOverridesAPIKey(t *testing.T) {
	path := writeTempConfig(t, `
openai:
  api_key: "from-file"
`)
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OpenAI.APIKey)
}

func TestGetModelForTask(t *testing.T) {
	cfg := createDefaultConfig()
	cfg.OpenAI.Model = "gpt-4o-mini"
	cfg.OpenAI.TaskModels = map[string]string{"cv_analysis": "gpt-4o"}

	assert.Equal(t, "gpt-4o", cfg.GetModelForTask("cv_analysis"))
	assert.Equal(t, "gpt-4o-mini", cfg.GetModelForTask("unknown_task"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 24*time.Hour, GetDuration("24h", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("not-a-duration", time.Minute))
}
