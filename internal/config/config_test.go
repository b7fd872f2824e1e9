package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 100, cfg.OCR.MinTextLen)
	assert.Equal(t, 10, cfg.Layout.LineTolerance)
	assert.Equal(t, 20, cfg.Layout.FieldGap)
	assert.Equal(t, 50, cfg.Layout.ColumnGap)
	assert.Equal(t, 30*time.Second, cfg.Refinement.Timeout)
	assert.Equal(t, 5.0, cfg.Plausibility.QuantityTolerancePct)
	assert.Equal(t, 0.01, cfg.Plausibility.PriceEpsilon)
	assert.Equal(t, 365, cfg.Plausibility.ValidityDaysPerYear)
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  addr: ":9000"
refinement:
  model: gemini-1.5-pro
  apiKey: from-file
audit:
  dbPath: /tmp/audit.db
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv(configPathEnv, path)
	t.Setenv(llmAPIKeyEnv, "from-env")
	t.Setenv(portEnv, "9100")

	cfg := Load()

	// Env wins over file, file wins over defaults.
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, "from-env", cfg.Refinement.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.Refinement.Model)
	assert.Equal(t, "/tmp/audit.db", cfg.Audit.DBPath)
	// Untouched sections keep their defaults.
	assert.Equal(t, 300, cfg.OCR.DPI)
}

func TestRefinementDisableViaEnv(t *testing.T) {
	t.Setenv(useRefinementEnv, "false")
	cfg := Load()
	assert.False(t, cfg.Refinement.Enabled)
}
