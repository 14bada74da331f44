package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "promptforge", cfg.Name)
	assert.InDelta(t, 0.30, cfg.Library.LowUsageFraction, 1e-9)
	assert.InDelta(t, 0.7, cfg.Composer.Diversity.MaxSimilarity, 1e-9)
	assert.Equal(t, 2, cfg.Composer.Diversity.MaxComponentReuse)
	assert.True(t, cfg.Composer.Diversity.EnforceOutfitVariation)
	assert.True(t, cfg.Composer.Diversity.EnforceFramingVariation)
	assert.Equal(t, 3, cfg.Composer.MaxDiversityRetries)
	assert.Equal(t, 2, cfg.Composer.MaxBrandElements)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.DebugMode)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Composer, cfg.Composer)
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
corpus:
  path: /data/corpus.db
composer:
  max_diversity_retries: 5
  diversity:
    max_similarity: 0.5
    max_component_reuse: 1
logging:
  level: debug
  debug_mode: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/corpus.db", cfg.Corpus.Path)
	assert.Equal(t, 5, cfg.Composer.MaxDiversityRetries)
	assert.InDelta(t, 0.5, cfg.Composer.Diversity.MaxSimilarity, 1e-9)
	assert.Equal(t, 1, cfg.Composer.Diversity.MaxComponentReuse)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.DebugMode)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Corpus.Path = "/srv/corpus"
	cfg.Composer.Diversity.MaxSimilarity = 0.6
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/corpus", loaded.Corpus.Path)
	assert.InDelta(t, 0.6, loaded.Composer.Diversity.MaxSimilarity, 1e-9)
}
