package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
		assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
		assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
		assert.InDelta(t, 0.70, cfg.FuzzyThreshold, 1e-9)
		assert.Equal(t, 20, cfg.SearchLimit)
		assert.Equal(t, 5, cfg.DescriptionTopN)
		assert.Equal(t, 1, cfg.CatalogMapping().HeaderRow)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ALLOW_ORIGINS", "http://a.cl, http://b.cl")
		t.Setenv("SESSION_TTL", "15m")
		t.Setenv("FUZZY_THRESHOLD", "0.8")
		t.Setenv("CATALOG_HEADER_ROW", "3")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, []string{"http://a.cl", "http://b.cl"}, cfg.AllowOrigins)
		assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
		assert.InDelta(t, 0.8, cfg.MatchOptions().FuzzyThreshold, 1e-9)
		assert.Equal(t, 3, cfg.CatalogMapping().HeaderRow)
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "quote.yaml")
		require.NoError(t, os.WriteFile(path, []byte("catalog_file: /data/lista.xlsx\nsearch_limit: 50\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/data/lista.xlsx", cfg.CatalogFile)
		assert.Equal(t, 50, cfg.SearchLimit)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("FUZZY_THRESHOLD", "1.5")
		t.Setenv("PORT", "0")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FUZZY_THRESHOLD")
		assert.Contains(t, err.Error(), "PORT")
	})
}
