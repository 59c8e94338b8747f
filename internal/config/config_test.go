package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/mediavars/internal/config"
	"bennypowers.dev/mediavars/internal/designtokens"
	"bennypowers.dev/mediavars/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		data, err := os.ReadFile("testdata/media-variables.yaml")
		require.NoError(t, err)

		cfg, err := config.Parse(data, ".yaml")
		require.NoError(t, err)

		assert.Equal(t, []string{"src/**/*.css"}, cfg.Include)
		assert.Equal(t, "dist", cfg.OutDir)
		assert.True(t, cfg.Preserve)
		assert.True(t, cfg.StrictScan)
		assert.False(t, cfg.FailOnWarnings)
		assert.Equal(t, log.LevelDebug, cfg.Level())
		assert.Equal(t, map[string]string{"--gutter": "8px"}, cfg.Variables)
		assert.Equal(t, []config.TokenFile{
			{Path: "tokens.json"},
			{Path: "brand.yaml", Prefix: "brand"},
		}, cfg.TokensFiles)
	})

	t.Run("json with comments", func(t *testing.T) {
		data, err := os.ReadFile("testdata/media-variables.json")
		require.NoError(t, err)

		cfg, err := config.Parse(data, ".json")
		require.NoError(t, err)

		assert.True(t, cfg.FailOnWarnings)
		assert.Equal(t, "info", cfg.LogLevel, "log level defaults to info")
		assert.Equal(t, map[string]string{"--wide": "1000px"}, cfg.Variables)
		assert.Equal(t, []config.TokenFile{
			{Path: "tokens.json"},
			{Path: "brand.yaml", Prefix: "brand", GroupMarkers: []string{"_"}},
		}, cfg.TokensFiles)
	})
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{name: "unknown log level", data: "logLevel: loud\n", ext: ".yaml"},
		{name: "bad include pattern", data: "include: ['src/[*.css']\n", ext: ".yaml"},
		{name: "token file without path", data: "tokensFiles:\n  - prefix: ds\n", ext: ".yaml"},
		{name: "unsupported format", data: "", ext: ".toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.data), tt.ext)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := config.Parse([]byte("include: [unclosed"), ".yaml")
		assert.Error(t, err)
	})
}

func TestDiscover(t *testing.T) {
	t.Run("defaults without a config file", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := config.Discover(dir)
		require.NoError(t, err)

		assert.Equal(t, dir, cfg.Dir)
		assert.Empty(t, cfg.Path)
		assert.Equal(t, log.LevelInfo, cfg.Level())
		assert.Empty(t, cfg.TokensFiles)
	})

	t.Run("finds .config/media-variables.yaml", func(t *testing.T) {
		dir := t.TempDir()
		configDir := filepath.Join(dir, ".config")
		require.NoError(t, os.MkdirAll(configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "media-variables.yaml"), []byte("outDir: dist\ntokensFiles: [tokens.json]\n"), 0o644))

		cfg, err := config.Discover(dir)
		require.NoError(t, err)

		assert.Equal(t, "dist", cfg.OutDir)
		assert.Equal(t, dir, cfg.Dir, "paths resolve against the project root, not .config")
		assert.Equal(t, []designtokens.File{{Path: filepath.Join(dir, "tokens.json")}}, cfg.TokenFiles())
	})

	t.Run("falls back to the design tokens config for token files", func(t *testing.T) {
		dir := t.TempDir()
		configDir := filepath.Join(dir, ".config")
		require.NoError(t, os.MkdirAll(configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tokens.json"), []byte(`{"color":{"$value":"#fff"}}`), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "design-tokens.yaml"), []byte("prefix: rh\nfiles:\n  - tokens.json\n"), 0o644))

		cfg, err := config.Discover(dir)
		require.NoError(t, err)

		require.Len(t, cfg.TokensFiles, 1)
		assert.Equal(t, "rh", cfg.TokensFiles[0].Prefix)
	})
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"src/a.css", "src/nested/b.css", "src/c.js"} {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
	}

	files, err := config.ExpandGlobs(dir, []string{"src/**/*.css", "src/a.css", "missing.css"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "missing.css"),
		filepath.Join(dir, "src", "a.css"),
		filepath.Join(dir, "src", "nested", "b.css"),
	}, files)
}
