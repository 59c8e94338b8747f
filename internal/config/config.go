// Package config loads media-variables project configuration from
// .config/media-variables.{yaml,yml,json}.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	asimonimConfig "bennypowers.dev/asimonim/config"
	asimonimFS "bennypowers.dev/asimonim/fs"
	"bennypowers.dev/mediavars/internal/collections"
	"bennypowers.dev/mediavars/internal/designtokens"
	"bennypowers.dev/mediavars/internal/log"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a configuration file that parsed but holds
// unusable values
var ErrInvalidConfig = errors.New("invalid config")

// searchPaths are tried in order, relative to the project root
var searchPaths = []string{
	".config/media-variables.yaml",
	".config/media-variables.yml",
	".config/media-variables.json",
}

// Config is the project configuration
type Config struct {
	// Include lists doublestar globs used when no files are given on the command line
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	// OutDir receives transformed files; empty means stdout
	OutDir string `json:"outDir,omitempty" yaml:"outDir,omitempty"`
	// Preserve keeps :root custom properties and @custom-media rules
	Preserve bool `json:"preserve,omitempty" yaml:"preserve,omitempty"`
	// StrictScan requires a word boundary before calc( and var(
	StrictScan bool `json:"strictScan,omitempty" yaml:"strictScan,omitempty"`
	// FailOnWarnings makes any warning fail the run
	FailOnWarnings bool `json:"failOnWarnings,omitempty" yaml:"failOnWarnings,omitempty"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	// Variables are predefined custom properties
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	// TokensFiles are DTCG token files loaded as predefined custom properties
	TokensFiles []TokenFile `json:"tokensFiles,omitempty" yaml:"tokensFiles,omitempty"`

	// Dir is the project root relative paths resolve against
	Dir string `json:"-" yaml:"-"`
	// Path is the file the config was read from, empty for defaults
	Path string `json:"-" yaml:"-"`
}

// TokenFile is a token file entry: either a bare path or an object with
// per-file overrides
type TokenFile designtokens.File

// UnmarshalYAML accepts a scalar path or a mapping
func (f *TokenFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}
	var entry designtokens.File
	if err := node.Decode(&entry); err != nil {
		return err
	}
	*f = TokenFile(entry)
	return nil
}

// UnmarshalJSON accepts a string path or an object
func (f *TokenFile) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		f.Path = path
		return nil
	}
	var entry designtokens.File
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	*f = TokenFile(entry)
	return nil
}

// Default returns the configuration used when no file is found
func Default(dir string) *Config {
	return &Config{Dir: dir, LogLevel: "info"}
}

// Discover looks for a config file under dir. Without one it returns
// defaults. Token files fall back to the design tokens config
// (.config/design-tokens.{yaml,json}) shared with other tools.
func Discover(dir string) (*Config, error) {
	for _, rel := range searchPaths {
		path := filepath.Join(dir, rel)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return Load(path)
	}

	cfg := Default(dir)
	if err := cfg.loadDesignTokensConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads an explicit config file. Paths inside it resolve against the
// directory holding .config, or the file's own directory otherwise.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-selected config file
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	cfg.Dir = filepath.Dir(path)
	if filepath.Base(cfg.Dir) == ".config" {
		cfg.Dir = filepath.Dir(cfg.Dir)
	}

	if len(cfg.TokensFiles) == 0 {
		if err := cfg.loadDesignTokensConfig(); err != nil {
			return nil, err
		}
	}
	log.Debug("Loaded config from %s", path)
	return cfg, nil
}

// Parse decodes and validates config content. ext selects the format.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first unusable value
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, pattern := range c.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: bad include pattern %q", ErrInvalidConfig, pattern)
		}
	}
	for i, f := range c.TokensFiles {
		if f.Path == "" {
			return fmt.Errorf("%w: tokensFiles[%d] has no path", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.LevelInfo
	}
	return level
}

// TokenFiles returns the token files with paths resolved against Dir
func (c *Config) TokenFiles() []designtokens.File {
	files := make([]designtokens.File, 0, len(c.TokensFiles))
	for _, f := range c.TokensFiles {
		file := designtokens.File(f)
		file.Path = c.resolve(file.Path)
		files = append(files, file)
	}
	return files
}

// Files expands Include against Dir
func (c *Config) Files() ([]string, error) {
	return ExpandGlobs(c.Dir, c.Include)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// loadDesignTokensConfig fills TokensFiles from the design tokens config
// when one exists
func (c *Config) loadDesignTokensConfig() error {
	if c.Dir == "" {
		return nil
	}
	filesystem := asimonimFS.NewOSFileSystem()
	cfg, err := asimonimConfig.Load(filesystem, c.Dir)
	if err != nil {
		return fmt.Errorf("failed to read design tokens config: %w", err)
	}
	if cfg == nil {
		return nil
	}

	expanded, err := cfg.ExpandFiles(filesystem, c.Dir)
	if err != nil {
		log.Warn("Failed to expand file globs: %v", err)
		for _, entry := range cfg.Files {
			prefix := entry.Prefix
			if prefix == "" {
				prefix = cfg.Prefix
			}
			c.TokensFiles = append(c.TokensFiles, TokenFile{Path: entry.Path, Prefix: prefix, GroupMarkers: entry.GroupMarkers})
		}
		return nil
	}
	for _, path := range expanded {
		c.TokensFiles = append(c.TokensFiles, TokenFile{Path: path, Prefix: cfg.Prefix, GroupMarkers: cfg.GroupMarkers})
	}
	log.Debug("Using %d token files from the design tokens config", len(c.TokensFiles))
	return nil
}

// ExpandGlobs expands doublestar patterns relative to dir. Patterns without
// glob metacharacters are kept even when the file does not exist, so the
// caller reports a read error for it. The result is sorted and deduplicated.
func ExpandGlobs(dir string, patterns []string) ([]string, error) {
	seen := collections.NewSet[string]()
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		base, rel := doublestar.SplitPattern(pattern)
		if !filepath.IsAbs(base) {
			base = filepath.Join(dir, base)
		}
		if rel == "" || !hasMeta(rel) {
			seen.Add(filepath.Join(base, rel))
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(base), rel, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			seen.Add(filepath.Join(base, filepath.FromSlash(m)))
		}
	}
	return collections.Sorted(seen), nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{\\")
}
