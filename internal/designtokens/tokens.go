// Package designtokens loads DTCG design token files as predefined custom
// properties.
package designtokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	asimonimParser "bennypowers.dev/asimonim/parser"
	asimonimSchema "bennypowers.dev/asimonim/schema"
	"bennypowers.dev/mediavars/internal/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat indicates a token file extension that is not JSON or YAML
var ErrUnsupportedFormat = errors.New("unsupported token file format")

var (
	// curlyBraceReferenceRegexp matches curly brace token references: {token.reference.path}
	curlyBraceReferenceRegexp = regexp.MustCompile(`\{([^}]+)\}`)

	// schemaFieldRegexp matches a top-level $schema field in JSON or YAML
	schemaFieldRegexp = regexp.MustCompile(`(?m)^\s*"?\$schema"?\s*:\s*["']([^"']+)["']`)
)

// File describes one token file
type File struct {
	// Path to the token file (.json, .jsonc, .yaml or .yml)
	Path string `json:"path" yaml:"path"`
	// Prefix is prepended to every custom property name
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// GroupMarkers are token names that are both a token and a group (draft schema)
	GroupMarkers []string `json:"groupMarkers,omitempty" yaml:"groupMarkers,omitempty"`
}

// Load reads a token file and returns its tokens as custom property
// values keyed by custom property name. Token references become var()
// calls so they resolve alongside ordinary custom properties.
func Load(file File) (map[string]string, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", file.Path, err)
	}
	vars, err := Parse(data, filepath.Ext(file.Path), file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, err)
	}
	log.Info("Loaded %d tokens from %s", len(vars), file.Path)
	return vars, nil
}

// LoadAll loads every file in order; later files override earlier ones
func LoadAll(files []File) (map[string]string, error) {
	vars := map[string]string{}
	for _, file := range files {
		loaded, err := Load(file)
		if err != nil {
			return nil, err
		}
		for name, value := range loaded {
			vars[name] = value
		}
	}
	return vars, nil
}

// Parse converts token file content into custom property values. ext
// selects the format and includes the leading dot.
func Parse(data []byte, ext string, file File) (map[string]string, error) {
	var err error
	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	version := detectVersion(data)
	tokens, err := asimonimParser.NewJSONParser().Parse(data, asimonimParser.Options{
		Prefix:        file.Prefix,
		SchemaVersion: version,
		GroupMarkers:  file.GroupMarkers,
		SkipSort:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse tokens: %w", err)
	}

	vars := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		vars[tok.CSSVariableName()] = referencesToVars(tok.Value, file.Prefix)
	}
	return vars, nil
}

// yamlToJSON re-encodes YAML token data as JSON for the asimonim parser
func yamlToJSON(data []byte) ([]byte, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	return out, nil
}

// detectVersion reads the $schema field, falling back to the draft schema
func detectVersion(data []byte) asimonimSchema.Version {
	if match := schemaFieldRegexp.FindSubmatch(data); match != nil {
		if version, err := asimonimSchema.FromURL(string(match[1])); err == nil {
			return version
		}
		log.Debug("Unknown $schema %q, assuming draft", match[1])
	}
	return asimonimSchema.Draft
}

// referencesToVars rewrites {group.token} and #/group/token references
// as var() calls
func referencesToVars(value, prefix string) string {
	if strings.HasPrefix(value, "#/") {
		return "var(" + cssName(strings.Split(strings.TrimPrefix(value, "#/"), "/"), prefix) + ")"
	}
	return curlyBraceReferenceRegexp.ReplaceAllStringFunc(value, func(ref string) string {
		path := strings.Trim(ref, "{}")
		return "var(" + cssName(strings.Split(path, "."), prefix) + ")"
	})
}

func cssName(path []string, prefix string) string {
	name := strings.Join(path, "-")
	if prefix != "" {
		return "--" + prefix + "-" + name
	}
	return "--" + name
}
