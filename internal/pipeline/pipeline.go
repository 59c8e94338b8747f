// Package pipeline runs a chain of plugins over a stylesheet and collects
// their warnings.
package pipeline

import (
	"fmt"
	"strings"

	"bennypowers.dev/mediavars/internal/log"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// Plugin transforms a document in place
type Plugin interface {
	Name() string
	// Process mutates root. Recoverable problems are reported through
	// res.Warn; a returned error aborts the pipeline for this document.
	Process(root *stylesheet.Root, res *Result) error
}

// Warning is a diagnostic attached to a node
type Warning struct {
	Plugin  string
	Message string
	Node    stylesheet.Node
}

func (w Warning) String() string {
	var b strings.Builder
	if w.Plugin != "" {
		b.WriteString(w.Plugin + ": ")
	}
	if w.Node != nil && !w.Node.Source().IsZero() {
		b.WriteString(w.Node.Source().String() + ": ")
	}
	b.WriteString(w.Message)
	return b.String()
}

// Result collects the warnings of one pipeline run
type Result struct {
	plugin   string
	warnings []Warning
}

// NewResult creates an empty result
func NewResult() *Result {
	return &Result{}
}

// Warn records a warning against node, attributed to the running plugin
func (r *Result) Warn(message string, node stylesheet.Node) {
	w := Warning{Plugin: r.plugin, Message: message, Node: node}
	log.Debug("%s", w)
	r.warnings = append(r.warnings, w)
}

// Warnings returns every warning recorded so far
func (r *Result) Warnings() []Warning {
	return r.warnings
}

// Pipeline is an ordered list of plugins. The same plugin value may
// appear more than once.
type Pipeline struct {
	plugins []Plugin
}

// New creates a pipeline running plugins in order
func New(plugins ...Plugin) *Pipeline {
	return &Pipeline{plugins: plugins}
}

// Plugins returns the plugins in execution order
func (p *Pipeline) Plugins() []Plugin {
	return p.plugins
}

// Run processes root with every plugin. It stops at the first plugin error.
func (p *Pipeline) Run(root *stylesheet.Root) (*Result, error) {
	res := NewResult()
	for i, plugin := range p.plugins {
		res.plugin = plugin.Name()
		log.Debug("Running plugin %d/%d: %s", i+1, len(p.plugins), plugin.Name())
		if err := plugin.Process(root, res); err != nil {
			return res, fmt.Errorf("%s: %w", plugin.Name(), err)
		}
	}
	res.plugin = ""
	return res, nil
}
