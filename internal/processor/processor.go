// Package processor runs the media variables pipeline over CSS, HTML and
// JS/TS sources.
package processor

import (
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/mediavars/internal/log"
	"bennypowers.dev/mediavars/internal/mediavars"
	"bennypowers.dev/mediavars/internal/parser/css"
	"bennypowers.dev/mediavars/internal/parser/html"
	"bennypowers.dev/mediavars/internal/parser/js"
	"bennypowers.dev/mediavars/internal/pipeline"
	"bennypowers.dev/mediavars/internal/resolver"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// Kind is a source file type
type Kind int

const (
	// UnknownKind is the zero value
	UnknownKind Kind = iota
	// CSSKind is a stylesheet
	CSSKind
	// HTMLKind is a document with <style> elements
	HTMLKind
	// JSKind is a JS/TS module with css`` or html`` templates
	JSKind
)

// KindOf picks the source type from a file extension
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css", ".pcss", ".postcss":
		return CSSKind
	case ".html", ".htm":
		return HTMLKind
	case ".js", ".mjs", ".cjs", ".jsx", ".ts", ".mts", ".tsx":
		return JSKind
	default:
		return UnknownKind
	}
}

// Options configures the default pipeline
type Options struct {
	// Preserve keeps :root custom properties and @custom-media rules
	Preserve bool
	// StrictScan requires a word boundary before calc( and var(
	StrictScan bool
	// Variables are predefined custom properties
	Variables map[string]string
	// Precision is the number of decimals calc() results keep
	Precision int
}

// Default builds the canonical chain: media variables, custom media,
// custom properties, calc, media variables. Both ends are the same plugin
// value; the document records which step comes next.
func Default(opts Options) *pipeline.Pipeline {
	mv := mediavars.New(mediavars.Options{StrictScan: opts.StrictScan})
	return pipeline.New(
		mv,
		resolver.NewCustomMedia(resolver.CustomMediaOptions{Preserve: opts.Preserve}),
		resolver.NewVariables(resolver.VariablesOptions{Preserve: opts.Preserve, Variables: opts.Variables}),
		resolver.NewCalc(resolver.CalcOptions{Precision: opts.Precision}),
		mv,
	)
}

// Result is the output of processing one source
type Result struct {
	Output   string
	Warnings []pipeline.Warning
}

// Processor applies a pipeline to sources of any supported kind
type Processor struct {
	pipeline *pipeline.Pipeline
}

// New creates a processor running the default pipeline
func New(opts Options) *Processor {
	return &Processor{pipeline: Default(opts)}
}

// NewWithPipeline creates a processor running a custom pipeline
func NewWithPipeline(p *pipeline.Pipeline) *Processor {
	return &Processor{pipeline: p}
}

// Process dispatches on kind
func (p *Processor) Process(kind Kind, source string) (*Result, error) {
	switch kind {
	case CSSKind:
		return p.ProcessCSS(source)
	case HTMLKind:
		return p.ProcessHTML(source)
	case JSKind:
		return p.ProcessJS(source)
	default:
		return nil, fmt.Errorf("unsupported source kind %d", kind)
	}
}

// ProcessCSS parses, transforms and prints a stylesheet
func (p *Processor) ProcessCSS(source string) (*Result, error) {
	root, err := css.Parse(source)
	if err != nil {
		return nil, err
	}
	return p.run(root)
}

func (p *Processor) run(root *stylesheet.Root) (*Result, error) {
	res, err := p.pipeline.Run(root)
	if err != nil {
		return nil, err
	}
	return &Result{Output: root.String(), Warnings: res.Warnings()}, nil
}

// ProcessHTML transforms the <style> elements of an HTML document
func (p *Processor) ProcessHTML(source string) (*Result, error) {
	var regions []region
	for _, r := range html.StyleRegions(source) {
		regions = append(regions, region{
			content: r.Content,
			start:   int(r.StartByte),
			end:     int(r.EndByte),
			line:    int(r.StartLine),
			col:     int(r.StartCol),
		})
	}
	return p.processRegions(source, regions)
}

// ProcessJS transforms css`` templates and the <style> elements of html``
// templates in a JS/TS module
func (p *Processor) ProcessJS(source string) (*Result, error) {
	var regions []region
	for _, r := range js.TemplateRegions(source) {
		regions = append(regions, region{
			content: r.Content,
			start:   int(r.StartByte),
			end:     int(r.EndByte),
			line:    int(r.StartLine),
			col:     int(r.StartCol),
		})
	}
	return p.processRegions(source, regions)
}

// region is embedded CSS with its byte range and 0-based start position
type region struct {
	content    string
	start, end int
	line, col  int
}

// needsWork reports whether a region holds anything the pipeline changes
// in media params. Other regions are left byte for byte.
func (r region) needsWork() bool {
	lower := strings.ToLower(r.content)
	return strings.Contains(lower, "@media") || strings.Contains(lower, "@custom-media")
}

// processRegions rewrites regions back to front so earlier offsets stay valid
func (p *Processor) processRegions(source string, regions []region) (*Result, error) {
	result := &Result{}
	out := source
	for i := len(regions) - 1; i >= 0; i-- {
		r := regions[i]
		if !r.needsWork() {
			continue
		}

		root, err := css.Parse(r.content)
		if err != nil {
			return nil, fmt.Errorf("embedded CSS at %d:%d: %w", r.line+1, r.col+1, err)
		}
		offsetSources(root, r)

		res, err := p.run(root)
		if err != nil {
			return nil, fmt.Errorf("embedded CSS at %d:%d: %w", r.line+1, r.col+1, err)
		}
		result.Warnings = append(res.Warnings, result.Warnings...)
		out = out[:r.start] + reindent(r.content, res.Output) + out[r.end:]
	}
	log.Debug("Processed %d embedded stylesheets", len(regions))
	result.Output = out
	return result, nil
}

// reindent keeps the whitespace that surrounded the original content
func reindent(original, printed string) string {
	lead := original[:len(original)-len(strings.TrimLeft(original, " \t\r\n"))]
	trail := original[len(strings.TrimRight(original, " \t\r\n")):]
	return lead + strings.TrimSpace(printed) + trail
}

// offsetSources makes node positions relative to the enclosing document
func offsetSources(root *stylesheet.Root, r region) {
	stylesheet.Walk(root, func(n stylesheet.Node) bool {
		src := n.Source()
		if src.IsZero() {
			return true
		}
		if src.Line == 1 {
			src.Column += r.col
		}
		src.Line += r.line
		src.Offset += r.start
		n.SetSource(src)
		return true
	})
}
