package resolver

import (
	"errors"
	"fmt"
	"strings"

	"bennypowers.dev/mediavars/internal/collections"
	"bennypowers.dev/mediavars/internal/log"
	"bennypowers.dev/mediavars/internal/pipeline"
	"bennypowers.dev/mediavars/internal/scan"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// VariablesName is the plugin name used in warnings
const VariablesName = "css-variables"

// rootSelector is the only selector whose custom properties are collected
const rootSelector = ":root"

// VariablesOptions configures custom property substitution
type VariablesOptions struct {
	// Preserve keeps the :root declarations after substitution
	Preserve bool
	// Variables are defined before any :root declaration and may be
	// overridden by one. Names without a leading "--" get one.
	Variables map[string]string
}

// Variables replaces var() calls in declaration values with the values of
// custom properties declared on :root
type Variables struct {
	opts VariablesOptions
}

// NewVariables creates the custom property plugin
func NewVariables(opts VariablesOptions) *Variables {
	return &Variables{opts: opts}
}

func (v *Variables) Name() string { return VariablesName }

// Process resolves every custom property and substitutes var() calls
func (v *Variables) Process(root *stylesheet.Root, res *pipeline.Result) error {
	defs := map[string]string{}
	for name, value := range v.opts.Variables {
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		defs[name] = value
	}

	definedBy := map[string]*stylesheet.Decl{}
	roots := rootRules(root)
	for _, rule := range roots {
		for _, d := range stylesheet.Decls(rule) {
			if d.IsCustomProperty() {
				defs[d.Prop] = d.Value
				definedBy[d.Prop] = d
			}
		}
	}

	graph := BuildDependencyGraph(defs, varReferences)
	cyclic := breakCycles(graph, defs, "custom property", func(err error, chain []string) {
		res.Warn(err.Error(), nodeOrNil(definedBy[chain[0]]))
	})

	order, err := graph.TopologicalSort()
	if err != nil {
		return err
	}

	r := &varResolver{resolved: map[string]string{}, cyclic: cyclic, res: res}
	for _, name := range order {
		r.resolved[name] = r.expand(defs[name], nodeOrNil(definedBy[name]))
	}
	log.Debug("Resolved %d custom properties", len(r.resolved))

	stylesheet.WalkDecls(root, func(d *stylesheet.Decl) {
		if definedBy[d.Prop] == d {
			return
		}
		if strings.Contains(d.Value, "var(") {
			d.Value = r.expand(d.Value, d)
		}
	})

	if !v.opts.Preserve {
		removeDefinitions(roots)
	}
	return nil
}

// varResolver expands var() calls against resolved definitions
type varResolver struct {
	resolved map[string]string
	cyclic   collections.Set[string]
	res      *pipeline.Result
}

// expand replaces each var() call in value. Unknown names use their
// fallback; without one the call is kept and a warning is recorded.
func (r *varResolver) expand(value string, node stylesheet.Node) string {
	spans, err := scan.Find(value, "var(")
	if err != nil {
		var unterminated *scan.UnterminatedError
		if errors.As(err, &unterminated) {
			r.res.Warn(fmt.Sprintf("Unterminated var() in %q: %v", value, err), node)
		}
		return value
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		call := parseVarCall(span, value)
		b.WriteString(value[last:span.Start])
		b.WriteString(r.replacement(call, value, node))
		last = span.End()
	}
	b.WriteString(value[last:])
	return b.String()
}

func (r *varResolver) replacement(call varCall, value string, node stylesheet.Node) string {
	if resolved, ok := r.resolved[call.name]; ok {
		return resolved
	}
	if call.hasFallback {
		return r.expand(call.fallback, node)
	}
	if !r.cyclic.Has(call.name) {
		r.res.Warn(fmt.Sprintf("variable %s is undefined and used without a fallback", call.name), node)
	}
	return call.span.Text(value)
}

// rootRules returns the top-level :root rules
func rootRules(root *stylesheet.Root) []*stylesheet.Rule {
	var rules []*stylesheet.Rule
	for _, n := range root.Nodes() {
		if rule, ok := n.(*stylesheet.Rule); ok && strings.TrimSpace(rule.Selector) == rootSelector {
			rules = append(rules, rule)
		}
	}
	return rules
}

// removeDefinitions drops custom properties from :root rules and removes
// rules left with nothing in them
func removeDefinitions(roots []*stylesheet.Rule) {
	for _, rule := range roots {
		for _, d := range stylesheet.Decls(rule) {
			if d.IsCustomProperty() {
				stylesheet.Remove(d)
			}
		}
		if len(rule.Nodes()) == 0 {
			stylesheet.Remove(rule)
		}
	}
}

// nodeOrNil avoids storing a typed nil in the Node interface
func nodeOrNil(d *stylesheet.Decl) stylesheet.Node {
	if d == nil {
		return nil
	}
	return d
}
