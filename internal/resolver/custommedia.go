package resolver

import (
	"fmt"
	"strings"

	"bennypowers.dev/mediavars/internal/collections"
	"bennypowers.dev/mediavars/internal/pipeline"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// CustomMediaName is the plugin name used in warnings
const CustomMediaName = "custom-media"

// CustomMediaOptions configures custom media expansion
type CustomMediaOptions struct {
	// Preserve keeps the @custom-media rules after expansion
	Preserve bool
}

// CustomMedia replaces (--name) references in @media params with the
// query of the matching @custom-media rule
type CustomMedia struct {
	opts CustomMediaOptions
}

// NewCustomMedia creates the custom media plugin
func NewCustomMedia(opts CustomMediaOptions) *CustomMedia {
	return &CustomMedia{opts: opts}
}

func (c *CustomMedia) Name() string { return CustomMediaName }

// Process expands every custom media reference in the document
func (c *CustomMedia) Process(root *stylesheet.Root, res *pipeline.Result) error {
	defs := map[string]string{}
	rules := map[string]*stylesheet.AtRule{}
	for _, rule := range stylesheet.AtRules(root, "custom-media") {
		name, query, ok := splitCustomMedia(rule.Params)
		if !ok {
			res.Warn(fmt.Sprintf("Invalid @custom-media %q: expected a --name followed by a query", rule.Params), rule)
			continue
		}
		defs[name] = query
		rules[name] = rule
	}

	graph := BuildDependencyGraph(defs, customMediaReferences)
	cyclic := breakCycles(graph, defs, "custom media", func(err error, chain []string) {
		res.Warn(err.Error(), rules[chain[0]])
	})

	order, err := graph.TopologicalSort()
	if err != nil {
		return err
	}

	e := &mediaExpander{resolved: map[string]string{}, cyclic: cyclic, res: res}
	for _, name := range order {
		e.resolved[name] = e.expand(defs[name], rules[name])
	}

	stylesheet.WalkAtRules(root, "media", func(rule *stylesheet.AtRule) {
		rule.Params = e.expand(rule.Params, rule)
	})

	if !c.opts.Preserve {
		for _, rule := range stylesheet.AtRules(root, "custom-media") {
			stylesheet.Remove(rule)
		}
	}
	return nil
}

// splitCustomMedia splits "--name query" into its parts
func splitCustomMedia(params string) (name, query string, ok bool) {
	params = strings.TrimSpace(params)
	i := strings.IndexFunc(params, isSpace)
	if i < 0 || !strings.HasPrefix(params, "--") {
		return "", "", false
	}
	return params[:i], strings.TrimSpace(params[i:]), true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

type mediaExpander struct {
	resolved map[string]string
	cyclic   collections.Set[string]
	res      *pipeline.Result
}

// expand replaces each (--name) with its resolved query
func (e *mediaExpander) expand(query string, node stylesheet.Node) string {
	return customMediaReferenceRegexp.ReplaceAllStringFunc(query, func(match string) string {
		name := customMediaReferenceRegexp.FindStringSubmatch(match)[1]
		if resolved, ok := e.resolved[name]; ok {
			return resolved
		}
		if !e.cyclic.Has(name) {
			e.res.Warn(fmt.Sprintf("Missing @custom-media definition for %s", name), node)
		}
		return match
	})
}
