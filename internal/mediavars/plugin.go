// Package mediavars lets a stylesheet pipeline resolve var() and calc()
// inside @media and @custom-media params.
//
// Pipelines only resolve those functions in declaration values, so the
// plugin runs twice around the resolving plugins. The first run moves every
// call out of the at-rule params into declarations of a carrier rule that
// wraps the at-rule. The second run reads the now resolved declarations,
// writes them back into the params and removes the carriers. Which run is
// which is recorded in the document itself, in a state carrier at the top
// of the root.
package mediavars

import (
	"fmt"
	"strconv"
	"strings"

	"bennypowers.dev/mediavars/internal/log"
	"bennypowers.dev/mediavars/internal/pipeline"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// Name is the plugin name used in warnings
const Name = "media-variables"

// Reporter receives per-rule diagnostics
type Reporter interface {
	Warn(message string, node stylesheet.Node)
}

// Options configures the plugin
type Options struct {
	// StrictScan ignores calls whose name is only the tail of a longer
	// identifier, e.g. the var( in somevar(
	StrictScan bool
}

// Plugin is the two-step media variables transform. Insert the same value
// before and after the resolving plugins.
type Plugin struct {
	opts  Options
	steps []func(*stylesheet.Root, Reporter) error
}

// New creates the plugin
func New(opts Options) *Plugin {
	p := &Plugin{opts: opts}
	p.steps = []func(*stylesheet.Root, Reporter) error{p.externalize, p.resolve}
	return p
}

// Name identifies the plugin in warnings
func (p *Plugin) Name() string {
	return Name
}

// Process runs the step recorded in the document's state carrier, creating
// the carrier on the first run and removing it after the last.
func (p *Plugin) Process(root *stylesheet.Root, res *pipeline.Result) error {
	return p.Run(root, res)
}

// Run is Process with any Reporter
func (p *Plugin) Run(root *stylesheet.Root, rep Reporter) error {
	state, stepDecl := findState(root)
	step := 0
	if stepDecl == nil {
		state, stepDecl = newState()
		root.Prepend(state)
	} else {
		n, err := strconv.Atoi(strings.TrimSpace(stepDecl.Value))
		if err != nil || n < 0 || n >= len(p.steps) {
			rep.Warn(fmt.Sprintf("Invalid %s value %q, discarding media-variables state", RunProperty, stepDecl.Value), state)
			stylesheet.Remove(state)
			return nil
		}
		step = n
	}

	log.Debug("media-variables: running step %d of %d", step+1, len(p.steps))
	if err := p.steps[step](root, rep); err != nil {
		return err
	}

	if step+1 < len(p.steps) {
		stepDecl.Value = strconv.Itoa(step + 1)
	} else {
		stylesheet.Remove(state)
	}
	return nil
}

// externalize is the first step
func (p *Plugin) externalize(root *stylesheet.Root, rep Reporter) error {
	x := newExternalizer(rep, p.opts.StrictScan)
	known := &aliases{decls: map[string]*stylesheet.Rule{}, refs: map[string][]string{}}
	for _, rule := range stylesheet.AtRules(root, "custom-media") {
		if err := x.alias(rule, known); err != nil {
			return err
		}
	}
	for _, rule := range stylesheet.AtRules(root, "media") {
		if err := x.media(rule, known); err != nil {
			return err
		}
	}
	return nil
}

// resolve is the second step
func (p *Plugin) resolve(root *stylesheet.Root, rep Reporter) error {
	resolved := carrierDecls(root)
	for _, rule := range stylesheet.AtRules(root, "media") {
		resolveMedia(rule, rep)
	}
	restoreAliases(root, resolved, rep)
	return nil
}
