package mediavars

import "bennypowers.dev/mediavars/internal/stylesheet"

// Reserved identifiers. Author stylesheets never produce a rule with the
// carrier selector, so any rule carrying it belongs to this package.
const (
	// CarrierSelector marks a carrier rule
	CarrierSelector = "::-postcss-media-variables"
	// RunProperty is the declaration in the state carrier holding the next step
	RunProperty = "-postcss-media-run"
	// PlaceholderPrefix starts every externalized declaration name
	PlaceholderPrefix = "-pcs-mv-"
)

const carrierNote = "If you can see this comment, media-variables ran only once.\n" +
	"It has to run a second time, after custom properties and calc()\n" +
	"have been resolved, to move the values back into the at-rules."

// newCarrier creates an unattached carrier rule holding only its note
func newCarrier() *stylesheet.Rule {
	return stylesheet.NewRule(CarrierSelector, stylesheet.NewComment(carrierNote))
}

// IsCarrier reports whether n is a carrier rule
func IsCarrier(n stylesheet.Node) bool {
	_, ok := asCarrier(n)
	return ok
}

func asCarrier(n stylesheet.Node) (*stylesheet.Rule, bool) {
	if n == nil {
		return nil, false
	}
	r, ok := n.(*stylesheet.Rule)
	if !ok || r.Selector != CarrierSelector {
		return nil, false
	}
	return r, true
}

// wrap puts carrier where rule is and moves rule into it. The carrier takes
// over the rule's source position so diagnostics on it point somewhere useful.
func wrap(rule *stylesheet.AtRule, carrier *stylesheet.Rule) {
	if parent := rule.Parent(); parent != nil {
		parent.InsertBefore(rule, carrier)
	}
	carrier.Append(rule)
	carrier.SetSource(rule.Source())
}

// carrierFor returns the wrapper carrier of rule, wrapping it first if needed
func carrierFor(rule *stylesheet.AtRule) *stylesheet.Rule {
	if c, ok := asCarrier(rule.Parent()); ok {
		return c
	}
	c := newCarrier()
	wrap(rule, c)
	return c
}

// unwrap moves rule back to the carrier's position and drops the carrier.
// This is a move, not a replace, so rule keeps its identity and source.
func unwrap(rule *stylesheet.AtRule, carrier *stylesheet.Rule) {
	parent := carrier.Parent()
	if parent == nil {
		return
	}
	parent.InsertBefore(carrier, rule)
	stylesheet.Remove(carrier)
}

// findState returns the top-level state carrier and its step declaration
func findState(root *stylesheet.Root) (*stylesheet.Rule, *stylesheet.Decl) {
	for _, n := range root.Nodes() {
		c, ok := asCarrier(n)
		if !ok {
			continue
		}
		for _, d := range stylesheet.Decls(c) {
			if d.Prop == RunProperty {
				return c, d
			}
		}
	}
	return nil, nil
}

func newState() (*stylesheet.Rule, *stylesheet.Decl) {
	c := newCarrier()
	d := stylesheet.NewDecl(RunProperty, "0")
	c.Append(d)
	return c, d
}
