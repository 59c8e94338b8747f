package mediavars

import (
	"fmt"
	"strings"

	"bennypowers.dev/mediavars/internal/stylesheet"
)

// resolveMedia substitutes the resolved carrier declarations into the
// params of rule and unwraps it. Rules without a carrier are left alone.
func resolveMedia(rule *stylesheet.AtRule, rep Reporter) {
	carrier, ok := asCarrier(rule.Parent())
	if !ok {
		return
	}
	selfRef := false
	for _, d := range stylesheet.Decls(carrier) {
		selfRef = strings.Contains(d.Value, d.Prop) || selfRef
		rule.Params = substitute(rule.Params, d, rule, rep)
	}
	if !selfRef && strings.Contains(rule.Params, PlaceholderPrefix) {
		rep.Warn(fmt.Sprintf("Unresolved placeholder in @%s %s", rule.Name, rule.Params), rule)
	}
	unwrap(rule, carrier)
}

// substitute replaces every occurrence of the declaration's placeholder
func substitute(params string, d *stylesheet.Decl, owner stylesheet.Node, rep Reporter) string {
	if !strings.HasPrefix(d.Prop, PlaceholderPrefix) {
		return params
	}
	if strings.Contains(d.Value, d.Prop) {
		rep.Warn(fmt.Sprintf("Value of %s refers to itself: %s", d.Prop, d.Value), owner)
		return strings.ReplaceAll(params, d.Prop, d.Value)
	}
	for strings.Contains(params, d.Prop) {
		params = strings.ReplaceAll(params, d.Prop, d.Value)
	}
	return params
}

// restoreAliases puts resolved values back into @custom-media rules that
// stayed in the document. Their own declarations were discarded after the
// first step, so values are looked up among the copies the @media carriers
// received.
func restoreAliases(root *stylesheet.Root, resolved map[string]*stylesheet.Decl, rep Reporter) {
	for _, rule := range stylesheet.AtRules(root, "custom-media") {
		if !strings.Contains(rule.Params, PlaceholderPrefix) {
			continue
		}
		for prop, d := range resolved {
			if strings.Contains(rule.Params, prop) {
				rule.Params = substitute(rule.Params, d, rule, rep)
			}
		}
		if strings.Contains(rule.Params, PlaceholderPrefix) {
			rep.Warn(fmt.Sprintf("Unresolved value in @custom-media %s: no @media rule references it", aliasName(rule.Params)), rule)
		}
	}
}

// carrierDecls indexes the placeholder declarations of every wrapper carrier
func carrierDecls(root *stylesheet.Root) map[string]*stylesheet.Decl {
	out := map[string]*stylesheet.Decl{}
	stylesheet.WalkRules(root, func(r *stylesheet.Rule) {
		if !IsCarrier(r) {
			return
		}
		for _, d := range stylesheet.Decls(r) {
			if _, seen := out[d.Prop]; !seen && strings.HasPrefix(d.Prop, PlaceholderPrefix) {
				out[d.Prop] = d
			}
		}
	})
	return out
}
