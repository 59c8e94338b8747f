package mediavars

import (
	"regexp"
	"strings"

	"bennypowers.dev/mediavars/internal/scan"
	"bennypowers.dev/mediavars/internal/stylesheet"
)

// aliasReferenceRegexp matches a (--name) reference in media params
var aliasReferenceRegexp = regexp.MustCompile(`\(\s*(--[\w-]+)\s*\)`)

// aliasName returns the name defined by @custom-media params
func aliasName(params string) string {
	fields := strings.Fields(params)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// aliasRefs returns the alias names params refers to, in order
func aliasRefs(params string) []string {
	var names []string
	for _, m := range aliasReferenceRegexp.FindAllStringSubmatch(params, -1) {
		names = append(names, m[1])
	}
	return names
}

// aliases holds the externalized @custom-media rules of a document
type aliases struct {
	// decls holds the placeholder declarations of each alias
	decls map[string]*stylesheet.Rule
	// refs holds the aliases each alias query refers to
	refs map[string][]string
}

// alias externalizes the calls in a @custom-media rule and records the
// resulting declarations under the alias name.
func (x *externalizer) alias(rule *stylesheet.AtRule, known *aliases) error {
	name := aliasName(rule.Params)
	spans, ok := x.parse(rule)
	if !ok {
		return nil
	}

	scratch := newCarrier()
	params, err := externalize(spans, rule.Params, scratch, x.seed(rule))
	if err != nil {
		return err
	}
	rule.Params = params

	if name != "" {
		known.decls[name] = scratch
		known.refs[name] = aliasRefs(strings.TrimPrefix(strings.TrimSpace(params), name))
	}
	return nil
}

// outsideCalls blanks out the calls of params so var(--x) is not taken for
// an alias reference
func outsideCalls(params string, spans []scan.Span) string {
	b := []byte(params)
	for _, span := range spans {
		for i := span.Start; i < span.End(); i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// reachable returns every alias params refers to, directly or through the
// queries of other aliases. Each name appears once.
func (a *aliases) reachable(params string) []string {
	var out []string
	seen := map[string]bool{}
	var visit func(names []string)
	visit = func(names []string) {
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
			visit(a.refs[name])
		}
	}
	visit(aliasRefs(params))
	return out
}

// fanOut hands a copy of the declarations of every alias params reaches to
// the carrier of rule
func (a *aliases) fanOut(rule *stylesheet.AtRule, params string) error {
	for _, name := range a.reachable(params) {
		scratch, ok := a.decls[name]
		if !ok {
			continue
		}
		if err := cloneDecls(scratch, carrierFor(rule)); err != nil {
			return err
		}
	}
	return nil
}
