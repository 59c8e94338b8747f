package stylesheet

// Walk visits every descendant of c depth-first in document order.
// Each child list is snapshotted before it is visited, so fn may insert,
// move or remove nodes. Returning false from fn stops the walk; Walk reports
// whether it ran to completion.
func Walk(c Container, fn func(Node) bool) bool {
	snapshot := append([]Node(nil), c.Nodes()...)
	for _, n := range snapshot {
		if !fn(n) {
			return false
		}
		if sub, ok := n.(Container); ok {
			if !Walk(sub, fn) {
				return false
			}
		}
	}
	return true
}

// WalkAtRules visits every at-rule named name (case-insensitive).
// An empty name visits all at-rules.
func WalkAtRules(c Container, name string, fn func(*AtRule)) {
	Walk(c, func(n Node) bool {
		if a, ok := n.(*AtRule); ok && (name == "" || a.Is(name)) {
			fn(a)
		}
		return true
	})
}

// AtRules collects the at-rules named name in document order
func AtRules(c Container, name string) []*AtRule {
	var out []*AtRule
	WalkAtRules(c, name, func(a *AtRule) {
		out = append(out, a)
	})
	return out
}

// WalkRules visits every qualified rule
func WalkRules(c Container, fn func(*Rule)) {
	Walk(c, func(n Node) bool {
		if r, ok := n.(*Rule); ok {
			fn(r)
		}
		return true
	})
}

// WalkDecls visits every declaration
func WalkDecls(c Container, fn func(*Decl)) {
	Walk(c, func(n Node) bool {
		if d, ok := n.(*Decl); ok {
			fn(d)
		}
		return true
	})
}

// Decls returns the direct declaration children of c
func Decls(c Container) []*Decl {
	var out []*Decl
	for _, n := range c.Nodes() {
		if d, ok := n.(*Decl); ok {
			out = append(out, d)
		}
	}
	return out
}
