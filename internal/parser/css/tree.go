package css

import (
	"strings"

	"bennypowers.dev/mediavars/internal/log"
	"bennypowers.dev/mediavars/internal/stylesheet"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// builder converts tree-sitter nodes into stylesheet nodes
type builder struct {
	src []byte
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.src[n.StartByte():n.EndByte()])
}

func (b *builder) slice(start, end uint) string {
	return strings.TrimSpace(string(b.src[start:end]))
}

// appendChildren builds the children of n into dst
func (b *builder) appendChildren(dst stylesheet.Container, n *sitter.Node) {
	for i := uint(0); i < n.ChildCount(); i++ {
		for _, node := range b.build(n.Child(i)) {
			dst.Append(node)
		}
	}
}

func (b *builder) build(n *sitter.Node) []stylesheet.Node {
	if n == nil || n.IsMissing() {
		return nil
	}

	var out stylesheet.Node
	switch kind := n.Kind(); {
	case kind == "rule_set", kind == "keyframe_block":
		out = b.rule(n)
	case kind == "declaration":
		out = b.decl(n)
	case kind == "comment", kind == "js_comment":
		out = stylesheet.NewComment(commentText(b.text(n)))
	case kind == "at_rule", strings.HasSuffix(kind, "_statement"):
		out = b.atRule(n, n.ChildCount())
	case kind == "ERROR":
		return b.recover(n)
	case !n.IsNamed():
		// braces and stray semicolons
		return nil
	default:
		out = stylesheet.NewRaw(b.text(n))
	}
	out.SetSource(sourceOf(n))
	return []stylesheet.Node{out}
}

func (b *builder) rule(n *sitter.Node) stylesheet.Node {
	block := lastChild(n, "block")
	if block == nil {
		return stylesheet.NewRaw(b.text(n))
	}
	rule := stylesheet.NewRule(b.slice(n.StartByte(), block.StartByte()))
	b.appendChildren(rule, block)
	return rule
}

func (b *builder) decl(n *sitter.Node) stylesheet.Node {
	var prop, colon *sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "property_name":
			prop = child
		case ":":
			if colon == nil {
				colon = child
			}
		}
	}
	if prop == nil || colon == nil {
		return stylesheet.NewRaw(b.text(n))
	}
	return stylesheet.NewDecl(b.text(prop), b.slice(colon.EndByte(), terminator(n)))
}

// atRule builds an at-rule from the first count children of n. The first
// child is the at-keyword; the statement ends at a block or a semicolon.
func (b *builder) atRule(n *sitter.Node, count uint) stylesheet.Node {
	if count == 0 {
		return stylesheet.NewRaw(b.text(n))
	}
	keyword := n.Child(0)
	name := strings.TrimPrefix(strings.TrimSpace(b.text(keyword)), "@")

	end := n.Child(count - 1)
	switch end.Kind() {
	case "block", "keyframe_block_list":
		at := stylesheet.NewBlockAtRule(name, b.slice(keyword.EndByte(), end.StartByte()))
		b.appendChildren(at, end)
		return at
	case ";":
		return stylesheet.NewAtRule(name, b.slice(keyword.EndByte(), end.StartByte()))
	default:
		return stylesheet.NewAtRule(name, b.slice(keyword.EndByte(), end.EndByte()))
	}
}

// recover salvages an at-rule from the front of an ERROR node. tree-sitter-css
// has no grammar for @custom-media and some media queries, so those
// statements can surface as errors that still hold every token.
func (b *builder) recover(n *sitter.Node) []stylesheet.Node {
	raw := func() []stylesheet.Node {
		node := stylesheet.NewRaw(strings.TrimSpace(b.text(n)))
		node.SetSource(sourceOf(n))
		return []stylesheet.Node{node}
	}
	if n.ChildCount() == 0 || !strings.HasPrefix(b.text(n.Child(0)), "@") {
		log.Debug("Keeping unparsed CSS at %d:%d as raw text", n.StartPosition().Row+1, n.StartPosition().Column+1)
		return raw()
	}
	for i := uint(1); i < n.ChildCount(); i++ {
		switch n.Child(i).Kind() {
		case ";", "block":
			at := b.atRule(n, i+1)
			at.SetSource(sourceOf(n))
			out := []stylesheet.Node{at}
			for j := i + 1; j < n.ChildCount(); j++ {
				out = append(out, b.build(n.Child(j))...)
			}
			return out
		}
	}
	return raw()
}

func lastChild(n *sitter.Node, kind string) *sitter.Node {
	for i := int(n.ChildCount()) - 1; i >= 0; i-- {
		if child := n.Child(uint(i)); child.Kind() == kind {
			return child
		}
	}
	return nil
}

// terminator returns the byte offset where a statement's content ends,
// before its semicolon if it has one
func terminator(n *sitter.Node) uint {
	if n.ChildCount() > 0 {
		if last := n.Child(n.ChildCount() - 1); last.Kind() == ";" {
			return last.StartByte()
		}
	}
	return n.EndByte()
}

func sourceOf(n *sitter.Node) stylesheet.Source {
	pos := n.StartPosition()
	return stylesheet.Source{
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
		Offset: int(n.StartByte()),
	}
}

func commentText(s string) string {
	if strings.HasPrefix(s, "//") {
		return strings.TrimSpace(strings.TrimPrefix(s, "//"))
	}
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}
