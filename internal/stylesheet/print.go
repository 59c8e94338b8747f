package stylesheet

import (
	"io"
	"strings"
)

const indentUnit = "  "

// Print writes the document as normalized CSS: one node per line, two-space
// indentation and a trailing newline.
func Print(w io.Writer, root *Root) error {
	_, err := io.WriteString(w, root.String())
	return err
}

func (r *Root) String() string {
	var b strings.Builder
	for _, n := range r.nodes {
		format(&b, n, 0)
	}
	return b.String()
}

func (r *Rule) String() string    { return formatNode(r) }
func (a *AtRule) String() string  { return formatNode(a) }
func (d *Decl) String() string    { return formatNode(d) }
func (c *Comment) String() string { return formatNode(c) }
func (r *Raw) String() string     { return formatNode(r) }

func formatNode(n Node) string {
	var b strings.Builder
	format(&b, n, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func format(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch n := n.(type) {
	case *Rule:
		b.WriteString(indent + n.Selector + " {\n")
		formatChildren(b, n.nodes, depth+1)
		b.WriteString(indent + "}\n")
	case *AtRule:
		b.WriteString(indent + "@" + n.Name)
		if n.Params != "" {
			b.WriteString(" " + n.Params)
		}
		if !n.HasBlock {
			b.WriteString(";\n")
			return
		}
		b.WriteString(" {\n")
		formatChildren(b, n.nodes, depth+1)
		b.WriteString(indent + "}\n")
	case *Decl:
		b.WriteString(indent + n.Prop + ": " + n.Value + ";\n")
	case *Comment:
		b.WriteString(indent + "/* " + n.Text + " */\n")
	case *Raw:
		b.WriteString(indent + n.Text + "\n")
	case *Root:
		formatChildren(b, n.nodes, depth)
	}
}

func formatChildren(b *strings.Builder, nodes []Node, depth int) {
	for _, n := range nodes {
		format(b, n, depth)
	}
}
