// Package stylesheet is a small mutable CSS document tree.
//
// Nodes are owned by exactly one parent container. Inserting a node that
// already has a parent moves it: the node is detached from its old parent
// first, and its identity and source position are kept. Nothing in this
// package clones implicitly; Clone is the only way to copy a node.
package stylesheet

import (
	"fmt"
	"strings"
)

// NodeType identifies the concrete kind of a Node
type NodeType int

const (
	// RootNode is the document itself
	RootNode NodeType = iota
	// RuleNode is a qualified rule (selector + block)
	RuleNode
	// AtRuleNode is an at-rule such as @media
	AtRuleNode
	// DeclNode is a property: value declaration
	DeclNode
	// CommentNode is a /* comment */
	CommentNode
	// RawNode is source text the parser could not structure
	RawNode
)

func (t NodeType) String() string {
	switch t {
	case RootNode:
		return "root"
	case RuleNode:
		return "rule"
	case AtRuleNode:
		return "atrule"
	case DeclNode:
		return "decl"
	case CommentNode:
		return "comment"
	case RawNode:
		return "raw"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// Source is the position of a node's first byte in its input.
// Line and Column are 1-based, Offset is a 0-based byte offset.
// The zero value marks a synthetic node.
type Source struct {
	Line   int
	Column int
	Offset int
}

// IsZero reports whether s carries no position
func (s Source) IsZero() bool {
	return s.Line == 0 && s.Column == 0 && s.Offset == 0
}

func (s Source) String() string {
	if s.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Node is an element of the document tree
type Node interface {
	Type() NodeType
	Parent() Container
	Source() Source
	SetSource(Source)
	// Clone returns a deep copy without a parent. The source position is kept.
	Clone() Node
	String() string

	setParent(Container)
}

// Container is a node that owns an ordered list of children
type Container interface {
	Node
	Nodes() []Node
	Append(nodes ...Node)
	Prepend(nodes ...Node)
	// InsertBefore inserts n before ref. If ref is not a child, n is appended.
	InsertBefore(ref, n Node)
	// InsertAfter inserts n after ref. If ref is not a child, n is appended.
	InsertAfter(ref, n Node)
	RemoveChild(n Node) bool
	Index(n Node) int
}

type base struct {
	parent Container
	source Source
}

func (b *base) Parent() Container     { return b.parent }
func (b *base) Source() Source        { return b.source }
func (b *base) SetSource(s Source)    { b.source = s }
func (b *base) setParent(p Container) { b.parent = p }

// Root is the top-level document
type Root struct {
	base
	children
}

// NewRoot creates an empty document
func NewRoot() *Root {
	return &Root{}
}

func (r *Root) Type() NodeType { return RootNode }

func (r *Root) Clone() Node {
	c := &Root{base: base{source: r.source}}
	c.Append(cloneAll(r.nodes)...)
	return c
}

func (r *Root) Append(nodes ...Node)     { r.insertAt(r, atEnd, nodes) }
func (r *Root) Prepend(nodes ...Node)    { r.insertAt(r, 0, nodes) }
func (r *Root) InsertBefore(ref, n Node) { r.insertRelative(r, ref, n, 0) }
func (r *Root) InsertAfter(ref, n Node)  { r.insertRelative(r, ref, n, 1) }
func (r *Root) RemoveChild(n Node) bool  { return r.removeChild(n) }
func (r *Root) Index(n Node) int         { return r.index(n) }

// Rule is a qualified rule: a selector followed by a block
type Rule struct {
	base
	children
	Selector string
}

// NewRule creates a rule with the given selector and children
func NewRule(selector string, nodes ...Node) *Rule {
	r := &Rule{Selector: selector}
	r.Append(nodes...)
	return r
}

func (r *Rule) Type() NodeType { return RuleNode }

func (r *Rule) Clone() Node {
	c := &Rule{base: base{source: r.source}, Selector: r.Selector}
	c.Append(cloneAll(r.nodes)...)
	return c
}

func (r *Rule) Append(nodes ...Node)     { r.insertAt(r, atEnd, nodes) }
func (r *Rule) Prepend(nodes ...Node)    { r.insertAt(r, 0, nodes) }
func (r *Rule) InsertBefore(ref, n Node) { r.insertRelative(r, ref, n, 0) }
func (r *Rule) InsertAfter(ref, n Node)  { r.insertRelative(r, ref, n, 1) }
func (r *Rule) RemoveChild(n Node) bool  { return r.removeChild(n) }
func (r *Rule) Index(n Node) int         { return r.index(n) }

// AtRule is an at-rule. HasBlock distinguishes `@x params {}` from `@x params;`.
type AtRule struct {
	base
	children
	Name     string
	Params   string
	HasBlock bool
}

// NewAtRule creates a statement at-rule (`@name params;`)
func NewAtRule(name, params string) *AtRule {
	return &AtRule{Name: name, Params: params}
}

// NewBlockAtRule creates an at-rule with a (possibly empty) block
func NewBlockAtRule(name, params string, nodes ...Node) *AtRule {
	a := &AtRule{Name: name, Params: params, HasBlock: true}
	a.Append(nodes...)
	return a
}

func (a *AtRule) Type() NodeType { return AtRuleNode }

// Is reports whether the at-rule has the given name, ignoring case
func (a *AtRule) Is(name string) bool {
	return strings.EqualFold(a.Name, name)
}

func (a *AtRule) Clone() Node {
	c := &AtRule{base: base{source: a.source}, Name: a.Name, Params: a.Params, HasBlock: a.HasBlock}
	c.Append(cloneAll(a.nodes)...)
	return c
}

func (a *AtRule) Append(nodes ...Node) {
	a.HasBlock = true
	a.insertAt(a, atEnd, nodes)
}

func (a *AtRule) Prepend(nodes ...Node) {
	a.HasBlock = true
	a.insertAt(a, 0, nodes)
}

func (a *AtRule) InsertBefore(ref, n Node) {
	a.HasBlock = true
	a.insertRelative(a, ref, n, 0)
}

func (a *AtRule) InsertAfter(ref, n Node) {
	a.HasBlock = true
	a.insertRelative(a, ref, n, 1)
}

func (a *AtRule) RemoveChild(n Node) bool { return a.removeChild(n) }
func (a *AtRule) Index(n Node) int        { return a.index(n) }

// Decl is a declaration
type Decl struct {
	base
	Prop  string
	Value string
}

// NewDecl creates a declaration
func NewDecl(prop, value string) *Decl {
	return &Decl{Prop: prop, Value: value}
}

func (d *Decl) Type() NodeType { return DeclNode }

func (d *Decl) Clone() Node {
	return &Decl{base: base{source: d.source}, Prop: d.Prop, Value: d.Value}
}

// IsCustomProperty reports whether the declaration defines a --custom-property
func (d *Decl) IsCustomProperty() bool {
	return strings.HasPrefix(d.Prop, "--")
}

// Comment is a comment; Text excludes the /* */ delimiters
type Comment struct {
	base
	Text string
}

// NewComment creates a comment node
func NewComment(text string) *Comment {
	return &Comment{Text: text}
}

func (c *Comment) Type() NodeType { return CommentNode }

func (c *Comment) Clone() Node {
	return &Comment{base: base{source: c.source}, Text: c.Text}
}

// Raw holds verbatim source text
type Raw struct {
	base
	Text string
}

// NewRaw creates a raw text node
func NewRaw(text string) *Raw {
	return &Raw{Text: text}
}

func (r *Raw) Type() NodeType { return RawNode }

func (r *Raw) Clone() Node {
	return &Raw{base: base{source: r.source}, Text: r.Text}
}

func cloneAll(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
