package css

import (
	"fmt"
	"strings"

	"bennypowers.dev/mediavars/internal/stylesheet"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParseVariables lists custom property declarations and var() calls
func (p *Parser) ParseVariables(source string) (*VariableSet, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	result := &VariableSet{
		Variables: []*Variable{},
		VarCalls:  []*VarCall{},
	}
	b := &builder{src: src}
	b.walkVariables(tree.RootNode(), result)
	return result, nil
}

// walkVariables recursively walks the tree to find CSS variables and var() calls
func (b *builder) walkVariables(node *sitter.Node, result *VariableSet) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "declaration":
		b.handleDeclaration(node, result)
	case "call_expression":
		b.handleCallExpression(node, result)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		b.walkVariables(node.Child(i), result)
	}
}

// handleDeclaration records custom property declarations
func (b *builder) handleDeclaration(node *sitter.Node, result *VariableSet) {
	decl, ok := b.decl(node).(*stylesheet.Decl)
	if !ok || !decl.IsCustomProperty() {
		return
	}
	result.Variables = append(result.Variables, &Variable{
		Name:  decl.Prop,
		Value: decl.Value,
		Range: rangeOf(node),
	})
}

// handleCallExpression records var() calls. The fallback is everything
// after the first comma, so comma-separated fallbacks survive intact.
func (b *builder) handleCallExpression(node *sitter.Node, result *VariableSet) {
	var functionName, arguments *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "function_name":
			functionName = child
		case "arguments":
			arguments = child
		}
	}
	if functionName == nil || arguments == nil || b.text(functionName) != "var" {
		return
	}

	var name string
	var fallback *string
	closing := arguments.EndByte()
	if last := arguments.Child(arguments.ChildCount() - 1); last != nil && last.Kind() == ")" {
		closing = last.StartByte()
	}
	for i := uint(0); i < arguments.ChildCount(); i++ {
		child := arguments.Child(i)
		switch child.Kind() {
		case "(", ")":
			continue
		case ",":
			fb := b.slice(child.EndByte(), closing)
			fallback = &fb
		default:
			if name == "" {
				name = strings.TrimSpace(b.text(child))
			}
		}
		if fallback != nil {
			break
		}
	}
	if name == "" {
		return
	}

	result.VarCalls = append(result.VarCalls, &VarCall{
		Name:     name,
		Fallback: fallback,
		Range:    rangeOf(node),
	})
}

func rangeOf(node *sitter.Node) Range {
	start, end := node.StartPosition(), node.EndPosition()
	return Range{
		Start: Position{Line: uint32(start.Row), Character: uint32(start.Column)}, //nolint:gosec // G115: bounded by file size
		End:   Position{Line: uint32(end.Row), Character: uint32(end.Column)},     //nolint:gosec // G115: bounded by file size
	}
}
