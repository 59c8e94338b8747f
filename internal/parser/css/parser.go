// Package css builds stylesheet trees from CSS source using tree-sitter-css.
package css

import (
	"fmt"
	"sync"

	"bennypowers.dev/mediavars/internal/stylesheet"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser wraps a tree-sitter parser configured for CSS
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse builds a stylesheet tree from CSS source.
//
// At-rule params and declaration values are the exact source text, trimmed,
// so whatever tree-sitter makes of a media query the core sees it as
// written. Unparseable regions become Raw nodes and are printed verbatim.
func (p *Parser) Parse(source string) (*stylesheet.Root, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	b := &builder{src: src}
	root := stylesheet.NewRoot()
	b.appendChildren(root, tree.RootNode())
	return root, nil
}

// Parse is a convenience wrapper around a pooled parser
func Parse(source string) (*stylesheet.Root, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.Parse(source)
}
