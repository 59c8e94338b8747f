// Package html finds the CSS embedded in HTML documents.
package html

import (
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Parser handles parsing HTML to extract CSS regions
type Parser struct {
	parser     *sitter.Parser
	styleQuery *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		styleQuery, qerr := sitter.NewQuery(htmlLang, `(style_element (raw_text) @css)`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile style query: %v", qerr))
		}

		return &Parser{
			parser:     parser,
			styleQuery: styleQuery,
		}
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
	if p.styleQuery != nil {
		p.styleQuery.Close()
	}
}

// StyleRegions returns the contents of every <style> element in source
// order. Inline style attributes are not returned: they hold declarations
// only, never at-rules.
func (p *Parser) StyleRegions(source string) []Region {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var regions []Region
	matches := cursor.Matches(p.styleQuery, tree.RootNode(), sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			node := capture.Node
			if node.StartByte() == node.EndByte() {
				continue
			}
			regions = append(regions, Region{
				Content:   string(sourceBytes[node.StartByte():node.EndByte()]),
				StartByte: node.StartByte(),
				EndByte:   node.EndByte(),
				StartLine: node.StartPosition().Row,
				StartCol:  node.StartPosition().Column,
			})
		}
	}

	return regions
}

// StyleRegions extracts style regions with a pooled parser
func StyleRegions(source string) []Region {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.StyleRegions(source)
}
