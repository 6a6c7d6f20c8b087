// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Summary is a structural digest of a markdown document.
type Summary struct {
	Headings []string `json:"headings,omitempty" yaml:"headings,omitempty"`
	Words    int      `json:"words" yaml:"words"`
}

var markdown = goldmark.New()

// Summarize parses src as Markdown and returns its headings in document
// order and the number of words in text and code.
func Summarize(src []byte) Summary {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var s Summary
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			s.Headings = append(s.Headings, inlineText(node, src))
		case *ast.Text:
			s.Words += len(strings.Fields(string(node.Value(src))))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			s.Words += len(strings.Fields(blockLines(n, src)))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return s
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		buf.WriteString(inlineText(c, src))
	}
	return strings.TrimSpace(buf.String())
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}
