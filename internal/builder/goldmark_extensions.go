package builder

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// mdLinkTransformer points links at other content pages to their rendered
// output, so "next.md#top" becomes "next.html#top".
type mdLinkTransformer struct{}

func newMDLinkTransformer() parser.ASTTransformer {
	return &mdLinkTransformer{}
}

func (t *mdLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = rewriteMDLink(link.Destination)
		}
		return ast.WalkContinue, nil
	})
}

// rewriteMDLink swaps a trailing .md for .html on relative links. Query and
// fragment suffixes are kept.
func rewriteMDLink(dest []byte) []byte {
	if bytes.Contains(dest, []byte("://")) {
		return dest
	}
	target, suffix := dest, []byte(nil)
	if i := bytes.IndexAny(dest, "?#"); i >= 0 {
		target, suffix = dest[:i], dest[i:]
	}
	if !bytes.HasSuffix(target, []byte(".md")) {
		return dest
	}
	out := make([]byte, 0, len(dest)+2)
	out = append(out, bytes.TrimSuffix(target, []byte(".md"))...)
	out = append(out, ".html"...)
	return append(out, suffix...)
}
