package builder

import (
	"bytes"

	"github.com/adrg/frontmatter"
	"github.com/cockroachdb/errors"
	"github.com/microcosm-cc/bluemonday"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"
)

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newMDLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	htmlSanitizer = bluemonday.UGCPolicy()

	frontMatterFormats = []*frontmatter.Format{
		frontmatter.NewFormat("---", "---", yaml.Unmarshal),
		frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	}
)

// parseSource splits the front matter (YAML between --- or TOML between +++)
// from the body. Files without front matter get empty data.
func parseSource(raw []byte) (map[string]any, []byte, error) {
	data := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &data, frontMatterFormats...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse front matter")
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, body, nil
}

// renderBody converts a page body to HTML, sanitizing it unless unsafe.
func renderBody(body []byte, unsafe bool) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert(body, &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown with goldmark")
	}
	if unsafe {
		return buf.String(), nil
	}
	return string(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil
}
