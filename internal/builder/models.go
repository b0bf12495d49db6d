package builder

import (
	"html/template"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/verkaro/nibl/internal/config"
)

// PageMeta is the typed view of a page's front matter after generators ran.
// Keys without a field end up in Params.
type PageMeta struct {
	Title       string         `yaml:"title"`
	Author      string         `yaml:"author"`
	Draft       bool           `yaml:"draft"`
	Description string         `yaml:"description"`
	Layout      string         `yaml:"layout"`
	ShowEditML  bool           `yaml:"showEditML"`
	StoryTitle  string         `yaml:"story_title"`
	StoryAuthor string         `yaml:"story_author"`
	Params      map[string]any `yaml:",inline"`
}

// decodeMeta converts front matter to PageMeta. A value of the wrong type
// for a known field is an error.
func decodeMeta(data map[string]any) (PageMeta, error) {
	var node yaml.Node
	if err := node.Encode(data); err != nil {
		return PageMeta{}, errors.Wrap(err, "encode front matter")
	}
	meta := PageMeta{}
	if err := node.Decode(&meta); err != nil {
		return PageMeta{}, errors.Wrap(err, "decode front matter")
	}
	return meta, nil
}

// PageData is passed to templates.
type PageData struct {
	Content     template.HTML
	Title       string
	Path        string
	BaseHref    string
	Author      string
	Description string
	Site        config.SiteConfig
	ShowEditML  bool
	StoryTitle  string
	Params      map[string]any
}
