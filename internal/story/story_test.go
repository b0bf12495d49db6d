package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestKnotComments(t *testing.T) {
	biff := []byte(`// title: Story
=== index ===
// title: Home
// Mood: calm
not a comment: here
=== outside ===
  // title:  The Great Outdoors
// no separator
`)
	got, err := knotComments(biff)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]string{
		"index":   {"title": "Home", "mood": "calm"},
		"outside": {"title": "The Great Outdoors"},
	}, got)
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		name      string
		knot      string
		content   string
		meta      map[string]string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "comment title wins",
			knot:      "index",
			content:   "# Heading\nBody",
			meta:      map[string]string{"title": "Home"},
			wantTitle: "Home",
			wantBody:  "Body",
		},
		{
			name:      "heading is used",
			knot:      "index",
			content:   "# Heading\nBody\n# Second",
			wantTitle: "Heading",
			wantBody:  "Body",
		},
		{
			name:      "knot name fallback",
			knot:      "the_garden",
			content:   "Body",
			wantTitle: "The Garden",
			wantBody:  "Body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := splitTitle(tt.knot, tt.content, tt.meta)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestKnotFrontMatter(t *testing.T) {
	out, err := knotFrontMatter(`Say "hi"`,
		map[string]string{"title": "Garden", "author": "A. Writer"},
		map[string]string{"title": "ignored", "mood": "calm", "draft": "true", "layout": "knot"},
	)
	require.NoError(t, err)

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(out, &node))
	mapping := node.Content[0]
	var keys []string
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	assert.Equal(t, []string{"title", "story_title", "story_author", "layout", "mood", "draft"}, keys)

	var fm map[string]any
	require.NoError(t, yaml.Unmarshal(out, &fm))
	assert.Equal(t, `Say "hi"`, fm["title"])
	assert.Equal(t, "Garden", fm["story_title"])
	assert.Equal(t, false, fm["draft"])
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "the-dark-forest", sanitize("The Dark  Forest!"))
	assert.Equal(t, "has_water", sanitize("has_water"))
}
