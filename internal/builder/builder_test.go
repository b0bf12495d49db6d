package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verkaro/nibl/internal/config"
	"github.com/verkaro/nibl/internal/defaults"
)

type siteFixture struct {
	root    string
	content string
	static  string
	output  string
	themes  string
}

func newSiteFixture(t *testing.T) siteFixture {
	t.Helper()
	root := t.TempDir()
	f := siteFixture{
		root:    root,
		content: filepath.Join(root, "content"),
		static:  filepath.Join(root, "static"),
		output:  filepath.Join(root, "public"),
		themes:  filepath.Join(root, "templates"),
	}
	f.write(t, "templates/simple/layout.html", `{{ define "main" }}<main data-layout="main">{{ template "header" . }}{{ .Content }}{{ template "footer" . }}</main>{{ end }}`)
	f.write(t, "templates/simple/header.html", `{{ define "header" }}<h1>{{ .Title }}</h1><p class="author">{{ .Author }}</p>{{ end }}`)
	f.write(t, "templates/simple/footer.html", `{{ define "footer" }}<footer>{{ .Site.Title }}</footer>{{ end }}`)
	f.write(t, "templates/simple/post.html", `{{ define "post" }}<article data-layout="post">{{ template "header" . }}{{ .Content }}{{ with .Params.comments }}<div class="comments"></div>{{ end }}</article>{{ end }}`)
	return f
}

func (f siteFixture) write(t *testing.T, rel, body string) {
	t.Helper()
	p := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
}

func (f siteFixture) read(t *testing.T, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.output, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

func (f siteFixture) build(t *testing.T, cfg config.SiteConfig, opts BuildOptions) (int, error) {
	t.Helper()
	tmpl, err := LoadTemplates(f.themes, "simple")
	require.NoError(t, err)
	return BuildSite(f.output, f.content, f.static, cfg, tmpl, opts)
}

func blogConfig(t *testing.T) config.SiteConfig {
	t.Helper()
	cfg, err := config.ParseSiteConfig("site.yaml", []byte(`title: Garden
author: Site Author
template: simple
default_front_matter:
  "blog/.*\\.md":
    layout: post
    comments: true
  "drafts/.*":
    draft: true
`))
	require.NoError(t, err)
	return cfg
}

func TestBuildSiteAppliesDefaultFrontMatter(t *testing.T) {
	f := newSiteFixture(t)
	f.write(t, "content/index.md", "---\ntitle: Home\n---\nWelcome. See [a](blog/a.md).\n")
	f.write(t, "content/blog/a.md", "---\ntitle: A\n---\nPost A\n")
	f.write(t, "content/blog/b.md", "---\ntitle: B\nlayout: main\n---\nPost B\n")
	f.write(t, "content/drafts/wip.md", "---\ntitle: WIP\n---\nnot yet\n")
	f.write(t, "content/archive/blog/old.md", "---\ntitle: Old\n---\nold\n")
	f.write(t, "static/css/style.css", "body{}")

	n, err := f.build(t, blogConfig(t), BuildOptions{CleanDestination: true})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	a := f.read(t, "blog/a.html")
	assert.Contains(t, a, `data-layout="post"`)
	assert.Contains(t, a, `class="comments"`)
	assert.Contains(t, a, "Site Author")

	b := f.read(t, "blog/b.html")
	assert.Contains(t, b, `data-layout="main"`, "page layout wins over the default")

	old := f.read(t, "archive/blog/old.html")
	assert.Contains(t, old, `data-layout="main"`, "pattern is anchored at the start")

	index := f.read(t, "index.html")
	assert.Contains(t, index, `href="blog/a.html"`)

	_, err = os.Stat(filepath.Join(f.output, "drafts", "wip.html"))
	assert.True(t, os.IsNotExist(err), "draft default keeps the page out of the output")

	assert.Equal(t, "body{}", f.read(t, "css/style.css"))
}

func TestBuildSiteInvalidPatternAbortsBeforeRendering(t *testing.T) {
	f := newSiteFixture(t)
	f.write(t, "content/index.md", "---\ntitle: Home\n---\nhi\n")

	cfg := config.SiteConfig{DefaultFrontMatter: defaults.Rules{{Pattern: "blog/(", Defaults: map[string]any{"layout": "post"}}}}
	_, err := f.build(t, cfg, BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, defaults.ErrInvalidPattern))
	assert.Contains(t, err.Error(), "generator default_front_matter")

	_, statErr := os.Stat(filepath.Join(f.output, "index.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildSiteUnknownLayout(t *testing.T) {
	f := newSiteFixture(t)
	f.write(t, "content/index.md", "---\ntitle: Home\nlayout: gallery\n---\nhi\n")

	_, err := f.build(t, config.SiteConfig{}, BuildOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `layout "gallery" is not defined`)
}

func TestBuildSiteTypeMismatchInDefaults(t *testing.T) {
	f := newSiteFixture(t)
	f.write(t, "content/notes/a.md", "---\ntitle: A\n---\nhi\n")

	cfg := config.SiteConfig{DefaultFrontMatter: defaults.Rules{{Pattern: "notes/.*", Defaults: map[string]any{"draft": "maybe"}}}}
	_, err := f.build(t, cfg, BuildOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid front matter")
}

func TestBuildSiteTOMLFrontMatter(t *testing.T) {
	f := newSiteFixture(t)
	f.write(t, "content/blog/t.md", "+++\ntitle = \"From TOML\"\n+++\nbody\n")

	n, err := f.build(t, blogConfig(t), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	out := f.read(t, "blog/t.html")
	assert.Contains(t, out, "From TOML")
	assert.Contains(t, out, `data-layout="post"`)
}

func TestBuildSiteCustomGenerators(t *testing.T) {
	f := newSiteFixture(t)
	f.write(t, "content/blog/a.md", "---\ntitle: A\n---\nhi\n")

	n, err := f.build(t, blogConfig(t), BuildOptions{Generators: []Generator{}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, f.read(t, "blog/a.html"), `data-layout="main"`)
}

func TestBuildSiteSanitizesUnlessUnsafe(t *testing.T) {
	f := newSiteFixture(t)
	f.write(t, "content/index.md", "---\ntitle: Home\n---\n<script>alert(1)</script>\n\ntext\n")

	_, err := f.build(t, config.SiteConfig{}, BuildOptions{})
	require.NoError(t, err)
	assert.NotContains(t, f.read(t, "index.html"), "<script>")

	_, err = f.build(t, config.SiteConfig{}, BuildOptions{Unsafe: true})
	require.NoError(t, err)
	assert.Contains(t, f.read(t, "index.html"), "<script>alert(1)</script>")
}
