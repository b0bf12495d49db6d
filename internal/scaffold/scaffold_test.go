package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verkaro/nibl/internal/builder"
	"github.com/verkaro/nibl/internal/config"
)

func TestCreateNewSiteBuilds(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mysite")
	require.NoError(t, CreateNewSite(dir))

	for _, p := range []string{"site.yaml", "site.biff", "archetypes/default.md", "templates/simple/post.html", "static/css/style.css"} {
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(p)))
	}
	assert.DirExists(t, filepath.Join(dir, "content"))
	assert.NoFileExists(t, filepath.Join(dir, "content", ".keep"))

	cfg, err := config.LoadSiteConfig(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	require.Len(t, cfg.DefaultFrontMatter, 2)
	assert.Equal(t, `posts/.*\.md`, cfg.DefaultFrontMatter[0].Pattern)

	post := filepath.Join(dir, "content", "posts", "first.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(post), 0755))
	require.NoError(t, os.WriteFile(post, []byte("---\ntitle: First\ndate: 2024-05-01\n---\nHello\n"), 0644))

	tmpl, err := builder.LoadTemplates(filepath.Join(dir, "templates"), cfg.Template)
	require.NoError(t, err)
	out := filepath.Join(dir, "public")
	n, err := builder.BuildSite(out, filepath.Join(dir, "content"), filepath.Join(dir, "static"), cfg, tmpl, builder.BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	html, err := os.ReadFile(filepath.Join(out, "posts", "first.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<article>")
	assert.FileExists(t, filepath.Join(out, "css", "style.css"))
}

func TestCreateNewSiteKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte("title: Mine\n"), 0644))
	require.NoError(t, CreateNewSite(dir))

	b, err := os.ReadFile(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "title: Mine\n", string(b))
}

func TestCreateNewContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CreateNewSite(dir))

	path, err := CreateNewContent(dir, "posts", "Hello  Big World")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "content", "posts", "hello-big-world.md"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "title: Hello  Big World")
	assert.Contains(t, string(b), "author: Your Name")

	_, err = CreateNewContent(dir, "posts", "Hello Big World")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "a-new-day", Slug("A New  Day"))
	assert.Equal(t, "single", Slug(" Single "))
}
