package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/verkaro/nibl/internal/builder"
	"github.com/verkaro/nibl/internal/config"
	"github.com/verkaro/nibl/internal/story"
)

const (
	contentDir  = "content"
	templateDir = "templates"
	staticDir   = "static"
	outputDir   = "public"
	configFile  = "site.yaml"
	storyFile   = "site.biff"
)

// project resolves the fixed site layout against a root directory.
type project struct {
	root string
	out  io.Writer
}

func newProject(out io.Writer) project {
	return project{root: flags.root, out: out}
}

func (p project) path(elem ...string) string {
	return filepath.Join(append([]string{p.root}, elem...)...)
}

func (p project) loadConfig() (config.SiteConfig, error) {
	cfg, err := config.LoadSiteConfig(p.path(configFile))
	if err != nil {
		return config.SiteConfig{}, errors.Wrap(err, "failed to load site config")
	}
	return cfg, nil
}

// build renders content into public/ and returns the page count.
func (p project) build(cfg config.SiteConfig, opts builder.BuildOptions) (int, error) {
	tmpl, err := builder.LoadTemplates(p.path(templateDir), cfg.Template)
	if err != nil {
		return 0, errors.Wrap(err, "failed to load templates")
	}
	n, err := builder.BuildSite(p.path(outputDir), p.path(contentDir), p.path(staticDir), cfg, tmpl, opts)
	if err != nil {
		return 0, errors.Wrap(err, "site generation failed")
	}
	return n, nil
}

// fullBuild compiles site.biff when present and then builds the site. It is
// what `nibl serve` runs on every change.
func (p project) fullBuild(opts builder.BuildOptions) error {
	fmt.Fprintln(p.out, "--- Building site ---")
	cfg, err := p.loadConfig()
	if err != nil {
		return err
	}

	knots, err := story.Compile(p.path(storyFile), p.path(contentDir), cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(p.out, "🔎 No 'site.biff' found, skipping story compilation.")
	case err != nil:
		return errors.Wrap(err, "biff compilation failed")
	default:
		fmt.Fprintf(p.out, "📖 Story: %d knots processed.\n", knots)
	}

	pages, err := p.build(cfg, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "📄 Site: %d pages generated.\n", pages)
	fmt.Fprintln(p.out, "✅ Build successful.")
	return nil
}
