package builder

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/verkaro/nibl/internal/config"
	"github.com/verkaro/nibl/internal/util"
)

// Page is one content file loaded for a build.
type Page struct {
	path string

	// Source is the file the page was read from.
	Source string
	// Data is the page front matter. Generators may add keys to it before
	// rendering.
	Data map[string]any
	// Body is the content after the front matter block.
	Body []byte
}

// NewPage returns a page for the slash separated content path p.
func NewPage(p, source string, data map[string]any, body []byte) *Page {
	if data == nil {
		data = map[string]any{}
	}
	return &Page{path: p, Source: source, Data: data, Body: body}
}

// Path returns the page path relative to the content root, e.g. "blog/a.md".
func (p *Page) Path() string { return p.path }

// Ext returns the source extension including the dot.
func (p *Page) Ext() string { return path.Ext(p.path) }

// Slug returns the path without its extension.
func (p *Page) Slug() string { return strings.TrimSuffix(p.path, p.Ext()) }

// SetMetadataIfAbsent sets Data[key] unless the key already exists.
func (p *Page) SetMetadataIfAbsent(key string, value any) bool {
	if _, ok := p.Data[key]; ok {
		return false
	}
	p.Data[key] = value
	return true
}

// Site is what generators see: the config and every loaded page.
type Site struct {
	Config config.SiteConfig
	Pages  []*Page
}

// LoadSite walks contentDir and loads every .md and .html file as a page.
// Pages are ordered by path.
func LoadSite(contentDir string, cfg config.SiteConfig) (*Site, error) {
	site := &Site{Config: cfg}
	err := filepath.WalkDir(contentDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isContentFile(d.Name()) {
			return nil
		}
		page, err := loadPage(contentDir, p)
		if err != nil {
			return err
		}
		site.Pages = append(site.Pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return site, nil
}

func isContentFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".md" || ext == ".html"
}

func loadPage(contentDir, p string) (*Page, error) {
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", p)
	}
	if !utf8.Valid(raw) {
		return nil, errors.Newf("content file is not valid UTF-8: %s", p)
	}
	rel, err := filepath.Rel(contentDir, p)
	if err != nil {
		return nil, err
	}
	data, body, err := parseSource(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to process content for %s", p)
	}
	return NewPage(util.SlashPath(rel), p, data, body), nil
}
