package builder

import (
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/verkaro/nibl/internal/config"
	"github.com/verkaro/nibl/internal/logging"
	"github.com/verkaro/nibl/internal/util"
)

type BuildOptions struct {
	CleanDestination bool
	Unsafe           bool

	// Generators replaces DefaultGenerators when non-nil.
	Generators []Generator
}

func (o BuildOptions) generators() []Generator {
	if o.Generators != nil {
		return o.Generators
	}
	return DefaultGenerators()
}

// BuildSite loads the content, runs the generators, renders every page and
// copies static assets. It returns the number of pages written.
func BuildSite(outputDir, contentDir, staticDir string, cfg config.SiteConfig, tmpl *template.Template, opts BuildOptions) (int, error) {
	logger := logging.GetLogger("builder")
	defer logging.LogOperationStart(logger, "build")()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}
	if opts.CleanDestination {
		logger.Info().Str("dir", outputDir).Msg("Cleaning destination directory")
		if err := cleanDir(outputDir); err != nil {
			return 0, err
		}
	}

	site, err := LoadSite(contentDir, cfg)
	if err != nil {
		return 0, err
	}
	logger.Debug().Int("pages", len(site.Pages)).Msg("Loaded content")

	if err := RunGenerators(site, opts.generators()...); err != nil {
		return 0, err
	}

	pagesGenerated := 0
	for _, page := range site.Pages {
		written, err := writePage(outputDir, site, page, tmpl, opts)
		if err != nil {
			return 0, err
		}
		if written {
			pagesGenerated++
		}
	}

	if err := copyStaticAssets(staticDir, outputDir); err != nil {
		return 0, err
	}
	return pagesGenerated, nil
}

func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// writePage renders one page. Drafts are skipped and reported as not written.
func writePage(outputDir string, site *Site, page *Page, tmpl *template.Template, opts BuildOptions) (bool, error) {
	meta, err := decodeMeta(page.Data)
	if err != nil {
		return false, errors.Wrapf(err, "invalid front matter in %s", page.Source)
	}
	if meta.Draft && !isExceptionPage(page.Slug()) {
		return false, nil
	}

	layout, err := layoutName(tmpl, meta.Layout)
	if err != nil {
		return false, errors.Wrapf(err, "failed to render page %s", page.Source)
	}

	htmlOut, err := renderBody(page.Body, opts.Unsafe)
	if err != nil {
		return false, errors.Wrapf(err, "failed to process content for %s", page.Source)
	}

	relPath := filepath.FromSlash(page.Path())
	outputPath := filepath.Join(outputDir, filepath.FromSlash(page.Slug())+".html")
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return false, err
	}

	data := PageData{
		Content:     template.HTML(htmlOut),
		Title:       meta.Title,
		Path:        page.Path(),
		BaseHref:    util.ComputeBaseHref(relPath),
		Description: meta.Description,
		Site:        site.Config,
		ShowEditML:  meta.ShowEditML,
		StoryTitle:  meta.StoryTitle,
		Params:      meta.Params,
	}
	switch {
	case meta.StoryAuthor != "":
		data.Author = meta.StoryAuthor
	case meta.Author != "":
		data.Author = meta.Author
	default:
		data.Author = site.Config.Author
	}
	if data.Description == "" {
		data.Description = site.Config.Description
	}

	if err := renderPage(tmpl, outputPath, layout, data); err != nil {
		return false, errors.Wrapf(err, "failed to render page %s", page.Source)
	}
	return true, nil
}

// layoutName picks the template a page is executed with. Pages without a
// layout use "main".
func layoutName(tmpl *template.Template, layout string) (string, error) {
	if layout == "" {
		return "main", nil
	}
	if tmpl.Lookup(layout) == nil {
		return "", errors.Newf("layout %q is not defined by the template", layout)
	}
	return layout, nil
}

var staticExts = map[string]bool{
	".css": true, ".js": true, ".txt": true, ".svg": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".ico": true, ".webp": true, ".woff": true, ".woff2": true,
}

// copyStaticAssets copies files with a known asset extension from staticDir
// into outputDir. A missing static directory is not an error.
func copyStaticAssets(staticDir, outputDir string) error {
	if _, err := os.Stat(staticDir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(staticDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !staticExts[filepath.Ext(d.Name())] {
			return nil
		}
		rel, err := filepath.Rel(staticDir, p)
		if err != nil {
			return err
		}
		return copyFile(p, filepath.Join(outputDir, rel))
	})
}

func copyFile(srcPath, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// isExceptionPage reports pages that are rendered even when marked draft.
func isExceptionPage(slug string) bool {
	return slug == "index" || slug == "about" || slug == "menu"
}

func renderPage(tmpl *template.Template, outPath, name string, data PageData) error {
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(outFile, name, data); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

// LoadTemplates parses a theme. layout.html, header.html and footer.html
// are required; any other .html file in the theme directory is parsed too
// and may define extra layouts.
func LoadTemplates(templateDir, templateName string) (*template.Template, error) {
	dir := filepath.Join(templateDir, templateName)
	required := []string{"layout.html", "header.html", "footer.html"}

	files := make([]string, 0, len(required))
	for _, name := range required {
		files = append(files, filepath.Join(dir, name))
	}
	tmpl, err := template.ParseFiles(files...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse theme %s", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	var extra []string
	for _, m := range matches {
		if !slices.Contains(required, filepath.Base(m)) {
			extra = append(extra, m)
		}
	}
	if len(extra) == 0 {
		return tmpl, nil
	}
	if _, err := tmpl.ParseFiles(extra...); err != nil {
		return nil, errors.Wrapf(err, "failed to parse layouts in %s", dir)
	}
	return tmpl, nil
}
