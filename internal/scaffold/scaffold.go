// Package scaffold creates new sites and new content files.
package scaffold

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"

	"github.com/verkaro/nibl/internal/config"
	"github.com/verkaro/nibl/internal/logging"
)

//go:embed all:skeleton
var skeleton embed.FS

// keepFile marks directories that exist in the skeleton only to be created.
const keepFile = ".keep"

// CreateNewSite writes the starter site into dir. Existing files are not
// overwritten.
func CreateNewSite(dir string) error {
	logger := logging.GetLogger("scaffold")
	root, err := fs.Sub(skeleton, "skeleton")
	if err != nil {
		return err
	}
	return fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", p)
			}
			return nil
		}
		if path.Base(p) == keepFile {
			return nil
		}
		if _, err := os.Stat(target); err == nil {
			logger.Info().Str("path", target).Msg("Keeping existing file")
			return nil
		}
		data, err := fs.ReadFile(root, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return errors.Wrapf(err, "failed to write file %s", p)
		}
		return nil
	})
}

// Slug turns a title into a file name: lower case, spaces as dashes.
func Slug(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), "-"))
}

// CreateNewContent renders root/archetypes/default.md into
// root/content/<contentType>/<slug>.md and returns the new file's path.
func CreateNewContent(root, contentType, title string) (string, error) {
	site, err := config.LoadSiteConfig(filepath.Join(root, "site.yaml"))
	if err != nil {
		return "", err
	}

	target := filepath.Join(root, "content", contentType, Slug(title)+".md")
	if _, err := os.Stat(target); err == nil {
		return "", errors.Newf("%s already exists", target)
	}

	archetypePath := filepath.Join(root, "archetypes", "default.md")
	raw, err := os.ReadFile(archetypePath)
	if err != nil {
		return "", errors.Wrapf(err, "could not read archetype file %s", archetypePath)
	}
	tmpl, err := template.New("archetype").Parse(string(raw))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse archetype file %s", archetypePath)
	}

	var out bytes.Buffer
	data := struct {
		Title  string
		Author string
	}{Title: title, Author: site.Author}
	if err := tmpl.Execute(&out, data); err != nil {
		return "", errors.Wrap(err, "failed to execute archetype template")
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, out.Bytes(), 0644); err != nil {
		return "", err
	}
	return target, nil
}
