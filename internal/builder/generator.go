package builder

import (
	"github.com/cockroachdb/errors"

	"github.com/verkaro/nibl/internal/defaults"
	"github.com/verkaro/nibl/internal/logging"
)

// Generator modifies the site once per build, after every page is loaded and
// before any page is rendered.
type Generator interface {
	Name() string
	Generate(site *Site) error
}

// DefaultGenerators returns the generators a build runs when BuildOptions
// does not name any.
func DefaultGenerators() []Generator {
	return []Generator{DefaultFrontMatter{}}
}

// RunGenerators runs gens in order. The first failure aborts the build.
func RunGenerators(site *Site, gens ...Generator) error {
	for _, g := range gens {
		if err := g.Generate(site); err != nil {
			return errors.Wrapf(err, "generator %s", g.Name())
		}
	}
	return nil
}

// DefaultFrontMatter fills in front matter from the site's
// default_front_matter rules. Keys a page already sets are kept.
type DefaultFrontMatter struct{}

func (DefaultFrontMatter) Name() string { return "default_front_matter" }

func (DefaultFrontMatter) Generate(site *Site) error {
	applier, err := defaults.Compile(site.Config.DefaultFrontMatter)
	if err != nil {
		return err
	}
	if applier.Len() == 0 {
		return nil
	}
	matched, err := defaults.ApplyAll(applier, site.Pages)
	if err != nil {
		return err
	}
	logger := logging.GetLogger("generator")
	logger.Debug().
		Int("rules", applier.Len()).
		Int("pages", len(site.Pages)).
		Int("matched", matched).
		Msg("Applied default front matter")
	return nil
}
