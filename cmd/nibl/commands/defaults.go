package commands

import (
	"fmt"
	"maps"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/verkaro/nibl/internal/builder"
	"github.com/verkaro/nibl/internal/defaults"
	"github.com/verkaro/nibl/internal/util"
)

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults [path...]",
		Short: "Show which default front matter rule applies to each page",
		Long: `Compile the default_front_matter rules from site.yaml and print, for
every content page (or each given path relative to content/), the first
matching pattern and the keys it would add. Nothing is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefaults(newProject(cmd.OutOrStdout()), args)
		},
	}
}

func runDefaults(p project, args []string) error {
	cfg, err := p.loadConfig()
	if err != nil {
		return err
	}
	applier, err := defaults.Compile(cfg.DefaultFrontMatter)
	if err != nil {
		return err
	}

	var pages []*defaults.MapPage
	if len(args) > 0 {
		for _, a := range args {
			pages = append(pages, defaults.NewMapPage(util.SlashPath(a), nil))
		}
	} else {
		site, err := builder.LoadSite(p.path(contentDir), cfg)
		if err != nil {
			return err
		}
		for _, page := range site.Pages {
			pages = append(pages, defaults.NewMapPage(page.Path(), maps.Clone(page.Data)))
		}
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tPATTERN\tADDS")
	for _, page := range pages {
		res, err := applier.Apply(page)
		if err != nil {
			return err
		}
		pattern, adds := "-", "-"
		if res.Matched {
			pattern = res.Pattern
		}
		if len(res.Keys) > 0 {
			adds = strings.Join(res.Keys, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", page.Path(), pattern, adds)
	}
	return w.Flush()
}
