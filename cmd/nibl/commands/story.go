package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/verkaro/nibl/internal/story"
)

type storyFlags struct {
	input       string
	output      string
	contentOnly bool
}

func newStoryCmd() *cobra.Command {
	var f storyFlags
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Compile a .biff file into content pages and build the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStory(newProject(cmd.OutOrStdout()), f)
		},
	}
	cmd.Flags().StringVarP(&f.input, "input", "i", storyFile, "input story file (*.biff)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "",
		"output directory for generated content (default: content for site.biff, content/<story name> otherwise)")
	cmd.Flags().BoolVar(&f.contentOnly, "content-only", false, "generate content only, do not build the site")
	return cmd
}

// storyOutputDir is where a story's pages go when -o is not given: the
// content root for site.biff, a directory named after the story otherwise.
func storyOutputDir(input string) string {
	if input == storyFile {
		return contentDir
	}
	base := filepath.Base(input)
	return filepath.Join(contentDir, strings.TrimSuffix(base, filepath.Ext(base)))
}

func runStory(p project, f storyFlags) error {
	cfg, err := p.loadConfig()
	if err != nil {
		return err
	}
	out := f.output
	if out == "" {
		out = storyOutputDir(f.input)
	}

	fmt.Fprintln(p.out, "--- Compiling story ---")
	knots, err := story.Compile(p.path(f.input), p.path(out), cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.Newf("story file '%s' not found", f.input)
		}
		return errors.Wrap(err, "biff compilation failed")
	}
	fmt.Fprintf(p.out, "📖 Story: %d knots processed into %s.\n", knots, out)

	if f.contentOnly {
		fmt.Fprintln(p.out, "✅ Success! Content-only generation complete.")
		return nil
	}

	fmt.Fprintln(p.out, "--- Building site ---")
	opts := buildOptions()
	opts.CleanDestination = true
	pages, err := p.build(cfg, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "📄 Site: %d pages generated.\n", pages)
	fmt.Fprintln(p.out, "✅ Build successful.")
	return nil
}
