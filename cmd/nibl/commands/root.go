// Package commands implements the nibl CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verkaro/nibl/internal/builder"
	"github.com/verkaro/nibl/internal/logging"
)

type globalFlags struct {
	debug     bool
	unsafe    bool
	verbosity int
	root      string
}

var flags globalFlags

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nibl",
		Short: "A quiet static site generator for interactive fiction",
		Long: `nibl builds a static site from Markdown content and .biff interactive
stories.

Pages whose path matches a pattern under default_front_matter in site.yaml
receive that pattern's front matter, unless they set the keys themselves.`,
		Example: `  # Scaffold a site and build it
  nibl new site garden
  cd garden && nibl story

  # Show which default front matter each page gets
  nibl defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity, flags.debug)
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVar(&flags.debug, "debug", false, "enable debug mode for verbose error output")
	pf.BoolVar(&flags.unsafe, "unsafe", false, "disable HTML sanitization, allowing all raw HTML")
	pf.CountVarP(&flags.verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	pf.StringVarP(&flags.root, "source", "s", ".", "site root directory")

	cmd.AddCommand(newGenCmd(), newStoryCmd(), newServeCmd(), newNewCmd(), newDefaultsCmd())
	return cmd
}

// Execute runs the CLI and reports a failure once on stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if flags.debug {
			fmt.Fprintf(os.Stderr, "❌ Operation failed: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "❌ Operation failed: %v\n", err)
		}
		return err
	}
	return nil
}

func buildOptions() builder.BuildOptions {
	return builder.BuildOptions{
		Unsafe: flags.unsafe,
	}
}
