package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen",
		Short: "Generate the site from existing content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProject(cmd.OutOrStdout())
			fmt.Fprintln(p.out, "--- Generating site from content ---")
			cfg, err := p.loadConfig()
			if err != nil {
				return err
			}
			opts := buildOptions()
			opts.CleanDestination = true
			n, err := p.build(cfg, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(p.out, "✅ Success! Generated %d pages.\n", n)
			return nil
		},
	}
}
