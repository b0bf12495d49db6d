package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verkaro/nibl/internal/scaffold"
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <type> <title>",
		Short: "Create new content from the default archetype",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProject(cmd.OutOrStdout())
			path, err := scaffold.CreateNewContent(p.root, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(p.out, "Created:", path)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "site <name>",
		Short: "Create a new site scaffold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Scaffolding new site in:", args[0])
			if err := scaffold.CreateNewSite(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out, "Site scaffolded. You can now:")
			fmt.Fprintln(out, "  cd", args[0])
			fmt.Fprintln(out, "  nibl story")
			fmt.Fprintln(out, "  nibl serve")
			return nil
		},
	})
	return cmd
}
