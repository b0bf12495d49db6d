package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/verkaro/nibl/internal/builder"
	"github.com/verkaro/nibl/internal/server"
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local dev server with auto-rebuild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProject(cmd.OutOrStdout())
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := server.Options{
				Port:      port,
				PublicDir: p.path(outputDir),
				Out:       cmd.OutOrStdout(),
				WatchPaths: []string{
					p.path(contentDir), p.path(templateDir), p.path(staticDir),
					p.path(configFile), p.path(storyFile),
				},
			}
			build := func(o builder.BuildOptions) error { return p.fullBuild(o) }
			return server.Run(ctx, opts, build, buildOptions())
		},
	}
	cmd.Flags().IntVar(&port, "port", 1313, "port for the local development server")
	return cmd
}
