package cli

import (
	"fmt"

	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/internal/render"
	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	var live bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "update <route>...",
		Short: "Prerender the given paths or collection items",
		Long: "Routes are page paths (about, blog/post) or collection items\n" +
			"(posts:abc123). Paths not yet in pathRender are rendered and added to it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFromCommand(cmd)
			if err != nil {
				return err
			}
			o, cleanup, err := rt.newOrchestrator(cmd, live)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			out, err := o.RenderInputs(ctx, args, true)
			if err != nil {
				return err
			}

			if len(out.Added) > 0 {
				var added []string
				err := config.Update(rt.Project.Path, func(c *config.Config) {
					added = c.AddPaths(out.Added...)
				})
				if err != nil {
					return fmt.Errorf("add paths to config: %w", err)
				}
				if len(added) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Added to pathRender: %v\n", added)
				}
			}

			if _, err := o.Record(ctx, out, render.RecordAdd); err != nil {
				return err
			}
			return finish(cmd, out, strict)
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Render in the browser even when a page or cache entry exists")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 3 when any route fails")

	return cmd
}
