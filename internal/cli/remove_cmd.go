package cli

import (
	"fmt"

	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/internal/render"
	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "remove <route>...",
		Aliases: []string{"rm"},
		Short:   "Delete the prerendered pages and cache entries of routes",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFromCommand(cmd)
			if err != nil {
				return err
			}
			o, cleanup, err := rt.newOrchestrator(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			out, err := o.Remove(ctx, args)
			if err != nil {
				return err
			}

			if paths := out.Removed(render.KindPath); len(paths) > 0 {
				err := config.Update(rt.Project.Path, func(c *config.Config) {
					c.RemovePaths(paths...)
				})
				if err != nil {
					return fmt.Errorf("remove paths from config: %w", err)
				}
			}

			if _, err := o.Record(ctx, out, render.RecordSubtract); err != nil {
				return err
			}
			return finish(cmd, out, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 3 when any route fails")

	return cmd
}
