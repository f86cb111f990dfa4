package cli

import (
	"github.com/benedict2310/ngxer/internal/render"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var live bool
	var strict bool

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Prerender every configured route and rewrite the report",
		Args:    cobra.NoArgs,
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
			var out render.Outcome

			indexes, err := o.RenderIndexes(ctx)
			out.Merge(indexes)
			if err != nil {
				return err
			}

			paths, err := o.RenderConfiguredPaths(ctx)
			out.Merge(paths)
			if err != nil {
				return err
			}

			items, err := o.RenderCollections(ctx)
			out.Merge(items)
			if err != nil {
				return err
			}

			if _, err := o.Record(ctx, out, render.RecordReplace); err != nil {
				return err
			}
			return finish(cmd, out, strict)
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Render every route in the browser, ignoring existing pages and cache")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 3 when any route fails")

	return cmd
}
