package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the ngxer root command tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ngxer",
		Short: "Prerender single-page app routes into static HTML",
		Long: "ngxer composes a static index.html for every configured route of a built\n" +
			"single-page app, reusing pages already on disk and cached metadata before\n" +
			"falling back to a live headless browser render.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to the project config (default $NGXER_CONFIG or ./.ngxerrc.json)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error (default $NGXER_LOG_LEVEL or warn)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newDocsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}
