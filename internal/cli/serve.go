package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benedict2310/ngxer/internal/backend"
	"github.com/spf13/cobra"
)

var signalNotifyContext = signal.NotifyContext

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Preview the prerendered output locally",
		Long: "Serves dir (default: the project's out directory) the way a static\n" +
			"host would, falling back to index.html for unknown routes.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalNotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				rt, err := runtimeFromCommand(cmd)
				if err != nil {
					return err
				}
				dir = rt.Project.OutDir
			}
			return backend.Serve(ctx, dir, port, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (use 0 for random available port)")

	return cmd
}
