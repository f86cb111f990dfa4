package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/benedict2310/ngxer/internal/config"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var baseURL string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter project config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit, _ := cmd.Flags().GetString("config")
			path := config.ResolvePath(explicit)

			if _, err := os.Stat(path); err == nil && !force {
				return exitCodeError(exitUsage, fmt.Errorf("config file %s already exists (use --force to overwrite)", path))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat config file %s: %w", path, err)
			}

			cfg := config.Starter(baseURL)
			if err := config.Save(path, cfg); err != nil {
				return exitCodeError(exitUsage, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (out: %s, url: %s)\n", path, cfg.Out, cfg.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Base URL of the deployed site")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
