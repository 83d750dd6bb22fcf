package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scopeflow/scopeflow/internal/config"
)

// NewInitCmd creates the init command, which seeds a project config file
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default " + config.ConfigFileName + " in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFileName

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			data, err := config.DefaultTomlConfig()
			if err != nil {
				return fmt.Errorf("failed to render default config: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}
