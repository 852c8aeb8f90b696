// Package commands implements the forumapp command line: runserver, migrate
// and shell.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/utils"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "forumapp",
		Short:         "A small discussion forum",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return fmt.Errorf("load config %s: %w", configPath, err)
			}
			config.Set(cfg)
			return utils.InitLogger(cfg)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the JSON or YAML config file")

	root.AddCommand(
		RunServerCmd(),
		MigrateCmd(),
		ShellCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
