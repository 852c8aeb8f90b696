package commands

import (
	"github.com/spf13/cobra"

	"github.com/cppla/forumapp/admin"
	"github.com/cppla/forumapp/config"
)

func ShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive admin shell on the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := admin.NewSession(config.InitDatabase())
			return s.Run(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
