package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/migrations"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect schema migrations",
	}
	cmd.AddCommand(migrateUpCmd(), migrateDownCmd(), migrateStatusCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := migrations.New(config.InitDatabase())
			out := cmd.OutOrStdout()
			if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
				pending, err := m.Pending()
				if err != nil {
					return err
				}
				for _, p := range pending {
					fmt.Fprintf(out, "would apply %s %s\n", p.Version, p.Name)
				}
				return nil
			}
			applied, err := m.Up()
			for _, a := range applied {
				fmt.Fprintf(out, "applied %s %s\n", a.Version, a.Name)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "no pending migrations")
			}
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "list pending migrations without applying them")
	return cmd
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recently applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			rolled, err := migrations.New(config.InitDatabase()).Down()
			if errors.Is(err, migrations.ErrNothingToRollback) {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to roll back")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %s %s\n", rolled.Version, rolled.Name)
			return nil
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := migrations.New(config.InitDatabase()).Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-16s  %-30s  %-8s\n", "Version", "Name", "Status")
			for _, s := range statuses {
				state := "Pending"
				if s.Applied {
					state = "Applied"
				}
				fmt.Fprintf(out, "%-16s  %-30s  %-8s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
}
