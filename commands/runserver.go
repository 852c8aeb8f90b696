package commands

import (
	"context"
	"net"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/migrations"
	"github.com/cppla/forumapp/routes"
	"github.com/cppla/forumapp/utils"
)

const pruneInterval = time.Hour

func RunServerCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "runserver",
		Short: "Serve the forum over HTTP until SIGINT/SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if err := cfg.Validate(); err != nil {
				return err
			}
			db := config.InitDatabase()

			if cfg.AutoMigrate {
				applied, err := migrations.New(db).Up()
				if err != nil {
					return err
				}
				for _, m := range applied {
					utils.Sugar.Infof("applied migration %s %s", m.Version, m.Name)
				}
			}

			if addr == "" {
				addr = ":" + cfg.AppPort
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := utils.NewServer(addr, routes.SetupRouter(db))
			retention := time.Duration(cfg.PageViewRetentionDays) * 24 * time.Hour

			// The server stopping, for any reason, stops the pruner too.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer cancel()
				utils.Sugar.Infof("Starting server on %s (graceful)", ln.Addr())
				return srv.Serve(gctx, ln)
			})
			g.Go(func() error {
				<-utils.StartPageViewPruner(gctx, db, pruneInterval, retention)
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :APP_PORT)")
	return cmd
}
