package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the localhost JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		addr := env.cfg.App.HTTP.Addr()
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		srv := api.NewServer(api.Deps{
			Generator: timeoutGenerator{env},
			Store:     env.paths,
			Assistant: timeoutAssistant{env},
			Metrics:   api.NewMetrics(),
			Logger:    env.log.Named("api"),
		})
		env.log.Info("serving SkillRoute API", zap.String("addr", addr))
		if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides app.http host and port)")
}
