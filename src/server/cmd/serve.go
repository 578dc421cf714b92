package cmd

import (
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/veedubyou/stem-separator/src/server/application"
	"github.com/veedubyou/stem-separator/src/shared/config"
	"github.com/veedubyou/stem-separator/src/shared/lib/env"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the separation HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.environment == env.Test {
				return errors.New("serve has no config for the test environment, tests build the app directly")
			}

			appConfig := appConfig(ctx.environment)
			if port != "" {
				appConfig.Port = config.ListenAddress(port)
			}

			app := application.NewApp(appConfig)

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-signalCtx.Done()
				if err := app.Stop(); err != nil {
					log.WithError(err).Error("Failed to stop the server")
				}
			}()

			log.WithField("port", appConfig.Port).Info("Starting server")
			return app.Start()
		},
	}

	serveCmd.Flags().StringVar(&port, "port", "", "Address to listen on, overrides PORT")

	return serveCmd
}
