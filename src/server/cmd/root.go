package cmd

import (
	"io"
	"os"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/veedubyou/stem-separator/src/shared/lib/env"
	"github.com/veedubyou/stem-separator/src/shared/lib/logging"
)

type commandContext struct {
	environment env.Environment
	logCloser   io.Closer
}

func (c *commandContext) setup() error {
	// a missing .env is fine, the process environment wins either way
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("No .env file loaded")
	}

	environment, err := env.Parse(os.Getenv(env.Key))
	if err != nil {
		return err
	}

	closer, err := logging.Setup(loggingConfig(environment))
	if err != nil {
		return err
	}

	c.environment = environment
	c.logCloser = closer
	return nil
}

func (c *commandContext) teardown() error {
	if c.logCloser == nil {
		return nil
	}

	return c.logCloser.Close()
}

func NewRootCommand() *cobra.Command {
	ctx := &commandContext{}
	serveCmd := newServeCommand(ctx)

	rootCmd := &cobra.Command{
		Use:           "stem-separator",
		Short:         "Split songs and videos into drums, bass, other and vocals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.teardown()
		},
		RunE: serveCmd.RunE,
	}

	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newPruneCommand(ctx))

	return rootCmd
}

func Execute() error {
	return NewRootCommand().Execute()
}
