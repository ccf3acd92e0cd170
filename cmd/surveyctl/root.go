package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/signsurvey/internal/logging"
)

const defaultServer = "http://localhost:8080"

type rootOptions struct {
	server   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Import and inspect sign survey exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.logLevel, "text")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	server := os.Getenv("SIGNSURVEY_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "signsurvey server URL (env SIGNSURVEY_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newImportCmd(opts),
		newReconstructCmd(),
		newGetCmd(opts),
	)
	return cmd
}
