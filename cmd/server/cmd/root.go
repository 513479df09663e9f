package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	serveCmd := newServeCommand(opts)

	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Event registration API server",
		Long: `Event registration API server.

Users sign up and log in with bearer tokens, organizers publish events and
attendees register for them. Confirmation emails are sent on sign-up and on
event registration.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (environment variables override it)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (json, console) (default: json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newHealthcheckCommand(opts))
	rootCmd.AddCommand(newTokenCommand(opts))
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
