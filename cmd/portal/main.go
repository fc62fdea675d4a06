// Package main provides the entry point for the career portal command-line client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/career-portal/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath     string
	apiURL         string
	sessionFile    string
	sessionBackend string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "portal",
		Short:         "Career portal client",
		Long:          "Career portal client: manage your professional profile and get personalized course and job recommendations.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	flags.StringVar(&opts.apiURL, "api-url", "", "Backend base URL (defaults to $"+config.EnvAPIBaseURL+" or "+config.DefaultAPIBaseURL+")")
	flags.StringVar(&opts.sessionFile, "session-file", "", "Where the file session backend keeps the credential")
	flags.StringVar(&opts.sessionBackend, "session-backend", "", "Session storage: file, redis or memory")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newDashboardCmd(opts),
		newRegenerateCmd(opts),
		newProfileCmd(opts),
		newResumeCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
