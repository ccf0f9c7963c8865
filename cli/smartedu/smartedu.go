package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BaeKey/smartedu/internal/cli"
)

var (
	configPath      string
	verbose         bool
	outputFormat    string
	credentialStore string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smartedu",
		Short: "Download textbooks from the national smart education platform",
		Long: `smartedu downloads textbooks from the national smart education platform:
- download: fetch one or more textbooks by ID or detail page URL
- resolve: look up the metadata and artifact of a textbook
- sign, mirrors: debug the auth header and the metadata mirrors`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return cli.InitLogging()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")
	cmd.PersistentFlags().StringVar(&credentialStore, "credentials", "", "credential store file exported from the browser")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.OutputFormat = &outputFormat
	cli.CredentialStore = &credentialStore

	// Add subcommands
	cmd.AddCommand(
		cli.NewDownloadCmd(),
		cli.NewResolveCmd(),
		cli.NewSignCmd(),
		cli.NewMirrorsCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
