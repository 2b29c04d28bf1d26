// Package cli provides the command-line interface for fetchpipe.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fetchpipe/fetchpipe/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fetchpipe",
		Short: "fetchpipe - pipe query to FetchXML compiler",
		Long: `fetchpipe compiles a terse pipe-chained query language into the
FetchXML markup understood by the remote data platform.

The compiler never executes queries; it only translates them, so every
command here is a dry run against the generated markup.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: fetchpipe.yaml, discovered upward)")

	rootCmd.AddCommand(NewCompileCommand())
	rootCmd.AddCommand(NewTokensCommand())
	rootCmd.AddCommand(NewReplCommand())
	rootCmd.AddCommand(NewVersionCommand())
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the compile policy for the working directory.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(wd, cfgFile)
}
