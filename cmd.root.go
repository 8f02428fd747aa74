package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "books",
		Short: "books api server",
		Long: `books serves a CRUD api over books documents.

The configuration is read from an optional yaml file, then from a .env file
in the working directory and finally from the environment variables.`,
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the books api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime, configFile)
			if err != nil {
				return fmt.Errorf("failed to setup app configuration: %w", err)
			}
			app, err := NewApp(config)
			if err != nil {
				return fmt.Errorf("application failed to initialized: %w", err)
			}
			if err = app.Run(); err != nil {
				return fmt.Errorf("application exited. check logs for more details: %w", err)
			}
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the build details of books",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "books tag=%q commit=%q built=%q\n", GitTag, GitCommit, BuildTime)
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to an optional yaml configuration file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
