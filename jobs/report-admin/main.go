package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "report-admin",
		Short: "Operator tasks for the shift report backend",
		Long: `Operator tasks for the shift report backend.

Configuration is read from --config, or from the file named by CONFIG_FILE_PATH.
Secrets can be overridden with the same environment variables the services use.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv(ENV_CONFIG_FILE_PATH)
			}
			return loadConfig(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (YAML)")

	cmd.AddCommand(
		createIndexesCmd(),
		issueTokenCmd(),
		renderCmd(),
		resendCmd(),
		exportCmd(),
	)
	return cmd
}
