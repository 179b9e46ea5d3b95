package cmds

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rosettacloud/shellchat/pkg/config"
	"github.com/rosettacloud/shellchat/pkg/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "shellchat",
	Short: "Streaming chat client for the shell script assistant",
	Long: `shellchat maintains a persistent websocket session to the shell script
assistant service, streams answers as they are generated, and shows the
documents each answer was grounded on.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(logLevel)
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace|debug|info|warn|error)")
}

// loadConfig resolves the effective configuration for a command, letting the
// --log-level flag win when the user set it explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		if err := logging.Setup(cfg.LogLevel); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}
