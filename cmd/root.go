// Package cmd implements the switchdeck CLI commands.
package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mcdix/switchdeck/internal/config"
	"github.com/mcdix/switchdeck/internal/logger"
	"github.com/mcdix/switchdeck/internal/monitor"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string

	rootCmd = &cobra.Command{
		Use:   "switchdeck",
		Short: "SwitchDeck - multi-monitor input switching",
		Long: `SwitchDeck toggles desktop monitors between their HDMI and DisplayPort
inputs from one place. Monitors that speak DDC/CI are driven directly over
I2C; smart monitors without a DDC channel are driven through local
remote-control emulation or the SmartThings cloud API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config.SetConfigPath(configPath)
			}
			if err := config.Init(); err != nil {
				return err
			}
			if lvl := config.Get().Logging.LogLevel; lvl != "" {
				logger.SetLevel(lvl)
			}
			return nil
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file")

	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(pairCmd)
}

// newToggler builds the toggle operation from the loaded config.
func newToggler(cfg *config.Config) monitor.Toggler {
	return monitor.Toggler{
		Settle: time.Duration(cfg.Control.SettleDelaySeconds) * time.Second,
	}
}
