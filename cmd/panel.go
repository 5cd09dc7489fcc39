package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mcdix/switchdeck/internal/config"
	"github.com/mcdix/switchdeck/internal/monitor"
	"github.com/mcdix/switchdeck/internal/ui"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive control panel",
	Long: `Open the interactive control panel. Each detected monitor gets a tile;
digit keys toggle the matching monitor between HDMI and DisplayPort,
r re-runs detection and q quits.`,
	RunE: runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	return ui.Run(monitor.NewDetector(cfg), newToggler(cfg))
}
