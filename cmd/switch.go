package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcdix/switchdeck/internal/config"
	"github.com/mcdix/switchdeck/internal/monitor"
)

var switchCmd = &cobra.Command{
	Use:   "switch <monitor> [source]",
	Short: "Switch one monitor's input source",
	Long: `Switch one monitor's input source. The monitor is addressed by its
one-based detection index (see "switchdeck detect"). Without a source
argument the monitor toggles to the opposite input family; with one it
switches to that source ("HDMI 1", "dp1", "usb-c", ...).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSwitch,
}

func runSwitch(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 1 {
		return fmt.Errorf("invalid monitor index %q: expected a one-based number", args[0])
	}

	ctx := cmd.Context()
	cfg := config.Get()
	monitors := monitor.NewDetector(cfg).Detect(ctx)
	if index > len(monitors) {
		return fmt.Errorf("monitor %d not found: %d monitor(s) detected", index, len(monitors))
	}
	m := monitors[index-1]

	if len(args) == 2 {
		target := args[1]
		if err := m.SetSource(ctx, target); err != nil {
			return err
		}
		fmt.Printf("Monitor %d (%s) switched to %s\n", index, m.Model, m.CurrentSource(ctx))
		return nil
	}

	target, err := newToggler(cfg).Toggle(ctx, m)
	if err != nil {
		return err
	}
	fmt.Printf("Monitor %d (%s) switched to %s\n", index, m.Model, target)
	return nil
}
