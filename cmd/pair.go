package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mcdix/switchdeck/internal/config"
	"github.com/mcdix/switchdeck/internal/tizen"
)

// pairTimeout bounds the whole pairing handshake, including the time the
// user spends reaching for the remote to press Allow.
const pairTimeout = 60 * time.Second

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Pair with a smart monitor on the local network",
	Long: `Pair with a smart monitor's remote-control channel. The monitor shows
an Allow/Deny prompt on first connect; accepting it yields a token that is
saved and reused, so pairing is a one-time step per monitor.`,
	RunE: runPair,
}

func runPair(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	lc := cfg.LocalControl

	var (
		monitorIP   = lc.MonitorIP
		monitorName = lc.MonitorName
	)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Monitor IP address").
				Description("The monitor's address on your local network").
				Value(&monitorIP).
				Validate(func(s string) error {
					if net.ParseIP(s) == nil {
						return fmt.Errorf("not a valid IP address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Monitor name (optional)").
				Description("Shown on its tile when the monitor reports no model").
				Value(&monitorName),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("pairing cancelled: %w", err)
	}

	if lc.TokenFile == "" {
		lc.TokenFile = config.DefaultConfig.LocalControl.TokenFile
	}

	fmt.Println("Connecting... watch the monitor for an Allow/Deny prompt.")

	ctx, cancel := context.WithTimeout(cmd.Context(), pairTimeout)
	defer cancel()

	remote := tizen.NewRemote(monitorIP, "switchdeck", lc.TokenFile)
	if err := remote.Connect(ctx); err != nil {
		if errors.Is(err, tizen.ErrPairingRequired) {
			return fmt.Errorf("the monitor denied the connection: select Allow on its screen and run pair again")
		}
		return fmt.Errorf("could not reach the monitor at %s: %w", monitorIP, err)
	}
	remote.Close()

	lc.Enabled = true
	lc.MonitorIP = monitorIP
	lc.MonitorName = monitorName
	if err := config.UpdateLocalControl(lc); err != nil {
		return fmt.Errorf("paired, but saving the config failed: %w", err)
	}

	fmt.Printf("Paired with %s. Token saved to %s.\n", monitorIP, lc.TokenFile)
	return nil
}
