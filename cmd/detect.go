package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcdix/switchdeck/internal/config"
	"github.com/mcdix/switchdeck/internal/monitor"
)

// MonitorInfo is one detected monitor in the detect output.
type MonitorInfo struct {
	Index   int    `json:"index"`
	Model   string `json:"model"`
	Backend string `json:"backend"`
	Source  string `json:"source"`
	Error   string `json:"error,omitempty"`
}

var jsonOutput bool

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect monitors and show their state",
	Long:  `Run one detection pass and print each monitor's model, control backend and active input source.`,
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	monitors := monitor.NewDetector(config.Get()).Detect(ctx)

	infos := make([]MonitorInfo, len(monitors))
	for i, m := range monitors {
		infos[i] = MonitorInfo{
			Index:   m.Index,
			Model:   m.Model,
			Backend: m.Kind.String(),
			Source:  m.CurrentSource(ctx),
		}
		if err := m.InitError(); err != nil {
			infos[i].Error = err.Error()
		}
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(struct {
			Monitors []MonitorInfo `json:"monitors"`
		}{Monitors: infos})
	}

	if len(infos) == 0 {
		fmt.Println("No monitors detected")
		return nil
	}

	fmt.Printf("Detected %d monitor(s):\n\n", len(infos))
	for _, info := range infos {
		fmt.Printf("Monitor %d:\n", info.Index+1)
		fmt.Printf("  Model:   %s\n", info.Model)
		fmt.Printf("  Backend: %s\n", info.Backend)
		fmt.Printf("  Source:  %s\n", info.Source)
		if info.Error != "" {
			fmt.Printf("  Error:   %s\n", info.Error)
		}
		fmt.Println()
	}
	return nil
}
