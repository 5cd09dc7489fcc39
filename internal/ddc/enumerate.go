package ddc

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mcdix/switchdeck/internal/logger"
)

// Display is one monitor found during bus enumeration. Err records a
// per-display probe failure; enumeration itself never fails as a whole.
type Display struct {
	Bus   Bus
	Model string
	Err   error
}

// Enumerate scans the host's i2c buses for displays, in bus-number order.
// That order defines the monitor index for the rest of the system; it is
// positional only and not guaranteed stable across physical reconnects or
// driver re-enumeration.
func Enumerate() []Display {
	paths, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		// Only happens on a malformed pattern; treat as no buses.
		return nil
	}
	sort.Slice(paths, func(i, j int) bool { return busNumber(paths[i]) < busNumber(paths[j]) })

	var displays []Display
	for _, path := range paths {
		bus := Bus{Path: path}
		edid, err := bus.ReadEDID()
		if err != nil {
			// Not a display bus (GPU aux channels etc); skip quietly.
			logger.Debug("no display on bus", "bus", path, "err", err)
			continue
		}
		model := modelFromEDID(edid)
		logger.Debug("found display", "bus", path, "model", model)
		displays = append(displays, Display{Bus: bus, Model: model})
	}
	return displays
}

func busNumber(path string) int {
	idx := strings.LastIndexByte(path, '-')
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(path[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
