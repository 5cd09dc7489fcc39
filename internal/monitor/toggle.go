package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/mcdix/switchdeck/internal/logger"
	"github.com/mcdix/switchdeck/internal/source"
)

// ControlError reports a failed switch attempt on one monitor. It is fatal
// to that single operation only; the rest of the registry stays usable.
type ControlError struct {
	Index  int
	Target string
	Err    error
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("monitor %d: switch to %s failed: %v", e.Index, e.Target, e.Err)
}

func (e *ControlError) Unwrap() error { return e.Err }

// Toggler flips a monitor between the HDMI and DisplayPort families. Settle
// is the pause imposed after a successful switch so the monitor finishes
// resyncing before the next command reaches it.
type Toggler struct {
	Settle time.Duration

	// Sleep is swappable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// Toggle reads the monitor's effective source, classifies it and switches to
// the first input of the opposite family. Sources that classify as neither
// family (Unknown included) are forced to HDMI 1. It returns the source the
// monitor was switched to.
func (t Toggler) Toggle(ctx context.Context, m *Monitor) (string, error) {
	current := m.CurrentSource(ctx)
	class := source.Classify(current)
	target := source.OppositeTarget(class)
	logger.Info("toggling input", "monitor", m.Index, "current", current, "class", class, "target", target)

	if err := m.SetSource(ctx, target); err != nil {
		return "", &ControlError{Index: m.Index, Target: target, Err: err}
	}

	t.sleep(t.Settle)
	return target, nil
}

func (t Toggler) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if t.Sleep != nil {
		t.Sleep(d)
		return
	}
	time.Sleep(d)
}
