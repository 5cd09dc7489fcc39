package ddc

import (
	"context"
	"fmt"

	"github.com/mcdix/switchdeck/internal/logger"
	"github.com/mcdix/switchdeck/internal/retry"
	"github.com/mcdix/switchdeck/internal/source"
)

// Adapter drives one monitor's input source over its DDC bus.
type Adapter struct {
	bus  Bus
	read retry.Policy
}

// NewAdapter wires a bus to a read-retry policy. Reads right after an input
// switch commonly fail while the monitor settles, hence the policy; writes
// are never retried.
func NewAdapter(bus Bus, read retry.Policy) *Adapter {
	return &Adapter{bus: bus, read: read}
}

// Query reads the active input source and normalizes it into the canonical
// name space. After the retry budget is spent it returns the Unknown
// sentinel alongside the error.
func (a *Adapter) Query(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return source.Unknown, err
	}

	var value uint16
	err := a.read.Do(func() error {
		v, err := a.bus.GetVCP(VCPInputSource)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		logger.Warn("input source read failed", "bus", a.bus.Path, "err", err)
		return source.Unknown, err
	}
	return source.FromVCP(value), nil
}

// Apply switches the active input source. A failed write is surfaced
// immediately and never retried.
func (a *Adapter) Apply(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	code, ok := source.ToVCP(target)
	if !ok {
		return fmt.Errorf("no VCP code for source %q", target)
	}
	logger.Info("switching input over DDC", "bus", a.bus.Path, "target", target, "code", code)
	if err := a.bus.SetVCP(VCPInputSource, code); err != nil {
		return fmt.Errorf("set input source: %w", err)
	}
	return nil
}
