// Package monitor owns the per-monitor records, the detection registry and
// the toggle operation. Each record holds exactly one control backend chosen
// at construction and exposes the same query/apply surface regardless of
// which one it is.
package monitor

import (
	"context"
	"fmt"

	"github.com/mcdix/switchdeck/internal/logger"
	"github.com/mcdix/switchdeck/internal/source"
)

// Kind identifies which control backend a record owns. It never changes
// after construction; re-detection rebuilds records instead of mutating them.
type Kind int

const (
	KindDDC Kind = iota
	KindLocalRemote
	KindCloud
)

func (k Kind) String() string {
	switch k {
	case KindLocalRemote:
		return "local-remote"
	case KindCloud:
		return "cloud"
	default:
		return "ddc"
	}
}

// Controller is the uniform capability surface over the three control
// mechanisms. Exactly one implementation backs each record.
type Controller interface {
	// Query returns the active source in the canonical name space.
	Query(ctx context.Context) (string, error)
	// Apply switches the active source. Failures surface immediately and
	// must not be retried blindly.
	Apply(ctx context.Context, target string) error
}

// Monitor is one detected monitor. Index is positional, assigned at
// detection time, and not guaranteed to survive physical reconnects or
// driver re-enumeration.
type Monitor struct {
	Index int
	Model string
	Kind  Kind

	ctrl   Controller
	quirks Quirks

	software string // tracked override, ground truth for unreliable-read models
	initErr  error
}

// New builds a record around its one controller.
func New(index int, model string, kind Kind, ctrl Controller, quirks Quirks) *Monitor {
	return &Monitor{Index: index, Model: model, Kind: kind, ctrl: ctrl, quirks: quirks}
}

// InitError returns the construction/initial-query failure, if any. A record
// with an init error keeps its tile but never attempts another switch.
func (m *Monitor) InitError() error { return m.initErr }

func (m *Monitor) setInitError(err error) { m.initErr = err }

// Quirks returns the model quirks evaluated at detection time.
func (m *Monitor) Quirks() Quirks { return m.quirks }

// CurrentSource returns the record's effective source: the error sentinel
// for broken records, the software-tracked value for models that misreport
// after software switches, otherwise the live query result degraded to
// Unknown on failure.
func (m *Monitor) CurrentSource(ctx context.Context) string {
	if m.initErr != nil {
		return source.ErrorValue
	}
	if m.quirks.UnreliableRead && m.software != "" {
		return m.software
	}
	val, err := m.ctrl.Query(ctx)
	if err != nil || val == "" {
		return source.Unknown
	}
	return val
}

// SetSource switches the monitor to the target and updates the tracked state
// synchronously on success.
func (m *Monitor) SetSource(ctx context.Context, target string) error {
	if m.initErr != nil {
		return fmt.Errorf("monitor %d (%s) had an initialization error: %w", m.Index, m.Model, m.initErr)
	}
	target = source.Normalize(target)
	logger.Info("setting input source", "monitor", m.Index, "model", m.Model, "target", target)
	if err := m.ctrl.Apply(ctx, target); err != nil {
		return fmt.Errorf("monitor %d (%s): %w", m.Index, m.Model, err)
	}
	m.software = target
	return nil
}
