package monitor

import (
	"context"
	"time"

	"github.com/mcdix/switchdeck/internal/config"
	"github.com/mcdix/switchdeck/internal/ddc"
	"github.com/mcdix/switchdeck/internal/logger"
	"github.com/mcdix/switchdeck/internal/retry"
	"github.com/mcdix/switchdeck/internal/smartthings"
	"github.com/mcdix/switchdeck/internal/tizen"
)

// specialCaseIndex is the position of the known non-DDC model on this desk.
// Positional, and wrong the moment the driver re-enumerates differently;
// the model-substring rule below is the safety net.
const specialCaseIndex = 3

const remoteAppName = "switchdeck"

// Detector builds the monitor registry from one enumeration pass. The config
// is loaded once at process start and handed in; nothing here re-reads disk.
type Detector struct {
	cfg *config.Config

	// enumerate is swappable for tests.
	enumerate func() []ddc.Display
}

// NewDetector creates a detector bound to the loaded configuration.
func NewDetector(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg, enumerate: ddc.Enumerate}
}

// Detect enumerates the host's monitors and builds one record per monitor.
// It never fails: per-monitor problems land in that record's init error and
// the pass continues. Zero detected monitors yields an empty registry.
// Callers must not run two passes concurrently (the panel disables its
// controls while one is in flight).
func (d *Detector) Detect(ctx context.Context) []*Monitor {
	displays := d.enumerate()
	logger.Info("detection pass", "displays", len(displays))

	monitors := make([]*Monitor, 0, len(displays))
	for i, disp := range displays {
		m := d.build(ctx, i, disp)
		logger.Info("monitor registered",
			"index", m.Index, "model", m.Model, "backend", m.Kind, "source", m.CurrentSource(ctx))
		monitors = append(monitors, m)
	}
	return monitors
}

// build classifies one display into a backend. The rule is evaluated exactly
// once per record: the fixed-position special case and the model-substring
// match route to the non-DDC backends, everything else talks DDC/CI.
func (d *Detector) build(ctx context.Context, index int, disp ddc.Display) *Monitor {
	model := disp.Model
	if model == "" {
		model = "N/A"
	}
	quirks := QuirksFor(model)

	if index == specialCaseIndex || quirks.BlindMacroOnly {
		quirks.UnreliableRead = true
		quirks.BlindMacroOnly = true
		return d.buildNonDDC(index, model, quirks)
	}

	m := New(index, model, KindDDC, d.newDDCAdapter(disp.Bus), quirks)
	if disp.Err != nil {
		m.setInitError(disp.Err)
		return m
	}
	// Initial query doubles as the backend health probe.
	if _, err := m.ctrl.Query(ctx); err != nil {
		logger.Warn("initial query failed", "index", index, "model", model, "err", err)
		m.setInitError(err)
	}
	return m
}

// buildNonDDC picks between the local remote-control channel and the cloud
// API for the model that speaks no DDC. Local wins when configured.
func (d *Detector) buildNonDDC(index int, model string, quirks Quirks) *Monitor {
	lc := d.cfg.LocalControl
	if lc.Viable() {
		if model == "N/A" && lc.MonitorName != "" {
			model = lc.MonitorName
		}
		remote := tizen.NewRemote(lc.MonitorIP, remoteAppName, lc.TokenFile)
		return New(index, model, KindLocalRemote, tizen.NewAdapter(remote), quirks)
	}

	client := smartthings.NewClient(d.cfg.SmartThings.DeviceID, d.cfg.SmartThings.APIToken)
	m := New(index, model, KindCloud, smartthings.NewAdapter(client), quirks)
	if !client.Configured() {
		// Missing credentials degrade the record to display-only; the tile
		// still renders.
		m.setInitError(smartthings.ErrNotConfigured)
	}
	return m
}

func (d *Detector) newDDCAdapter(bus ddc.Bus) *ddc.Adapter {
	ctl := d.cfg.Control
	policy := retry.Policy{
		Attempts: ctl.ReadRetries,
		Delay:    time.Duration(ctl.ReadRetryDelaySeconds) * time.Second,
	}
	return ddc.NewAdapter(bus, policy)
}
