package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdix/switchdeck/internal/source"
)

// fakeController scripts a backend for record tests.
type fakeController struct {
	reported string // what Query claims the hardware shows
	queryErr error
	applyErr error

	applied []string
	queries int
}

func (f *fakeController) Query(ctx context.Context) (string, error) {
	f.queries++
	return f.reported, f.queryErr
}

func (f *fakeController) Apply(ctx context.Context, target string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, target)
	return nil
}

func TestCurrentSource(t *testing.T) {
	ctx := context.Background()

	t.Run("reliable model reports the live query result", func(t *testing.T) {
		ctrl := &fakeController{reported: source.HDMI1}
		m := New(0, "U2723QE", KindDDC, ctrl, Quirks{})

		assert.Equal(t, source.HDMI1, m.CurrentSource(ctx))
		assert.Equal(t, 1, ctrl.queries)
	})

	t.Run("query failure degrades to Unknown", func(t *testing.T) {
		ctrl := &fakeController{queryErr: errors.New("i2c timeout")}
		m := New(0, "U2723QE", KindDDC, ctrl, Quirks{})

		assert.Equal(t, source.Unknown, m.CurrentSource(ctx))
	})

	t.Run("init error is terminal for the record", func(t *testing.T) {
		ctrl := &fakeController{reported: source.HDMI1}
		m := New(1, "U2723QE", KindDDC, ctrl, Quirks{})
		m.setInitError(errors.New("no EDID"))

		assert.Equal(t, source.ErrorValue, m.CurrentSource(ctx))
		assert.Zero(t, ctrl.queries, "broken records must not touch the backend")

		err := m.SetSource(ctx, source.DP1)
		require.Error(t, err)
		assert.Empty(t, ctrl.applied)
	})
}

func TestUnreliableReadTracking(t *testing.T) {
	ctx := context.Background()

	t.Run("tracked value overrides the backend after a switch", func(t *testing.T) {
		// The hardware keeps claiming HDMI 1 no matter what was written.
		ctrl := &fakeController{reported: source.HDMI1}
		m := New(0, "AOC C24G2U", KindDDC, ctrl, Quirks{UnreliableRead: true})

		require.NoError(t, m.SetSource(ctx, source.DP1))

		for i := 0; i < 100; i++ {
			assert.Equal(t, source.DP1, m.CurrentSource(ctx))
		}
		assert.Zero(t, ctrl.queries, "tracked state must answer without querying")
	})

	t.Run("before any switch the live query still answers", func(t *testing.T) {
		ctrl := &fakeController{reported: source.HDMI2}
		m := New(0, "AOC C24G2U", KindDDC, ctrl, Quirks{UnreliableRead: true})

		assert.Equal(t, source.HDMI2, m.CurrentSource(ctx))
	})

	t.Run("failed switch leaves the tracked state untouched", func(t *testing.T) {
		ctrl := &fakeController{reported: source.HDMI1, applyErr: errors.New("write failed")}
		m := New(0, "AOC C24G2U", KindDDC, ctrl, Quirks{UnreliableRead: true})

		require.Error(t, m.SetSource(ctx, source.DP1))
		assert.Equal(t, source.HDMI1, m.CurrentSource(ctx))
	})
}

func TestSetSource(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes the target before applying", func(t *testing.T) {
		ctrl := &fakeController{}
		m := New(0, "U2723QE", KindDDC, ctrl, Quirks{})

		require.NoError(t, m.SetSource(ctx, "dp1"))
		require.Len(t, ctrl.applied, 1)
		assert.Equal(t, source.DP1, ctrl.applied[0])
	})

	t.Run("apply failures carry the monitor identity", func(t *testing.T) {
		cause := errors.New("unauthorized")
		ctrl := &fakeController{applyErr: cause}
		m := New(2, "Odyssey G8", KindLocalRemote, ctrl, Quirks{UnreliableRead: true, BlindMacroOnly: true})

		err := m.SetSource(ctx, source.HDMI1)
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "monitor 2")
	})
}

func TestQuirksFor(t *testing.T) {
	tests := []struct {
		model string
		want  Quirks
	}{
		{"SAMSUNG Odyssey G8", Quirks{UnreliableRead: true, BlindMacroOnly: true}},
		{"LS32BG85", Quirks{UnreliableRead: true, BlindMacroOnly: true}},
		{"AOC C24G2U", Quirks{UnreliableRead: true}},
		{"c24g2u", Quirks{UnreliableRead: true}},
		{"DELL U2723QE", Quirks{}},
		{"N/A", Quirks{}},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, QuirksFor(tt.model))
		})
	}
}
