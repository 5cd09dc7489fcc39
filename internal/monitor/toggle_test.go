package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdix/switchdeck/internal/source"
)

func TestToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("HDMI flips to DisplayPort", func(t *testing.T) {
		ctrl := &fakeController{reported: source.HDMI1}
		m := New(0, "U2723QE", KindDDC, ctrl, Quirks{})

		got, err := Toggler{}.Toggle(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, source.DP1, got)
		assert.Equal(t, []string{source.DP1}, ctrl.applied)
	})

	t.Run("DisplayPort flips to HDMI", func(t *testing.T) {
		ctrl := &fakeController{reported: source.DP2}
		m := New(0, "U2723QE", KindDDC, ctrl, Quirks{})

		got, err := Toggler{}.Toggle(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, source.HDMI1, got)
	})

	t.Run("USB-C counts as DisplayPort class", func(t *testing.T) {
		ctrl := &fakeController{reported: source.USBC}
		m := New(0, "U2723QE", KindDDC, ctrl, Quirks{})

		got, err := Toggler{}.Toggle(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, source.HDMI1, got)
	})

	t.Run("unclassifiable source forces HDMI 1", func(t *testing.T) {
		ctrl := &fakeController{queryErr: errors.New("i2c timeout")}
		m := New(0, "U2723QE", KindDDC, ctrl, Quirks{})

		got, err := Toggler{}.Toggle(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, source.HDMI1, got)
	})

	t.Run("settle delay runs once after a successful switch", func(t *testing.T) {
		ctrl := &fakeController{reported: source.HDMI1}
		m := New(0, "U2723QE", KindDDC, ctrl, Quirks{})

		var slept []time.Duration
		toggler := Toggler{
			Settle: 2 * time.Second,
			Sleep:  func(d time.Duration) { slept = append(slept, d) },
		}
		_, err := toggler.Toggle(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{2 * time.Second}, slept)
	})

	t.Run("failure wraps in ControlError and skips the settle delay", func(t *testing.T) {
		cause := errors.New("write failed")
		ctrl := &fakeController{reported: source.HDMI1, applyErr: cause}
		m := New(4, "U2723QE", KindDDC, ctrl, Quirks{})

		var slept int
		toggler := Toggler{
			Settle: 2 * time.Second,
			Sleep:  func(time.Duration) { slept++ },
		}
		_, err := toggler.Toggle(ctx, m)
		require.Error(t, err)

		var ctrlErr *ControlError
		require.ErrorAs(t, err, &ctrlErr)
		assert.Equal(t, 4, ctrlErr.Index)
		assert.Equal(t, source.DP1, ctrlErr.Target)
		assert.ErrorIs(t, err, cause)
		assert.Zero(t, slept)
	})

	t.Run("consecutive toggles alternate on an unreliable-read model", func(t *testing.T) {
		// The hardware never changes its story; the tracked state must drive
		// the direction anyway.
		ctrl := &fakeController{reported: source.HDMI1}
		m := New(0, "AOC C24G2U", KindDDC, ctrl, Quirks{UnreliableRead: true})
		toggler := Toggler{}

		first, err := toggler.Toggle(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, source.DP1, first)

		second, err := toggler.Toggle(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, source.HDMI1, second)

		assert.Equal(t, []string{source.DP1, source.HDMI1}, ctrl.applied)
	})
}
