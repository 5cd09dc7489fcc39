package smartthings

import (
	"context"
	"errors"

	"github.com/mcdix/switchdeck/internal/source"
)

// ErrNotConfigured marks a cloud backend missing its device ID or API token.
// The owning monitor record degrades to error display instead of switching.
var ErrNotConfigured = errors.New("smartthings backend not configured")

// ErrCommandFailed is returned when the cloud rejected or never received an
// input switch command.
var ErrCommandFailed = errors.New("smartthings command failed")

// Adapter exposes the cloud client through the uniform monitor control
// interface.
type Adapter struct {
	client *Client
}

// NewAdapter wraps a cloud client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Query returns the device's active input, or the Unknown sentinel when the
// cloud has nothing to report. It never fails hard.
func (a *Adapter) Query(ctx context.Context) (string, error) {
	if !a.client.Configured() {
		return source.Unknown, ErrNotConfigured
	}
	if name, ok := a.client.CurrentSource(ctx); ok {
		return name, nil
	}
	return source.Unknown, nil
}

// Apply switches the input through the cloud command endpoint.
func (a *Adapter) Apply(ctx context.Context, target string) error {
	if !a.client.Configured() {
		return ErrNotConfigured
	}
	if !a.client.SetSource(ctx, target) {
		return ErrCommandFailed
	}
	return nil
}
