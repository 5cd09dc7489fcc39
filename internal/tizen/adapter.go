package tizen

import (
	"context"

	"github.com/mcdix/switchdeck/internal/source"
)

// Adapter exposes the remote-control session through the uniform monitor
// control interface.
type Adapter struct {
	remote *Remote
}

// NewAdapter wraps a remote-control session.
func NewAdapter(remote *Remote) *Adapter {
	return &Adapter{remote: remote}
}

// Query returns the software-tracked source. The device offers no reliable
// read, so this never touches the network.
func (a *Adapter) Query(_ context.Context) (string, error) {
	if tracked := a.remote.Tracked(); tracked != "" {
		return tracked, nil
	}
	return source.Unknown, nil
}

// Apply connects, runs the input macro, and releases the channel on every
// exit path. Once the macro starts it runs to completion; with no feedback
// from the device, cancelling mid-sequence would only desync further.
func (a *Adapter) Apply(ctx context.Context, target string) error {
	if err := a.remote.Connect(ctx); err != nil {
		return err
	}
	defer a.remote.Close()
	return a.remote.SetInput(target)
}
