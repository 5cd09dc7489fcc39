// Package tizen emulates remote-control key presses against a Tizen-style
// smart monitor over its local websocket channel. The device exposes no
// input-source read API, so the active source is tracked in memory and menu
// navigation is an open-loop macro: a fixed key sequence with no feedback
// confirming where the on-screen cursor actually landed.
package tizen

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcdix/switchdeck/internal/logger"
	"github.com/mcdix/switchdeck/internal/source"
)

// State is the remote-control session state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateIdle
	StateNavigating
	StateError
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateIdle:
		return "idle"
	case StateNavigating:
		return "navigating"
	case StateError:
		return "error"
	default:
		return "disconnected"
	}
}

// ErrPairingRequired is returned when the device rejects the session because
// the operator has not yet accepted the pairing prompt on the physical
// screen. It is an actionable instruction, not a generic failure.
var ErrPairingRequired = errors.New("pairing required: select Allow on the monitor screen, then retry")

// ErrNotConnected is returned for operations that need an open channel.
var ErrNotConnected = errors.New("remote control channel not connected")

// Remote-control key codes sent over the channel.
const (
	KeySource = "KEY_SOURCE"
	KeyEnter  = "KEY_ENTER"
	KeyLeft   = "KEY_LEFT"
	KeyRight  = "KEY_RIGHT"
)

// macroStepDelay is the fixed pause between macro steps. The on-screen menu
// animates; sending keys faster than it settles drops them silently.
const macroStepDelay = 300 * time.Millisecond

const remoteChannelPath = "/api/v2/channels/samsung.remote.control"

// commandConn is the slice of *websocket.Conn the remote needs.
type commandConn interface {
	WriteJSON(v interface{}) error
	ReadJSON(v interface{}) error
	Close() error
}

// Remote is one remote-control session against a monitor. Not safe for
// concurrent use; the caller serializes operations per monitor.
type Remote struct {
	host      string
	appName   string
	tokenFile string

	state   State
	tracked string // software-tracked source, never read from the device
	conn    commandConn

	// test seams
	dialURL string
	sleep   func(time.Duration)
}

// NewRemote creates a session handle for the monitor at host. The token file
// holds the pairing credential; its absence only means the first connect
// will require interactive approval on the device.
func NewRemote(host, appName, tokenFile string) *Remote {
	return &Remote{
		host:      host,
		appName:   appName,
		tokenFile: tokenFile,
		sleep:     time.Sleep,
	}
}

// State returns the current session state.
func (r *Remote) State() State { return r.state }

// Tracked returns the software-tracked source ("" when nothing is known yet).
func (r *Remote) Tracked() string { return r.tracked }

// SetTracked seeds the tracked source, e.g. from a persisted last-known value.
func (r *Remote) SetTracked(s string) { r.tracked = source.Normalize(s) }

// Connect opens the control channel. The device answers the handshake with a
// channel event; unauthorized means the operator must accept the pairing
// prompt on the physical screen.
func (r *Remote) Connect(ctx context.Context) error {
	if r.conn != nil {
		return nil
	}
	r.state = StateConnecting

	dialer := websocket.Dialer{
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: true}, // self-signed panel cert
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, r.controlURL(), nil)
	if err != nil {
		r.state = StateError
		return fmt.Errorf("dial %s: %w", r.host, err)
	}

	// The device sends nothing while its Allow/Deny prompt is on screen, so
	// the handshake read must be bounded by the caller's context as well.
	// The watcher goroutine is the primary bound; the read deadline backs it
	// up with slack so ctx.Err() is already set when the read fails.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline.Add(100 * time.Millisecond))
	}
	handshakeDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-handshakeDone:
		}
	}()

	var ev channelEvent
	readErr := conn.ReadJSON(&ev)
	close(handshakeDone)
	if readErr != nil {
		conn.Close()
		r.state = StateError
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("handshake with %s: %w", r.host, ctxErr)
		}
		return fmt.Errorf("read channel event: %w", readErr)
	}
	_ = conn.SetReadDeadline(time.Time{})

	switch ev.Event {
	case "ms.channel.connect":
		if ev.Data.Token != "" {
			r.saveToken(ev.Data.Token)
		}
		r.conn = conn
		r.state = StateIdle
		logger.Debug("remote control channel open", "host", r.host)
		return nil
	case "ms.channel.unauthorized":
		conn.Close()
		r.state = StateError
		return ErrPairingRequired
	default:
		conn.Close()
		r.state = StateError
		return fmt.Errorf("unexpected channel event %q", ev.Event)
	}
}

// SendKey emulates one remote-control key click.
func (r *Remote) SendKey(key string) error {
	if r.conn == nil {
		return ErrNotConnected
	}
	cmd := keyCommand{Method: "ms.remote.control"}
	cmd.Params.Cmd = "Click"
	cmd.Params.DataOfCmd = key
	cmd.Params.Option = "false"
	cmd.Params.TypeOfRemote = "SendRemoteKey"
	if err := r.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("send key %s: %w", key, err)
	}
	return nil
}

// SetInput navigates the on-screen quick menu to the target source. Only
// valid from the idle state. The menu is a fixed two-position toggle with
// HDMI-class left of DisplayPort-class; the macro sends exactly one
// directional key chosen by the class transition. Success is assumed once
// the sequence completes without a transport error, and the tracked state is
// set to the target regardless of what the physical menu actually did.
//
// There is deliberately no post-switch confirmation read: the hardware has
// none to offer. If the on-screen cursor was not where the tracked state
// assumed, tracked and physical state diverge until the operator intervenes.
func (r *Remote) SetInput(target string) error {
	if r.state != StateIdle {
		return fmt.Errorf("cannot switch input while %s", r.state)
	}

	target = source.Normalize(target)
	curClass := source.Classify(r.tracked)
	tgtClass := source.Classify(target)
	if tgtClass == source.ClassUnknown {
		return fmt.Errorf("unsupported target source %q", target)
	}
	if curClass == tgtClass {
		// Already on this side of the toggle; nothing to navigate.
		r.tracked = target
		return nil
	}

	direction := KeyRight // HDMI-class sits left of DisplayPort-class
	if tgtClass == source.ClassHDMI {
		direction = KeyLeft
	}

	r.state = StateNavigating
	defer func() { r.state = StateIdle }()

	logger.Info("running input macro", "host", r.host, "target", target, "direction", direction)
	for _, step := range []struct {
		key   string
		pause bool
	}{
		{KeySource, true},
		{KeyEnter, true},
		{direction, false},
		{KeyEnter, false},
	} {
		if err := r.SendKey(step.key); err != nil {
			return err
		}
		if step.pause {
			r.sleep(macroStepDelay)
		}
	}

	r.tracked = target
	return nil
}

// Close releases the control channel. Always called after a control
// sequence, win or lose; teardown errors are swallowed.
func (r *Remote) Close() {
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			logger.Debug("channel close", "err", err)
		}
		r.conn = nil
	}
	if r.state != StateError {
		r.state = StateDisconnected
	}
}

func (r *Remote) controlURL() string {
	if r.dialURL != "" {
		return r.dialURL
	}
	q := url.Values{}
	q.Set("name", base64.StdEncoding.EncodeToString([]byte(r.appName)))
	if token := r.loadToken(); token != "" {
		q.Set("token", token)
	}
	u := url.URL{Scheme: "wss", Host: r.host + ":8002", Path: remoteChannelPath, RawQuery: q.Encode()}
	return u.String()
}

func (r *Remote) loadToken() string {
	if r.tokenFile == "" {
		return ""
	}
	data, err := os.ReadFile(r.tokenFile)
	if err != nil {
		// Missing token only means this connect will trigger pairing.
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (r *Remote) saveToken(token string) {
	if r.tokenFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.tokenFile), 0o750); err != nil {
		logger.Warn("could not create token directory", "err", err)
		return
	}
	if err := os.WriteFile(r.tokenFile, []byte(token), 0o600); err != nil {
		logger.Warn("could not save pairing token", "file", r.tokenFile, "err", err)
		return
	}
	logger.Info("pairing token saved", "file", r.tokenFile)
}

type channelEvent struct {
	Event string `json:"event"`
	Data  struct {
		Token string `json:"token"`
	} `json:"data"`
}

type keyCommand struct {
	Method string `json:"method"`
	Params struct {
		Cmd          string `json:"Cmd"`
		DataOfCmd    string `json:"DataOfCmd"`
		Option       string `json:"Option"`
		TypeOfRemote string `json:"TypeOfRemote"`
	} `json:"params"`
}
