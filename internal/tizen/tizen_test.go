package tizen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcdix/switchdeck/internal/source"
)

// fakeConn records key presses without a network.
type fakeConn struct {
	keys    []string
	failAt  int // 1-based index of the write that should fail; 0 = never
	writes  int
	closed  bool
	readErr error
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.writes++
	if f.failAt > 0 && f.writes == f.failAt {
		return errors.New("broken pipe")
	}
	if cmd, ok := v.(keyCommand); ok {
		f.keys = append(f.keys, cmd.Params.DataOfCmd)
	}
	return nil
}

func (f *fakeConn) ReadJSON(v interface{}) error { return f.readErr }
func (f *fakeConn) Close() error                 { f.closed = true; return nil }

func idleRemote(conn commandConn) *Remote {
	r := NewRemote("192.0.2.1", "switchdeck", "")
	r.conn = conn
	r.state = StateIdle
	r.sleep = func(time.Duration) {}
	return r
}

func TestSetInputHDMIToDisplayPort(t *testing.T) {
	conn := &fakeConn{}
	r := idleRemote(conn)
	r.SetTracked("HDMI1")

	if err := r.SetInput("DP1"); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}

	want := []string{KeySource, KeyEnter, KeyRight, KeyEnter}
	if len(conn.keys) != len(want) {
		t.Fatalf("sent keys %v, want %v", conn.keys, want)
	}
	for i, k := range want {
		if conn.keys[i] != k {
			t.Errorf("key %d = %s, want %s", i, conn.keys[i], k)
		}
	}

	// Exactly one directional key, and it must be RIGHT for HDMI→DP.
	var rights, lefts int
	for _, k := range conn.keys {
		switch k {
		case KeyRight:
			rights++
		case KeyLeft:
			lefts++
		}
	}
	if rights != 1 || lefts != 0 {
		t.Errorf("directional keys: %d right, %d left; want exactly 1 right", rights, lefts)
	}

	// Tracked state is set optimistically: no hardware confirmation exists.
	if r.Tracked() != source.DP1 {
		t.Errorf("tracked = %q, want %q", r.Tracked(), source.DP1)
	}
}

func TestSetInputDisplayPortToHDMIUsesLeft(t *testing.T) {
	conn := &fakeConn{}
	r := idleRemote(conn)
	r.SetTracked("DisplayPort 1")

	if err := r.SetInput("HDMI 1"); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	var directional []string
	for _, k := range conn.keys {
		if k == KeyLeft || k == KeyRight {
			directional = append(directional, k)
		}
	}
	if len(directional) != 1 || directional[0] != KeyLeft {
		t.Errorf("directional keys = %v, want exactly one LEFT", directional)
	}
}

func TestSetInputSameClassSkipsMacro(t *testing.T) {
	conn := &fakeConn{}
	r := idleRemote(conn)
	r.SetTracked("HDMI 2")

	if err := r.SetInput("HDMI 1"); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	if len(conn.keys) != 0 {
		t.Errorf("expected no keys for same-class switch, got %v", conn.keys)
	}
	if r.Tracked() != source.HDMI1 {
		t.Errorf("tracked = %q, want %q", r.Tracked(), source.HDMI1)
	}
}

func TestSetInputRequiresIdleState(t *testing.T) {
	r := NewRemote("192.0.2.1", "switchdeck", "")
	if err := r.SetInput("DP1"); err == nil {
		t.Error("expected error when disconnected")
	}
}

func TestSetInputTransportErrorKeepsTrackedState(t *testing.T) {
	conn := &fakeConn{failAt: 3}
	r := idleRemote(conn)
	r.SetTracked("HDMI1")

	if err := r.SetInput("DP1"); err == nil {
		t.Fatal("expected transport error")
	}
	if r.Tracked() != source.HDMI1 {
		t.Errorf("tracked = %q, want unchanged %q", r.Tracked(), source.HDMI1)
	}
	if r.State() != StateIdle {
		t.Errorf("state = %v, want idle after failed macro", r.State())
	}
}

func TestSetInputRejectsUnknownTarget(t *testing.T) {
	conn := &fakeConn{}
	r := idleRemote(conn)
	r.SetTracked("HDMI1")

	if err := r.SetInput("Composite"); err == nil {
		t.Error("expected error for unclassifiable target")
	}
}

func wsTestServer(t *testing.T, event string, token string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		msg := map[string]interface{}{
			"event": event,
			"data":  map[string]string{"token": token},
		}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
		// Drain key commands until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestConnectSavesToken(t *testing.T) {
	srv := wsTestServer(t, "ms.channel.connect", "tok-123")
	defer srv.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.txt")
	r := NewRemote("192.0.2.1", "switchdeck", tokenFile)
	r.dialURL = "ws" + strings.TrimPrefix(srv.URL, "http")

	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer r.Close()

	if r.State() != StateIdle {
		t.Errorf("state = %v, want idle", r.State())
	}
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if string(data) != "tok-123" {
		t.Errorf("token = %q, want %q", data, "tok-123")
	}
}

func TestConnectHonorsContextDeadline(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Send nothing: the device is sitting on its Allow/Deny prompt.
		// Returns once the client gives up and closes its side.
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	r := NewRemote("192.0.2.1", "switchdeck", "")
	r.dialURL = "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := r.Connect(ctx)
	if err == nil {
		r.Close()
		t.Fatal("expected Connect to fail once the deadline passed")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect returned after %v, deadline was 300ms", elapsed)
	}
	if r.State() != StateError {
		t.Errorf("state = %v, want error", r.State())
	}
}

func TestConnectHonorsCancellation(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	r := NewRemote("192.0.2.1", "switchdeck", "")
	r.dialURL = "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := r.Connect(ctx)
	if err == nil {
		r.Close()
		t.Fatal("expected Connect to fail after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect returned after %v, cancel fired at 100ms", elapsed)
	}
}

func TestConnectUnauthorizedSurfacesPairing(t *testing.T) {
	srv := wsTestServer(t, "ms.channel.unauthorized", "")
	defer srv.Close()

	r := NewRemote("192.0.2.1", "switchdeck", "")
	r.dialURL = "ws" + strings.TrimPrefix(srv.URL, "http")

	err := r.Connect(context.Background())
	if !errors.Is(err, ErrPairingRequired) {
		t.Fatalf("expected ErrPairingRequired, got %v", err)
	}
	if r.State() != StateError {
		t.Errorf("state = %v, want error", r.State())
	}
}

func TestCloseSwallowsTeardownErrors(t *testing.T) {
	conn := &fakeConn{}
	r := idleRemote(conn)
	r.Close()
	if !conn.closed {
		t.Error("expected connection to be closed")
	}
	if r.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected", r.State())
	}
	// Closing again is a no-op.
	r.Close()
}
