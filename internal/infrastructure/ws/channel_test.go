package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/pkg/logger"
)

var upgrader = websocket.Upgrader{}

// broadcastServer upgrades one connection and writes each queued frame, then
// holds the connection open until the test finishes.
func broadcastServer(t *testing.T, frames []string) *Dialer {
	t.Helper()
	hold := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		<-hold
	}))
	t.Cleanup(func() {
		close(hold)
		srv.Close()
	})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return NewDialer(wsURL, logger.Nop())
}

func collect(t *testing.T, ch <-chan domain.Envelope, n int) []domain.Envelope {
	t.Helper()
	var out []domain.Envelope
	deadline := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case env, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %d of %d envelopes", len(out), n)
			}
			out = append(out, env)
		case <-deadline:
			t.Fatalf("timed out after %d of %d envelopes", len(out), n)
		}
	}
	return out
}

func TestChannel_DeliversInArrivalOrder(t *testing.T) {
	d := broadcastServer(t, []string{
		`{"type": "task-changed", "data": {"id": 1}}`,
		`{"type": "notification-changed", "data": {"id": 2}}`,
		`{"type": "audit-appended", "data": {"id": 3}}`,
	})

	ch, err := d.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	got := collect(t, ch.Events(), 3)
	want := []string{domain.EventTaskChanged, domain.EventNotificationChanged, domain.EventAuditAppended}
	for i, env := range got {
		if env.Type != want[i] {
			t.Fatalf("position %d: want %s, got %s", i, want[i], env.Type)
		}
	}
}

// Frames that can't be parsed, lack a type, or carry an unrecognized type are
// dropped without disturbing the frames around them.
func TestChannel_DropsBadFrames(t *testing.T) {
	d := broadcastServer(t, []string{
		`{"type": "task-changed", "data": {"id": 1}}`,
		`this is not json`,
		`{"data": {"id": 9}}`,
		`{"type": "TASK_UPDATE", "data": {"id": 9}}`,
		`{"type": "task-removed", "data": {"id": 1}}`,
	})

	ch, err := d.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	got := collect(t, ch.Events(), 2)
	if got[0].Type != domain.EventTaskChanged || got[1].Type != domain.EventTaskRemoved {
		t.Fatalf("bad frames disturbed delivery: %s, %s", got[0].Type, got[1].Type)
	}
}

func TestChannel_CloseEndsStream(t *testing.T) {
	d := broadcastServer(t, nil)

	ch, err := d.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("second close must be a no-op: %v", err)
	}

	select {
	case _, ok := <-ch.Events():
		if ok {
			t.Fatalf("envelope delivered after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("events channel not closed after Close")
	}
}

func TestChannel_ServerDropEndsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close() // immediate server-side drop
	}))
	defer srv.Close()

	d := NewDialer("ws"+strings.TrimPrefix(srv.URL, "http"), logger.Nop())
	ch, err := d.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	select {
	case _, ok := <-ch.Events():
		if ok {
			t.Fatalf("unexpected envelope from dropped connection")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not end after server drop")
	}
}

func TestChannel_DialFailure(t *testing.T) {
	d := NewDialer("ws://127.0.0.1:1/ws", logger.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := d.Dial(ctx); err == nil {
		t.Fatalf("expected dial failure")
	}
}

func TestDeriveURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"http://localhost:8000", "ws://localhost:8000/ws"},
		{"https://erp.example.com", "wss://erp.example.com/ws"},
		{"http://10.0.0.5:8000/api?x=1", "ws://10.0.0.5:8000/ws"},
	}
	for _, tc := range cases {
		got, err := DeriveURL(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%s: want %s, got %s", tc.in, tc.want, got)
		}
	}
}
