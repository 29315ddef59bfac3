package conn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// wsHandler is one test server behavior: it gets the accepted socket
// and the token the client attached.
type wsHandler func(ctx context.Context, ws *websocket.Conn, token string)

func startServer(t *testing.T, handle wsHandler) *Manager {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/renju/ws", func(w http.ResponseWriter, req *http.Request) {
		ws, err := websocket.Accept(w, req, nil)
		if err != nil {
			return
		}
		handle(req.Context(), ws, req.URL.Query().Get("token"))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/renju/ws"
	return NewManager(wsURL, nil)
}

func recvPresence(t *testing.T, m *Manager, within time.Duration) Presence {
	t.Helper()
	select {
	case p := <-m.Presence():
		return p
	case <-time.After(within):
		t.Fatalf("timed out waiting for presence")
		return Presence{} // unreachable
	}
}

func recvFrame(t *testing.T, m *Manager, within time.Duration) []byte {
	t.Helper()
	select {
	case data := <-m.Frames():
		return data
	case <-time.After(within):
		t.Fatalf("timed out waiting for frame")
		return nil // unreachable
	}
}

func TestConnectGoesOnlineAndAttachesToken(t *testing.T) {
	tokens := make(chan string, 1)
	m := startServer(t, func(ctx context.Context, ws *websocket.Conn, token string) {
		tokens <- token
		_ = ws.Write(ctx, websocket.MessageText, []byte(`{"action":"online_counter","total":2}`))
		// Hold the socket open until the test ends.
		_, _, _ = ws.Read(ctx)
	})

	if err := m.Connect(context.Background(), "jwt-abc"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(m.Close)

	p := recvPresence(t, m, 2*time.Second)
	if !p.Online {
		t.Fatalf("expected online presence, got %+v", p)
	}
	if got := <-tokens; got != "jwt-abc" {
		t.Fatalf("token not attached: %q", got)
	}

	frame := recvFrame(t, m, 2*time.Second)
	if !strings.Contains(string(frame), "online_counter") {
		t.Fatalf("unexpected frame: %s", frame)
	}
	if m.State() != Connected {
		t.Fatalf("want Connected, got %v", m.State())
	}
}

func TestSendDeliversFrameToServer(t *testing.T) {
	received := make(chan []byte, 1)
	m := startServer(t, func(ctx context.Context, ws *websocket.Conn, _ string) {
		_, data, err := ws.Read(ctx)
		if err == nil {
			received <- data
		}
		_, _, _ = ws.Read(ctx)
	})

	if err := m.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(m.Close)
	recvPresence(t, m, 2*time.Second)

	if err := m.Send(context.Background(), []byte(`{"action":"ready","game_id":"g1"}`)); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case data := <-received:
		if !strings.Contains(string(data), `"action":"ready"`) {
			t.Fatalf("unexpected frame: %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server never received the frame")
	}
}

func TestAuthFailureCloseForcesLogout(t *testing.T) {
	m := startServer(t, func(_ context.Context, ws *websocket.Conn, _ string) {
		_ = ws.Close(StatusAuthFailure, "bad token")
	})

	if err := m.Connect(context.Background(), "expired"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	online := recvPresence(t, m, 2*time.Second)
	if !online.Online {
		t.Fatalf("expected online first, got %+v", online)
	}

	offline := recvPresence(t, m, 2*time.Second)
	if offline.Online {
		t.Fatalf("expected offline, got %+v", offline)
	}
	if !offline.ForcedLogout {
		t.Fatalf("close code %d must force logout", StatusAuthFailure)
	}
	if m.State() != Disconnected {
		t.Fatalf("want Disconnected, got %v", m.State())
	}
}

func TestGenericCloseIsPlainDisconnect(t *testing.T) {
	m := startServer(t, func(_ context.Context, ws *websocket.Conn, _ string) {
		_ = ws.Close(websocket.StatusGoingAway, "server restart")
	})

	if err := m.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	recvPresence(t, m, 2*time.Second) // online

	offline := recvPresence(t, m, 2*time.Second)
	if offline.Online || offline.ForcedLogout {
		t.Fatalf("generic close must not force logout: %+v", offline)
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	m := NewManager("ws://127.0.0.1:1/renju/ws", nil)
	if err := m.Send(context.Background(), []byte("{}")); err != ErrNotConnected {
		t.Fatalf("want ErrNotConnected, got %v", err)
	}
}

func TestReconnectAfterDisconnect(t *testing.T) {
	m := startServer(t, func(_ context.Context, ws *websocket.Conn, _ string) {
		_ = ws.Close(websocket.StatusGoingAway, "bye")
	})

	if err := m.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	recvPresence(t, m, 2*time.Second) // online
	recvPresence(t, m, 2*time.Second) // offline

	// No automatic retry happened; an explicit dial works again.
	if err := m.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	p := recvPresence(t, m, 2*time.Second)
	if !p.Online {
		t.Fatalf("expected online after explicit reconnect, got %+v", p)
	}
}

func TestConnectWhileConnected(t *testing.T) {
	m := startServer(t, func(ctx context.Context, ws *websocket.Conn, _ string) {
		_, _, _ = ws.Read(ctx)
	})

	if err := m.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(m.Close)
	recvPresence(t, m, 2*time.Second)

	if err := m.Connect(context.Background(), "tok"); err != ErrAlreadyConnected {
		t.Fatalf("want ErrAlreadyConnected, got %v", err)
	}
}
