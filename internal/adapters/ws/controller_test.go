package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	router "watchparty/internal/adapters/http"
	"watchparty/internal/adapters/ws"
	"watchparty/internal/app"
	"watchparty/internal/config"
	"watchparty/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	coord := app.NewCoordinator(app.NewRegistry(), app.NewDirectory(), app.NewHistory(50), st)
	ctl := ws.NewController(coord, 32768, time.Minute)

	cfg := &config.Config{Mode: "test", StaticPath: t.TempDir(), Secret: "test-secret"}
	srv := httptest.NewServer(router.SetupRouter(context.Background(), cfg, ctl))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m map[string]any
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

func TestJoinChatLeaveOverWebsocket(t *testing.T) {
	srv := newTestServer(t)

	alice := dial(t, srv)
	send(t, alice, map[string]any{"type": "join-room", "roomId": "r1", "username": "Alice"})
	evt := read(t, alice)
	if evt["type"] != "room-joined" || evt["username"] != "Alice" {
		t.Fatalf("unexpected event %v", evt)
	}

	bob := dial(t, srv)
	send(t, bob, map[string]any{"type": "join-room", "roomId": "r1", "username": "Bob"})
	for _, conn := range []*websocket.Conn{alice, bob} {
		evt := read(t, conn)
		if evt["type"] != "room-joined" || evt["username"] != "Bob" {
			t.Fatalf("unexpected event %v", evt)
		}
		parts := evt["participants"].([]any)
		if len(parts) != 2 {
			t.Fatalf("participants = %v", parts)
		}
	}

	send(t, alice, map[string]any{"type": "chat-message", "roomId": "r1", "message": "hello", "sender": "Alice"})
	for _, conn := range []*websocket.Conn{alice, bob} {
		evt := read(t, conn)
		if evt["type"] != "chat-message" || evt["message"] != "hello" {
			t.Fatalf("unexpected event %v", evt)
		}
		if evt["senderId"] == "" || evt["senderId"] == nil {
			t.Fatalf("senderId not stamped: %v", evt)
		}
	}

	send(t, alice, map[string]any{"type": "video-play", "roomId": "r1"})
	if evt := read(t, bob); evt["type"] != "video-play" {
		t.Fatalf("unexpected event %v", evt)
	}

	alice.Close()
	evt = read(t, bob)
	if evt["type"] != "room-left" || evt["username"] != "Alice" {
		t.Fatalf("unexpected event %v", evt)
	}
	parts := evt["participants"].([]any)
	if len(parts) != 1 || parts[0] != "Bob" {
		t.Fatalf("participants = %v", parts)
	}
}

func TestJoinValidationErrorOverWebsocket(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv)
	send(t, conn, map[string]any{"type": "join-room", "roomId": "r1", "username": ""})
	evt := read(t, conn)
	if evt["type"] != "error" {
		t.Fatalf("unexpected event %v", evt)
	}
}

func TestPingPong(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv)
	send(t, conn, map[string]any{"type": "ping"})
	if evt := read(t, conn); evt["type"] != "pong" {
		t.Fatalf("unexpected event %v", evt)
	}
}
