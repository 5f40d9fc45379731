package watch

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialReload starts rs behind a test server and connects one client
func dialReload(t *testing.T, rs *ReloadServer) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(rs.HandleWebSocket))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Give time for registration
	time.Sleep(50 * time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ReloadMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return msg
}

func TestReloadServer_HandleWebSocket(t *testing.T) {
	rs := NewReloadServer(nil)
	defer rs.Close()

	dialReload(t, rs)

	if rs.ConnectionCount() != 1 {
		t.Errorf("Expected 1 connection, got %d", rs.ConnectionCount())
	}
}

func TestReloadServer_NotifyBuilding(t *testing.T) {
	rs := NewReloadServer(nil)
	defer rs.Close()
	conn := dialReload(t, rs)

	rs.NotifyBuilding([]string{"_toc.yml", "README.md"})

	msg := readMessage(t, conn)
	if msg.Type != MessageBuilding {
		t.Errorf("Expected type %q, got %q", MessageBuilding, msg.Type)
	}
	if len(msg.Files) != 2 {
		t.Errorf("Expected 2 files, got %d", len(msg.Files))
	}
	if msg.Timestamp == 0 {
		t.Error("Expected timestamp to be set")
	}
}

func TestReloadServer_NotifyReload(t *testing.T) {
	rs := NewReloadServer(nil)
	defer rs.Close()
	conn := dialReload(t, rs)

	rs.NotifyReload()

	if msg := readMessage(t, conn); msg.Type != MessageReload {
		t.Errorf("Expected type %q, got %q", MessageReload, msg.Type)
	}
}

func TestReloadServer_NotifyError(t *testing.T) {
	rs := NewReloadServer(nil)
	defer rs.Close()
	conn := dialReload(t, rs)

	rs.NotifyError(errors.New("sphinx-build: exit status 2"))

	msg := readMessage(t, conn)
	if msg.Type != MessageError {
		t.Errorf("Expected type %q, got %q", MessageError, msg.Type)
	}
	if msg.Error != "sphinx-build: exit status 2" {
		t.Errorf("Unexpected error text %q", msg.Error)
	}
}

func TestReloadServer_MultipleConnections(t *testing.T) {
	rs := NewReloadServer(nil)
	defer rs.Close()

	server := httptest.NewServer(http.HandlerFunc(rs.HandleWebSocket))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect client %d: %v", i, err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}
	time.Sleep(100 * time.Millisecond)

	if rs.ConnectionCount() != 3 {
		t.Fatalf("Expected 3 connections, got %d", rs.ConnectionCount())
	}

	rs.NotifyReload()
	for _, conn := range conns {
		if msg := readMessage(t, conn); msg.Type != MessageReload {
			t.Errorf("Expected type %q, got %q", MessageReload, msg.Type)
		}
	}
}

func TestReloadServer_Disconnect(t *testing.T) {
	rs := NewReloadServer(nil)
	defer rs.Close()

	conn := dialReload(t, rs)
	conn.Close()
	time.Sleep(100 * time.Millisecond)

	if rs.ConnectionCount() != 0 {
		t.Errorf("Expected 0 connections after disconnect, got %d", rs.ConnectionCount())
	}
}

func TestReloadServer_OriginCheck(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:8000", true},
		{"http://127.0.0.1:8000", true},
		{"https://localhost", true},
		{"http://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/__kindling/reload", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := localOrigin(r); got != tt.want {
				t.Errorf("localOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestReloadServer_CloseIsIdempotent(t *testing.T) {
	rs := NewReloadServer(nil)
	rs.Close()
	rs.Close()

	done := make(chan struct{})
	go func() {
		rs.NotifyReload()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyReload blocked after Close")
	}
}

func TestReloadScriptEmbedded(t *testing.T) {
	if !strings.Contains(ReloadScript, "/__kindling/reload") {
		t.Error("Expected reload script to target /__kindling/reload")
	}
}
