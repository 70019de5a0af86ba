package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codefionn/workhub/internal/config"
	"github.com/codefionn/workhub/internal/protocol"
)

func startTestServer(t *testing.T) (*Server, *Hub) {
	t.Helper()

	cfg := config.Default()
	cfg.ListenAddr = "127.0.0.1:0"

	h := New(Options{HeartbeatInterval: time.Hour})
	srv := NewServer(cfg, h)
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			t.Errorf("Failed to stop server: %v", err)
		}
	})
	return srv, h
}

func TestServerHealthz(t *testing.T) {
	srv, _ := startTestServer(t)

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("Failed to GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestServerStats(t *testing.T) {
	srv, _ := startTestServer(t)

	resp, err := http.Get("http://" + srv.Addr() + "/stats")
	if err != nil {
		t.Fatalf("Failed to GET /stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}
}

func TestServerWebSocketGreeting(t *testing.T) {
	srv, _ := startTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read greeting: %v", err)
	}

	typ, err := protocol.FrameType(data)
	if err != nil {
		t.Fatalf("Invalid greeting frame: %v", err)
	}
	if typ != protocol.TypeConnectionPending {
		t.Errorf("Expected %s, got %s", protocol.TypeConnectionPending, typ)
	}
}

func TestServerWebSocketBrowserFlow(t *testing.T) {
	srv, h := startTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("Failed to read greeting: %v", err)
	}

	if err := conn.WriteJSON(map[string]interface{}{"type": "auth"}); err != nil {
		t.Fatalf("Failed to send auth: %v", err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read auth reply: %v", err)
	}
	var ok protocol.AuthSuccess
	if err := json.Unmarshal(data, &ok); err != nil {
		t.Fatalf("Failed to decode auth reply: %v", err)
	}
	if ok.Type != protocol.TypeAuthSuccess {
		t.Fatalf("Expected %s, got %s", protocol.TypeAuthSuccess, ok.Type)
	}

	// Admission is visible in the registry once the frame is processed.
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, browsers, _ := h.Counts()
		if browsers == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Browser never appeared in the registry")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
