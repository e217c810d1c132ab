package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/mmynk/splitvote/internal/models"
	"github.com/mmynk/splitvote/internal/notify"
)

func waitForRoom(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.RoomSize(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("room %s: got %d subscribers, want %d", room, hub.RoomSize(room), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandleWebSocketEndToEnd(t *testing.T) {
	hub := NewHub(slog.Default())
	server := httptest.NewServer(HandleWebSocket(hub, nil))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?groups=g1"
	conn, _, err := ws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	waitForRoom(t, hub, "g1", 1)

	// Subscribe to a second room through a control frame.
	if err := conn.Write(ctx, ws.MessageText, []byte(`{"action":"subscribe","groupId":"g2"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitForRoom(t, hub, "g2", 1)

	hub.Publish("g2", notify.Event{
		Name:    notify.EventExpenseAdded,
		GroupID: "g2",
		Expense: &models.Expense{ID: "e1", GroupID: "g2", Description: "Snacks", Amount: 7.5},
	})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != notify.EventExpenseAdded || got.Expense == nil || got.Expense.Description != "Snacks" {
		t.Errorf("unexpected message: %s", data)
	}

	conn.Close(ws.StatusNormalClosure, "")
	waitForRoom(t, hub, "g1", 0)
}
