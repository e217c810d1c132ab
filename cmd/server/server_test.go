package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	ws "github.com/coder/websocket"

	"github.com/mmynk/splitvote/internal/config"
	"github.com/mmynk/splitvote/internal/storage/sqlite"
	"github.com/mmynk/splitvote/internal/websocket"
	"github.com/mmynk/splitvote/pkg/api"
	"github.com/mmynk/splitvote/pkg/api/apiconnect"
)

func setupServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.Config{
		JWTSecret:          "server-test-secret-0123",
		TokenTTL:           time.Hour,
		StoreTimeout:       5 * time.Second,
		JoinCodeLength:     6,
		JoinCodeAttempts:   5,
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}
	srv := newServer(ctx, cfg, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	httpServer := httptest.NewServer(srv.handler)
	t.Cleanup(httpServer.Close)
	return srv, httpServer
}

func TestHealthAndMetrics(t *testing.T) {
	_, httpServer := setupServer(t)

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(httpServer.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d", path, resp.StatusCode)
		}
	}

	req, _ := http.NewRequest(http.MethodOptions, httpServer.URL+apiconnect.GroupServiceCreateGroupProcedure, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header on preflight")
	}
}

func TestNotificationsReachSubscribers(t *testing.T) {
	srv, httpServer := setupServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := apiconnect.NewUserServiceClient(httpServer.Client(), httpServer.URL)
	groups := apiconnect.NewGroupServiceClient(httpServer.Client(), httpServer.URL)
	expenses := apiconnect.NewExpenseServiceClient(httpServer.Client(), httpServer.URL)

	resolve := func(device, name string) *api.ResolveUserResponse {
		resp, err := users.ResolveUser(ctx, connect.NewRequest(&api.ResolveUserRequest{DeviceID: device, DisplayName: name}))
		if err != nil {
			t.Fatalf("ResolveUser failed: %v", err)
		}
		return resp.Msg
	}
	withToken := func(token string, req connect.AnyRequest) {
		req.Header().Set("Authorization", "Bearer "+token)
	}

	owner := resolve("device-owner", "Owner")
	created := connect.NewRequest(&api.CreateGroupRequest{Name: "Lodge"})
	withToken(owner.Token, created)
	groupResp, err := groups.CreateGroup(ctx, created)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	group := groupResp.Msg.Group

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?groups=" + group.ID
	conn, _, err := ws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.RoomSize(group.ID) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never joined the group room")
		}
		time.Sleep(5 * time.Millisecond)
	}

	next := func() websocket.Message {
		t.Helper()
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		return msg
	}

	joiner := resolve("device-joiner", "Joiner")
	join := connect.NewRequest(&api.RequestJoinRequest{JoinCode: group.JoinCode})
	withToken(joiner.Token, join)
	if _, err := groups.RequestJoin(ctx, join); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	if msg := next(); msg.Type != "joinRequest" || msg.User == nil || msg.User.DisplayName != "Joiner" {
		t.Errorf("unexpected message: %+v", msg)
	}

	submit := connect.NewRequest(&api.SubmitExpenseRequest{GroupID: group.ID, Description: "Firewood", Amount: 18})
	withToken(owner.Token, submit)
	expResp, err := expenses.SubmitExpense(ctx, submit)
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}
	if msg := next(); msg.Type != "expenseAdded" || msg.Expense == nil || msg.Expense.ID != expResp.Msg.Expense.ID {
		t.Errorf("unexpected message: %+v", msg)
	}

	approve := connect.NewRequest(&api.ApproveExpenseRequest{ExpenseID: expResp.Msg.Expense.ID})
	withToken(owner.Token, approve)
	if _, err := expenses.ApproveExpense(ctx, approve); err != nil {
		t.Fatalf("ApproveExpense failed: %v", err)
	}
	if msg := next(); msg.Type != "expenseUpdated" {
		t.Errorf("expected expenseUpdated, got %+v", msg)
	}
	if msg := next(); msg.Type != "expenseApproved" || !msg.Expense.Approved {
		t.Errorf("expected expenseApproved, got %+v", msg)
	}
}
