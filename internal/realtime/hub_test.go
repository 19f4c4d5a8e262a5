package realtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/gorilla/websocket"
)

type receivedEnvelope struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(testLogger(), nil)
	go func() { _ = hub.Run(ctx) }()
	t.Cleanup(cancel)
	return hub
}

func testParser(ctx context.Context, token string) (*auth.AccessTokenClaims, error) {
	locationID := int64(12)
	switch token {
	case "customer-7":
		return &auth.AccessTokenClaims{UserID: 7, Role: enums.RoleCustomer}, nil
	case "owner-3":
		return &auth.AccessTokenClaims{UserID: 3, Role: enums.RoleOwner, LocationID: &locationID}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
}

func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(context.Background(), hub, testParser, nil, testLogger()))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"event": event, "data": data}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func next(t *testing.T, conn *websocket.Conn) receivedEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env receivedEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestUserChannelDelivery(t *testing.T) {
	hub := startHub(t)
	srv := startServer(t, hub)
	conn := dial(t, srv, "customer-7")

	send(t, conn, "join", 7)
	if env := next(t, conn); env.Event != eventJoined {
		t.Fatalf("expected joined ack, got %s", env.Event)
	}

	ctx := context.Background()
	hub.ToUser(ctx, 8, EventNewAlert, map[string]string{"message": "not yours"})
	hub.ToUser(ctx, 7, EventNewAlert, map[string]string{"message": "yours"})

	env := next(t, conn)
	if env.Event != EventNewAlert {
		t.Fatalf("expected newAlert, got %s", env.Event)
	}
	var body map[string]string
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if body["message"] != "yours" {
		t.Fatalf("received another user's alert: %v", body)
	}
}

func TestJoinAcceptsStringID(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, startServer(t, hub), "customer-7")

	send(t, conn, "join", "7")
	if env := next(t, conn); env.Event != eventJoined {
		t.Fatalf("expected joined ack, got %s", env.Event)
	}
}

func TestJoinOtherUserRefused(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, startServer(t, hub), "customer-7")

	send(t, conn, "join", 8)
	if env := next(t, conn); env.Event != eventError {
		t.Fatalf("expected error event, got %s", env.Event)
	}
}

func TestOwnerRoomRequiresOwnedLocation(t *testing.T) {
	hub := startHub(t)
	srv := startServer(t, hub)

	customer := dial(t, srv, "customer-7")
	send(t, customer, "joinOwnerRoom", 12)
	if env := next(t, customer); env.Event != eventError {
		t.Fatalf("customer should not join owner room, got %s", env.Event)
	}

	owner := dial(t, srv, "owner-3")
	send(t, owner, "joinOwnerRoom", 13)
	if env := next(t, owner); env.Event != eventError {
		t.Fatalf("owner should not join a foreign location, got %s", env.Event)
	}
	send(t, owner, "joinOwnerRoom", 12)
	if env := next(t, owner); env.Event != eventJoined {
		t.Fatalf("expected joined ack, got %s", env.Event)
	}

	hub.ToOwner(context.Background(), 12, EventNewPriceSubmission, map[string]string{"message": "check"})
	if env := next(t, owner); env.Event != EventNewPriceSubmission {
		t.Fatalf("expected newPriceSubmission, got %s", env.Event)
	}
}

func TestBroadcastReachesEveryone(t *testing.T) {
	hub := startHub(t)
	srv := startServer(t, hub)
	a := dial(t, srv, "customer-7")
	b := dial(t, srv, "owner-3")

	// Joins guarantee both clients are registered before the broadcast.
	send(t, a, "join", 7)
	send(t, b, "join", 3)
	next(t, a)
	next(t, b)

	hub.Broadcast(context.Background(), EventNewDeal, map[string]int{"productId": 1})
	for _, conn := range []*websocket.Conn{a, b} {
		if env := next(t, conn); env.Event != EventNewDeal {
			t.Fatalf("expected newDeal, got %s", env.Event)
		}
	}
}

func TestMissingTokenRejected(t *testing.T) {
	hub := startHub(t)
	srv := startServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestSlowClientIsDisconnected(t *testing.T) {
	hub := startHub(t)

	slow := &Client{send: make(chan []byte, 1), rooms: map[string]struct{}{}}
	probe := &Client{send: make(chan []byte, 8), rooms: map[string]struct{}{}}
	if !hub.attach(slow) || !hub.attach(probe) {
		t.Fatal("attach failed")
	}

	ctx := context.Background()
	hub.Broadcast(ctx, EventPriceUpdated, 1)
	hub.Broadcast(ctx, EventPriceUpdated, 2)

	for i := 0; i < 2; i++ {
		select {
		case <-probe.send:
		case <-time.After(2 * time.Second):
			t.Fatal("probe did not receive broadcast")
		}
	}

	if _, ok := <-slow.send; !ok {
		t.Fatal("expected first message to be buffered")
	}
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Fatal("expected send channel closed after overflow")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("slow client was not disconnected")
	}
}

func TestNopNotifier(t *testing.T) {
	var n Notifier = Nop{}
	n.ToUser(context.Background(), 1, EventNewAlert, nil)
	n.Broadcast(context.Background(), EventNewDeal, nil)
}

func TestParseID(t *testing.T) {
	cases := map[string]struct {
		id int64
		ok bool
	}{
		`12`:    {12, true},
		`"12"`:  {12, true},
		`"abc"`: {0, false},
		`-4`:    {-4, false},
		`null`:  {0, false},
	}
	for raw, want := range cases {
		id, ok := parseID(json.RawMessage(raw))
		if ok != want.ok || (ok && id != want.id) {
			t.Fatalf("parseID(%s) = %d,%v want %d,%v", raw, id, ok, want.id, want.ok)
		}
	}
}
