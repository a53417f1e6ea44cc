package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"nhooyr.io/websocket"

	"escalator/internal/cards"
	"escalator/internal/game"
	"escalator/internal/game/escalator"
	"escalator/internal/session"
	"escalator/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts  *httptest.Server
	mgr *session.Manager
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	reg := game.NewRegistry()
	reg.Register(escalator.Game{})
	mgr := session.NewManager(reg, store, game.DefaultScoring)

	webFS := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html><body>test</body></html>")},
	}
	srv := New(reg, mgr, webFS)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, mgr: mgr}
}

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// viewPayload mirrors session.View with the escalator state decoded.
type viewPayload struct {
	State        escalator.StateView `json:"state"`
	ValidActions []game.Action       `json:"validActions"`
	Results      []game.PlayerResult `json:"results"`
	SessionInfo  session.Info        `json:"sessionInfo"`
}

// --- REST API helpers ---

func createSessionViaAPI(t *testing.T, ts *httptest.Server, playerID string, seed int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"gameType":%q,"playerId":%q,"seed":%d}`, escalator.Name, playerID, seed)
	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var result struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result.Code
}

// postMove plays destination and returns the response status and decoded body.
func postMove(t *testing.T, ts *httptest.Server, code, playerID string, destination int) (int, []byte) {
	t.Helper()
	body := fmt.Sprintf(`{"playerId":%q,"destination":%d}`, playerID, destination)
	resp, err := http.Post(ts.URL+"/api/sessions/"+code+"/moves", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post move: %v", err)
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	json.NewDecoder(resp.Body).Decode(&raw)
	return resp.StatusCode, raw
}

// rigToWin leaves a single capture, destination 71, between the session
// and a win.
func rigToWin(t *testing.T, mgr *session.Manager, code string) {
	t.Helper()
	sess, ok := mgr.Get(code)
	if !ok {
		t.Fatalf("session %s not found", code)
	}
	tableau := make([][]game.Slot, escalator.Rows)
	for r := range tableau {
		tableau[r] = make([]game.Slot, r+1)
	}
	tableau[6][0] = game.Occupied(cards.MustNew(2, 0, true))
	sess.Match.(*escalator.Match).Board.Install(escalator.Piles{
		Stock:      []*cards.Card{},
		Waste:      []*cards.Card{cards.MustNew(3, 1, true)},
		Tableau:    tableau,
		Foundation: []*cards.Card{},
		Reserve:    []*cards.Card{},
	})
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server, code string) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/sessions/" + code + "/ws"
}

// wsConnect dials a WebSocket and sends a join message. The caller is
// responsible for closing the connection.
func wsConnect(t *testing.T, ts *httptest.Server, code, playerID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := timeoutCtx(t)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, code), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	wsSend(ctx, t, conn, "join", joinPayload{PlayerID: playerID})
	return conn
}

func wsSend(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	p, _ := json.Marshal(payload)
	data, _ := json.Marshal(WSMessage{Type: msgType, Payload: p})
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("ws write: %v", err)
	}
}

func wsRead(ctx context.Context, t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal ws message: %v", err)
	}
	return msg
}

// readState reads a message and expects it to be a "state" message.
func readState(ctx context.Context, t *testing.T, conn *websocket.Conn) viewPayload {
	t.Helper()
	msg := wsRead(ctx, t, conn)
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %q: %s", msg.Type, msg.Payload)
	}
	var v viewPayload
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		t.Fatalf("unmarshal state payload: %v", err)
	}
	return v
}

// readError reads a message and expects it to be an "error" message.
func readError(ctx context.Context, t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	msg := wsRead(ctx, t, conn)
	if msg.Type != "error" {
		t.Fatalf("expected error message, got %q: %s", msg.Type, msg.Payload)
	}
	var ep errorPayload
	if err := json.Unmarshal(msg.Payload, &ep); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	return ep.Message
}
