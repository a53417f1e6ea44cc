package server

import (
	"net/http"
	"strings"
	"testing"

	"nhooyr.io/websocket"

	"escalator/internal/game"
	"escalator/internal/game/escalator"
)

func TestWSJoinAndReceiveState(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice", 5)
	conn := wsConnect(t, env.ts, code, "alice")
	defer conn.Close(websocket.StatusNormalClosure, "")

	v := readState(ctx, t, conn)
	if v.SessionInfo.Code != code || v.SessionInfo.Viewers != 1 {
		t.Fatalf("unexpected session info %+v", v.SessionInfo)
	}
	if len(v.ValidActions) != 1 {
		t.Fatalf("expected the flip action, got %d", len(v.ValidActions))
	}
}

func TestWSMove(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice", 5)
	conn := wsConnect(t, env.ts, code, "alice")
	defer conn.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, conn)

	wsSend(ctx, t, conn, "move", escalator.MovePayload{Destination: escalator.FlipDestination})
	v := readState(ctx, t, conn)
	if v.State.Turns != 1 || v.State.StockCount != escalator.StockSize-1 {
		t.Fatalf("unexpected state after flip: turns=%d stock=%d", v.State.Turns, v.State.StockCount)
	}

	wsSend(ctx, t, conn, "action", actionPayload{Action: escalator.MoveAction(escalator.FlipDestination)})
	if v := readState(ctx, t, conn); v.State.Turns != 2 {
		t.Fatalf("expected 2 turns, got %d", v.State.Turns)
	}
}

func TestWSErrors(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice", 5)
	conn := wsConnect(t, env.ts, code, "alice")
	defer conn.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, conn)

	wsSend(ctx, t, conn, "move", escalator.MovePayload{Destination: 77})
	if msg := readError(ctx, t, conn); !strings.Contains(msg, game.ErrInvalidMove.Error()) {
		t.Fatalf("expected invalid move error, got %q", msg)
	}

	wsSend(ctx, t, conn, "dance", struct{}{})
	if msg := readError(ctx, t, conn); !strings.Contains(msg, "unknown message type") {
		t.Fatalf("expected unknown type error, got %q", msg)
	}
}

func TestWSSpectator(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice", 5)
	alice := wsConnect(t, env.ts, code, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, alice)

	bob := wsConnect(t, env.ts, code, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "")
	if v := readState(ctx, t, bob); len(v.ValidActions) != 0 || v.SessionInfo.Viewers != 2 {
		t.Fatalf("unexpected spectator view: actions=%d viewers=%d", len(v.ValidActions), v.SessionInfo.Viewers)
	}
	readState(ctx, t, alice) // broadcast for bob joining

	// spectators cannot play
	wsSend(ctx, t, bob, "move", escalator.MovePayload{Destination: escalator.FlipDestination})
	readError(ctx, t, bob)

	wsSend(ctx, t, alice, "move", escalator.MovePayload{Destination: escalator.FlipDestination})
	if v := readState(ctx, t, alice); v.State.Turns != 1 {
		t.Fatalf("alice: expected 1 turn, got %d", v.State.Turns)
	}
	if v := readState(ctx, t, bob); v.State.Turns != 1 {
		t.Fatalf("bob: expected 1 turn, got %d", v.State.Turns)
	}
}

func TestWSRestMoveBroadcasts(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice", 5)
	conn := wsConnect(t, env.ts, code, "bob")
	defer conn.Close(websocket.StatusNormalClosure, "")
	readState(ctx, t, conn)

	if status, body := postMove(t, env.ts, code, "alice", escalator.FlipDestination); status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if v := readState(ctx, t, conn); v.State.Turns != 1 {
		t.Fatalf("expected broadcast after REST move, got turns=%d", v.State.Turns)
	}
}

func TestWSBadJoin(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	code := createSessionViaAPI(t, env.ts, "alice", 5)
	conn, _, err := websocket.Dial(ctx, wsURL(env.ts, code), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	wsSend(ctx, t, conn, "move", escalator.MovePayload{Destination: 0})
	if msg := readError(ctx, t, conn); !strings.Contains(msg, "join") {
		t.Fatalf("expected join error, got %q", msg)
	}
}

func TestWSUnknownSession(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := timeoutCtx(t)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL(env.ts, "NOPE"), nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown session")
	}
	if resp != nil && resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
