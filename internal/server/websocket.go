package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"nhooyr.io/websocket"

	"escalator/internal/game"
	"escalator/internal/game/escalator"
	"escalator/internal/session"
)

// WSMessage is the JSON envelope for WebSocket messages.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	PlayerID string `json:"playerId"`
}

type actionPayload struct {
	Action game.Action `json:"action"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	sess, ok := s.manager.Get(code)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	// First message must be a join
	_, data, err := conn.Read(ctx)
	if err != nil {
		return
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "join" {
		sendWSError(ctx, conn, "first message must be a join")
		return
	}
	var join joinPayload
	if err := json.Unmarshal(msg.Payload, &join); err != nil || join.PlayerID == "" {
		sendWSError(ctx, conn, "invalid join payload")
		return
	}

	client := sess.Connect(join.PlayerID)
	defer sess.Disconnect(client)

	// Writer goroutine: send messages from the channel to the websocket
	go func() {
		for msg := range client.Send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	s.broadcastState(sess)

	// Reader loop: handle incoming messages
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendWSMsg(sess, client, "error", errorPayload{Message: "invalid message"})
			continue
		}
		s.handleMessage(sess, client, msg)
	}

	log.Printf("viewer %s disconnected from session %s", join.PlayerID, code)
}

func (s *Server) handleMessage(sess *session.Session, client *session.Client, msg WSMessage) {
	var action game.Action
	switch msg.Type {
	case "action":
		var ap actionPayload
		if err := json.Unmarshal(msg.Payload, &ap); err != nil {
			s.sendWSMsg(sess, client, "error", errorPayload{Message: "invalid action payload"})
			return
		}
		action = ap.Action
	case "move":
		var mp escalator.MovePayload
		if err := json.Unmarshal(msg.Payload, &mp); err != nil {
			s.sendWSMsg(sess, client, "error", errorPayload{Message: "invalid move payload"})
			return
		}
		action = escalator.MoveAction(mp.Destination)
	default:
		s.sendWSMsg(sess, client, "error", errorPayload{Message: "unknown message type: " + msg.Type})
		return
	}

	if _, err := s.manager.Apply(sess.Code, client.ID, action); err != nil {
		s.sendWSMsg(sess, client, "error", errorPayload{Message: err.Error()})
		return
	}
	s.broadcastState(sess)
}

// broadcastState sends every viewer its own view of the match.
func (s *Server) broadcastState(sess *session.Session) {
	for _, c := range sess.ClientList() {
		s.sendWSMsg(sess, c, "state", sess.View(c.ID))
	}
}

func (s *Server) sendWSMsg(sess *session.Session, c *session.Client, msgType string, payload any) {
	p, _ := json.Marshal(payload)
	msg, _ := json.Marshal(WSMessage{Type: msgType, Payload: p})
	sess.SendTo(c, msg)
}

func sendWSError(ctx context.Context, conn *websocket.Conn, message string) {
	p, _ := json.Marshal(errorPayload{Message: message})
	msg, _ := json.Marshal(WSMessage{Type: "error", Payload: p})
	conn.Write(ctx, websocket.MessageText, msg)
}
