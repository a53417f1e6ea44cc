// Package mcptools exposes the session manager as Model Context Protocol
// tools so that an assistant can play Escalator deals.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"escalator/internal/game/escalator"
	"escalator/internal/session"
)

const instructions = `Escalator solitaire

A 28 card peak of seven rows sits above a 24 card stock. Capture a face up
tableau card whose rank is one above or below the waste card (Ace and King
are adjacent). A card is exposed when it is on the bottom row or both cards
covering it are gone. Destination 0 flips the stock; a capture at row r,
column c is (r+1)*10 + (c+1). Clear the peak to win.

TOOLS:
- new_game: deal a new game for a player
- game_state: show the board, legal moves and encoded piles
- move: play a destination
- list_sessions: list active sessions
- leaderboard: best finished results`

// Tools wires the session manager into an MCP server.
type Tools struct {
	manager *session.Manager
	server  *server.MCPServer
}

// New registers every tool against manager.
func New(manager *session.Manager) *Tools {
	t := &Tools{manager: manager}
	t.server = server.NewMCPServer(
		"Escalator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	t.registerTools()
	return t
}

// MCPServer returns the underlying server.
func (t *Tools) MCPServer() *server.MCPServer {
	return t.server
}

// ServeStdio serves the tools over stdin/stdout until EOF.
func (t *Tools) ServeStdio() error {
	return server.ServeStdio(t.server)
}

// Handler answers single JSON-RPC messages posted over HTTP.
func (t *Tools) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request", http.StatusBadRequest)
			return
		}
		resp := t.server.HandleMessage(r.Context(), body)
		data, err := json.Marshal(resp)
		if err != nil {
			http.Error(w, "failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
}

func (t *Tools) registerTools() {
	codeProp := map[string]interface{}{
		"type":        "string",
		"description": "Session code returned by new_game",
	}

	t.server.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Deal a new Escalator game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player who owns the deal",
				},
				"seed": map[string]interface{}{
					"type":        "number",
					"description": "Shuffle seed (optional, random when omitted)",
				},
			},
			Required: []string{"player_id"},
		},
	}, t.handleNewGame)

	t.server.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the board, the legal destinations and the encoded piles",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_code": codeProp,
			},
			Required: []string{"session_code"},
		},
	}, t.handleGameState)

	t.server.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Play a destination: 0 flips the stock, (row+1)*10+(col+1) captures",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_code": codeProp,
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player who owns the deal",
				},
				"destination": map[string]interface{}{
					"type":        "number",
					"description": "Destination from the legal move list",
				},
			},
			Required: []string{"session_code", "player_id", "destination"},
		},
	}, t.handleMove)

	t.server.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, t.handleListSessions)

	t.server.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Best finished results",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Number of results (default 10)",
				},
			},
		},
	}, t.handleLeaderboard)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

func (t *Tools) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	playerID, _ := args["player_id"].(string)
	seed, _ := args["seed"].(float64)
	if playerID == "" {
		return mcp.NewToolResultError("player_id is required"), nil
	}

	sess, err := t.manager.Create(escalator.Name, playerID, int64(seed))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatView(sess.View(playerID))), nil
}

func (t *Tools) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	code, _ := args["session_code"].(string)
	sess, ok := t.manager.Get(code)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("session %q not found", code)), nil
	}
	return mcp.NewToolResultText(formatView(sess.View(sess.Info().PlayerID))), nil
}

func (t *Tools) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	code, _ := args["session_code"].(string)
	playerID, _ := args["player_id"].(string)
	dest, ok := args["destination"].(float64)
	if !ok {
		return mcp.NewToolResultError("destination must be a number"), nil
	}

	sess, err := t.manager.Apply(code, playerID, escalator.MoveAction(int(dest)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatView(sess.View(playerID))), nil
}

func (t *Tools) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := t.manager.List()
	if len(infos) == 0 {
		return mcp.NewToolResultText("no active sessions"), nil
	}
	var b strings.Builder
	for _, info := range infos {
		fmt.Fprintf(&b, "%s  %s  %s  seed %d\n", info.Code, info.PlayerID, info.Status, info.Seed)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (t *Tools) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	limit := 10
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}
	results, err := t.manager.TopResults(limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no finished games yet"), nil
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s  %d  %s  %d captures in %d turns (%s)\n",
			i+1, r.PlayerID, r.Score, r.Outcome, r.Captures, r.Turns, r.SessionCode)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// formatView renders a view as plain text for the model.
func formatView(v session.View) string {
	var b strings.Builder
	info := v.SessionInfo
	fmt.Fprintf(&b, "session %s  player %s  seed %d\n\n", info.Code, info.PlayerID, info.Seed)

	state, ok := v.State.(escalator.StateView)
	if !ok {
		data, _ := json.MarshalIndent(v.State, "", "  ")
		b.Write(data)
		return b.String()
	}

	b.WriteString(state.Display)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "status: %s  stock: %d  remaining: %d  turns: %d\n",
		state.Status, state.StockCount, state.Remaining, state.Turns)

	dests := make([]string, len(state.Moves))
	for i, mv := range state.Moves {
		dests[i] = fmt.Sprint(mv.Destination)
	}
	if len(dests) > 0 {
		fmt.Fprintf(&b, "legal moves: %s\n", strings.Join(dests, " "))
	} else {
		b.WriteString("legal moves: none\n")
	}

	enc, _ := json.Marshal(state.Encoding)
	fmt.Fprintf(&b, "encoding: %s\n", enc)

	for _, r := range v.Results {
		fmt.Fprintf(&b, "result: %s with %d\n", r.Outcome, r.Score)
	}
	return b.String()
}
