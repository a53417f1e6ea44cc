package escalator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"escalator/internal/game"
)

const (
	Name       = "escalator"
	ActionMove = "move"
)

// Game implements game.Game.
type Game struct{}

func (Game) Info() game.GameInfo {
	return game.GameInfo{
		Name:        Name,
		Description: "Single peak patience: capture face up cards one rank above or below the waste card.",
		MinPlayers:  1,
		MaxPlayers:  1,
	}
}

func (Game) NewMatch(config game.MatchConfig) game.Match {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m := &Match{
		Seed:    seed,
		Scoring: config.Scoring,
		Board:   NewBoard(),
	}
	if len(config.PlayerIDs) > 0 {
		m.Player = config.PlayerIDs[0]
	}
	m.Board.Deal(rand.New(rand.NewSource(seed)))
	return m
}

// Match implements game.Match for a single player deal.
type Match struct {
	Player   string       `json:"player"`
	Seed     int64        `json:"seed"`
	Scoring  game.Scoring `json:"scoring"`
	Turns    int          `json:"turns"`
	Captures int          `json:"captures"`
	Board    *Board       `json:"board"`
}

// StateView is what State returns to a player or spectator.
type StateView struct {
	Display    string        `json:"display"`
	Encoding   game.Encoding `json:"encoding"`
	Moves      []game.Move   `json:"moves"`
	Score      int           `json:"score"`
	Status     game.Status   `json:"status"`
	StockCount int           `json:"stockCount"`
	Remaining  int           `json:"remaining"`
	Turns      int           `json:"turns"`
	Player     string        `json:"player"`
}

func (m *Match) State(playerID string) any {
	return StateView{
		Display:    m.Board.Display(),
		Encoding:   m.Board.Encode(),
		Moves:      m.Board.AvailableMoves(),
		Score:      m.Board.Score(),
		Status:     m.Board.Status(),
		StockCount: len(m.Board.stock),
		Remaining:  m.Board.Remaining(),
		Turns:      m.Turns,
		Player:     m.Player,
	}
}

// MovePayload is the payload of a "move" action.
type MovePayload struct {
	Destination int `json:"destination"`
}

// MoveAction builds the action that plays destination.
func MoveAction(destination int) game.Action {
	payload, _ := json.Marshal(MovePayload{Destination: destination})
	return game.Action{Type: ActionMove, Payload: payload}
}

func (m *Match) ValidActions(playerID string) []game.Action {
	if m.IsOver() || playerID != m.Player {
		return nil
	}
	moves := m.Board.AvailableMoves()
	actions := make([]game.Action, 0, len(moves))
	for _, mv := range moves {
		actions = append(actions, MoveAction(mv.Destination))
	}
	return actions
}

func (m *Match) ApplyAction(playerID string, action game.Action) error {
	if m.IsOver() {
		return game.ErrGameOver
	}
	if playerID != m.Player {
		return fmt.Errorf("%w: %s does not own this deal", game.ErrNotYourTurn, playerID)
	}
	if action.Type != ActionMove {
		return fmt.Errorf("%w: unknown action type %q", game.ErrBadAction, action.Type)
	}
	var mv MovePayload
	if err := json.Unmarshal(action.Payload, &mv); err != nil {
		return fmt.Errorf("%w: move payload: %v", game.ErrBadAction, err)
	}
	reward, err := m.Board.Move(mv.Destination)
	if err != nil {
		return err
	}
	m.Turns++
	m.Captures += reward
	return nil
}

func (m *Match) IsOver() bool {
	return m.Board.Status() != game.InProgress
}

func (m *Match) Results() []game.PlayerResult {
	if !m.IsOver() {
		return nil
	}
	status := m.Board.Status()
	return []game.PlayerResult{{
		PlayerID: m.Player,
		Rank:     1,
		Score:    m.Scoring.Adjust(m.Board.Score(), status),
		Outcome:  status,
		Turns:    m.Turns,
		Captures: m.Captures,
	}}
}

func (m *Match) MarshalJSON() ([]byte, error) {
	type alias Match
	return json.Marshal((*alias)(m))
}

func (m *Match) UnmarshalJSON(data []byte) error {
	type alias Match
	a := (*alias)(m)
	if a.Board == nil {
		a.Board = NewBoard()
	}
	if err := json.Unmarshal(data, a); err != nil {
		return err
	}
	if a.Board == nil {
		return fmt.Errorf("match snapshot has no board")
	}
	return nil
}
