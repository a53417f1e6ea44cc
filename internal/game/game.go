package game

import (
	"encoding/json"
	"errors"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
	ErrBadAction   = errors.New("invalid action")
)

// GameInfo describes a game type for the lobby.
type GameInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MinPlayers  int    `json:"minPlayers"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// MatchConfig holds settings for creating a new match.
type MatchConfig struct {
	PlayerIDs []string
	Seed      int64 // 0 picks a time based seed
	Scoring   Scoring
}

// Scoring is the terminal adjustment a caller folds into a finished
// match's result. Individual moves never include it.
type Scoring struct {
	WinBonus    int `json:"winBonus"`
	LossPenalty int `json:"lossPenalty"`
}

// DefaultScoring awards 100 for clearing the tableau.
var DefaultScoring = Scoring{WinBonus: 100}

// Adjust returns score with the terminal adjustment for status applied.
func (s Scoring) Adjust(score int, status Status) int {
	switch status {
	case Won:
		return score + s.WinBonus
	case Lost:
		return score - s.LossPenalty
	}
	return score
}

// Action represents a move a player can make.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PlayerResult holds the outcome for one player.
type PlayerResult struct {
	PlayerID string `json:"playerId"`
	Rank     int    `json:"rank"` // 1 = first place
	Score    int    `json:"score"`
	Outcome  Status `json:"outcome"`
	Turns    int    `json:"turns"`
	Captures int    `json:"captures"`
}

// Game describes a game type.
type Game interface {
	Info() GameInfo
	NewMatch(config MatchConfig) Match
}

// Match is one in-progress game session.
type Match interface {
	State(playerID string) any
	ValidActions(playerID string) []Action
	ApplyAction(playerID string, action Action) error
	IsOver() bool
	Results() []PlayerResult
	// MarshalJSON / UnmarshalJSON support for persistence
	MarshalJSON() ([]byte, error)
	UnmarshalJSON(data []byte) error
}
