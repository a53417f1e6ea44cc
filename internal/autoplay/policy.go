// Package autoplay drives solitaire deals without a human at the keyboard.
package autoplay

import (
	"errors"
	"fmt"

	"escalator/internal/game"
	"escalator/internal/game/escalator"
)

// ErrNoMoves is returned by a policy asked to choose on a finished deal.
var ErrNoMoves = errors.New("no moves available")

// Policy picks the destination of the next move from the published list.
type Policy interface {
	Choose(s game.Solitaire) (int, error)
}

// Policy names accepted by NewPolicy.
const (
	PolicyFirst  = "first"
	PolicyGreedy = "greedy"
	PolicyLua    = "lua"
)

// NewPolicy builds a policy by name. script is the path of the Lua file
// and is only read for PolicyLua.
func NewPolicy(name, script string) (Policy, error) {
	switch name {
	case PolicyFirst:
		return FirstMove{}, nil
	case PolicyGreedy, "":
		return Greedy{}, nil
	case PolicyLua:
		if script == "" {
			return nil, fmt.Errorf("lua policy needs a script")
		}
		return LoadLuaPolicy(script)
	default:
		return nil, fmt.Errorf("unknown policy: %s", name)
	}
}

// FirstMove always plays the first published move.
type FirstMove struct{}

func (FirstMove) Choose(s game.Solitaire) (int, error) {
	moves := s.AvailableMoves()
	if len(moves) == 0 {
		return 0, ErrNoMoves
	}
	return moves[0].Destination, nil
}

// Greedy captures whenever it can, taking the deepest row first so that
// the rows above open up, and flips the stock otherwise.
type Greedy struct{}

func (Greedy) Choose(s game.Solitaire) (int, error) {
	moves := s.AvailableMoves()
	if len(moves) == 0 {
		return 0, ErrNoMoves
	}
	best, bestRow := moves[0].Destination, -1
	for _, mv := range moves {
		row, _, ok := escalator.DecodeDestination(mv.Destination)
		if !ok {
			continue
		}
		// moves are row-major, so the first capture in a row wins ties
		if row > bestRow {
			best, bestRow = mv.Destination, row
		}
	}
	return best, nil
}
