package escalator

import (
	"fmt"

	"escalator/internal/game"
)

// FlipDestination turns the top stock card onto the waste.
const FlipDestination = 0

// MaxRows is the largest peak the destination encoding can address: row
// and column each take one decimal digit.
const MaxRows = 9

// EncodeDestination packs a tableau position as (row+1)*10 + (col+1).
func EncodeDestination(row, col int) int {
	return (row+1)*10 + (col + 1)
}

// DecodeDestination is the inverse of EncodeDestination. ok is false for
// the flip destination and for values that name no position in a peak.
func DecodeDestination(d int) (row, col int, ok bool) {
	if d <= FlipDestination {
		return 0, 0, false
	}
	row, col = d/10-1, d%10-1
	if row < 0 || row >= MaxRows || col < 0 || col > row {
		return 0, 0, false
	}
	return row, col, true
}

// AvailableMoves returns the moves legal in the current position: the
// stock flip first, then captures in row-major order.
func (b *Board) AvailableMoves() []game.Move {
	return append([]game.Move{}, b.moves...)
}

func (b *Board) updateAvailableMoves() {
	moves := []game.Move{}
	if len(b.stock) > 0 {
		moves = append(moves, game.Move{Source: game.SourceWaste, Destination: FlipDestination})
	}
	if !b.waste.IsEmpty() {
		top := b.waste.Card()
		for r, row := range b.tableau {
			for c, slot := range row {
				if slot.IsEmpty() || !b.exposed(r, c) || !top.AdjacentTo(slot.Card()) {
					continue
				}
				moves = append(moves, game.Move{Source: game.SourceWaste, Destination: EncodeDestination(r, c)})
			}
		}
	}
	b.moves = moves
}

// exposed reports whether nothing in the row below covers (row, col).
func (b *Board) exposed(row, col int) bool {
	if row == len(b.tableau)-1 {
		return true
	}
	below := b.tableau[row+1]
	return emptyAt(below, col) && emptyAt(below, col+1)
}

func emptyAt(row []game.Slot, col int) bool {
	return col >= len(row) || row[col].IsEmpty()
}

func (b *Board) legal(destination int) bool {
	for _, m := range b.moves {
		if m.Source == game.SourceWaste && m.Destination == destination {
			return true
		}
	}
	return false
}

// Move plays the waste against destination and returns the reward for this
// move: 1 for a capture, 0 for a stock flip. An illegal destination leaves
// the board untouched and returns game.ErrInvalidMove.
func (b *Board) Move(destination int) (int, error) {
	if !b.legal(destination) {
		return 0, fmt.Errorf("%w: destination %d", game.ErrInvalidMove, destination)
	}

	reward := 0
	if destination == FlipDestination {
		// The previous waste card is buried, not captured.
		n := len(b.stock)
		card := b.stock[n-1]
		b.stock = b.stock[:n-1]
		card.Flip()
		b.waste = game.Occupied(card)
	} else {
		row, col, _ := DecodeDestination(destination)
		b.foundation = append(b.foundation, b.waste.Card())
		card := b.tableau[row][col].Card()
		card.Flip()
		b.waste = game.Occupied(card)
		b.tableau[row][col] = game.Empty()
		reward = CaptureReward
	}

	b.score += reward
	b.updateAvailableMoves()
	return reward, nil
}
