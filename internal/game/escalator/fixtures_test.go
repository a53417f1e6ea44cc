package escalator

import (
	"escalator/internal/cards"
	"escalator/internal/game"
)

func up(rank, suit int) *cards.Card   { return cards.MustNew(rank, suit, true) }
func down(rank, suit int) *cards.Card { return cards.MustNew(rank, suit, false) }

// orderedDeck returns the 52 faces rank-major, all face down.
func orderedDeck() []*cards.Card {
	return cards.NewDeck()
}

// emptyTableau returns the seven row peak with every position captured.
func emptyTableau() [][]game.Slot {
	rows := make([][]game.Slot, Rows)
	for r := range rows {
		rows[r] = make([]game.Slot, r+1)
		for c := range rows[r] {
			rows[r][c] = game.Empty()
		}
	}
	return rows
}

// orderedPiles lays the ordered deck out like a deal: the first 28 cards
// face up in the peak, the 29th (8♠) on the waste, the rest in the stock
// with K♦ on top.
func orderedPiles() Piles {
	deck := orderedDeck()
	tableau := make([][]game.Slot, Rows)
	next := 0
	for r := range tableau {
		tableau[r] = make([]game.Slot, r+1)
		for c := range tableau[r] {
			deck[next].Flip()
			tableau[r][c] = game.Occupied(deck[next])
			next++
		}
	}
	waste := deck[next]
	waste.Flip()
	return Piles{
		Stock:      deck[next+1:],
		Waste:      []*cards.Card{waste},
		Tableau:    tableau,
		Foundation: []*cards.Card{},
		Reserve:    []*cards.Card{},
	}
}

func installed(p Piles) *Board {
	b := NewBoard()
	b.Install(p)
	return b
}

func destinations(moves []game.Move) []int {
	out := make([]int, len(moves))
	for i, m := range moves {
		out[i] = m.Destination
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
