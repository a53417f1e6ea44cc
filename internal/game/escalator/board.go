// Package escalator implements Escalator solitaire: 28 face up cards dealt
// into a single seven row peak, captured one at a time when they are one
// rank above or below the waste card.
package escalator

import (
	"math/rand"

	"escalator/internal/cards"
	"escalator/internal/game"
)

const (
	Rows        = 7
	TableauSize = Rows * (Rows + 1) / 2
	StockSize   = cards.DeckSize - TableauSize

	CaptureReward = 1
)

// Piles is a full assignment of every pile, used to install a known
// position. A nil field means the pile was not supplied.
type Piles struct {
	Stock      []*cards.Card
	Waste      []*cards.Card // top last, only the top card is kept
	Tableau    [][]game.Slot
	Foundation []*cards.Card
	Reserve    []*cards.Card
}

// Complete reports whether all five piles were supplied.
func (p Piles) Complete() bool {
	return p.Stock != nil && p.Waste != nil && p.Tableau != nil && p.Foundation != nil && p.Reserve != nil
}

// Board is the state of one Escalator deal. It is not safe for concurrent use.
type Board struct {
	stock      []*cards.Card
	waste      game.Slot
	tableau    [][]game.Slot
	foundation []*cards.Card
	reserve    []*cards.Card

	moves []game.Move
	score int
}

var _ game.Solitaire = (*Board)(nil)

// NewBoard returns an empty board. Call Deal or Install before playing.
func NewBoard() *Board {
	return &Board{moves: []game.Move{}}
}

// Deal shuffles a fresh deck with rng and lays it out: row r of the peak
// takes the next r+1 cards face up, the rest become the stock.
func (b *Board) Deal(rng *rand.Rand) {
	deck := cards.NewDeck()
	cards.Shuffle(deck, rng)

	tableau := make([][]game.Slot, Rows)
	next := 0
	for r := range tableau {
		row := make([]game.Slot, r+1)
		for c := range row {
			card := deck[next]
			card.Flip()
			row[c] = game.Occupied(card)
			next++
		}
		tableau[r] = row
	}

	b.stock = deck[next:]
	b.waste = game.Empty()
	b.tableau = tableau
	b.foundation = []*cards.Card{}
	b.reserve = []*cards.Card{}
	b.score = 0
	b.updateAvailableMoves()
}

// Install replaces every pile with p as given. Nothing is validated; this
// is the path for fixtures and restored games. Every entry must be a card:
// unknown stock cards are installed face down, never as nil.
func (b *Board) Install(p Piles) {
	b.stock = append([]*cards.Card{}, p.Stock...)
	b.waste = game.Empty()
	if n := len(p.Waste); n > 0 {
		b.waste = game.Occupied(p.Waste[n-1])
	}
	b.tableau = make([][]game.Slot, len(p.Tableau))
	for r, row := range p.Tableau {
		b.tableau[r] = append([]game.Slot{}, row...)
	}
	b.foundation = append([]*cards.Card{}, p.Foundation...)
	b.reserve = append([]*cards.Card{}, p.Reserve...)
	b.score = 0
	b.updateAvailableMoves()
}

// DealOrInstall installs p when every pile is supplied and deals a fresh
// shuffled game otherwise.
func (b *Board) DealOrInstall(p Piles, rng *rand.Rand) {
	if p.Complete() {
		b.Install(p)
		return
	}
	b.Deal(rng)
}

func (b *Board) Stock() []*cards.Card { return append([]*cards.Card{}, b.stock...) }

func (b *Board) Waste() []*cards.Card {
	if b.waste.IsEmpty() {
		return []*cards.Card{}
	}
	return []*cards.Card{b.waste.Card()}
}

func (b *Board) Tableau() [][]game.Slot {
	rows := make([][]game.Slot, len(b.tableau))
	for r, row := range b.tableau {
		rows[r] = append([]game.Slot{}, row...)
	}
	return rows
}

func (b *Board) Foundation() []*cards.Card { return append([]*cards.Card{}, b.foundation...) }
func (b *Board) Reserve() []*cards.Card    { return append([]*cards.Card{}, b.reserve...) }

// Score is the sum of rewards of every move since the deal.
func (b *Board) Score() int { return b.score }

// Status derives the terminal state. The game is won once every tableau
// position has been captured and lost when no move is left before that.
func (b *Board) Status() game.Status {
	if b.cleared() {
		return game.Won
	}
	if len(b.moves) == 0 {
		return game.Lost
	}
	return game.InProgress
}

// Remaining counts the cards still in the tableau.
func (b *Board) Remaining() int {
	n := 0
	for _, row := range b.tableau {
		for _, s := range row {
			if !s.IsEmpty() {
				n++
			}
		}
	}
	return n
}

func (b *Board) cleared() bool {
	return b.Remaining() == 0
}
