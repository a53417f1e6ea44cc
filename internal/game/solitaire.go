package game

import (
	"errors"

	"escalator/internal/cards"
)

// ErrInvalidMove is returned when a requested move is not currently legal.
var ErrInvalidMove = errors.New("invalid move")

// SourceWaste identifies the waste pile as the origin of a move.
const SourceWaste = 0

// Move is a (source, destination) pair as published by a solitaire variant.
type Move struct {
	Source      int `json:"source"`
	Destination int `json:"destination"`
}

// Status is the terminal state of a solitaire deal.
type Status string

const (
	InProgress Status = "in_progress"
	Won        Status = "won"
	Lost       Status = "lost"
)

// Encoding is the integer view of every pile. Absent cards are
// cards.ValueAbsent, face down cards cards.ValueHidden, face up cards 0..51.
type Encoding struct {
	Stock      []int   `json:"stock"`
	Waste      []int   `json:"waste"`
	Foundation [][]int `json:"foundation"`
	Tableau    [][]int `json:"tableau"`
	Reserve    []int   `json:"reserve"`
}

// Solitaire is the shape shared by single player patience variants: a
// stock, a waste, a tableau, foundations and a reserve, plus the list of
// moves legal right now.
type Solitaire interface {
	Stock() []*cards.Card
	// Waste returns the playable waste cards, top last.
	Waste() []*cards.Card
	// Tableau returns the tableau rows. Captured positions stay in place as
	// empty slots.
	Tableau() [][]Slot
	Foundation() []*cards.Card
	Reserve() []*cards.Card

	// AvailableMoves returns a snapshot; callers may keep it across moves.
	AvailableMoves() []Move
	// Move applies a legal move and returns the reward for that move alone.
	Move(destination int) (int, error)

	Score() int
	Status() Status
	Encode() Encoding
	Display() string
}

// Slot is one tableau position: either a card or an emptied position.
type Slot struct {
	card     *cards.Card
	occupied bool
}

// Occupied returns a slot holding c.
func Occupied(c *cards.Card) Slot { return Slot{card: c, occupied: true} }

// Empty returns a slot whose card has been captured.
func Empty() Slot { return Slot{} }

func (s Slot) IsEmpty() bool { return !s.occupied }

// Card returns the card in the slot, or nil for an empty slot.
func (s Slot) Card() *cards.Card { return s.card }

// Value encodes the slot like cards.Card.Value, empty slots as absent.
func (s Slot) Value() int {
	if !s.occupied {
		return cards.ValueAbsent
	}
	return s.card.Value()
}
