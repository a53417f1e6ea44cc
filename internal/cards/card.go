package cards

import (
	"errors"
	"fmt"
)

const (
	MinRank  = 1  // Ace
	MaxRank  = 13 // King
	NumSuits = 4
	DeckSize = MaxRank * NumSuits

	// Encoded values for slots that do not show a card face.
	ValueAbsent = 0
	ValueHidden = 1
)

// ErrInvalidCard is returned when a card is built with an out of range rank or suit.
var ErrInvalidCard = errors.New("invalid card")

var (
	rankNames = [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "X", "J", "Q", "K"}
	suitNames = [...]string{"♠", "♣", "♥", "♦"}
)

// Card is a playing card. Rank and suit never change after construction,
// visibility does. Cards are passed around by pointer so that two cards
// with the same face are still distinct.
type Card struct {
	rank    int
	suit    int
	visible bool
}

// New returns a card or ErrInvalidCard.
func New(rank, suit int, visible bool) (*Card, error) {
	if rank < MinRank || rank > MaxRank {
		return nil, fmt.Errorf("%w: rank %d not in [%d,%d]", ErrInvalidCard, rank, MinRank, MaxRank)
	}
	if suit < 0 || suit >= NumSuits {
		return nil, fmt.Errorf("%w: suit %d not in [0,%d]", ErrInvalidCard, suit, NumSuits-1)
	}
	return &Card{rank: rank, suit: suit, visible: visible}, nil
}

// MustNew is New for compile-time known faces. Panics on invalid input.
func MustNew(rank, suit int, visible bool) *Card {
	c, err := New(rank, suit, visible)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Card) Rank() int     { return c.rank }
func (c *Card) Suit() int     { return c.suit }
func (c *Card) Visible() bool { return c.visible }

// Flip turns the card face up.
func (c *Card) Flip() { c.visible = true }

// Hide turns the card face down.
func (c *Card) Hide() { c.visible = false }

// Value encodes the card as seen by a player: hidden cards are ValueHidden,
// visible cards map onto 0..51.
func (c *Card) Value() int {
	if !c.visible {
		return ValueHidden
	}
	return FaceValue(c.rank, c.suit)
}

// FaceValue is the 0..51 index of a face.
func FaceValue(rank, suit int) int {
	return (rank-1)*NumSuits + suit
}

// AdjacentTo reports whether the two ranks differ by one, with Ace and King
// adjacent to each other.
func (c *Card) AdjacentTo(other *Card) bool {
	return AdjacentRanks(c.rank, other.rank)
}

// AdjacentRanks is AdjacentTo on bare ranks.
func AdjacentRanks(a, b int) bool {
	up := a%MaxRank + 1
	down := (a+MaxRank-2)%MaxRank + 1
	return b == up || b == down
}

// Face returns the face name regardless of visibility, e.g. "X♥".
func (c *Card) Face() string {
	return rankNames[c.rank] + suitNames[c.suit]
}

func (c *Card) String() string {
	if !c.visible {
		return "[??]"
	}
	return "[" + c.Face() + "]"
}
