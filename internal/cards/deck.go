package cards

import "math/rand"

// NewDeck returns the 52 card deck, face down, ordered by rank then suit.
func NewDeck() []*Card {
	deck := make([]*Card, 0, DeckSize)
	for rank := MinRank; rank <= MaxRank; rank++ {
		for suit := 0; suit < NumSuits; suit++ {
			deck = append(deck, &Card{rank: rank, suit: suit})
		}
	}
	return deck
}

// Shuffle permutes the deck in place.
func Shuffle(deck []*Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
