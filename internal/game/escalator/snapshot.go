package escalator

import (
	"encoding/json"
	"fmt"

	"escalator/internal/cards"
	"escalator/internal/game"
)

type cardJSON struct {
	Rank    int  `json:"rank"`
	Suit    int  `json:"suit"`
	Visible bool `json:"visible"`
}

// boardJSON keeps face and visibility of every card. Captured tableau
// positions are null.
type boardJSON struct {
	Stock      []cardJSON    `json:"stock"`
	Waste      []cardJSON    `json:"waste"`
	Tableau    [][]*cardJSON `json:"tableau"`
	Foundation []cardJSON    `json:"foundation"`
	Reserve    []cardJSON    `json:"reserve"`
	Score      int           `json:"score"`
}

func (b *Board) MarshalJSON() ([]byte, error) {
	snap := boardJSON{
		Stock:      toJSON(b.stock),
		Waste:      toJSON(b.Waste()),
		Tableau:    make([][]*cardJSON, len(b.tableau)),
		Foundation: toJSON(b.foundation),
		Reserve:    toJSON(b.reserve),
		Score:      b.score,
	}
	for r, row := range b.tableau {
		snap.Tableau[r] = make([]*cardJSON, len(row))
		for c, s := range row {
			if s.IsEmpty() {
				continue
			}
			cj := cardToJSON(s.Card())
			snap.Tableau[r][c] = &cj
		}
	}
	return json.Marshal(snap)
}

// UnmarshalJSON restores a board written by MarshalJSON. Every card is
// rebuilt, so faces are validated even though Install itself does not.
func (b *Board) UnmarshalJSON(data []byte) error {
	var snap boardJSON
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	var p Piles
	var err error
	if p.Stock, err = fromJSON(snap.Stock); err != nil {
		return fmt.Errorf("stock: %w", err)
	}
	if p.Waste, err = fromJSON(snap.Waste); err != nil {
		return fmt.Errorf("waste: %w", err)
	}
	if p.Foundation, err = fromJSON(snap.Foundation); err != nil {
		return fmt.Errorf("foundation: %w", err)
	}
	if p.Reserve, err = fromJSON(snap.Reserve); err != nil {
		return fmt.Errorf("reserve: %w", err)
	}
	p.Tableau = make([][]game.Slot, len(snap.Tableau))
	for r, row := range snap.Tableau {
		p.Tableau[r] = make([]game.Slot, len(row))
		for c, cj := range row {
			if cj == nil {
				p.Tableau[r][c] = game.Empty()
				continue
			}
			card, err := cards.New(cj.Rank, cj.Suit, cj.Visible)
			if err != nil {
				return fmt.Errorf("tableau %d,%d: %w", r, c, err)
			}
			p.Tableau[r][c] = game.Occupied(card)
		}
	}

	b.Install(p)
	b.score = snap.Score
	return nil
}

func cardToJSON(c *cards.Card) cardJSON {
	return cardJSON{Rank: c.Rank(), Suit: c.Suit(), Visible: c.Visible()}
}

func toJSON(pile []*cards.Card) []cardJSON {
	out := make([]cardJSON, len(pile))
	for i, c := range pile {
		out[i] = cardToJSON(c)
	}
	return out
}

func fromJSON(pile []cardJSON) ([]*cards.Card, error) {
	out := make([]*cards.Card, len(pile))
	for i, cj := range pile {
		c, err := cards.New(cj.Rank, cj.Suit, cj.Visible)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
