package escalator

import (
	"fmt"
	"strings"

	"escalator/internal/cards"
	"escalator/internal/game"
)

const blank = "[  ]"

// Encode returns the integer view of the board. Foundation holds the single
// foundation pile; captured tableau positions encode as absent.
func (b *Board) Encode() game.Encoding {
	enc := game.Encoding{
		Stock:      encodePile(b.stock),
		Waste:      encodePile(b.Waste()),
		Foundation: [][]int{encodePile(b.foundation)},
		Tableau:    make([][]int, len(b.tableau)),
		Reserve:    encodePile(b.reserve),
	}
	for r, row := range b.tableau {
		vals := make([]int, len(row))
		for c, s := range row {
			vals[c] = s.Value()
		}
		enc.Tableau[r] = vals
	}
	return enc
}

func encodePile(pile []*cards.Card) []int {
	vals := make([]int, len(pile))
	for i, c := range pile {
		vals[i] = c.Value()
	}
	return vals
}

// Display renders the stock and waste tops above the peak.
func (b *Board) Display() string {
	var sb strings.Builder

	stockTop := blank
	if len(b.stock) > 0 {
		stockTop = "[??]"
	}
	wasteTop := blank
	if !b.waste.IsEmpty() {
		wasteTop = b.waste.Card().String()
	}
	fmt.Fprintf(&sb, "%s %s  stock: %d\n", stockTop, wasteTop, len(b.stock))

	for r, row := range b.tableau {
		sb.WriteString(strings.Repeat("  ", len(b.tableau)-1-r))
		for _, s := range row {
			if s.IsEmpty() {
				sb.WriteString("    ")
				continue
			}
			sb.WriteString(s.Card().String())
		}
		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "score: %d", b.score)
	return sb.String()
}
