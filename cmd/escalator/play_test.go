package main

import (
	"bytes"
	"strings"
	"testing"

	"escalator/internal/cards"
	"escalator/internal/game"
	"escalator/internal/game/escalator"
)

// twoCaptures needs 71 then 72 to clear the peak.
func twoCaptures() *escalator.Board {
	t := make([][]game.Slot, escalator.Rows)
	for r := range t {
		t[r] = make([]game.Slot, r+1)
	}
	t[6][0] = game.Occupied(cards.MustNew(2, 0, true))
	t[6][1] = game.Occupied(cards.MustNew(1, 2, true))
	b := escalator.NewBoard()
	b.Install(escalator.Piles{
		Stock:      []*cards.Card{},
		Waste:      []*cards.Card{cards.MustNew(3, 1, true)},
		Tableau:    t,
		Foundation: []*cards.Card{},
		Reserve:    []*cards.Card{},
	})
	return b
}

func TestPlayLoopWins(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("abc\n72\n71\n72\n")
	if err := playLoop(in, &out, twoCaptures(), game.DefaultScoring); err != nil {
		t.Fatalf("play: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"moves: 71\n",
		`not a destination: "abc"`,
		"invalid move: destination 72",
		"You won! Final score 102",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestPlayLoopLoses(t *testing.T) {
	var out bytes.Buffer
	b := twoCaptures()
	// nothing on the peak is adjacent to the only stock card
	b.Install(escalator.Piles{
		Stock:      []*cards.Card{cards.MustNew(9, 0, false)},
		Waste:      []*cards.Card{},
		Tableau:    b.Tableau(),
		Foundation: []*cards.Card{},
		Reserve:    []*cards.Card{},
	})
	if err := playLoop(strings.NewReader("0\n"), &out, b, game.Scoring{LossPenalty: 100}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out.String(), "you lost. Final score -100") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestPlayLoopQuitAndEOF(t *testing.T) {
	for _, input := range []string{"q\n", ""} {
		var out bytes.Buffer
		b := twoCaptures()
		if err := playLoop(strings.NewReader(input), &out, b, game.DefaultScoring); err != nil {
			t.Fatalf("play %q: %v", input, err)
		}
		if b.Status() != game.InProgress {
			t.Fatalf("%q: expected the deal to be left in progress", input)
		}
	}
}
