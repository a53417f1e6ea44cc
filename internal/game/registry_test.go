package game

import (
	"encoding/json"
	"testing"

	"escalator/internal/cards"
)

// stubGame is a minimal Game implementation for testing the registry.
type stubGame struct {
	name       string
	minPlayers int
	maxPlayers int
}

func (s stubGame) Info() GameInfo {
	return GameInfo{Name: s.name, MinPlayers: s.minPlayers, MaxPlayers: s.maxPlayers}
}

func (s stubGame) NewMatch(config MatchConfig) Match {
	return &stubMatch{}
}

// stubMatch is a minimal Match implementation.
type stubMatch struct{}

func (m *stubMatch) State(playerID string) any            { return nil }
func (m *stubMatch) ValidActions(playerID string) []Action { return nil }
func (m *stubMatch) ApplyAction(string, Action) error      { return nil }
func (m *stubMatch) IsOver() bool                          { return false }
func (m *stubMatch) Results() []PlayerResult               { return nil }
func (m *stubMatch) MarshalJSON() ([]byte, error)          { return json.Marshal(struct{}{}) }
func (m *stubMatch) UnmarshalJSON(data []byte) error       { return nil }

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	g := stubGame{name: "test", minPlayers: 1, maxPlayers: 1}
	r.Register(g)

	got, ok := r.Get("test")
	if !ok {
		t.Fatal("expected to find registered game")
	}
	if got.Info().Name != "test" {
		t.Fatalf("expected name test, got %s", got.Info().Name)
	}

	_, ok = r.Get("nonexistent")
	if ok {
		t.Fatal("expected not found for unregistered game")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register(stubGame{name: "b", minPlayers: 2, maxPlayers: 4})
	r.Register(stubGame{name: "a", minPlayers: 1, maxPlayers: 1})

	infos := r.List()
	if len(infos) != 2 {
		t.Fatalf("expected 2 games, got %d", len(infos))
	}

	if infos[0].Name != "a" || infos[1].Name != "b" {
		t.Fatalf("expected games sorted as [a b], got %v", infos)
	}
}

func TestRegistryListEmpty(t *testing.T) {
	r := NewRegistry()
	infos := r.List()
	if len(infos) != 0 {
		t.Fatalf("expected 0 games, got %d", len(infos))
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	g := stubGame{name: "test", minPlayers: 1, maxPlayers: 1}
	r.Register(g)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r.Register(g) // should panic
}

func TestScoringAdjust(t *testing.T) {
	s := Scoring{WinBonus: 100, LossPenalty: 50}
	if got := s.Adjust(10, Won); got != 110 {
		t.Fatalf("expected 110 for a win, got %d", got)
	}
	if got := s.Adjust(10, Lost); got != -40 {
		t.Fatalf("expected -40 for a loss, got %d", got)
	}
	if got := s.Adjust(10, InProgress); got != 10 {
		t.Fatalf("expected 10 in progress, got %d", got)
	}
}

func TestSlot(t *testing.T) {
	if !Empty().IsEmpty() || Empty().Card() != nil {
		t.Fatal("expected empty slot without a card")
	}
	if Empty().Value() != cards.ValueAbsent {
		t.Fatalf("expected empty slot to encode as absent, got %d", Empty().Value())
	}
	c := cards.MustNew(1, 0, true)
	s := Occupied(c)
	if s.IsEmpty() || s.Card() != c || s.Value() != 0 {
		t.Fatalf("unexpected occupied slot: empty=%v value=%d", s.IsEmpty(), s.Value())
	}
}
