package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"escalator/internal/game"
	"escalator/internal/storage"
)

// ErrNotFound is returned for unknown session codes.
var ErrNotFound = errors.New("session not found")

// Manager manages all active sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	registry *game.Registry
	store    *storage.Store
	scoring  game.Scoring
}

// NewManager creates a session manager. scoring is folded into the
// results of every match it creates.
func NewManager(registry *game.Registry, store *storage.Store, scoring game.Scoring) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		registry: registry,
		store:    store,
		scoring:  scoring,
	}
}

// Create deals a new game for playerID and persists it. A zero seed is
// replaced by a time based one so the deal can be replayed later.
func (m *Manager) Create(gameType, playerID string, seed int64) (*Session, error) {
	g, ok := m.registry.Get(gameType)
	if !ok {
		return nil, fmt.Errorf("unknown game type: %s", gameType)
	}
	if playerID == "" {
		return nil, fmt.Errorf("player id required")
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m.mu.Lock()
	code := generateCode()
	for m.sessions[code] != nil {
		code = generateCode()
	}
	match := g.NewMatch(game.MatchConfig{
		PlayerIDs: []string{playerID},
		Seed:      seed,
		Scoring:   m.scoring,
	})
	s := NewSession(code, gameType, playerID, seed, match)
	m.sessions[code] = s
	m.mu.Unlock()

	if err := m.store.CreateSession(code, gameType, playerID, seed); err != nil {
		m.mu.Lock()
		delete(m.sessions, code)
		m.mu.Unlock()
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if err := m.SaveMatchState(s); err != nil {
		m.mu.Lock()
		delete(m.sessions, code)
		m.mu.Unlock()
		if derr := m.store.DeleteSession(code); derr != nil {
			log.Printf("session %s: delete: %v", code, derr)
		}
		return nil, err
	}
	log.Printf("session %s: %s dealt %s (seed %d)", code, playerID, gameType, seed)
	return s, nil
}

// Get returns a session by code.
func (m *Manager) Get(code string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[code]
	return s, ok
}

// List returns info for all active sessions, newest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	m.mu.RUnlock()
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].Code < infos[j].Code
		}
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos
}

// Apply plays an action in the session, persists the new state and
// records the result once the match is over.
func (m *Manager) Apply(code, playerID string, action game.Action) (*Session, error) {
	s, ok := m.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	over, err := s.Apply(playerID, action)
	if err != nil {
		return s, err
	}
	if err := m.SaveMatchState(s); err != nil {
		log.Printf("session %s: save match state: %v", code, err)
	}
	if over {
		m.recordResults(s)
	}
	return s, nil
}

func (m *Manager) recordResults(s *Session) {
	s.mu.RLock()
	results := s.Match.Results()
	s.mu.RUnlock()
	for _, r := range results {
		err := m.store.RecordResult(storage.ResultRow{
			SessionCode: s.Code,
			PlayerID:    r.PlayerID,
			Score:       r.Score,
			Outcome:     string(r.Outcome),
			Captures:    r.Captures,
			Turns:       r.Turns,
		})
		if err != nil {
			log.Printf("session %s: record result: %v", s.Code, err)
			continue
		}
		log.Printf("session %s: %s %s with %d", s.Code, r.PlayerID, r.Outcome, r.Score)
	}
}

// TopResults returns the leaderboard.
func (m *Manager) TopResults(limit int) ([]storage.ResultRow, error) {
	return m.store.TopResults(limit)
}

// SaveMatchState persists the current match state for a session.
func (m *Manager) SaveMatchState(s *Session) error {
	data, status, err := s.snapshot()
	if err != nil {
		return fmt.Errorf("marshal match state: %w", err)
	}
	if err := m.store.UpdateSessionStatus(s.Code, string(status)); err != nil {
		return err
	}
	return m.store.SaveMatchState(s.Code, string(data))
}

// Restore loads unfinished sessions from the database on startup.
func (m *Manager) Restore() error {
	rows, err := m.store.ListSessions(string(StatusPlaying))
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	for _, row := range rows {
		g, ok := m.registry.Get(row.GameType)
		if !ok {
			log.Printf("skipping session %s: unknown game type %s", row.Code, row.GameType)
			continue
		}
		stateJSON, err := m.store.GetMatchState(row.Code)
		if err != nil {
			log.Printf("skipping session %s: no match state: %v", row.Code, err)
			continue
		}
		match := g.NewMatch(game.MatchConfig{PlayerIDs: []string{row.PlayerID}, Seed: row.Seed, Scoring: m.scoring})
		if err := match.UnmarshalJSON([]byte(stateJSON)); err != nil {
			log.Printf("skipping session %s: unmarshal error: %v", row.Code, err)
			continue
		}
		s := NewSession(row.Code, row.GameType, row.PlayerID, row.Seed, match)
		s.CreatedAt = row.CreatedAt
		m.mu.Lock()
		m.sessions[row.Code] = s
		m.mu.Unlock()
	}
	return nil
}

// Remove deletes a session from memory and storage.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	delete(m.sessions, code)
	m.mu.Unlock()
	if err := m.store.DeleteSession(code); err != nil {
		log.Printf("session %s: delete: %v", code, err)
	}
}

// CleanupLoop removes stale sessions periodically until ctx is done.
func (m *Manager) CleanupLoop(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(maxAge)
		}
	}
}

// cleanup drops finished sessions nobody is watching and sessions idle for
// longer than maxAge.
func (m *Manager) cleanup(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for code, s := range m.sessions {
		s.mu.RLock()
		watched := len(s.clients) > 0
		finished := s.Status == StatusFinished
		idle := now.Sub(s.LastActive) > maxAge
		s.mu.RUnlock()

		if (finished && !watched) || idle {
			log.Printf("cleaning up session %s", code)
			if err := m.store.DeleteSession(code); err != nil {
				log.Printf("session %s: delete: %v", code, err)
			}
			delete(m.sessions, code)
		}
	}
}

// generateCode returns the first group of a random UUID: 8 hex chars.
func generateCode() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
