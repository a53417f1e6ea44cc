package session

import (
	"sync"
	"time"

	"escalator/internal/game"
)

// Status represents the session lifecycle.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Client is one connected viewer: the owning player or a spectator.
type Client struct {
	ID   string
	Send chan []byte // outbound messages
}

// Session is one dealt game owned by a single player.
type Session struct {
	mu         sync.RWMutex
	Code       string
	GameType   string
	PlayerID   string
	Seed       int64
	Status     Status
	Match      game.Match
	CreatedAt  time.Time
	LastActive time.Time
	clients    map[string]*Client
}

// NewSession wraps a freshly created match.
func NewSession(code, gameType, playerID string, seed int64, match game.Match) *Session {
	now := time.Now()
	s := &Session{
		Code:       code,
		GameType:   gameType,
		PlayerID:   playerID,
		Seed:       seed,
		Status:     StatusPlaying,
		Match:      match,
		CreatedAt:  now,
		LastActive: now,
		clients:    make(map[string]*Client),
	}
	if match != nil && match.IsOver() {
		s.Status = StatusFinished
	}
	return s
}

// Connect registers a viewer and returns its client. A reconnecting
// viewer gets a fresh Send channel; the old one is closed.
func (s *Session) Connect(clientID string) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.clients[clientID]; ok {
		close(old.Send)
	}
	c := &Client{ID: clientID, Send: make(chan []byte, 64)}
	s.clients[clientID] = c
	return c
}

// Disconnect removes a viewer if c is still its current connection.
func (s *Session) Disconnect(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.clients[c.ID]; ok && cur == c {
		close(c.Send)
		delete(s.clients, c.ID)
	}
}

// Clients returns the number of connected viewers.
func (s *Session) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Apply plays an action and reports whether it ended the match.
func (s *Session) Apply(playerID string, action game.Action) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status == StatusFinished {
		return false, game.ErrGameOver
	}
	if err := s.Match.ApplyAction(playerID, action); err != nil {
		return false, err
	}
	s.LastActive = time.Now()
	if s.Match.IsOver() {
		s.Status = StatusFinished
		return true, nil
	}
	return false, nil
}

// View is a consistent read of the match for one viewer.
type View struct {
	State        any                 `json:"state"`
	ValidActions []game.Action       `json:"validActions"`
	Results      []game.PlayerResult `json:"results,omitempty"`
	SessionInfo  Info                `json:"sessionInfo"`
}

// View returns the match as seen by viewerID.
func (s *Session) View(viewerID string) View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := View{
		State:        s.Match.State(viewerID),
		ValidActions: s.Match.ValidActions(viewerID),
		SessionInfo:  s.infoLocked(),
	}
	if v.ValidActions == nil {
		v.ValidActions = []game.Action{}
	}
	if s.Match.IsOver() {
		v.Results = s.Match.Results()
	}
	return v
}

// Broadcast sends a message to all connected viewers.
func (s *Session) Broadcast(msg []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.Send <- msg:
		default:
			// drop message if buffer full
		}
	}
}

// ClientList returns the connected viewers.
func (s *Session) ClientList() []*Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}

// SendTo queues msg for c unless c has disconnected or its buffer is full.
func (s *Session) SendTo(c *Client, msg []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clients[c.ID] != c {
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}

// Info returns session info for the API.
type Info struct {
	Code      string    `json:"code"`
	GameType  string    `json:"gameType"`
	PlayerID  string    `json:"playerId"`
	Seed      int64     `json:"seed"`
	Status    Status    `json:"status"`
	Viewers   int       `json:"viewers"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.infoLocked()
}

func (s *Session) infoLocked() Info {
	return Info{
		Code:      s.Code,
		GameType:  s.GameType,
		PlayerID:  s.PlayerID,
		Seed:      s.Seed,
		Status:    s.Status,
		Viewers:   len(s.clients),
		CreatedAt: s.CreatedAt,
	}
}

// snapshot marshals the match under the read lock.
func (s *Session) snapshot() ([]byte, Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := s.Match.MarshalJSON()
	return data, s.Status, err
}
