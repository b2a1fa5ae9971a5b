package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eleco-media/amaike/internal/model"
)

// Greeting is the fixed assistant turn that opens every session.
const Greeting = "Soy AmAIke, el asistente de noticias de El Eco de Tandil. Estoy aquí para ayudarte a encontrar información en nuestro sitio. ¿Sobre qué te gustaría consultar?"

// Session owns one conversation: the append-only transcript, the query
// counter and the request sequence used to discard stale completions.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	turns   []model.ConversationTurn
	seq     int
	reqID   int64
	queries int
}

// NewSession creates a session opened with the fixed greeting turn.
func NewSession() *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
	s.Append(model.SpeakerAssistant, Greeting, nil)
	return s
}

// Append adds an immutable turn to the transcript and returns it.
func (s *Session) Append(speaker model.Speaker, text string, sources []model.Source) model.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	turn := model.ConversationTurn{
		Sequence: s.seq,
		Speaker:  speaker,
		Text:     text,
		Sources:  sources,
	}
	s.turns = append(s.turns, turn)
	return turn
}

// Transcript returns a copy of the turns so callers cannot mutate history.
func (s *Session) Transcript() []model.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// BeginRequest allocates the next request id. A completion whose id is no
// longer current has been superseded by a newer send and must be discarded.
func (s *Session) BeginRequest() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reqID++
	return s.reqID
}

// IsCurrent reports whether id is still the latest request.
func (s *Session) IsCurrent(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reqID == id
}

// CountQuery increments and returns the session query counter.
func (s *Session) CountQuery() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries++
	return s.queries
}
