// Package session keeps per-conversation state: message history and the
// accumulated intelligence record.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/vigilante/internal/intel"
)

// ErrNotFound is returned when a session has no stored state.
var ErrNotFound = errors.New("session: not found")

const (
	SenderScammer = "scammer"
	SenderPersona = "user"
)

// maxStoredMessages caps stored history; MessageCount keeps counting past it.
const maxStoredMessages = 200

// Message is one line of a conversation.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// FromCounterpart reports whether the suspected scammer sent the message.
func (m Message) FromCounterpart() bool {
	return m.Sender == SenderScammer
}

// NormalizeSender maps transport sender labels onto SenderScammer/SenderPersona.
// Anything not recognisably ours is treated as the counterpart.
func NormalizeSender(sender string) string {
	switch strings.ToLower(strings.TrimSpace(sender)) {
	case "user", "assistant", "agent", "honeypot", "persona", "bot":
		return SenderPersona
	default:
		return SenderScammer
	}
}

// Session is the mutable state of one conversation.
type Session struct {
	ID           string       `json:"id"`
	PersonaID    string       `json:"persona_id"`
	Messages     []Message    `json:"messages"`
	MessageCount int          `json:"message_count"`
	Intel        intel.Record `json:"intel"`
	ScamReported bool         `json:"scam_reported"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// New returns an empty session.
func New(id, personaID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		PersonaID: personaID,
		Intel:     intel.NewRecord(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append records a message, trimming stored history to the cap.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.MessageCount++
	if over := len(s.Messages) - maxStoredMessages; over > 0 {
		s.Messages = append([]Message(nil), s.Messages[over:]...)
	}
}

// Clone deep-copies the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	out.Intel = s.Intel.Clone()
	return &out
}

// Repository stores sessions. Implementations must be safe for concurrent use;
// callers serialize writes to one session with a Locker.
type Repository interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
