package client

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ZaguanLabs/culturo"
)

const (
	// Greeting opens every chat session.
	Greeting = "Hello! How can I help you practice English today?"
	// Apology replaces the tutor's answer when a request fails.
	Apology = "Sorry, I'm having trouble responding. Please try again."

	defaultChatLanguage = "en"
	chatContext         = "language_learning"
)

// Chatter is the subset of Client used by ChatSession.
type Chatter interface {
	Chat(ctx context.Context, req culturo.ChatRequest) (*ChatResponse, error)
}

// ChatSession keeps a conversation with the tutor.
type ChatSession struct {
	api Chatter
	now func() time.Time

	mu       sync.Mutex
	messages []culturo.ChatMessage
	sending  bool
	err      error
}

// NewChatSession starts a session containing only the greeting.
func NewChatSession(api Chatter) *ChatSession {
	s := &ChatSession{api: api, now: time.Now}
	s.reset()
	return s
}

// Messages returns a copy of the conversation.
func (s *ChatSession) Messages() []culturo.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]culturo.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Err returns the error of the last Send, if any.
func (s *ChatSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Sending reports whether a message is in flight.
func (s *ChatSession) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Send appends the learner message, then the tutor's reply. On failure the
// Apology is appended instead and the error is returned.
func (s *ChatSession) Send(ctx context.Context, message, language string) error {
	if language == "" {
		language = defaultChatLanguage
	}

	s.mu.Lock()
	s.sending = true
	s.err = nil
	s.messages = append(s.messages, s.newMessage(culturo.RoleUser, message, s.now()))
	s.mu.Unlock()

	resp, err := s.api.Chat(ctx, culturo.ChatRequest{
		Message:  message,
		Language: language,
		Context:  chatContext,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false
	if err != nil {
		s.err = err
		s.messages = append(s.messages, s.newMessage(culturo.RoleAssistant, Apology, s.now()))
		return err
	}

	stamp, perr := time.Parse(time.RFC3339Nano, resp.Timestamp)
	if perr != nil {
		stamp = s.now()
	}
	s.messages = append(s.messages, s.newMessage(culturo.RoleAssistant, resp.Message, stamp))
	return nil
}

// Clear drops the conversation back to the greeting.
func (s *ChatSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// reset requires s.mu held (or exclusive access).
func (s *ChatSession) reset() {
	s.err = nil
	s.messages = []culturo.ChatMessage{s.newMessage(culturo.RoleAssistant, Greeting, s.now())}
}

func (s *ChatSession) newMessage(role culturo.ChatRole, content string, at time.Time) culturo.ChatMessage {
	return culturo.ChatMessage{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Timestamp: at.UTC(),
	}
}
