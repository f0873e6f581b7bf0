// Package chat runs the tutor conversation: a numbered topic menu followed by
// free-form questions. The transcript is append-only.
package chat

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// Greeting opens every conversation.
const Greeting = "Hi! I am your StudyBuddy Tutor.\n\n" +
	"I can help you with:\n" +
	"1. Explain a concept\n" +
	"2. Examples & practice\n" +
	"3. Summarise a topic\n" +
	"4. Other\n\n" +
	"Reply with 1, 2, 3 or 4"

// Fallback is appended as the bot reply when a turn fails.
const Fallback = "Sorry, something went wrong!"

type asker interface {
	Ask(ctx context.Context, email, question string) (string, error)
}

// Session is one conversation. It is safe for concurrent use; turns may
// overlap, each one appending its reply when it resolves.
type Session struct {
	api asker
	log *slog.Logger

	mu         sync.Mutex
	transcript []domain.ChatMessage
	phase      domain.ChatPhase
	topic      domain.ChatTopic
	epoch      uint64
	inflight   int
	subs       []func([]domain.ChatMessage)
}

func NewSession(logger *slog.Logger, api asker) *Session {
	s := &Session{
		api: api,
		log: logger.With("service", "chat"),
	}
	s.seed()
	return s
}

func (s *Session) seed() {
	s.transcript = []domain.ChatMessage{{Sender: domain.SenderBot, Text: Greeting}}
	s.phase = domain.ChatPhaseMenu
	s.topic = ""
}

// Send appends the user's message, asks the tutor and appends its answer,
// or Fallback when the turn fails. Whitespace-only text is ignored. A reply
// that resolves after Reset is dropped with domain.ErrStale.
func (s *Session) Send(ctx context.Context, email, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	s.mu.Lock()
	s.appendLocked(domain.ChatMessage{Sender: domain.SenderUser, Text: text})
	if s.phase == domain.ChatPhaseMenu {
		if topic, ok := domain.MenuTopics[trimmed]; ok {
			s.phase = domain.ChatPhaseFreeform
			s.topic = topic
			s.log.DebugContext(ctx, "menu topic chosen", slog.String("topic", string(topic)))
		}
	}
	epoch := s.epoch
	s.inflight++
	subs, snapshot := s.publicationLocked()
	s.mu.Unlock()
	publish(subs, snapshot)

	answer, err := s.api.Ask(ctx, email, text)
	reply := answer
	if err != nil {
		s.log.WarnContext(ctx, "chat turn failed", slog.String("error", err.Error()))
		reply = Fallback
	}

	s.mu.Lock()
	s.inflight--
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.DebugContext(ctx, "discarding reply for reset conversation")
		return domain.ErrStale
	}
	s.appendLocked(domain.ChatMessage{Sender: domain.SenderBot, Text: reply})
	subs, snapshot = s.publicationLocked()
	s.mu.Unlock()
	publish(subs, snapshot)

	return err
}

func (s *Session) appendLocked(m domain.ChatMessage) {
	s.transcript = append(s.transcript, m)
}

func (s *Session) publicationLocked() ([]func([]domain.ChatMessage), []domain.ChatMessage) {
	return slices.Clone(s.subs), slices.Clone(s.transcript)
}

func publish(subs []func([]domain.ChatMessage), msgs []domain.ChatMessage) {
	for _, fn := range subs {
		fn(msgs)
	}
}

// Reset starts a new conversation: pending replies are dropped and the
// transcript is reseeded with the greeting.
func (s *Session) Reset() {
	s.mu.Lock()
	s.epoch++
	s.seed()
	subs, snapshot := s.publicationLocked()
	s.mu.Unlock()
	publish(subs, snapshot)
}

// Transcript returns a copy of the conversation.
func (s *Session) Transcript() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

// Phase returns the conversational phase.
func (s *Session) Phase() domain.ChatPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Topic returns the chosen menu topic, or "" while in the menu phase.
func (s *Session) Topic() domain.ChatTopic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Pending reports how many turns await a reply.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Subscribe registers fn to receive the transcript after every append.
func (s *Session) Subscribe(fn func(msgs []domain.ChatMessage)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}
