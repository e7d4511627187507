package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abhishekr/deepchat/internal/model/chat"
)

// ErrEmptyMessage rejects blank or whitespace-only input.
var ErrEmptyMessage = errors.New("empty message")

// ReplyGenerator is the slice of the model gateway this service needs.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// Exchange pairs the stored user message with the generated reply.
type Exchange struct {
	User  chat.Message
	Model chat.Message
}

// Service orchestrates message validation, reply generation and history
// updates for a conversation.
type Service struct {
	store   chat.Store
	gateway ReplyGenerator
}

// NewService wires the conversation store and model gateway together.
func NewService(store chat.Store, gateway ReplyGenerator) *Service {
	return &Service{store: store, gateway: gateway}
}

// HandleMessage processes one user turn. Either both the user message
// and the model reply are appended to history, or neither is: generation
// runs before any history mutation, so a backend failure leaves the
// conversation untouched. No store lock is held while the backend is
// generating.
func (s *Service) HandleMessage(ctx context.Context, chatID, raw string) (Exchange, error) {
	if strings.TrimSpace(raw) == "" {
		return Exchange{}, ErrEmptyMessage
	}

	userMsg := chat.Message{
		Content:   raw,
		Timestamp: time.Now().UTC(),
		IsUser:    true,
	}

	reply, err := s.gateway.GenerateReply(ctx, raw)
	if err != nil {
		return Exchange{}, fmt.Errorf("generate reply for chat %s: %w", chatID, err)
	}

	modelMsg := chat.Message{
		Content:   reply,
		Timestamp: time.Now().UTC(),
		IsUser:    false,
	}

	s.store.Append(chatID, userMsg, modelMsg)

	log.Printf("[chat] chat=%s prompt_len=%d reply_len=%d", chatID, len(raw), len(reply))
	return Exchange{User: userMsg, Model: modelMsg}, nil
}

// History returns the stored transcript for the chat, creating the
// conversation the first time the id is seen.
func (s *Service) History(chatID string) []chat.Message {
	return s.store.GetOrCreate(chatID)
}
