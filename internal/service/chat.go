package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codegpt/internal/domain"
	"codegpt/internal/models"
	"codegpt/internal/store"
)

// Gateway generates assistant text for a conversation. Implemented by
// llm.Client; faked in tests.
type Gateway interface {
	Complete(ctx context.Context, msgs []models.Message) (string, error)
}

// SendMessageRequest is the inbound payload for sending a chat message.
// ChatID is optional; an empty or unknown id creates a new chat.
type SendMessageRequest struct {
	ChatID  string `json:"chat_id,omitempty"`
	Message string `json:"message"`
}

// SendResult is the outcome of a successful send.
type SendResult struct {
	ChatID string `json:"chat_id"`
	Reply  string `json:"reply"`
}

// ChatMessages is a chat's message list with its title, for the messages
// endpoint.
type ChatMessages struct {
	Title    string           `json:"title,omitempty"`
	Messages []models.Message `json:"messages"`
}

// ChatService orchestrates the conversation store and the completion
// gateway.
type ChatService struct {
	store   *store.ChatStore
	gateway Gateway
	logger  *slog.Logger
}

// NewChatService creates a new chat service.
func NewChatService(chatStore *store.ChatStore, gateway Gateway, logger *slog.Logger) *ChatService {
	return &ChatService{
		store:   chatStore,
		gateway: gateway,
		logger:  logger,
	}
}

// SendMessage appends a user message (creating the chat if needed), asks the
// gateway for a reply and appends it. The gateway call runs without any store
// lock held, so the completion round trip never blocks other conversations.
// Gateway failures are returned to the caller and are never written into
// message history.
func (s *ChatService) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendResult, error) {
	if err := validateSendMessageRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	chatID, created, err := s.store.AppendUserMessage(req.ChatID, req.Message)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("chat created", "id", chatID)
	}

	chat, err := s.store.Get(chatID)
	if err != nil {
		return nil, err
	}

	reply, err := s.gateway.Complete(ctx, chat.Messages)
	if err != nil {
		s.logger.Error("completion failed", "chat_id", chatID, "error", err)
		// The user message is already stored in chatID; hand the id back
		// with the error so the caller can retry into the same chat.
		return &SendResult{ChatID: chatID}, err
	}

	if err := s.store.AppendAssistantMessage(chatID, reply); err != nil {
		// The chat was deleted while the completion was in flight. The
		// reply is still returned; there is just nowhere to store it.
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("chat deleted during completion", "chat_id", chatID)
			return &SendResult{ChatID: chatID, Reply: reply}, nil
		}
		return nil, err
	}

	s.logger.Info("message exchanged",
		"chat_id", chatID,
		"user_chars", len(req.Message),
		"reply_chars", len(reply),
	)

	return &SendResult{ChatID: chatID, Reply: reply}, nil
}

// CreateChat creates a new empty chat.
func (s *ChatService) CreateChat(ctx context.Context) *models.Chat {
	chat := s.store.Create()
	s.logger.Info("chat created", "id", chat.ID)
	return chat
}

// ListChats returns chat summaries, most recently active first.
func (s *ChatService) ListChats(ctx context.Context) []models.ChatSummary {
	return s.store.List()
}

// GetMessages returns a chat's messages and title. An unknown id yields an
// empty message list rather than an error, so a stale client id degrades to
// a blank conversation.
func (s *ChatService) GetMessages(ctx context.Context, chatID string) *ChatMessages {
	chat, err := s.store.Get(chatID)
	if err != nil {
		return &ChatMessages{Messages: []models.Message{}}
	}

	return &ChatMessages{Title: chat.Title, Messages: chat.Messages}
}

// ResetChat clears a chat's history, keeping its id and title.
func (s *ChatService) ResetChat(ctx context.Context, chatID string) error {
	if err := s.store.Reset(chatID); err != nil {
		return err
	}
	s.logger.Info("chat reset", "id", chatID)
	return nil
}

// DeleteChat removes a chat entirely.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	if err := s.store.Delete(chatID); err != nil {
		return err
	}
	s.logger.Info("chat deleted", "id", chatID)
	return nil
}

func validateSendMessageRequest(req *SendMessageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Message,
			validation.Required.Error("message must not be empty"),
			validation.By(notBlank),
		),
	)
}

// notBlank rejects messages that are only whitespace.
func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("message must not be blank")
	}
	return nil
}
