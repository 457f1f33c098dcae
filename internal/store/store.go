package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"codegpt/internal/config"
	"codegpt/internal/domain"
	"codegpt/internal/models"
)

// DefaultTitle is used for chats that have not received a user message yet.
const DefaultTitle = "New Chat"

// maxMessages bounds the stored message window (user/assistant pairs).
const maxMessages = 2 * config.MaxTurns

// ChatStore is the in-memory conversation registry. State lives only for the
// lifetime of the process. A single mutex guards the map; critical sections
// are short and never span a completion round trip.
type ChatStore struct {
	mu    sync.RWMutex
	chats map[string]*models.Chat
}

// New creates an empty chat store.
func New() *ChatStore {
	return &ChatStore{
		chats: make(map[string]*models.Chat),
	}
}

// Create allocates a new empty chat and returns a copy of it.
func (s *ChatStore) Create() *models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.createLocked()
	return copyChat(chat)
}

// createLocked allocates a chat. Caller must hold s.mu.
func (s *ChatStore) createLocked() *models.Chat {
	now := time.Now()
	chat := &models.Chat{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.chats[chat.ID] = chat
	return chat
}

// List returns summaries of all chats ordered by UpdatedAt descending
// (most recently active first).
func (s *ChatStore) List() []models.ChatSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]models.ChatSummary, 0, len(s.chats))
	for _, chat := range s.chats {
		summaries = append(summaries, models.ChatSummary{
			ID:        chat.ID,
			Title:     chat.Title,
			CreatedAt: chat.CreatedAt,
			UpdatedAt: chat.UpdatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries
}

// Get retrieves a chat by id. Returns domain.ErrNotFound for unknown ids.
// The returned chat is a copy; mutating it does not affect the store.
func (s *ChatStore) Get(id string) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, fmt.Errorf("%w: chat %s", domain.ErrNotFound, id)
	}

	return copyChat(chat), nil
}

// AppendUserMessage appends a user message to the chat with the given id,
// creating a new chat first when the id is empty or unknown. The chat's title
// is derived from the text if this is its first message. Returns the id of
// the (possibly newly created) chat and whether it was created.
func (s *ChatStore) AppendUserMessage(id, text string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := false
	chat, ok := s.chats[id]
	if !ok {
		chat = s.createLocked()
		created = true
	}

	if len(chat.Messages) == 0 && chat.Title == DefaultTitle {
		chat.Title = deriveTitle(text)
	}

	s.appendLocked(chat, models.Message{Role: models.RoleUser, Content: text})

	return chat.ID, created, nil
}

// AppendAssistantMessage appends an assistant reply. Returns
// domain.ErrNotFound if the chat no longer exists, which can happen when a
// delete races a pending completion.
func (s *ChatStore) AppendAssistantMessage(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[id]
	if !ok {
		return fmt.Errorf("%w: chat %s", domain.ErrNotFound, id)
	}

	s.appendLocked(chat, models.Message{Role: models.RoleAssistant, Content: text})

	return nil
}

// appendLocked appends a message, trims the window and refreshes UpdatedAt.
// Caller must hold s.mu.
func (s *ChatStore) appendLocked(chat *models.Chat, msg models.Message) {
	chat.Messages = append(chat.Messages, msg)
	if len(chat.Messages) > maxMessages {
		// Sliding window: drop the oldest entries, keep relative order.
		chat.Messages = chat.Messages[len(chat.Messages)-maxMessages:]
	}
	chat.UpdatedAt = time.Now()
}

// Reset empties a chat's message list. The id and title are preserved.
func (s *ChatStore) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[id]
	if !ok {
		return fmt.Errorf("%w: chat %s", domain.ErrNotFound, id)
	}

	chat.Messages = nil
	chat.UpdatedAt = time.Now()

	return nil
}

// Delete removes a chat entirely.
func (s *ChatStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return fmt.Errorf("%w: chat %s", domain.ErrNotFound, id)
	}

	delete(s.chats, id)

	return nil
}

// Len reports the number of chats in the store.
func (s *ChatStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.chats)
}

// copyChat returns a deep-enough copy: callers never alias the stored
// message slice.
func copyChat(chat *models.Chat) *models.Chat {
	c := *chat
	c.Messages = make([]models.Message, len(chat.Messages))
	copy(c.Messages, chat.Messages)
	return &c
}

// deriveTitle builds a chat title from its first user message: whitespace
// runs collapse to single spaces, the result is truncated to
// config.MaxTitleLength runes with an ellipsis.
func deriveTitle(text string) string {
	title := strings.Join(strings.Fields(text), " ")
	if title == "" {
		return DefaultTitle
	}

	runes := []rune(title)
	if len(runes) > config.MaxTitleLength {
		return string(runes[:config.MaxTitleLength]) + "…"
	}

	return title
}
