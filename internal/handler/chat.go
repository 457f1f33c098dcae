package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"codegpt/internal/domain"
	"codegpt/internal/httputil"
	"codegpt/internal/models"
	"codegpt/internal/service"
)

// ChatHandler handles the chat HTTP surface. Handlers only talk to the
// service, never to the store directly.
type ChatHandler struct {
	chatService *service.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

type chatListResponse struct {
	Chats []models.ChatSummary `json:"chats"`
}

type chatIDResponse struct {
	ChatID string `json:"chat_id"`
}

type sendResponse struct {
	OK     bool   `json:"ok"`
	ChatID string `json:"chat_id,omitempty"`
	Reply  string `json:"reply"`
	Error  string `json:"error,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type chatIDRequest struct {
	ChatID string `json:"chat_id"`
}

// HealthCheck reports process liveness.
// GET /health
func (h *ChatHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListChats returns all chats, most recently active first.
// GET /api/chats
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats := h.chatService.ListChats(r.Context())
	httputil.RespondJSON(w, http.StatusOK, chatListResponse{Chats: chats})
}

// CreateChat creates a new empty chat.
// POST /api/chats
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	chat := h.chatService.CreateChat(r.Context())
	httputil.RespondJSON(w, http.StatusOK, chatIDResponse{ChatID: chat.ID})
}

// GetMessages returns a chat's messages and title. An unknown id yields an
// empty message list, not an error.
// GET /api/messages?chat_id=:id
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chat_id")
	messages := h.chatService.GetMessages(r.Context(), chatID)
	httputil.RespondJSON(w, http.StatusOK, messages)
}

// SendMessage appends a user message, fetches a completion and returns the
// reply. Omitting chat_id (or sending an unknown one) starts a new chat.
// POST /api/chat
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req service.SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.chatService.SendMessage(r.Context(), &req)
	if err != nil {
		var gatewayErr *domain.GatewayError
		if errors.As(err, &gatewayErr) {
			// Out-of-band error envelope: the reply stays empty and the
			// error text never enters conversation history. The chat id is
			// still returned; the user message is already stored there.
			resp := sendResponse{OK: false, Error: gatewayErr.Error()}
			if result != nil {
				resp.ChatID = result.ChatID
			}
			httputil.RespondJSON(w, http.StatusBadGateway, resp)
			return
		}
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sendResponse{
		OK:     true,
		ChatID: result.ChatID,
		Reply:  result.Reply,
	})
}

// ResetChat clears a chat's history.
// POST /api/reset
func (h *ChatHandler) ResetChat(w http.ResponseWriter, r *http.Request) {
	var req chatIDRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.chatService.ResetChat(r.Context(), req.ChatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			httputil.RespondJSON(w, http.StatusBadRequest, statusResponse{Status: "no-chat"})
			return
		}
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// DeleteChat removes a chat entirely.
// POST /api/chats/delete
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	var req chatIDRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), req.ChatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			httputil.RespondJSON(w, http.StatusBadRequest, statusResponse{Status: "no-chat"})
			return
		}
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}
