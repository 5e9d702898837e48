package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deckhand-ai/deckhand/internal/services"
)

// ChatHandler serves the investor-facing chat. It is keyed by share-link
// token, not by a founder session, so its routes carry no JWT.
type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type askRequest struct {
	ConversationID string `json:"conversation_id"`
	Question       string `json:"question"`
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	ans, err := h.chat.Ask(r.Context(), chi.URLParam(r, "link_token"), req.ConversationID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLinkNotFound):
			http.Error(w, "link not found", http.StatusNotFound)
		case errors.Is(err, services.ErrBudgetExhausted):
			http.Error(w, "token budget exhausted", http.StatusPaymentRequired)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, ans)
}
