package chat

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhishekr/deepchat/internal/service/ai"
	chatService "github.com/abhishekr/deepchat/internal/service/chat"
	"github.com/abhishekr/deepchat/pkg/utils"
)

// Handler exposes the message submission endpoint.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes registers chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/send_message", h.handleSendMessage)
}

// handleSendMessage accepts a form-encoded user message, relays it to
// the model and returns the generated reply.
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Printf("[chat] failed to parse form: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	chatID := r.PostFormValue("chat_id")
	message := r.PostFormValue("message")

	exchange, err := h.chatSvc.HandleMessage(r.Context(), chatID, message)
	switch {
	case err == nil:
	case errors.Is(err, chatService.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, "Empty message")
		return
	case errors.Is(err, ai.ErrGenerationFailed):
		log.Printf("[chat] generation failed for chat=%s: %v", chatID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate response")
		return
	default:
		log.Printf("[chat] message handling failed for chat=%s: %v", chatID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "success",
		"response":  exchange.Model.Content,
		"timestamp": exchange.Model.Timestamp.Format(time.RFC3339),
	})
}
