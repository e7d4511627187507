package web

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abhishekr/deepchat/internal/model/chat"
	chatService "github.com/abhishekr/deepchat/internal/service/chat"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler renders the HTML pages: landing, chat view and error pages.
type Handler struct {
	chatSvc *chatService.Service
	tmpl    *template.Template
}

// New parses the embedded templates and returns the web handler.
func New(chatSvc *chatService.Service) (*Handler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{chatSvc: chatSvc, tmpl: tmpl}, nil
}

// RegisterRoutes registers the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/chat/{chatId}", h.handleChat)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", nil)
}

type chatPageData struct {
	ChatID  string
	History []chat.Message
}

// handleChat renders the chat view. Visiting an unseen chat id creates
// its (empty) conversation.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")
	h.render(w, http.StatusOK, "chat.html", chatPageData{
		ChatID:  chatID,
		History: h.chatSvc.History(chatID),
	})
}

// NotFound renders the generic 404 page. Wired as the router's fallback.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "404.html", nil)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[web] failed to render %s: %v", name, err)
		h.serverError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handler) serverError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if err := h.tmpl.ExecuteTemplate(w, "500.html", nil); err != nil {
		log.Printf("[web] failed to render 500 page: %v", err)
	}
}
