package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhishekr/deepchat/internal/handler/attachment"
	"github.com/abhishekr/deepchat/internal/handler/chat"
	"github.com/abhishekr/deepchat/internal/handler/web"
	middlewarePkg "github.com/abhishekr/deepchat/internal/middleware"
	chatService "github.com/abhishekr/deepchat/internal/service/chat"
	"github.com/abhishekr/deepchat/internal/storage"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, attachments *storage.Store, uploadMaxBytes int64) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	webHandler, err := web.New(chatSvc)
	if err != nil {
		return nil, err
	}
	chatHandler := chat.New(chatSvc)
	attachmentHandler := attachment.New(attachments, uploadMaxBytes)

	webHandler.RegisterRoutes(r)
	chatHandler.RegisterRoutes(r)
	attachmentHandler.RegisterRoutes(r)

	r.NotFound(webHandler.NotFound)

	return r, nil
}
