package attachment

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abhishekr/deepchat/internal/storage"
	"github.com/abhishekr/deepchat/pkg/utils"
)

// Handler exposes the attachment upload endpoint.
type Handler struct {
	store    *storage.Store
	maxBytes int64
}

// New creates the attachment handler. maxBytes caps the whole request
// body before any processing happens.
func New(store *storage.Store, maxBytes int64) *Handler {
	return &Handler{store: store, maxBytes: maxBytes}
}

// RegisterRoutes registers upload routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload_attachment", h.handleUpload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "No file part")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		utils.RespondError(w, http.StatusBadRequest, "No selected file")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[upload] failed to read upload: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	stored, err := h.store.Save(header.Filename, content)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNoFile):
		utils.RespondError(w, http.StatusBadRequest, "No selected file")
		return
	case errors.Is(err, storage.ErrDisallowedType):
		utils.RespondError(w, http.StatusBadRequest, "File type not allowed")
		return
	default:
		log.Printf("[upload] save failed for %q: %v", header.Filename, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"filename": stored.Name,
		"path":     stored.Path,
	})
}
